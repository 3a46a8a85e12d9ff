package dtos

import (
	"time"

	"github.com/assetdeck/assetdeck/modules/assets/domain/aggregates/asset"
)

type AssetResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	SerialNumber string     `json:"serialNumber,omitempty"`
	MACAddress   string     `json:"macAddress,omitempty"`
	IPAddress    string     `json:"ipAddress,omitempty"`
	AssetType    string     `json:"assetType,omitempty"`
	Location     string     `json:"location,omitempty"`
	PurchaseCost string     `json:"purchaseCost,omitempty"`
	PurchasedAt  *time.Time `json:"purchasedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func NewAssetResponse(a *asset.Asset) *AssetResponse {
	out := &AssetResponse{
		ID:           a.ID().String(),
		Name:         a.Name(),
		SerialNumber: a.SerialNumber(),
		MACAddress:   a.MACAddress(),
		IPAddress:    a.IPAddress(),
		AssetType:    a.AssetType(),
		Location:     a.Location(),
		PurchasedAt:  a.PurchasedAt(),
		CreatedAt:    a.CreatedAt(),
		UpdatedAt:    a.UpdatedAt(),
	}
	if !a.PurchaseCost().IsZero() {
		out.PurchaseCost = a.PurchaseCost().String()
	}
	return out
}

type AssetListResponse struct {
	Total  int64            `json:"total"`
	Assets []*AssetResponse `json:"assets"`
}
