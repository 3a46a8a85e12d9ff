package asset

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Asset is one tracked inventory record, the target entity of the import
// pipeline. Serial number is the primary unique identifier; MAC address is
// the secondary one.
type Asset struct {
	id           uuid.UUID
	tenantID     *uuid.UUID
	name         string
	serialNumber string
	macAddress   string
	ipAddress    string
	assetType    string
	location     string
	purchaseCost decimal.Decimal
	purchasedAt  *time.Time
	createdAt    time.Time
	updatedAt    time.Time
}

type Option func(*Asset)

func WithID(id uuid.UUID) Option {
	return func(a *Asset) {
		a.id = id
	}
}

func WithTenantID(id uuid.UUID) Option {
	return func(a *Asset) {
		a.tenantID = &id
	}
}

func WithSerialNumber(serial string) Option {
	return func(a *Asset) {
		a.serialNumber = serial
	}
}

func WithMACAddress(mac string) Option {
	return func(a *Asset) {
		a.macAddress = mac
	}
}

func WithIPAddress(ip string) Option {
	return func(a *Asset) {
		a.ipAddress = ip
	}
}

func WithAssetType(assetType string) Option {
	return func(a *Asset) {
		a.assetType = assetType
	}
}

func WithLocation(location string) Option {
	return func(a *Asset) {
		a.location = location
	}
}

func WithPurchaseCost(cost decimal.Decimal) Option {
	return func(a *Asset) {
		a.purchaseCost = cost
	}
}

func WithPurchasedAt(t time.Time) Option {
	return func(a *Asset) {
		a.purchasedAt = &t
	}
}

func WithCreatedAt(t time.Time) Option {
	return func(a *Asset) {
		a.createdAt = t
	}
}

func WithUpdatedAt(t time.Time) Option {
	return func(a *Asset) {
		a.updatedAt = t
	}
}

func New(name string, opts ...Option) *Asset {
	now := time.Now()
	a := &Asset{
		id:        uuid.New(),
		name:      name,
		createdAt: now,
		updatedAt: now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Asset) ID() uuid.UUID { return a.id }

func (a *Asset) TenantID() *uuid.UUID { return a.tenantID }

func (a *Asset) Name() string { return a.name }

func (a *Asset) SerialNumber() string { return a.serialNumber }

func (a *Asset) MACAddress() string { return a.macAddress }

func (a *Asset) IPAddress() string { return a.ipAddress }

func (a *Asset) AssetType() string { return a.assetType }

func (a *Asset) Location() string { return a.location }

func (a *Asset) PurchaseCost() decimal.Decimal { return a.purchaseCost }

func (a *Asset) PurchasedAt() *time.Time { return a.purchasedAt }

func (a *Asset) CreatedAt() time.Time { return a.createdAt }

func (a *Asset) UpdatedAt() time.Time { return a.updatedAt }
