package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/assetdeck/assetdeck/modules/assets/domain/aggregates/asset"
	"github.com/assetdeck/assetdeck/modules/assets/infrastructure/persistence/models"
	"github.com/assetdeck/assetdeck/pkg/composables"
)

var ErrAssetNotFound = errors.New("asset not found")

const assetFindQuery = `
	SELECT id, tenant_id, name, serial_number, mac_address, ip_address,
		asset_type, location, purchase_cost, purchased_at, created_at, updated_at
	FROM assets`

type AssetRepository struct{}

func NewAssetRepository() asset.Repository {
	return &AssetRepository{}
}

func (r *AssetRepository) queryAssets(ctx context.Context, query string, args ...interface{}) ([]*asset.Asset, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assets := make([]*asset.Asset, 0)
	for rows.Next() {
		var m models.Asset
		if err := rows.Scan(
			&m.ID,
			&m.TenantID,
			&m.Name,
			&m.SerialNumber,
			&m.MACAddress,
			&m.IPAddress,
			&m.AssetType,
			&m.Location,
			&m.PurchaseCost,
			&m.PurchasedAt,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		entity, err := ToDomainAsset(&m)
		if err != nil {
			return nil, err
		}
		assets = append(assets, entity)
	}
	return assets, rows.Err()
}

func (r *AssetRepository) Count(ctx context.Context) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM assets").Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *AssetRepository) GetAll(ctx context.Context) ([]*asset.Asset, error) {
	return r.queryAssets(ctx, assetFindQuery+" ORDER BY created_at")
}

func (r *AssetRepository) GetByID(ctx context.Context, id uuid.UUID) (*asset.Asset, error) {
	assets, err := r.queryAssets(ctx, assetFindQuery+" WHERE id = $1", id.String())
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return nil, ErrAssetNotFound
	}
	return assets[0], nil
}

func (r *AssetRepository) GetPaginated(ctx context.Context, params *asset.FindParams) ([]*asset.Asset, error) {
	if params == nil {
		params = &asset.FindParams{}
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 25
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	return r.queryAssets(
		ctx,
		assetFindQuery+" ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		limit,
		offset,
	)
}

func (r *AssetRepository) Create(ctx context.Context, data *asset.Asset) (*asset.Asset, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	m := ToDBAsset(data)
	query := `
		INSERT INTO assets (
			id, tenant_id, name, serial_number, mac_address, ip_address,
			asset_type, location, purchase_cost, purchased_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	var idStr string
	if err := tx.QueryRow(
		ctx,
		query,
		m.ID,
		m.TenantID,
		m.Name,
		m.SerialNumber,
		m.MACAddress,
		m.IPAddress,
		m.AssetType,
		m.Location,
		m.PurchaseCost,
		m.PurchasedAt,
		m.CreatedAt,
		m.UpdatedAt,
	).Scan(&idStr); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *AssetRepository) Update(ctx context.Context, data *asset.Asset) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	m := ToDBAsset(data)
	query := `
		UPDATE assets
		SET name = $1, serial_number = $2, mac_address = $3, ip_address = $4,
			asset_type = $5, location = $6, purchase_cost = $7, purchased_at = $8,
			updated_at = now()
		WHERE id = $9
	`
	tag, err := tx.Exec(
		ctx,
		query,
		m.Name,
		m.SerialNumber,
		m.MACAddress,
		m.IPAddress,
		m.AssetType,
		m.Location,
		m.PurchaseCost,
		m.PurchasedAt,
		m.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAssetNotFound
	}
	return nil
}
