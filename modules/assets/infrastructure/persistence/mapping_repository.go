package persistence

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/mapping"
	"github.com/assetdeck/assetdeck/pkg/composables"
)

// FieldMappingRepository keeps one template per (import source, tenant scope).
// The unscoped template is stored under the nil uuid so the uniqueness
// constraint stays simple.
type FieldMappingRepository struct{}

func NewFieldMappingRepository() mapping.Repository {
	return &FieldMappingRepository{}
}

func scopeID(ctx context.Context) string {
	if tenantID, ok := composables.UseTenantID(ctx); ok {
		return tenantID.String()
	}
	return uuid.Nil.String()
}

func (r *FieldMappingRepository) Get(ctx context.Context, importSourceID string) (*mapping.Template, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var raw []byte
	err = tx.QueryRow(
		ctx,
		`SELECT mapping FROM field_mapping_templates
		 WHERE import_source_id = $1 AND tenant_id = $2`,
		importSourceID,
		scopeID(ctx),
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, mapping.ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}

	var pairs []mapping.Pair
	if err := json.Unmarshal(raw, &pairs); err != nil {
		return nil, errors.Wrap(err, "decoding mapping template")
	}
	return mapping.NewTemplate(pairs)
}

func (r *FieldMappingRepository) Save(ctx context.Context, importSourceID string, tpl *mapping.Template) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(tpl.Pairs())
	if err != nil {
		return errors.Wrap(err, "encoding mapping template")
	}

	_, err = tx.Exec(
		ctx,
		`INSERT INTO field_mapping_templates (import_source_id, tenant_id, mapping, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (import_source_id, tenant_id)
		 DO UPDATE SET mapping = EXCLUDED.mapping, updated_at = now()`,
		importSourceID,
		scopeID(ctx),
		raw,
	)
	return err
}
