package composables

import (
	"context"

	"github.com/google/uuid"

	"github.com/assetdeck/assetdeck/pkg/constants"
)

// WithTenantID scopes the context to a tenant. The import pipeline itself is
// tenant-agnostic; only the field mapping store uses the scope when present.
func WithTenantID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, constants.TenantIDKey, id)
}

func UseTenantID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(constants.TenantIDKey).(uuid.UUID)
	return id, ok
}
