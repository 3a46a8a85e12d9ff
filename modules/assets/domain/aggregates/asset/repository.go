package asset

import (
	"context"

	"github.com/google/uuid"
)

type FindParams struct {
	Limit  int
	Offset int
}

type Repository interface {
	Count(ctx context.Context) (int64, error)
	GetAll(ctx context.Context) ([]*Asset, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Asset, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]*Asset, error)
	Create(ctx context.Context, data *Asset) (*Asset, error)
	Update(ctx context.Context, data *Asset) error
}
