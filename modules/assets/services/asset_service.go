package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/assetdeck/assetdeck/modules/assets/domain/aggregates/asset"
	"github.com/assetdeck/assetdeck/pkg/eventbus"
)

type AssetService struct {
	repo      asset.Repository
	publisher eventbus.EventBus
}

func NewAssetService(repo asset.Repository, publisher eventbus.EventBus) *AssetService {
	return &AssetService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *AssetService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *AssetService) GetAll(ctx context.Context) ([]*asset.Asset, error) {
	return s.repo.GetAll(ctx)
}

func (s *AssetService) GetByID(ctx context.Context, id uuid.UUID) (*asset.Asset, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AssetService) GetPaginated(
	ctx context.Context, params *asset.FindParams,
) ([]*asset.Asset, error) {
	return s.repo.GetPaginated(ctx, params)
}

func (s *AssetService) Create(ctx context.Context, data *asset.Asset) (*asset.Asset, error) {
	created, err := s.repo.Create(ctx, data)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish("asset.created", created)
	return created, nil
}

func (s *AssetService) Update(ctx context.Context, data *asset.Asset) error {
	if err := s.repo.Update(ctx, data); err != nil {
		return err
	}
	s.publisher.Publish("asset.updated", data)
	return nil
}
