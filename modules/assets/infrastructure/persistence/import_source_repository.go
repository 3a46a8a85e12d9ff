package persistence

import (
	"context"

	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/importsource"
)

// ImportSourceRepository serves the configured sources. Reference data, so it
// lives in memory rather than the database.
type ImportSourceRepository struct {
	sources []*importsource.ImportSource
}

func NewImportSourceRepository() importsource.Repository {
	return &ImportSourceRepository{sources: importsource.BuiltInSources()}
}

func (r *ImportSourceRepository) GetAll(_ context.Context) ([]*importsource.ImportSource, error) {
	out := make([]*importsource.ImportSource, len(r.sources))
	copy(out, r.sources)
	return out, nil
}

func (r *ImportSourceRepository) GetByID(_ context.Context, id string) (*importsource.ImportSource, error) {
	for _, src := range r.sources {
		if src.ID == id {
			return src, nil
		}
	}
	return nil, importsource.ErrSourceNotFound
}
