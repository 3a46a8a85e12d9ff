package services

import (
	"context"
	"sort"
	"sync"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/assetdeck/assetdeck/modules/assets/domain/aggregates/asset"
	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/importjob"
	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/mapping"
)

// noopTx satisfies pgx.Tx so composables.InTx passes through to the fakes
// without a database.
type noopTx struct{}

func (noopTx) Begin(context.Context) (pgx.Tx, error) { return noopTx{}, nil }

func (noopTx) Commit(context.Context) error { return nil }

func (noopTx) Rollback(context.Context) error { return nil }

func (noopTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (noopTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }

func (noopTx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (noopTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (noopTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (noopTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }

func (noopTx) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func (noopTx) Conn() *pgx.Conn { return nil }

type fakeAssetRepo struct {
	mu     sync.Mutex
	assets map[uuid.UUID]*asset.Asset
}

func newFakeAssetRepo(existing ...*asset.Asset) *fakeAssetRepo {
	r := &fakeAssetRepo{assets: map[uuid.UUID]*asset.Asset{}}
	for _, a := range existing {
		r.assets[a.ID()] = a
	}
	return r
}

func (r *fakeAssetRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.assets)), nil
}

func (r *fakeAssetRepo) GetAll(_ context.Context) ([]*asset.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*asset.Asset, 0, len(r.assets))
	for _, a := range r.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

func (r *fakeAssetRepo) GetByID(_ context.Context, id uuid.UUID) (*asset.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assets[id]
	if !ok {
		return nil, errors.New("asset not found")
	}
	return a, nil
}

func (r *fakeAssetRepo) GetPaginated(ctx context.Context, _ *asset.FindParams) ([]*asset.Asset, error) {
	return r.GetAll(ctx)
}

func (r *fakeAssetRepo) Create(_ context.Context, data *asset.Asset) (*asset.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assets[data.ID()] = data
	return data, nil
}

func (r *fakeAssetRepo) Update(_ context.Context, data *asset.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assets[data.ID()]; !ok {
		return errors.New("asset not found")
	}
	r.assets[data.ID()] = data
	return nil
}

type jobState struct {
	job    *importjob.Job
	status importjob.Status
	counts importjob.Counts
	errMsg string
}

type fakeJobRepo struct {
	mu    sync.Mutex
	jobs  map[uuid.UUID]*jobState
	items map[uuid.UUID][]*importjob.Item
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{
		jobs:  map[uuid.UUID]*jobState{},
		items: map[uuid.UUID][]*importjob.Item{},
	}
}

func (r *fakeJobRepo) materialize(s *jobState) *importjob.Job {
	return importjob.New(
		s.job.ImportSourceID(),
		s.job.FileName(),
		importjob.WithID(s.job.ID()),
		importjob.WithStoredPath(s.job.StoredPath()),
		importjob.WithMapping(s.job.Mapping()),
		importjob.WithStatus(s.status),
		importjob.WithCounts(s.counts),
		importjob.WithErrorMessage(s.errMsg),
		importjob.WithCreatedAt(s.job.CreatedAt()),
	)
}

func (r *fakeJobRepo) Create(_ context.Context, job *importjob.Job) (*importjob.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID()] = &jobState{job: job, status: job.Status(), counts: job.Counts()}
	return job, nil
}

func (r *fakeJobRepo) GetByID(_ context.Context, id uuid.UUID) (*importjob.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.jobs[id]
	if !ok {
		return nil, importjob.ErrJobNotFound
	}
	return r.materialize(s), nil
}

func (r *fakeJobRepo) History(_ context.Context, limit, offset int) ([]*importjob.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*importjob.Job, 0, len(r.jobs))
	for _, s := range r.jobs {
		out = append(out, r.materialize(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeJobRepo) CancelPreviews(_ context.Context, importSourceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.jobs {
		if s.job.ImportSourceID() == importSourceID && s.status == importjob.StatusPreview {
			s.status = importjob.StatusCancelled
		}
	}
	return nil
}

func (r *fakeJobRepo) Approve(_ context.Context, id uuid.UUID) (*importjob.Job, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.jobs[id]
	if !ok {
		return nil, false, importjob.ErrJobNotFound
	}
	switch s.status {
	case importjob.StatusPreview:
		s.status = importjob.StatusProcessing
		return r.materialize(s), true, nil
	case importjob.StatusProcessing, importjob.StatusCompleted:
		return r.materialize(s), false, nil
	default:
		return nil, false, importjob.ErrInvalidTransition
	}
}

func (r *fakeJobRepo) AppendItem(_ context.Context, item *importjob.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.jobs[item.JobID]
	if !ok {
		return importjob.ErrJobNotFound
	}
	r.items[item.JobID] = append(r.items[item.JobID], item)
	s.counts.Processed++
	switch item.Status {
	case importjob.ItemCreated:
		s.counts.Created++
	case importjob.ItemUpdated:
		s.counts.Updated++
	case importjob.ItemDuplicate:
		s.counts.Duplicate++
	case importjob.ItemError:
		s.counts.Error++
	}
	if item.AppliedUpdate {
		s.counts.Updated++
	}
	return nil
}

func (r *fakeJobRepo) Items(_ context.Context, jobID uuid.UUID, limit, offset int) ([]*importjob.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := append([]*importjob.Item(nil), r.items[jobID]...)
	sort.Slice(items, func(i, j int) bool { return items[i].RowNumber < items[j].RowNumber })
	if offset >= len(items) {
		return nil, nil
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (r *fakeJobRepo) Finalize(_ context.Context, id uuid.UUID, status importjob.Status, total int, errorMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.jobs[id]
	if !ok {
		return importjob.ErrJobNotFound
	}
	if s.status != importjob.StatusProcessing {
		return importjob.ErrInvalidTransition
	}
	s.status = status
	s.counts.Total = total
	s.errMsg = errorMessage
	return nil
}

type fakeMappingRepo struct {
	mu        sync.Mutex
	templates map[string][]mapping.Pair
}

func newFakeMappingRepo() *fakeMappingRepo {
	return &fakeMappingRepo{templates: map[string][]mapping.Pair{}}
}

func (r *fakeMappingRepo) Get(_ context.Context, importSourceID string) (*mapping.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pairs, ok := r.templates[importSourceID]
	if !ok {
		return nil, mapping.ErrTemplateNotFound
	}
	return mapping.NewTemplate(pairs)
}

func (r *fakeMappingRepo) Save(_ context.Context, importSourceID string, tpl *mapping.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[importSourceID] = tpl.Pairs()
	return nil
}
