package services

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/assetdeck/assetdeck/modules/assets/domain/aggregates/asset"
	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/importjob"
	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/importsource"
	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/mapping"
	"github.com/assetdeck/assetdeck/modules/assets/importer"
	"github.com/assetdeck/assetdeck/pkg/composables"
	"github.com/assetdeck/assetdeck/pkg/configuration"
	"github.com/assetdeck/assetdeck/pkg/eventbus"
	"github.com/assetdeck/assetdeck/pkg/metrics"
)

// PreviewParams is one preview request: a file, the source it claims to come
// from and the column mapping to apply.
type PreviewParams struct {
	ImportSourceID  string
	FileName        string
	File            io.Reader
	Mapping         []mapping.Pair
	PersistTemplate bool
}

// PreviewResult pairs the transient preview with the job created to track it.
type PreviewResult struct {
	Job     *importjob.Job
	Preview *importer.Preview
}

// ImportService orchestrates the pipeline: synchronous previews, durable
// approval, background commits.
type ImportService struct {
	sources   importsource.Repository
	mappings  mapping.Repository
	jobs      importjob.Repository
	assets    asset.Repository
	publisher eventbus.EventBus
	pool      *pgxpool.Pool
	log       *logrus.Logger

	opts        configuration.ImportOptions
	uploadsPath string

	commits sync.WaitGroup
}

func NewImportService(
	sources importsource.Repository,
	mappings mapping.Repository,
	jobs importjob.Repository,
	assets asset.Repository,
	publisher eventbus.EventBus,
	pool *pgxpool.Pool,
	log *logrus.Logger,
	opts configuration.ImportOptions,
	uploadsPath string,
) *ImportService {
	return &ImportService{
		sources:     sources,
		mappings:    mappings,
		jobs:        jobs,
		assets:      assets,
		publisher:   publisher,
		pool:        pool,
		log:         log,
		opts:        opts,
		uploadsPath: uploadsPath,
	}
}

func (s *ImportService) Sources(ctx context.Context) ([]*importsource.ImportSource, error) {
	return s.sources.GetAll(ctx)
}

func (s *ImportService) Source(ctx context.Context, id string) (*importsource.ImportSource, error) {
	return s.sources.GetByID(ctx, id)
}

// Mapping returns the persisted template for a source, or
// mapping.ErrTemplateNotFound when none has been saved yet.
func (s *ImportService) Mapping(ctx context.Context, importSourceID string) (*mapping.Template, error) {
	if _, err := s.sources.GetByID(ctx, importSourceID); err != nil {
		return nil, err
	}
	return s.mappings.Get(ctx, importSourceID)
}

func (s *ImportService) History(ctx context.Context, limit, offset int) ([]*importjob.Job, error) {
	return s.jobs.History(ctx, limit, offset)
}

func (s *ImportService) Job(ctx context.Context, id uuid.UUID) (*importjob.Job, error) {
	return s.jobs.GetByID(ctx, id)
}

func (s *ImportService) JobItems(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]*importjob.Item, error) {
	return s.jobs.Items(ctx, jobID, limit, offset)
}

// Preview runs parse -> map -> validate -> detect over the uploaded file and
// creates a job in preview status. The file is stored first so an approved job
// commits from the exact bytes the caller previewed. No target records are
// touched.
func (s *ImportService) Preview(ctx context.Context, params *PreviewParams) (*PreviewResult, error) {
	src, err := s.sources.GetByID(ctx, params.ImportSourceID)
	if err != nil {
		return nil, err
	}

	tpl, err := mapping.NewTemplate(params.Mapping)
	if err != nil {
		return nil, err
	}
	for _, pair := range tpl.Pairs() {
		if _, ok := src.FieldDef(pair.TargetField); !ok {
			return nil, errors.Wrap(mapping.ErrUnknownTarget, pair.TargetField)
		}
	}

	jobID := uuid.New()
	storedPath, err := s.storeUpload(jobID, params.FileName, params.File)
	if err != nil {
		return nil, err
	}

	preview, err := s.buildPreview(ctx, src, tpl, storedPath, params.FileName)
	if err != nil {
		_ = os.Remove(storedPath)
		return nil, err
	}
	metrics.ImportPreviewsTotal.Inc()

	job := importjob.New(
		src.ID,
		params.FileName,
		importjob.WithID(jobID),
		importjob.WithStoredPath(storedPath),
		importjob.WithMapping(tpl.Pairs()),
		importjob.WithCounts(importjob.Counts{Total: preview.Summary.TotalRows}),
	)

	// The template is persisted only after a successful preview, and the new
	// preview supersedes any older one still pending for the same source.
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		if params.PersistTemplate {
			if err := s.mappings.Save(txCtx, src.ID, tpl); err != nil {
				return err
			}
		}
		if err := s.jobs.CancelPreviews(txCtx, src.ID); err != nil {
			return err
		}
		created, err := s.jobs.Create(txCtx, job)
		if err != nil {
			return err
		}
		job = created
		return nil
	})
	if err != nil {
		_ = os.Remove(storedPath)
		return nil, err
	}

	s.publisher.Publish("importjob.previewed", job)
	return &PreviewResult{Job: job, Preview: preview}, nil
}

// Approve transitions the job to processing and launches the commit in the
// background. Idempotent: an already processing or completed job is returned
// as-is without starting a second commit.
func (s *ImportService) Approve(ctx context.Context, id uuid.UUID) (*importjob.Job, error) {
	job, won, err := s.jobs.Approve(ctx, id)
	if err != nil {
		return nil, err
	}
	if !won {
		return job, nil
	}

	src, err := s.sources.GetByID(ctx, job.ImportSourceID())
	if err != nil {
		return nil, err
	}
	tpl, err := mapping.NewTemplate(job.Mapping())
	if err != nil {
		return nil, err
	}

	engine := importer.NewEngine(s.jobs, s.assets, src.Fields, s.opts.FuzzyThreshold, s.opts.CommitWorkers, s.log)

	s.commits.Add(1)
	go func() {
		defer s.commits.Done()
		// The request context dies with the response; the commit keeps its own.
		commitCtx := composables.WithPool(context.Background(), s.pool)
		if err := engine.Run(commitCtx, job, tpl); err != nil {
			s.log.WithError(err).WithField("job_id", job.ID().String()).Error("background commit failed")
		}
		if finalized, err := s.jobs.GetByID(commitCtx, job.ID()); err == nil {
			s.publisher.Publish("importjob.finalized", finalized)
		}
	}()

	s.publisher.Publish("importjob.approved", job)
	return job, nil
}

// WaitForCommits blocks until every background commit started by this service
// has finished. Used on shutdown and in tests.
func (s *ImportService) WaitForCommits() {
	s.commits.Wait()
}

func (s *ImportService) storeUpload(jobID uuid.UUID, fileName string, file io.Reader) (string, error) {
	if err := os.MkdirAll(s.uploadsPath, 0o755); err != nil {
		return "", errors.Wrap(err, "creating uploads directory")
	}

	storedPath := filepath.Join(s.uploadsPath, jobID.String()+strings.ToLower(filepath.Ext(fileName)))
	dst, err := os.Create(storedPath)
	if err != nil {
		return "", errors.Wrap(err, "storing upload")
	}
	if _, err := io.Copy(dst, file); err != nil {
		_ = dst.Close()
		_ = os.Remove(storedPath)
		return "", errors.Wrap(err, "storing upload")
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(storedPath)
		return "", errors.Wrap(err, "storing upload")
	}
	return storedPath, nil
}

func (s *ImportService) buildPreview(
	ctx context.Context,
	src *importsource.ImportSource,
	tpl *mapping.Template,
	storedPath string,
	fileName string,
) (*importer.Preview, error) {
	f, err := os.Open(storedPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening stored upload")
	}
	defer func() { _ = f.Close() }()

	tbl, err := importer.Parse(bufio.NewReader(f), fileName)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tbl.Close() }()

	existing, err := s.assets.GetAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading asset index")
	}
	detector := importer.NewDetector(importer.BuildIndex(existing), s.opts.FuzzyThreshold)
	builder := importer.NewPreviewBuilder(src.Fields, detector, s.opts.PreviewRows, s.opts.ErrorSummaryTop)

	return builder.Build(tbl, tpl)
}
