package services

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/assetdeck/assetdeck/modules/assets/domain/aggregates/asset"
	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/importjob"
	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/importsource"
	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/mapping"
	"github.com/assetdeck/assetdeck/modules/assets/importer"
	"github.com/assetdeck/assetdeck/modules/assets/infrastructure/persistence"
	"github.com/assetdeck/assetdeck/pkg/composables"
	"github.com/assetdeck/assetdeck/pkg/configuration"
	"github.com/assetdeck/assetdeck/pkg/eventbus"
)

type serviceFixture struct {
	service  *ImportService
	jobs     *fakeJobRepo
	assets   *fakeAssetRepo
	mappings *fakeMappingRepo
	ctx      context.Context
}

func newServiceFixture(t *testing.T, existing ...*asset.Asset) *serviceFixture {
	t.Helper()

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.PanicLevel)

	jobs := newFakeJobRepo()
	assets := newFakeAssetRepo(existing...)
	mappings := newFakeMappingRepo()

	service := NewImportService(
		persistence.NewImportSourceRepository(),
		mappings,
		jobs,
		assets,
		eventbus.NewEventPublisher(log),
		nil,
		log,
		configuration.ImportOptions{
			PreviewRows:     10,
			ErrorSummaryTop: 5,
			FuzzyThreshold:  0.85,
			CommitWorkers:   2,
		},
		t.TempDir(),
	)

	return &serviceFixture{
		service:  service,
		jobs:     jobs,
		assets:   assets,
		mappings: mappings,
		ctx:      composables.WithTx(context.Background(), noopTx{}),
	}
}

func defaultPairs() []mapping.Pair {
	return []mapping.Pair{
		{SourceField: "Device", TargetField: "name"},
		{SourceField: "Serial", TargetField: "serial_number"},
		{SourceField: "Location", TargetField: "location"},
	}
}

func previewParams(csv string) *PreviewParams {
	return &PreviewParams{
		ImportSourceID: "generic-csv",
		FileName:       "export.csv",
		File:           strings.NewReader(csv),
		Mapping:        defaultPairs(),
	}
}

const scenarioCSV = "Device,Serial,Location\n" +
	"new-1,SN-2,Berlin\n" +
	"new-2,SN-3,Berlin\n" +
	"old-box,SN-1,Munich\n"

func TestPreviewCreatesJob(t *testing.T) {
	f := newServiceFixture(t, asset.New("old-box", asset.WithSerialNumber("SN-1")))

	result, err := f.service.Preview(f.ctx, previewParams(scenarioCSV))
	require.NoError(t, err)

	job := result.Job
	require.Equal(t, importjob.StatusPreview, job.Status())
	require.Equal(t, 3, job.Counts().Total)
	require.Equal(t, defaultPairs(), job.Mapping())

	// The upload is stored so approve commits the previewed bytes.
	_, statErr := os.Stat(job.StoredPath())
	require.NoError(t, statErr)

	require.Equal(t, 3, result.Preview.Summary.TotalRows)
	require.Equal(t, 2, result.Preview.Summary.ValidRows)
	require.Equal(t, 1, result.Preview.Summary.DuplicateRows)
	require.Len(t, result.Preview.Rows, 3)
}

func TestPreviewSupersedesPriorPreview(t *testing.T) {
	f := newServiceFixture(t)

	first, err := f.service.Preview(f.ctx, previewParams(scenarioCSV))
	require.NoError(t, err)
	second, err := f.service.Preview(f.ctx, previewParams(scenarioCSV))
	require.NoError(t, err)

	stale, err := f.jobs.GetByID(f.ctx, first.Job.ID())
	require.NoError(t, err)
	require.Equal(t, importjob.StatusCancelled, stale.Status())

	fresh, err := f.jobs.GetByID(f.ctx, second.Job.ID())
	require.NoError(t, err)
	require.Equal(t, importjob.StatusPreview, fresh.Status())
}

func TestPreviewPersistsTemplateOnlyWhenAsked(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Preview(f.ctx, previewParams(scenarioCSV))
	require.NoError(t, err)
	_, err = f.service.Mapping(f.ctx, "generic-csv")
	require.ErrorIs(t, err, mapping.ErrTemplateNotFound)

	params := previewParams(scenarioCSV)
	params.PersistTemplate = true
	_, err = f.service.Preview(f.ctx, params)
	require.NoError(t, err)

	tpl, err := f.service.Mapping(f.ctx, "generic-csv")
	require.NoError(t, err)
	require.Equal(t, defaultPairs(), tpl.Pairs())
}

func TestPreviewEmptyFile(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Preview(f.ctx, previewParams("Device,Serial,Location\n"))
	require.ErrorIs(t, err, importer.ErrEmptyFile)

	history, err := f.service.History(f.ctx, 10, 0)
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestPreviewUnknownSource(t *testing.T) {
	f := newServiceFixture(t)

	params := previewParams(scenarioCSV)
	params.ImportSourceID = "no-such-source"
	_, err := f.service.Preview(f.ctx, params)
	require.ErrorIs(t, err, importsource.ErrSourceNotFound)
}

func TestPreviewRejectsBadMapping(t *testing.T) {
	f := newServiceFixture(t)

	params := previewParams(scenarioCSV)
	params.Mapping = []mapping.Pair{
		{SourceField: "Device", TargetField: "name"},
		{SourceField: "Hostname", TargetField: "name"},
	}
	_, err := f.service.Preview(f.ctx, params)
	require.ErrorIs(t, err, mapping.ErrDuplicateTarget)

	params = previewParams(scenarioCSV)
	params.Mapping = []mapping.Pair{{SourceField: "Device", TargetField: "warranty"}}
	_, err = f.service.Preview(f.ctx, params)
	require.ErrorIs(t, err, mapping.ErrUnknownTarget)
}

func TestApproveRunsCommit(t *testing.T) {
	existing := asset.New("old-box", asset.WithSerialNumber("SN-1"), asset.WithLocation("Hamburg"))
	f := newServiceFixture(t, existing)

	result, err := f.service.Preview(f.ctx, previewParams(scenarioCSV))
	require.NoError(t, err)

	approved, err := f.service.Approve(f.ctx, result.Job.ID())
	require.NoError(t, err)
	require.Equal(t, importjob.StatusProcessing, approved.Status())
	require.Equal(t, result.Job.ID(), approved.ID())

	f.service.WaitForCommits()

	final, err := f.service.Job(f.ctx, result.Job.ID())
	require.NoError(t, err)
	require.Equal(t, importjob.StatusCompleted, final.Status())

	counts := final.Counts()
	require.Equal(t, 3, counts.Total)
	require.Equal(t, 3, counts.Processed)
	require.Equal(t, 2, counts.Created)
	require.Equal(t, 1, counts.Duplicate)
	require.Equal(t, 1, counts.Updated)

	items, err := f.service.JobItems(f.ctx, result.Job.ID(), 10, 0)
	require.NoError(t, err)
	require.Len(t, items, counts.Processed)

	updated, err := f.assets.GetByID(f.ctx, existing.ID())
	require.NoError(t, err)
	require.Equal(t, "Munich", updated.Location())

	total, err := f.assets.Count(f.ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
}

func TestApproveIdempotent(t *testing.T) {
	f := newServiceFixture(t)

	result, err := f.service.Preview(f.ctx, previewParams(scenarioCSV))
	require.NoError(t, err)

	_, err = f.service.Approve(f.ctx, result.Job.ID())
	require.NoError(t, err)
	f.service.WaitForCommits()

	// Second approval is a no-op reporting the current state.
	again, err := f.service.Approve(f.ctx, result.Job.ID())
	require.NoError(t, err)
	require.Equal(t, importjob.StatusCompleted, again.Status())
	f.service.WaitForCommits()

	items, err := f.service.JobItems(f.ctx, result.Job.ID(), 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 3)
}

func TestApproveConcurrentSingleWinner(t *testing.T) {
	f := newServiceFixture(t)

	result, err := f.service.Preview(f.ctx, previewParams(scenarioCSV))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.Approve(f.ctx, result.Job.ID())
		}(i)
	}
	wg.Wait()
	f.service.WaitForCommits()

	for _, err := range errs {
		require.NoError(t, err)
	}

	// Exactly one commit ran: each row produced exactly one item.
	items, err := f.service.JobItems(f.ctx, result.Job.ID(), 100, 0)
	require.NoError(t, err)
	require.Len(t, items, 3)

	final, err := f.service.Job(f.ctx, result.Job.ID())
	require.NoError(t, err)
	require.Equal(t, importjob.StatusCompleted, final.Status())
	require.Equal(t, 3, final.Counts().Processed)
}

func TestApproveCancelledJob(t *testing.T) {
	f := newServiceFixture(t)

	first, err := f.service.Preview(f.ctx, previewParams(scenarioCSV))
	require.NoError(t, err)
	_, err = f.service.Preview(f.ctx, previewParams(scenarioCSV))
	require.NoError(t, err)

	// The first preview was superseded; approving it is a state error.
	_, err = f.service.Approve(f.ctx, first.Job.ID())
	require.ErrorIs(t, err, importjob.ErrInvalidTransition)
}

func TestApproveUnknownJob(t *testing.T) {
	f := newServiceFixture(t)

	result, err := f.service.Preview(f.ctx, previewParams(scenarioCSV))
	require.NoError(t, err)

	bogus := result.Job.ID()
	bogus[0] ^= 0xff
	_, err = f.service.Approve(f.ctx, bogus)
	require.ErrorIs(t, err, importjob.ErrJobNotFound)
}

func TestSourcesListsBuiltIns(t *testing.T) {
	f := newServiceFixture(t)

	sources, err := f.service.Sources(f.ctx)
	require.NoError(t, err)
	require.NotEmpty(t, sources)

	src, err := f.service.Source(f.ctx, "generic-csv")
	require.NoError(t, err)
	require.Equal(t, "generic-csv", src.ID)

	def, ok := src.FieldDef("name")
	require.True(t, ok)
	require.True(t, def.Required)
}
