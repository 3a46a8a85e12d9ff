package importer

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/assetdeck/assetdeck/modules/assets/domain/aggregates/asset"
	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/importjob"
	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/importsource"
	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/mapping"
	"github.com/assetdeck/assetdeck/pkg/metrics"
)

// Engine re-runs the full pipeline over the entire stored file of an
// approved job and applies one create/update/skip per row. A single row
// never aborts the job; only infrastructure faults do.
type Engine struct {
	jobs      importjob.Repository
	assets    asset.Repository
	fields    []importsource.FieldDef
	threshold float64
	workers   int
	log       *logrus.Logger
}

func NewEngine(
	jobs importjob.Repository,
	assets asset.Repository,
	fields []importsource.FieldDef,
	threshold float64,
	workers int,
	log *logrus.Logger,
) *Engine {
	if workers <= 0 {
		workers = 1
	}
	return &Engine{
		jobs:      jobs,
		assets:    assets,
		fields:    fields,
		threshold: threshold,
		workers:   workers,
		log:       log,
	}
}

// Run processes the job to a terminal state. The job must already be in
// processing status.
func (e *Engine) Run(ctx context.Context, job *importjob.Job, tpl *mapping.Template) error {
	log := e.log.WithField("job_id", job.ID().String())
	log.Info("import commit started")

	total, err := e.process(ctx, job, tpl)
	if err != nil {
		log.WithError(err).Error("import commit failed")
		metrics.ImportJobsTotal.WithLabelValues(string(importjob.StatusFailed)).Inc()
		if fErr := e.jobs.Finalize(ctx, job.ID(), importjob.StatusFailed, total, err.Error()); fErr != nil {
			log.WithError(fErr).Error("failed to finalize job")
		}
		return err
	}

	metrics.ImportJobsTotal.WithLabelValues(string(importjob.StatusCompleted)).Inc()
	if err := e.jobs.Finalize(ctx, job.ID(), importjob.StatusCompleted, total, ""); err != nil {
		log.WithError(err).Error("failed to finalize job")
		return err
	}
	log.WithField("total_rows", total).Info("import commit completed")
	return nil
}

type rowOutcome struct {
	rec     NormalizedRecord
	errs    []FieldError
	verdict *importjob.DuplicateDetails
}

func (e *Engine) process(ctx context.Context, job *importjob.Job, tpl *mapping.Template) (int, error) {
	f, err := os.Open(job.StoredPath())
	if err != nil {
		return 0, errors.Wrap(err, "opening stored file")
	}
	defer func() { _ = f.Close() }()

	tbl, err := Parse(bufio.NewReader(f), job.FileName())
	if err != nil {
		return 0, err
	}
	defer func() { _ = tbl.Close() }()

	// Snapshot of the existing-record index, taken once at commit start.
	// Rows created by this very job do not match each other.
	existing, err := e.assets.GetAll(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "loading asset index")
	}
	idx := BuildIndex(existing)
	detector := NewDetector(idx, e.threshold)

	rowsCh := make(chan *RawRow)
	outcomes := make(chan rowOutcome)

	var workerWg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		workerWg.Add(1)
		go func() {
			defer workerWg.Done()
			for row := range rowsCh {
				rec := ApplyTemplate(tpl, row)
				outcomes <- rowOutcome{
					rec:     rec,
					errs:    ValidateRecord(rec, e.fields),
					verdict: detector.Detect(rec),
				}
			}
		}()
	}
	go func() {
		workerWg.Wait()
		close(outcomes)
	}()

	// Single writer per job: target mutations and item appends are
	// serialized so processedRows always equals the number of items.
	writerDone := make(chan error, 1)
	go func() {
		writerDone <- e.writeOutcomes(ctx, job, idx, outcomes)
	}()

	total := 0
	var readErr error
	for {
		row, err := tbl.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			readErr = errors.Wrap(err, "reading row")
			break
		}
		total++
		rowsCh <- row
	}
	close(rowsCh)

	writeErr := <-writerDone
	if readErr != nil {
		return total, readErr
	}
	return total, writeErr
}

func (e *Engine) writeOutcomes(ctx context.Context, job *importjob.Job, idx *Index, outcomes <-chan rowOutcome) error {
	var firstErr error
	for o := range outcomes {
		if firstErr != nil {
			// Drain so workers can exit; no further side effects.
			continue
		}
		if err := e.applyOutcome(ctx, job, idx, o); err != nil {
			firstErr = err
		}
	}
	return firstErr
}

func (e *Engine) applyOutcome(ctx context.Context, job *importjob.Job, idx *Index, o rowOutcome) error {
	item := importjob.NewItem(job.ID(), o.rec.RowNumber, "")
	item.SourceData = o.rec.Fields
	item.ExternalID = o.rec.Fields[importsource.FieldSerialNumber]

	switch {
	case HasBlocking(o.errs):
		item.Status = importjob.ItemError
		item.ErrorMessage = joinFieldErrors(o.errs)
	case o.verdict != nil:
		item.Status = importjob.ItemDuplicate
		item.Duplicate = o.verdict
		// Only exact matches update the existing record; fuzzy matches are
		// recorded but never auto-applied.
		if o.verdict.MatchType == importjob.MatchExact {
			if existing, ok := idx.Asset(o.verdict.MatchedRecordID); ok {
				if err := e.assets.Update(ctx, applyRecord(existing, o.rec)); err != nil {
					return errors.Wrap(err, "updating existing asset")
				}
				item.AppliedUpdate = true
			}
		}
	default:
		item.Status = importjob.ItemCreated
		if _, err := e.assets.Create(ctx, assetFromRecord(o.rec)); err != nil {
			return errors.Wrap(err, "creating asset")
		}
	}

	if err := e.jobs.AppendItem(ctx, item); err != nil {
		return errors.Wrap(err, "appending job item")
	}
	metrics.ImportRowsTotal.WithLabelValues(string(item.Status)).Inc()
	return nil
}

func joinFieldErrors(errs []FieldError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return strings.Join(parts, "; ")
}

func assetFromRecord(rec NormalizedRecord) *asset.Asset {
	opts := recordOptions(rec, nil)
	return asset.New(rec.Fields[importsource.FieldName], opts...)
}

// applyRecord merges the record onto an existing asset, keeping identity and
// any attribute the record leaves blank.
func applyRecord(existing *asset.Asset, rec NormalizedRecord) *asset.Asset {
	name := strings.TrimSpace(rec.Fields[importsource.FieldName])
	if name == "" {
		name = existing.Name()
	}
	opts := recordOptions(rec, existing)
	opts = append(opts, asset.WithID(existing.ID()), asset.WithCreatedAt(existing.CreatedAt()))
	if tenantID := existing.TenantID(); tenantID != nil {
		opts = append(opts, asset.WithTenantID(*tenantID))
	}
	return asset.New(name, opts...)
}

func recordOptions(rec NormalizedRecord, existing *asset.Asset) []asset.Option {
	pick := func(field string, current string) string {
		if value := strings.TrimSpace(rec.Fields[field]); value != "" {
			return value
		}
		return current
	}

	var serial, mac, ip, assetType, location string
	if existing != nil {
		serial = existing.SerialNumber()
		mac = existing.MACAddress()
		ip = existing.IPAddress()
		assetType = existing.AssetType()
		location = existing.Location()
	}

	opts := []asset.Option{
		asset.WithSerialNumber(pick(importsource.FieldSerialNumber, serial)),
		asset.WithMACAddress(pick(importsource.FieldMACAddress, mac)),
		asset.WithIPAddress(pick(importsource.FieldIPAddress, ip)),
		asset.WithAssetType(pick(importsource.FieldAssetType, assetType)),
		asset.WithLocation(pick(importsource.FieldLocation, location)),
	}

	if raw := strings.TrimSpace(rec.Fields[importsource.FieldPurchaseCost]); raw != "" {
		if cost, err := decimal.NewFromString(raw); err == nil {
			opts = append(opts, asset.WithPurchaseCost(cost))
		}
	} else if existing != nil {
		opts = append(opts, asset.WithPurchaseCost(existing.PurchaseCost()))
	}

	if raw := strings.TrimSpace(rec.Fields[importsource.FieldPurchasedAt]); raw != "" {
		if t, ok := ParseDate(raw); ok {
			opts = append(opts, asset.WithPurchasedAt(t))
		}
	} else if existing != nil && existing.PurchasedAt() != nil {
		opts = append(opts, asset.WithPurchasedAt(*existing.PurchasedAt()))
	}

	return opts
}
