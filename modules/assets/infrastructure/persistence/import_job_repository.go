package persistence

import (
	"context"

	"github.com/google/uuid"

	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/importjob"
	"github.com/assetdeck/assetdeck/modules/assets/infrastructure/persistence/models"
	"github.com/assetdeck/assetdeck/pkg/composables"
)

const jobFindQuery = `
	SELECT id, import_source_id, file_name, stored_path, field_mapping, status,
		total_rows, processed_rows, created_rows, updated_rows, duplicate_rows, error_rows,
		error_message, created_at, updated_at
	FROM import_jobs`

const itemFindQuery = `
	SELECT id, job_id, row_number, external_id, status, source_data, error_message,
		duplicate_match_type, duplicate_matched_field, duplicate_record_id,
		duplicate_confidence, applied_update, created_at
	FROM import_job_items`

type ImportJobRepository struct{}

func NewImportJobRepository() importjob.Repository {
	return &ImportJobRepository{}
}

func (r *ImportJobRepository) queryJobs(ctx context.Context, query string, args ...interface{}) ([]*importjob.Job, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]*importjob.Job, 0)
	for rows.Next() {
		var m models.ImportJob
		if err := rows.Scan(
			&m.ID,
			&m.ImportSourceID,
			&m.FileName,
			&m.StoredPath,
			&m.FieldMapping,
			&m.Status,
			&m.TotalRows,
			&m.ProcessedRows,
			&m.CreatedRows,
			&m.UpdatedRows,
			&m.DuplicateRows,
			&m.ErrorRows,
			&m.ErrorMessage,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		job, err := ToDomainImportJob(&m)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *ImportJobRepository) Create(ctx context.Context, job *importjob.Job) (*importjob.Job, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	m, err := ToDBImportJob(job)
	if err != nil {
		return nil, err
	}
	query := `
		INSERT INTO import_jobs (
			id, import_source_id, file_name, stored_path, field_mapping, status,
			total_rows, processed_rows, created_rows, updated_rows, duplicate_rows, error_rows,
			error_message, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	if _, err := tx.Exec(
		ctx,
		query,
		m.ID,
		m.ImportSourceID,
		m.FileName,
		m.StoredPath,
		m.FieldMapping,
		m.Status,
		m.TotalRows,
		m.ProcessedRows,
		m.CreatedRows,
		m.UpdatedRows,
		m.DuplicateRows,
		m.ErrorRows,
		m.ErrorMessage,
		m.CreatedAt,
		m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, job.ID())
}

func (r *ImportJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*importjob.Job, error) {
	jobs, err := r.queryJobs(ctx, jobFindQuery+" WHERE id = $1", id.String())
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, importjob.ErrJobNotFound
	}
	return jobs[0], nil
}

func (r *ImportJobRepository) History(ctx context.Context, limit, offset int) ([]*importjob.Job, error) {
	if limit <= 0 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}
	return r.queryJobs(
		ctx,
		jobFindQuery+" ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		limit,
		offset,
	)
}

func (r *ImportJobRepository) CancelPreviews(ctx context.Context, importSourceID string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		ctx,
		`UPDATE import_jobs SET status = 'cancelled', updated_at = now()
		 WHERE import_source_id = $1 AND status = 'preview'`,
		importSourceID,
	)
	return err
}

// Approve performs the preview -> processing transition with a conditional
// UPDATE, so concurrent approvals race on the database row and exactly one
// caller wins.
func (r *ImportJobRepository) Approve(ctx context.Context, id uuid.UUID) (*importjob.Job, bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, false, err
	}

	tag, err := tx.Exec(
		ctx,
		`UPDATE import_jobs SET status = 'processing', updated_at = now()
		 WHERE id = $1 AND status = 'preview'`,
		id.String(),
	)
	if err != nil {
		return nil, false, err
	}

	job, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if tag.RowsAffected() == 1 {
		return job, true, nil
	}

	// Lost the race or approved out of order. Re-approving a job already in
	// flight or finished is a no-op; anything else is a bad transition.
	switch job.Status() {
	case importjob.StatusProcessing, importjob.StatusCompleted:
		return job, false, nil
	default:
		return nil, false, importjob.ErrInvalidTransition
	}
}

// AppendItem inserts the item and bumps the job counters in one transaction.
// processed_rows always equals the number of items of the job.
func (r *ImportJobRepository) AppendItem(ctx context.Context, item *importjob.Item) error {
	return composables.InTx(ctx, func(txCtx context.Context) error {
		tx, err := composables.UseTx(txCtx)
		if err != nil {
			return err
		}

		m, err := ToDBImportJobItem(item)
		if err != nil {
			return err
		}
		query := `
			INSERT INTO import_job_items (
				id, job_id, row_number, external_id, status, source_data, error_message,
				duplicate_match_type, duplicate_matched_field, duplicate_record_id,
				duplicate_confidence, applied_update, created_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`
		if _, err := tx.Exec(
			ctx,
			query,
			m.ID,
			m.JobID,
			m.RowNumber,
			m.ExternalID,
			m.Status,
			m.SourceData,
			m.ErrorMessage,
			m.DuplicateMatchType,
			m.DuplicateMatchedField,
			m.DuplicateRecordID,
			m.DuplicateConfidence,
			m.AppliedUpdate,
			m.CreatedAt,
		); err != nil {
			return err
		}

		counter := counterColumn(item.Status)
		update := `UPDATE import_jobs SET processed_rows = processed_rows + 1, ` +
			counter + ` = ` + counter + ` + 1`
		if item.AppliedUpdate {
			update += `, updated_rows = updated_rows + 1`
		}
		update += `, updated_at = now() WHERE id = $1`

		tag, err := tx.Exec(ctx, update, m.JobID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return importjob.ErrJobNotFound
		}
		return nil
	})
}

func counterColumn(status importjob.ItemStatus) string {
	switch status {
	case importjob.ItemCreated:
		return "created_rows"
	case importjob.ItemUpdated:
		return "updated_rows"
	case importjob.ItemDuplicate:
		return "duplicate_rows"
	default:
		return "error_rows"
	}
}

func (r *ImportJobRepository) Items(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]*importjob.Item, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := tx.Query(
		ctx,
		itemFindQuery+" WHERE job_id = $1 ORDER BY row_number LIMIT $2 OFFSET $3",
		jobID.String(),
		limit,
		offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*importjob.Item, 0)
	for rows.Next() {
		var m models.ImportJobItem
		if err := rows.Scan(
			&m.ID,
			&m.JobID,
			&m.RowNumber,
			&m.ExternalID,
			&m.Status,
			&m.SourceData,
			&m.ErrorMessage,
			&m.DuplicateMatchType,
			&m.DuplicateMatchedField,
			&m.DuplicateRecordID,
			&m.DuplicateConfidence,
			&m.AppliedUpdate,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}
		item, err := ToDomainImportJobItem(&m)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *ImportJobRepository) Finalize(ctx context.Context, id uuid.UUID, status importjob.Status, total int, errorMessage string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(
		ctx,
		`UPDATE import_jobs
		 SET status = $2, total_rows = $3, error_message = NULLIF($4, ''), updated_at = now()
		 WHERE id = $1 AND status = 'processing'`,
		id.String(),
		string(status),
		total,
		errorMessage,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return importjob.ErrInvalidTransition
	}
	return nil
}
