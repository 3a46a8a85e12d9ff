package importjob

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/mapping"
)

var (
	ErrJobNotFound       = errors.New("import job not found")
	ErrInvalidTransition = errors.New("invalid import job status transition")
)

// Status is the finite state of an import job.
//
//	preview -> processing -> completed
//	preview -> cancelled
//	processing -> failed
type Status string

const (
	StatusPreview    Status = "preview"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPreview:
		return next == StatusProcessing || next == StatusCancelled
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	default:
		return false
	}
}

// Counts are the per-outcome row counters of a job. Processed equals the
// number of persisted items at all times.
type Counts struct {
	Total     int
	Processed int
	Created   int
	Updated   int
	Duplicate int
	Error     int
}

// Job is the persistent unit of work tracking one file's pipeline run from
// preview through completion. Owned exclusively by the job store.
type Job struct {
	id             uuid.UUID
	importSourceID string
	fileName       string
	storedPath     string
	mapping        []mapping.Pair
	status         Status
	counts         Counts
	errorMessage   string
	createdAt      time.Time
	updatedAt      time.Time
}

type Option func(*Job)

func WithID(id uuid.UUID) Option {
	return func(j *Job) {
		j.id = id
	}
}

func WithStatus(status Status) Option {
	return func(j *Job) {
		j.status = status
	}
}

func WithStoredPath(path string) Option {
	return func(j *Job) {
		j.storedPath = path
	}
}

// WithMapping snapshots the field mapping the preview ran with, so approve
// commits with exactly the mapping the caller saw, persisted template or not.
func WithMapping(pairs []mapping.Pair) Option {
	return func(j *Job) {
		j.mapping = pairs
	}
}

func WithCounts(counts Counts) Option {
	return func(j *Job) {
		j.counts = counts
	}
}

func WithErrorMessage(message string) Option {
	return func(j *Job) {
		j.errorMessage = message
	}
}

func WithCreatedAt(t time.Time) Option {
	return func(j *Job) {
		j.createdAt = t
	}
}

func WithUpdatedAt(t time.Time) Option {
	return func(j *Job) {
		j.updatedAt = t
	}
}

func New(importSourceID, fileName string, opts ...Option) *Job {
	now := time.Now()
	j := &Job{
		id:             uuid.New(),
		importSourceID: importSourceID,
		fileName:       fileName,
		status:         StatusPreview,
		createdAt:      now,
		updatedAt:      now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *Job) ID() uuid.UUID { return j.id }

func (j *Job) ImportSourceID() string { return j.importSourceID }

func (j *Job) FileName() string { return j.fileName }

func (j *Job) StoredPath() string { return j.storedPath }

func (j *Job) Mapping() []mapping.Pair { return j.mapping }

func (j *Job) Status() Status { return j.status }

func (j *Job) Counts() Counts { return j.counts }

func (j *Job) ErrorMessage() string { return j.errorMessage }

func (j *Job) CreatedAt() time.Time { return j.createdAt }

func (j *Job) UpdatedAt() time.Time { return j.updatedAt }
