package importjob

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, job *Job) (*Job, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Job, error)
	// History returns jobs newest first.
	History(ctx context.Context, limit, offset int) ([]*Job, error)
	// CancelPreviews transitions every job of the source still in preview to
	// cancelled. Called when a new preview supersedes the old one.
	CancelPreviews(ctx context.Context, importSourceID string) error
	// Approve performs the preview -> processing transition. The boolean
	// reports whether this call won the transition; callers observing an
	// already processing/completed job treat the approval as an idempotent
	// no-op. Approving a cancelled or failed job returns
	// ErrInvalidTransition.
	Approve(ctx context.Context, id uuid.UUID) (*Job, bool, error)
	// AppendItem persists the item and increments the matching job counter
	// atomically, preserving processedRows == len(items).
	AppendItem(ctx context.Context, item *Item) error
	Items(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]*Item, error)
	// Finalize sets the terminal status. Total is the row count of the whole
	// file; outcome counters were already accumulated by AppendItem.
	Finalize(ctx context.Context, id uuid.UUID, status Status, total int, errorMessage string) error
}
