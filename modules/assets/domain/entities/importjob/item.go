package importjob

import (
	"time"

	"github.com/google/uuid"
)

// ItemStatus is one row's commit outcome.
type ItemStatus string

const (
	ItemCreated   ItemStatus = "created"
	ItemUpdated   ItemStatus = "updated"
	ItemDuplicate ItemStatus = "duplicate"
	ItemError     ItemStatus = "error"
)

// MatchType distinguishes identifier matches from similarity matches.
type MatchType string

const (
	MatchExact MatchType = "exact"
	MatchFuzzy MatchType = "fuzzy"
)

// DuplicateDetails records the duplicate verdict attached to an item.
// Confidence is a similarity score in [0, 1], not a probability.
type DuplicateDetails struct {
	MatchType       MatchType `json:"matchType"`
	MatchedField    string    `json:"matchedField"`
	MatchedRecordID uuid.UUID `json:"matchedRecordId"`
	Confidence      float64   `json:"confidence"`
}

// Item is the per-row audit record of a commit's outcome. Immutable once
// written; a job's items collectively are append-only.
type Item struct {
	ID           uuid.UUID
	JobID        uuid.UUID
	RowNumber    int
	ExternalID   string
	Status       ItemStatus
	SourceData   map[string]string
	ErrorMessage string
	Duplicate    *DuplicateDetails
	// AppliedUpdate marks a duplicate item whose exact match updated the
	// existing record. Feeds the job's updatedRows counter.
	AppliedUpdate bool
	CreatedAt     time.Time
}

func NewItem(jobID uuid.UUID, rowNumber int, status ItemStatus) *Item {
	return &Item{
		ID:        uuid.New(),
		JobID:     jobID,
		RowNumber: rowNumber,
		Status:    status,
		CreatedAt: time.Now(),
	}
}
