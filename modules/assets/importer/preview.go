package importer

import (
	"io"
	"sort"

	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/importjob"
	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/importsource"
	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/mapping"
)

// PreviewRow is one row's mapped values plus its validation and duplicate
// findings.
type PreviewRow struct {
	RowNumber        int                         `json:"rowNumber"`
	Values           map[string]string           `json:"values"`
	ValidationErrors []FieldError                `json:"validationErrors,omitempty"`
	Duplicate        *importjob.DuplicateDetails `json:"duplicate,omitempty"`
}

// Summary counts cover the whole file. Every row is counted exactly once:
// blocking errors first, then duplicates, then valid.
type Summary struct {
	TotalRows     int `json:"totalRows"`
	ValidRows     int `json:"validRows"`
	DuplicateRows int `json:"duplicateRows"`
	ErrorRows     int `json:"errorRows"`
}

// ErrorSummaryEntry aggregates one (field, message) pair across the file.
type ErrorSummaryEntry struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// Preview is the transient projection returned before commit. Never
// persisted beyond the owning job's summary counts.
type Preview struct {
	Rows           []PreviewRow        `json:"rows"`
	Summary        Summary             `json:"summary"`
	ColumnExamples map[string]string   `json:"columnExamples"`
	ErrorSummary   []ErrorSummaryEntry `json:"errorSummary"`
}

type PreviewBuilder struct {
	fields   []importsource.FieldDef
	detector *Detector
	maxRows  int
	topN     int
}

func NewPreviewBuilder(fields []importsource.FieldDef, detector *Detector, maxRows, topN int) *PreviewBuilder {
	return &PreviewBuilder{
		fields:   fields,
		detector: detector,
		maxRows:  maxRows,
		topN:     topN,
	}
}

// Build runs parse -> map -> validate -> detect over every row, capping the
// returned row detail at maxRows while counting the full file. Read-only: no
// persistent state is touched.
func (b *PreviewBuilder) Build(tbl *Table, tpl *mapping.Template) (*Preview, error) {
	preview := &Preview{
		Rows:           []PreviewRow{},
		ColumnExamples: map[string]string{},
	}
	errorCounts := map[ErrorSummaryEntry]int{}

	for {
		row, err := tbl.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		for column, value := range row.Values {
			if value != "" {
				if _, ok := preview.ColumnExamples[column]; !ok {
					preview.ColumnExamples[column] = value
				}
			}
		}

		rec := ApplyTemplate(tpl, row)
		errs := ValidateRecord(rec, b.fields)
		verdict := b.detector.Detect(rec)

		preview.Summary.TotalRows++
		switch {
		case HasBlocking(errs):
			preview.Summary.ErrorRows++
		case verdict != nil:
			preview.Summary.DuplicateRows++
		default:
			preview.Summary.ValidRows++
		}

		for _, e := range errs {
			errorCounts[ErrorSummaryEntry{Field: e.Field, Message: e.Message}]++
		}

		if len(preview.Rows) < b.maxRows {
			preview.Rows = append(preview.Rows, PreviewRow{
				RowNumber:        row.Number,
				Values:           rec.Fields,
				ValidationErrors: errs,
				Duplicate:        verdict,
			})
		}
	}

	if preview.Summary.TotalRows == 0 {
		return nil, ErrEmptyFile
	}

	preview.ErrorSummary = topErrors(errorCounts, b.topN)
	return preview, nil
}

// topErrors keeps the most frequent (field, message) pairs to bound the
// response size regardless of file length.
func topErrors(counts map[ErrorSummaryEntry]int, n int) []ErrorSummaryEntry {
	entries := make([]ErrorSummaryEntry, 0, len(counts))
	for entry, count := range counts {
		entry.Count = count
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		if entries[i].Field != entries[j].Field {
			return entries[i].Field < entries[j].Field
		}
		return entries[i].Message < entries[j].Message
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
