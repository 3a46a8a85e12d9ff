package importer

import (
	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/mapping"
)

// NormalizedRecord is one row after field mapping: Fields is keyed by target
// field name; RawValues keeps the unmapped columns for diagnostics only.
type NormalizedRecord struct {
	RowNumber int
	Fields    map[string]string
	RawValues map[string]string
}

// ApplyTemplate maps a raw row onto the target schema. Every column present
// in both the template and the row is copied; everything else goes to
// RawValues. Never fails: missing optional columns simply yield absent fields.
func ApplyTemplate(tpl *mapping.Template, row *RawRow) NormalizedRecord {
	rec := NormalizedRecord{
		RowNumber: row.Number,
		Fields:    make(map[string]string, len(row.Values)),
		RawValues: make(map[string]string),
	}
	for column, value := range row.Values {
		if target, ok := tpl.Target(column); ok {
			rec.Fields[target] = value
		} else {
			rec.RawValues[column] = value
		}
	}
	return rec
}
