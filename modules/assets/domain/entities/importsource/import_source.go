package importsource

import (
	"context"

	"github.com/go-faster/errors"
)

var ErrSourceNotFound = errors.New("import source not found")

// Format declares how a target field's value is checked by the row validator.
type Format string

const (
	FormatNone Format = ""
	FormatDate Format = "date"
	FormatMAC  Format = "mac"
	FormatIP   Format = "ip"
)

// FieldDef describes one target field of an import source's schema.
type FieldDef struct {
	Name     string
	Label    string
	Required bool
	Format   Format
	// Blocking marks a malformed optional field as commit-blocking. Required
	// fields always block.
	Blocking bool
}

// ImportSource identifies a connector/target schema. Reference data: created
// by configuration, never mutated by the pipeline.
type ImportSource struct {
	ID          string
	Name        string
	Description string
	SourceType  string
	Fields      []FieldDef
}

// FieldDef returns the definition of the named target field.
func (s *ImportSource) FieldDef(name string) (FieldDef, bool) {
	for _, def := range s.Fields {
		if def.Name == name {
			return def, true
		}
	}
	return FieldDef{}, false
}

type Repository interface {
	GetAll(ctx context.Context) ([]*ImportSource, error)
	GetByID(ctx context.Context, id string) (*ImportSource, error)
}
