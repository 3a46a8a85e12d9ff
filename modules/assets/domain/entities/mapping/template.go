package mapping

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
)

var (
	ErrEmptyField       = errors.New("mapping pair has an empty field name")
	ErrDuplicateSource  = errors.New("source column mapped more than once")
	ErrDuplicateTarget  = errors.New("target field mapped more than once")
	ErrUnknownTarget    = errors.New("target field not in source schema")
	ErrTemplateNotFound = errors.New("field mapping template not found")
)

// Pair assigns one raw source column to one target field. The wire format is
// always an explicit list of pairs so collisions on the target field are
// detectable.
type Pair struct {
	SourceField string `json:"sourceField"`
	TargetField string `json:"targetField"`
}

// Template is a validated field mapping: each source column and each target
// field appears at most once. Duplicate targets are rejected at ingestion
// time rather than resolved last-write-wins.
type Template struct {
	pairs    []Pair
	bySource map[string]string
}

func NewTemplate(pairs []Pair) (*Template, error) {
	bySource := make(map[string]string, len(pairs))
	seenTarget := make(map[string]struct{}, len(pairs))
	clean := make([]Pair, 0, len(pairs))

	for _, p := range pairs {
		source := strings.TrimSpace(p.SourceField)
		target := strings.TrimSpace(p.TargetField)
		if source == "" || target == "" {
			return nil, ErrEmptyField
		}
		if _, ok := bySource[source]; ok {
			return nil, errors.Wrap(ErrDuplicateSource, source)
		}
		if _, ok := seenTarget[target]; ok {
			return nil, errors.Wrap(ErrDuplicateTarget, target)
		}
		bySource[source] = target
		seenTarget[target] = struct{}{}
		clean = append(clean, Pair{SourceField: source, TargetField: target})
	}

	return &Template{pairs: clean, bySource: bySource}, nil
}

// Target resolves a raw column name to its target field.
func (t *Template) Target(sourceColumn string) (string, bool) {
	target, ok := t.bySource[sourceColumn]
	return target, ok
}

func (t *Template) Pairs() []Pair {
	out := make([]Pair, len(t.pairs))
	copy(out, t.pairs)
	return out
}

func (t *Template) Len() int {
	return len(t.pairs)
}

// Repository persists one template per (import source, optional tenant scope).
type Repository interface {
	Get(ctx context.Context, importSourceID string) (*Template, error)
	Save(ctx context.Context, importSourceID string, tpl *Template) error
}
