package importer

import (
	"bufio"
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"

	"github.com/assetdeck/assetdeck/pkg/serrors"
)

var (
	// ErrMalformedFile covers unreadable headers and unsupported formats.
	ErrMalformedFile = serrors.NewError("FILE_READ_ERROR", "malformed or unsupported file", "")
	// ErrEmptyFile marks a header-only or zero-row file.
	ErrEmptyFile = serrors.NewError("EMPTY_FILE", "file has no data rows", "")
)

// RawRow is one data row keyed by raw column name. Number is 1-based and
// excludes the header row.
type RawRow struct {
	Number int
	Values map[string]string
}

// Table is a lazy, single-pass row sequence. The first file row is always the
// header defining column names.
type Table struct {
	Columns []string

	next   func() ([]string, error)
	closer func() error
	rowNum int
}

// Next returns the next non-blank data row, or io.EOF when exhausted.
func (t *Table) Next() (*RawRow, error) {
	for {
		cells, err := t.next()
		if err != nil {
			return nil, err
		}
		blank := true
		for _, cell := range cells {
			if strings.TrimSpace(cell) != "" {
				blank = false
				break
			}
		}
		if blank {
			continue
		}

		t.rowNum++
		values := make(map[string]string, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(cells) {
				values[col] = strings.TrimSpace(cells[i])
			} else {
				values[col] = ""
			}
		}
		return &RawRow{Number: t.rowNum, Values: values}, nil
	}
}

func (t *Table) Close() error {
	if t.closer == nil {
		return nil
	}
	return t.closer()
}

// Parse opens a tabular file as a Table. The format is detected from the file
// extension, falling back to a content sniff for ambiguous names.
func Parse(r io.Reader, filename string) (*Table, error) {
	switch detectFormat(r, filename) {
	case formatCSV:
		return parseDelimited(r, ',')
	case formatTSV:
		return parseDelimited(r, '\t')
	case formatXLSX:
		return parseWorkbook(r)
	default:
		return nil, errors.Wrap(ErrMalformedFile, filename)
	}
}

type fileFormat int

const (
	formatUnknown fileFormat = iota
	formatCSV
	formatTSV
	formatXLSX
)

func detectFormat(r io.Reader, filename string) fileFormat {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return formatCSV
	case ".tsv":
		return formatTSV
	case ".xlsx", ".xls":
		return formatXLSX
	}

	// No usable extension: sniff the content without consuming the stream.
	if br, ok := r.(*bufio.Reader); ok {
		if head, err := br.Peek(3072); err == nil || len(head) > 0 {
			mtype := mimetype.Detect(head)
			switch {
			case mtype.Is("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"),
				mtype.Is("application/zip"):
				return formatXLSX
			case mtype.Is("text/csv"), mtype.Is("text/plain"):
				return formatCSV
			case mtype.Is("text/tab-separated-values"):
				return formatTSV
			}
		}
	}
	return formatUnknown
}

func parseDelimited(r io.Reader, comma rune) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(ErrMalformedFile, "reading header")
	}

	columns, err := cleanHeader(header)
	if err != nil {
		return nil, err
	}

	return &Table{
		Columns: columns,
		next:    reader.Read,
	}, nil
}

func parseWorkbook(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedFile, "opening workbook")
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		_ = f.Close()
		return nil, errors.Wrap(ErrMalformedFile, "workbook has no sheets")
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(ErrMalformedFile, "reading sheet")
	}

	if !rows.Next() {
		_ = rows.Close()
		_ = f.Close()
		return nil, errors.Wrap(ErrMalformedFile, "reading header")
	}
	header, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		_ = f.Close()
		return nil, errors.Wrap(ErrMalformedFile, "reading header")
	}

	columns, err := cleanHeader(header)
	if err != nil {
		_ = rows.Close()
		_ = f.Close()
		return nil, err
	}

	return &Table{
		Columns: columns,
		next: func() ([]string, error) {
			if !rows.Next() {
				if err := rows.Error(); err != nil {
					return nil, err
				}
				return nil, io.EOF
			}
			return rows.Columns()
		},
		closer: func() error {
			_ = rows.Close()
			return f.Close()
		},
	}, nil
}

func cleanHeader(header []string) ([]string, error) {
	columns := make([]string, 0, len(header))
	for i, col := range header {
		col = strings.TrimSpace(col)
		if i == 0 {
			col = strings.TrimPrefix(col, "\ufeff")
		}
		columns = append(columns, col)
	}
	// Drop trailing unnamed columns, common in exported spreadsheets.
	for len(columns) > 0 && columns[len(columns)-1] == "" {
		columns = columns[:len(columns)-1]
	}
	if len(columns) == 0 {
		return nil, errors.Wrap(ErrMalformedFile, "empty header")
	}
	return columns, nil
}
