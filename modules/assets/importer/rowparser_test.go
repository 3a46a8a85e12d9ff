package importer

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func drainTable(t *testing.T, tbl *Table) []*RawRow {
	t.Helper()
	var rows []*RawRow
	for {
		row, err := tbl.Next()
		if err == io.EOF {
			return rows
		}
		require.NoError(t, err)
		rows = append(rows, row)
	}
}

func TestParseCSV(t *testing.T) {
	input := "\ufeffName, Serial ,Location\n" +
		"srv-01,SN-100,Berlin\n" +
		"\n" +
		" srv-02 ,SN-200,\n"

	tbl, err := Parse(strings.NewReader(input), "export.csv")
	require.NoError(t, err)
	defer func() { require.NoError(t, tbl.Close()) }()

	require.Equal(t, []string{"Name", "Serial", "Location"}, tbl.Columns)

	rows := drainTable(t, tbl)
	require.Len(t, rows, 2)

	require.Equal(t, 1, rows[0].Number)
	require.Equal(t, "srv-01", rows[0].Values["Name"])
	require.Equal(t, "SN-100", rows[0].Values["Serial"])

	// Blank line skipped, numbering stays contiguous, cells trimmed.
	require.Equal(t, 2, rows[1].Number)
	require.Equal(t, "srv-02", rows[1].Values["Name"])
	require.Equal(t, "", rows[1].Values["Location"])
}

func TestParseCSVShortRow(t *testing.T) {
	input := "name,serial,location\nsrv-01,SN-100\n"

	tbl, err := Parse(strings.NewReader(input), "export.csv")
	require.NoError(t, err)

	rows := drainTable(t, tbl)
	require.Len(t, rows, 1)
	require.Equal(t, "", rows[0].Values["location"])
}

func TestParseTSV(t *testing.T) {
	input := "name\tserial\nsrv-01\tSN-100\n"

	tbl, err := Parse(strings.NewReader(input), "export.tsv")
	require.NoError(t, err)

	rows := drainTable(t, tbl)
	require.Len(t, rows, 1)
	require.Equal(t, "SN-100", rows[0].Values["serial"])
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]string{"name", "serial"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]string{"srv-01", "SN-100"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]string{"srv-02", "SN-200"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	tbl, err := Parse(buf, "inventory.xlsx")
	require.NoError(t, err)
	defer func() { require.NoError(t, tbl.Close()) }()

	require.Equal(t, []string{"name", "serial"}, tbl.Columns)
	rows := drainTable(t, tbl)
	require.Len(t, rows, 2)
	require.Equal(t, "srv-02", rows[1].Values["name"])
}

func TestParseSniffsContentWithoutExtension(t *testing.T) {
	input := "name,serial\nsrv-01,SN-100\n"

	tbl, err := Parse(bufio.NewReader(strings.NewReader(input)), "upload")
	require.NoError(t, err)

	rows := drainTable(t, tbl)
	require.Len(t, rows, 1)
}

func TestParseUnsupportedFormat(t *testing.T) {
	_, err := Parse(strings.NewReader("%PDF-1.4"), "report.pdf")
	require.ErrorIs(t, err, ErrMalformedFile)
}

func TestParseEmptyHeader(t *testing.T) {
	_, err := Parse(strings.NewReader("  , \nvalue,value\n"), "export.csv")
	require.ErrorIs(t, err, ErrMalformedFile)
}

func TestParseTrailingUnnamedColumnsDropped(t *testing.T) {
	input := "name,serial,,\nsrv-01,SN-100,x,y\n"

	tbl, err := Parse(strings.NewReader(input), "export.csv")
	require.NoError(t, err)
	require.Equal(t, []string{"name", "serial"}, tbl.Columns)

	rows := drainTable(t, tbl)
	require.Len(t, rows, 1)
	_, ok := rows[0].Values[""]
	require.False(t, ok)
}
