package importer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/mapping"
)

func TestApplyTemplate(t *testing.T) {
	tpl, err := mapping.NewTemplate([]mapping.Pair{
		{SourceField: "Device Name", TargetField: "name"},
		{SourceField: "Serial", TargetField: "serial_number"},
	})
	require.NoError(t, err)

	row := &RawRow{
		Number: 7,
		Values: map[string]string{
			"Device Name": "srv-01",
			"Serial":      "SN-100",
			"Warranty":    "2027",
		},
	}

	rec := ApplyTemplate(tpl, row)
	require.Equal(t, 7, rec.RowNumber)

	// Exactly the mapped columns appear as fields; the rest stays raw.
	require.Equal(t, map[string]string{
		"name":          "srv-01",
		"serial_number": "SN-100",
	}, rec.Fields)
	require.Equal(t, map[string]string{"Warranty": "2027"}, rec.RawValues)
}

func TestApplyTemplateMissingColumn(t *testing.T) {
	tpl, err := mapping.NewTemplate([]mapping.Pair{
		{SourceField: "Device Name", TargetField: "name"},
		{SourceField: "Serial", TargetField: "serial_number"},
	})
	require.NoError(t, err)

	rec := ApplyTemplate(tpl, &RawRow{Number: 1, Values: map[string]string{"Device Name": "srv-01"}})

	_, ok := rec.Fields["serial_number"]
	require.False(t, ok)
	require.Equal(t, "srv-01", rec.Fields["name"])
}
