package importer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/importsource"
)

func record(fields map[string]string) NormalizedRecord {
	return NormalizedRecord{RowNumber: 1, Fields: fields}
}

func TestValidateRecord(t *testing.T) {
	defs := importsource.AssetFieldDefs()

	t.Run("valid row", func(t *testing.T) {
		errs := ValidateRecord(record(map[string]string{
			"name":          "srv-01",
			"serial_number": "SN-100",
			"mac_address":   "00:1A:2B:3C:4D:5E",
			"ip_address":    "10.0.0.12",
			"purchased_at":  "2024-03-01",
		}), defs)
		require.Empty(t, errs)
	})

	t.Run("missing required field blocks", func(t *testing.T) {
		errs := ValidateRecord(record(map[string]string{"serial_number": "SN-100"}), defs)
		require.Len(t, errs, 1)
		require.Equal(t, "name", errs[0].Field)
		require.Equal(t, "required", errs[0].Message)
		require.True(t, HasBlocking(errs))
	})

	t.Run("blank required field blocks", func(t *testing.T) {
		errs := ValidateRecord(record(map[string]string{"name": "   "}), defs)
		require.True(t, HasBlocking(errs))
	})

	t.Run("malformed optional field reported but not blocking", func(t *testing.T) {
		errs := ValidateRecord(record(map[string]string{
			"name":        "srv-01",
			"mac_address": "not-a-mac",
			"ip_address":  "999.1.1.1",
			"purchased_at": "yesterday",
		}), defs)
		require.Len(t, errs, 3)
		require.False(t, HasBlocking(errs))

		messages := map[string]string{}
		for _, e := range errs {
			messages[e.Field] = e.Message
		}
		require.Equal(t, "invalid MAC address", messages["mac_address"])
		require.Equal(t, "invalid IP address", messages["ip_address"])
		require.Equal(t, "invalid date", messages["purchased_at"])
	})

	t.Run("blocking format def blocks", func(t *testing.T) {
		strict := []importsource.FieldDef{
			{Name: "ip_address", Format: importsource.FormatIP, Blocking: true},
		}
		errs := ValidateRecord(record(map[string]string{"ip_address": "nope"}), strict)
		require.True(t, HasBlocking(errs))
	})

	t.Run("deterministic error order", func(t *testing.T) {
		rec := record(map[string]string{"mac_address": "bad", "ip_address": "bad"})
		first := ValidateRecord(rec, defs)
		for i := 0; i < 10; i++ {
			require.Equal(t, first, ValidateRecord(rec, defs))
		}
	})
}

func TestParseDateLayouts(t *testing.T) {
	for _, value := range []string{"2024-03-01", "2024/03/01", "03/01/2024", "01.03.2024"} {
		_, ok := ParseDate(value)
		require.True(t, ok, value)
	}
	_, ok := ParseDate("last tuesday")
	require.False(t, ok)
}
