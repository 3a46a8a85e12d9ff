package importsource

// Canonical target field names of the asset schema.
const (
	FieldName         = "name"
	FieldSerialNumber = "serial_number"
	FieldMACAddress   = "mac_address"
	FieldIPAddress    = "ip_address"
	FieldAssetType    = "asset_type"
	FieldLocation     = "location"
	FieldPurchaseCost = "purchase_cost"
	FieldPurchasedAt  = "purchased_at"
)

// AssetFieldDefs is the target schema shared by the built-in asset sources.
func AssetFieldDefs() []FieldDef {
	return []FieldDef{
		{Name: FieldName, Label: "Name", Required: true},
		{Name: FieldSerialNumber, Label: "Serial Number"},
		{Name: FieldMACAddress, Label: "MAC Address", Format: FormatMAC},
		{Name: FieldIPAddress, Label: "IP Address", Format: FormatIP},
		{Name: FieldAssetType, Label: "Asset Type"},
		{Name: FieldLocation, Label: "Location"},
		{Name: FieldPurchaseCost, Label: "Purchase Cost"},
		{Name: FieldPurchasedAt, Label: "Purchase Date", Format: FormatDate},
	}
}

// BuiltInSources returns the configured import sources. Each source targets
// the asset schema; they differ in where the file originates.
func BuiltInSources() []*ImportSource {
	return []*ImportSource{
		{
			ID:          "generic-csv",
			Name:        "Generic spreadsheet",
			Description: "CSV/TSV/XLSX export from any inventory tool",
			SourceType:  "file",
			Fields:      AssetFieldDefs(),
		},
		{
			ID:          "snipeit",
			Name:        "Snipe-IT export",
			Description: "Asset export produced by Snipe-IT",
			SourceType:  "file",
			Fields:      AssetFieldDefs(),
		},
		{
			ID:          "lansweeper",
			Name:        "Lansweeper export",
			Description: "Asset report exported from Lansweeper",
			SourceType:  "file",
			Fields:      AssetFieldDefs(),
		},
	}
}
