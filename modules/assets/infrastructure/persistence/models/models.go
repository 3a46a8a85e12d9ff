package models

import (
	"database/sql"
	"time"
)

type Asset struct {
	ID           string
	TenantID     sql.NullString
	Name         string
	SerialNumber sql.NullString
	MACAddress   sql.NullString
	IPAddress    sql.NullString
	AssetType    sql.NullString
	Location     sql.NullString
	PurchaseCost sql.NullString
	PurchasedAt  sql.NullTime
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ImportJob struct {
	ID             string
	ImportSourceID string
	FileName       string
	StoredPath     string
	FieldMapping   []byte
	Status         string
	TotalRows      int
	ProcessedRows  int
	CreatedRows    int
	UpdatedRows    int
	DuplicateRows  int
	ErrorRows      int
	ErrorMessage   sql.NullString
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ImportJobItem struct {
	ID                    string
	JobID                 string
	RowNumber             int
	ExternalID            sql.NullString
	Status                string
	SourceData            []byte
	ErrorMessage          sql.NullString
	DuplicateMatchType    sql.NullString
	DuplicateMatchedField sql.NullString
	DuplicateRecordID     sql.NullString
	DuplicateConfidence   sql.NullFloat64
	AppliedUpdate         bool
	CreatedAt             time.Time
}

type FieldMappingTemplate struct {
	ImportSourceID string
	TenantID       string
	Mapping        []byte
	UpdatedAt      time.Time
}
