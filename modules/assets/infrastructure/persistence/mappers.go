package persistence

import (
	"database/sql"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/assetdeck/assetdeck/modules/assets/domain/aggregates/asset"
	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/importjob"
	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/mapping"
	"github.com/assetdeck/assetdeck/modules/assets/infrastructure/persistence/models"
)

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func ToDBAsset(a *asset.Asset) *models.Asset {
	m := &models.Asset{
		ID:           a.ID().String(),
		Name:         a.Name(),
		SerialNumber: nullString(a.SerialNumber()),
		MACAddress:   nullString(a.MACAddress()),
		IPAddress:    nullString(a.IPAddress()),
		AssetType:    nullString(a.AssetType()),
		Location:     nullString(a.Location()),
		CreatedAt:    a.CreatedAt(),
		UpdatedAt:    a.UpdatedAt(),
	}
	if tenantID := a.TenantID(); tenantID != nil {
		m.TenantID = nullString(tenantID.String())
	}
	if !a.PurchaseCost().IsZero() {
		m.PurchaseCost = nullString(a.PurchaseCost().String())
	}
	if purchasedAt := a.PurchasedAt(); purchasedAt != nil {
		m.PurchasedAt = sql.NullTime{Time: *purchasedAt, Valid: true}
	}
	return m
}

func ToDomainAsset(m *models.Asset) (*asset.Asset, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, errors.Wrap(err, "parsing asset id")
	}

	opts := []asset.Option{
		asset.WithID(id),
		asset.WithSerialNumber(m.SerialNumber.String),
		asset.WithMACAddress(m.MACAddress.String),
		asset.WithIPAddress(m.IPAddress.String),
		asset.WithAssetType(m.AssetType.String),
		asset.WithLocation(m.Location.String),
		asset.WithCreatedAt(m.CreatedAt),
		asset.WithUpdatedAt(m.UpdatedAt),
	}
	if m.TenantID.Valid {
		tenantID, err := uuid.Parse(m.TenantID.String)
		if err != nil {
			return nil, errors.Wrap(err, "parsing tenant id")
		}
		opts = append(opts, asset.WithTenantID(tenantID))
	}
	if m.PurchaseCost.Valid {
		cost, err := decimal.NewFromString(m.PurchaseCost.String)
		if err != nil {
			return nil, errors.Wrap(err, "parsing purchase cost")
		}
		opts = append(opts, asset.WithPurchaseCost(cost))
	}
	if m.PurchasedAt.Valid {
		opts = append(opts, asset.WithPurchasedAt(m.PurchasedAt.Time))
	}

	return asset.New(m.Name, opts...), nil
}

func ToDBImportJob(j *importjob.Job) (*models.ImportJob, error) {
	fieldMapping, err := json.Marshal(j.Mapping())
	if err != nil {
		return nil, errors.Wrap(err, "encoding field mapping")
	}
	counts := j.Counts()
	return &models.ImportJob{
		ID:             j.ID().String(),
		ImportSourceID: j.ImportSourceID(),
		FileName:       j.FileName(),
		StoredPath:     j.StoredPath(),
		FieldMapping:   fieldMapping,
		Status:         string(j.Status()),
		TotalRows:      counts.Total,
		ProcessedRows:  counts.Processed,
		CreatedRows:    counts.Created,
		UpdatedRows:    counts.Updated,
		DuplicateRows:  counts.Duplicate,
		ErrorRows:      counts.Error,
		ErrorMessage:   nullString(j.ErrorMessage()),
		CreatedAt:      j.CreatedAt(),
		UpdatedAt:      j.UpdatedAt(),
	}, nil
}

func ToDomainImportJob(m *models.ImportJob) (*importjob.Job, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, errors.Wrap(err, "parsing job id")
	}
	var pairs []mapping.Pair
	if len(m.FieldMapping) > 0 {
		if err := json.Unmarshal(m.FieldMapping, &pairs); err != nil {
			return nil, errors.Wrap(err, "decoding field mapping")
		}
	}

	return importjob.New(
		m.ImportSourceID,
		m.FileName,
		importjob.WithID(id),
		importjob.WithStoredPath(m.StoredPath),
		importjob.WithMapping(pairs),
		importjob.WithStatus(importjob.Status(m.Status)),
		importjob.WithCounts(importjob.Counts{
			Total:     m.TotalRows,
			Processed: m.ProcessedRows,
			Created:   m.CreatedRows,
			Updated:   m.UpdatedRows,
			Duplicate: m.DuplicateRows,
			Error:     m.ErrorRows,
		}),
		importjob.WithErrorMessage(m.ErrorMessage.String),
		importjob.WithCreatedAt(m.CreatedAt),
		importjob.WithUpdatedAt(m.UpdatedAt),
	), nil
}

func ToDBImportJobItem(item *importjob.Item) (*models.ImportJobItem, error) {
	sourceData, err := json.Marshal(item.SourceData)
	if err != nil {
		return nil, errors.Wrap(err, "encoding source data")
	}
	m := &models.ImportJobItem{
		ID:            item.ID.String(),
		JobID:         item.JobID.String(),
		RowNumber:     item.RowNumber,
		ExternalID:    nullString(item.ExternalID),
		Status:        string(item.Status),
		SourceData:    sourceData,
		ErrorMessage:  nullString(item.ErrorMessage),
		AppliedUpdate: item.AppliedUpdate,
		CreatedAt:     item.CreatedAt,
	}
	if d := item.Duplicate; d != nil {
		m.DuplicateMatchType = nullString(string(d.MatchType))
		m.DuplicateMatchedField = nullString(d.MatchedField)
		m.DuplicateRecordID = nullString(d.MatchedRecordID.String())
		m.DuplicateConfidence = sql.NullFloat64{Float64: d.Confidence, Valid: true}
	}
	return m, nil
}

func ToDomainImportJobItem(m *models.ImportJobItem) (*importjob.Item, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, errors.Wrap(err, "parsing item id")
	}
	jobID, err := uuid.Parse(m.JobID)
	if err != nil {
		return nil, errors.Wrap(err, "parsing item job id")
	}

	item := &importjob.Item{
		ID:            id,
		JobID:         jobID,
		RowNumber:     m.RowNumber,
		ExternalID:    m.ExternalID.String,
		Status:        importjob.ItemStatus(m.Status),
		ErrorMessage:  m.ErrorMessage.String,
		AppliedUpdate: m.AppliedUpdate,
		CreatedAt:     m.CreatedAt,
	}
	if len(m.SourceData) > 0 {
		if err := json.Unmarshal(m.SourceData, &item.SourceData); err != nil {
			return nil, errors.Wrap(err, "decoding source data")
		}
	}
	if m.DuplicateMatchType.Valid {
		recordID, err := uuid.Parse(m.DuplicateRecordID.String)
		if err != nil {
			return nil, errors.Wrap(err, "parsing duplicate record id")
		}
		item.Duplicate = &importjob.DuplicateDetails{
			MatchType:       importjob.MatchType(m.DuplicateMatchType.String),
			MatchedField:    m.DuplicateMatchedField.String,
			MatchedRecordID: recordID,
			Confidence:      m.DuplicateConfidence.Float64,
		}
	}
	return item, nil
}
