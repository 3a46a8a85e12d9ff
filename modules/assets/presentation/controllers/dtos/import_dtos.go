package dtos

import (
	"time"

	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/importjob"
	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/importsource"
	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/mapping"
	"github.com/assetdeck/assetdeck/modules/assets/importer"
)

type PreviewRequest struct {
	ImportSourceID  string `validate:"required"`
	FieldMapping    string `validate:"required,json"`
	PersistTemplate bool
}

type ApproveRequest struct {
	ImportJobID string `json:"importJobId" validate:"required,uuid4"`
}

type FieldDefResponse struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
	Format   string `json:"format,omitempty"`
}

type SourceResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	SourceType  string             `json:"sourceType"`
	Fields      []FieldDefResponse `json:"fields"`
}

func NewSourceResponse(src *importsource.ImportSource) *SourceResponse {
	fields := make([]FieldDefResponse, 0, len(src.Fields))
	for _, def := range src.Fields {
		fields = append(fields, FieldDefResponse{
			Name:     def.Name,
			Label:    def.Label,
			Required: def.Required,
			Format:   string(def.Format),
		})
	}
	return &SourceResponse{
		ID:          src.ID,
		Name:        src.Name,
		Description: src.Description,
		SourceType:  src.SourceType,
		Fields:      fields,
	}
}

type MappingResponse struct {
	ImportSourceID string         `json:"importSourceId"`
	Mapping        []mapping.Pair `json:"mapping"`
}

type JobResponse struct {
	ID             string    `json:"id"`
	ImportSourceID string    `json:"importSourceId"`
	FileName       string    `json:"fileName"`
	Status         string    `json:"status"`
	TotalRows      int       `json:"totalRows"`
	ProcessedRows  int       `json:"processedRows"`
	CreatedRows    int       `json:"createdRows"`
	UpdatedRows    int       `json:"updatedRows"`
	DuplicateRows  int       `json:"duplicateRows"`
	ErrorRows      int       `json:"errorRows"`
	ErrorMessage   string    `json:"errorMessage,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func NewJobResponse(job *importjob.Job) *JobResponse {
	counts := job.Counts()
	return &JobResponse{
		ID:             job.ID().String(),
		ImportSourceID: job.ImportSourceID(),
		FileName:       job.FileName(),
		Status:         string(job.Status()),
		TotalRows:      counts.Total,
		ProcessedRows:  counts.Processed,
		CreatedRows:    counts.Created,
		UpdatedRows:    counts.Updated,
		DuplicateRows:  counts.Duplicate,
		ErrorRows:      counts.Error,
		ErrorMessage:   job.ErrorMessage(),
		CreatedAt:      job.CreatedAt(),
		UpdatedAt:      job.UpdatedAt(),
	}
}

type ItemResponse struct {
	ID           string                      `json:"id"`
	RowNumber    int                         `json:"rowNumber"`
	ExternalID   string                      `json:"externalId,omitempty"`
	Status       string                      `json:"status"`
	SourceData   map[string]string           `json:"sourceData"`
	ErrorMessage string                      `json:"errorMessage,omitempty"`
	Duplicate    *importjob.DuplicateDetails `json:"duplicate,omitempty"`
	CreatedAt    time.Time                   `json:"createdAt"`
}

func NewItemResponse(item *importjob.Item) *ItemResponse {
	return &ItemResponse{
		ID:           item.ID.String(),
		RowNumber:    item.RowNumber,
		ExternalID:   item.ExternalID,
		Status:       string(item.Status),
		SourceData:   item.SourceData,
		ErrorMessage: item.ErrorMessage,
		Duplicate:    item.Duplicate,
		CreatedAt:    item.CreatedAt,
	}
}

type JobDetailResponse struct {
	Job   *JobResponse    `json:"job"`
	Items []*ItemResponse `json:"items"`
}

type PreviewResponse struct {
	ImportJobID string            `json:"importJobId"`
	Job         *JobResponse      `json:"job"`
	Preview     *importer.Preview `json:"preview"`
}

type ApproveResponse struct {
	ImportJobID string `json:"importJobId"`
	Status      string `json:"status"`
}
