package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/importjob"
	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/importsource"
	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/mapping"
	"github.com/assetdeck/assetdeck/modules/assets/presentation/controllers/dtos"
	"github.com/assetdeck/assetdeck/modules/assets/services"
	"github.com/assetdeck/assetdeck/pkg/application"
	"github.com/assetdeck/assetdeck/pkg/configuration"
	"github.com/assetdeck/assetdeck/pkg/httpapi"
	"github.com/assetdeck/assetdeck/pkg/middleware"
	"github.com/assetdeck/assetdeck/pkg/serrors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type ImportController struct {
	app           application.Application
	importService *services.ImportService
	basePath      string
}

func NewImportController(app application.Application) application.Controller {
	return &ImportController{
		app:           app,
		importService: app.Service(services.ImportService{}).(*services.ImportService),
		basePath:      "/api/v1/import",
	}
}

func (c *ImportController) Key() string {
	return c.basePath
}

func (c *ImportController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/sources", c.Sources).Methods(http.MethodGet)
	router.HandleFunc("/mapping", c.Mapping).Methods(http.MethodGet)
	router.HandleFunc("/history", c.History).Methods(http.MethodGet)
	router.HandleFunc("/jobs/{jobId}", c.Job).Methods(http.MethodGet)
	router.HandleFunc("/preview", c.Preview).Methods(http.MethodPost)
	router.HandleFunc("/approve", c.Approve).Methods(http.MethodPost)
}

func (c *ImportController) Sources(w http.ResponseWriter, r *http.Request) {
	sources, err := c.importService.Sources(r.Context())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	out := make([]*dtos.SourceResponse, 0, len(sources))
	for _, src := range sources {
		out = append(out, dtos.NewSourceResponse(src))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *ImportController) Mapping(w http.ResponseWriter, r *http.Request) {
	importSourceID := r.URL.Query().Get("importSourceId")
	if importSourceID == "" {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "MAPPING_INVALID", "importSourceId is required", nil)
		return
	}

	tpl, err := c.importService.Mapping(r.Context(), importSourceID)
	if errors.Is(err, mapping.ErrTemplateNotFound) {
		_ = httpapi.WriteJSON(w, http.StatusOK, &dtos.MappingResponse{
			ImportSourceID: importSourceID,
			Mapping:        []mapping.Pair{},
		})
		return
	}
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	_ = httpapi.WriteJSON(w, http.StatusOK, &dtos.MappingResponse{
		ImportSourceID: importSourceID,
		Mapping:        tpl.Pairs(),
	})
}

func (c *ImportController) History(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	jobs, err := c.importService.History(r.Context(), limit, offset)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	out := make([]*dtos.JobResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, dtos.NewJobResponse(job))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *ImportController) Job(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(mux.Vars(r)["jobId"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "import job not found", nil)
		return
	}

	job, err := c.importService.Job(r.Context(), jobID)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	limit, offset := pageParams(r)
	items, err := c.importService.JobItems(r.Context(), jobID, limit, offset)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	itemsOut := make([]*dtos.ItemResponse, 0, len(items))
	for _, item := range items {
		itemsOut = append(itemsOut, dtos.NewItemResponse(item))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, &dtos.JobDetailResponse{
		Job:   dtos.NewJobResponse(job),
		Items: itemsOut,
	})
}

func (c *ImportController) Preview(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	r.Body = http.MaxBytesReader(w, r.Body, conf.MaxUploadSize)
	if err := r.ParseMultipartForm(conf.MaxUploadMemory); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "FILE_READ_ERROR", "could not read multipart form", nil)
		return
	}

	dto := &dtos.PreviewRequest{
		ImportSourceID:  r.FormValue("importSourceId"),
		FieldMapping:    r.FormValue("fieldMapping"),
		PersistTemplate: r.FormValue("persistTemplate") == "true",
	}
	if err := validate.Struct(dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "MAPPING_INVALID", err.Error(), nil)
		return
	}

	var pairs []mapping.Pair
	if err := json.Unmarshal([]byte(dto.FieldMapping), &pairs); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "MAPPING_INVALID", "fieldMapping must be a JSON array of {sourceField, targetField}", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "FILE_READ_ERROR", "file part is required", nil)
		return
	}
	defer func() { _ = file.Close() }()

	result, err := c.importService.Preview(r.Context(), &services.PreviewParams{
		ImportSourceID:  dto.ImportSourceID,
		FileName:        header.Filename,
		File:            file,
		Mapping:         pairs,
		PersistTemplate: dto.PersistTemplate,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	_ = httpapi.WriteJSON(w, http.StatusOK, &dtos.PreviewResponse{
		ImportJobID: result.Job.ID().String(),
		Job:         dtos.NewJobResponse(result.Job),
		Preview:     result.Preview,
	})
}

func (c *ImportController) Approve(w http.ResponseWriter, r *http.Request) {
	var dto dtos.ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "JOB_STATE_ERROR", "request body must be JSON with importJobId", nil)
		return
	}
	if err := validate.Struct(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "JOB_STATE_ERROR", err.Error(), nil)
		return
	}
	jobID, err := uuid.Parse(dto.ImportJobID)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "import job not found", nil)
		return
	}

	job, err := c.importService.Approve(r.Context(), jobID)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	_ = httpapi.WriteJSON(w, http.StatusOK, &dtos.ApproveResponse{
		ImportJobID: job.ID().String(),
		Status:      string(job.Status()),
	})
}

// writeServiceError maps domain errors onto the API error taxonomy. Per-row
// outcomes never travel this path; they are payload, not errors.
func (c *ImportController) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, importsource.ErrSourceNotFound),
		errors.Is(err, importjob.ErrJobNotFound):
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, importjob.ErrInvalidTransition):
		_ = httpapi.WriteError(w, http.StatusConflict, "JOB_STATE_ERROR", err.Error(), nil)
	case errors.Is(err, mapping.ErrEmptyField),
		errors.Is(err, mapping.ErrDuplicateSource),
		errors.Is(err, mapping.ErrDuplicateTarget),
		errors.Is(err, mapping.ErrUnknownTarget):
		_ = httpapi.WriteError(w, http.StatusBadRequest, "MAPPING_INVALID", err.Error(), nil)
	default:
		var coded *serrors.Error
		if errors.As(err, &coded) {
			_ = httpapi.WriteError(w, http.StatusBadRequest, coded.Code, coded.Message, nil)
			return
		}
		middleware.UseLogger(r.Context()).WithError(err).Error("import API error")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
	}
}

func pageParams(r *http.Request) (int, int) {
	conf := configuration.Use()
	limit := conf.PageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > conf.MaxPageSize {
		limit = conf.MaxPageSize
	}
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
