package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/assetdeck/assetdeck/modules/assets/domain/aggregates/asset"
	"github.com/assetdeck/assetdeck/modules/assets/presentation/controllers/dtos"
	"github.com/assetdeck/assetdeck/modules/assets/services"
	"github.com/assetdeck/assetdeck/pkg/application"
	"github.com/assetdeck/assetdeck/pkg/httpapi"
)

// AssetController is a read surface over the import target. Assets are written
// by the pipeline, not by this API.
type AssetController struct {
	app          application.Application
	assetService *services.AssetService
	basePath     string
}

func NewAssetController(app application.Application) application.Controller {
	return &AssetController{
		app:          app,
		assetService: app.Service(services.AssetService{}).(*services.AssetService),
		basePath:     "/api/v1/assets",
	}
}

func (c *AssetController) Key() string {
	return c.basePath
}

func (c *AssetController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.GetByID).Methods(http.MethodGet)
}

func (c *AssetController) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	assets, err := c.assetService.GetPaginated(r.Context(), &asset.FindParams{Limit: limit, Offset: offset})
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
		return
	}
	total, err := c.assetService.Count(r.Context())
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
		return
	}

	out := make([]*dtos.AssetResponse, 0, len(assets))
	for _, a := range assets {
		out = append(out, dtos.NewAssetResponse(a))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, &dtos.AssetListResponse{Total: total, Assets: out})
}

func (c *AssetController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "asset not found", nil)
		return
	}
	a, err := c.assetService.GetByID(r.Context(), id)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "asset not found", nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.NewAssetResponse(a))
}
