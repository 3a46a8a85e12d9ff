package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/assetdeck/assetdeck/pkg/application"
	"github.com/assetdeck/assetdeck/pkg/composables"
	"github.com/assetdeck/assetdeck/pkg/httpapi"
)

type HealthController struct{}

func NewHealthController() application.Controller {
	return &HealthController{}
}

func (c *HealthController) Key() string {
	return "/health"
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc("/health", c.Get).Methods(http.MethodGet)
}

func (c *HealthController) Get(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if pool, err := composables.UsePool(r.Context()); err == nil {
		if err := pool.Ping(r.Context()); err != nil {
			_ = httpapi.WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "database unreachable", nil)
			return
		}
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": status})
}
