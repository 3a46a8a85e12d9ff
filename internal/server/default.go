package server

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/assetdeck/assetdeck/pkg/application"
	"github.com/assetdeck/assetdeck/pkg/configuration"
	"github.com/assetdeck/assetdeck/pkg/httpapi"
	"github.com/assetdeck/assetdeck/pkg/middleware"
	"github.com/assetdeck/assetdeck/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	Pool          *pgxpool.Pool
}

func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application

	app.RegisterMiddleware(
		middleware.WithLogger(options.Logger),
		middleware.WithPool(options.Pool),
	)

	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
	})
	methodNotAllowed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})

	return server.NewHTTPServer(app, notFound, methodNotAllowed), nil
}
