// cmd/server/server.go
package main

import (
	"net/http"
	"time"

	"github.com/codr1/themeforge/internal/api"
	"github.com/codr1/themeforge/internal/api/themes"
	appconfig "github.com/codr1/themeforge/internal/config"
)

func newServer(config *Config, appConfig *appconfig.Config) *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithUser,
		api.WithAPIKey(appConfig.App.APIKeyHash),
		api.WithContentType,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
	)

	// Register routes
	registerRoutes(router)

	return &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Stateless validation and export
	mux.HandleFunc("POST /api/v1/themes/validate", themes.HandleThemeValidate)
	mux.HandleFunc("POST /api/v1/themes/validate/batch", themes.HandleThemeValidateBatch)
	mux.HandleFunc("POST /api/v1/themes/export", themes.HandleThemeExport)

	// Stored snapshots
	mux.HandleFunc("POST /api/v1/themes", themes.HandleThemeCreate)
	mux.HandleFunc("GET /api/v1/themes", themes.HandleThemesList)
	mux.HandleFunc("GET /api/v1/themes/latest", themes.HandleThemeLatest)
	mux.HandleFunc("GET /api/v1/themes/{id}", themes.HandleThemeDetail)
	mux.HandleFunc("PATCH /api/v1/themes/{id}", themes.HandleThemeRename)
	mux.HandleFunc("DELETE /api/v1/themes/{id}", themes.HandleThemeDelete)
	mux.HandleFunc("GET /api/v1/themes/{id}/export", themes.HandleSnapshotExport)
	mux.HandleFunc("POST /api/v1/themes/{id}/publish", themes.HandleSnapshotPublish)
}
