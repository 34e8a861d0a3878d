package main

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/aligner/internal/api"
	"github.com/JaimeStill/aligner/internal/config"
	"github.com/JaimeStill/aligner/internal/infrastructure"
	"github.com/JaimeStill/aligner/pkg/handlers"
	"github.com/JaimeStill/aligner/pkg/lifecycle"
	"github.com/JaimeStill/aligner/pkg/module"
)

var errNotFound = errors.New("route not found")

type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) error {
	return router.Mount(m.API)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", readiness(infra.Lifecycle, infra.Logger))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondError(w, infra.Logger, http.StatusNotFound, errNotFound)
	})

	return router
}

// readiness reports 503 until every startup hook has succeeded.
// Startup failures are logged, never returned to the caller.
func readiness(probe lifecycle.Readiness, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if probe.Ready() {
			handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
			return
		}
		if err := probe.Err(); err != nil {
			logger.Warn("readiness check failed", "error", err)
		}
		handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
	}
}
