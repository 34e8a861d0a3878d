// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"context"
	"net/http"

	"github.com/JaimeStill/aligner/internal/config"
	"github.com/JaimeStill/aligner/internal/infrastructure"
	"github.com/JaimeStill/aligner/pkg/handlers"
	"github.com/JaimeStill/aligner/pkg/middleware"
	"github.com/JaimeStill/aligner/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// It also registers the admin bootstrap as a lifecycle startup hook.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain, err := NewDomain(cfg, runtime)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg, runtime); err != nil {
		return nil, err
	}

	m, err := module.New(cfg.API.BasePath, mux)
	if err != nil {
		return nil, err
	}
	if runtime.ExposeErrors {
		m.Use(handlers.ExposeErrors)
	}
	m.Use(
		middleware.Recover(runtime.Logger),
		middleware.SecurityHeaders(),
		middleware.CORS(&cfg.API.CORS),
		middleware.RateLimit(&cfg.API.RateLimit, runtime.Logger),
		middleware.Logger(runtime.Logger),
	)

	runtime.Lifecycle.OnStartupE("admin bootstrap", func(ctx context.Context) error {
		return domain.Auth.Bootstrap(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
	})

	return m, nil
}
