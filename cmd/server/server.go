package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JaimeStill/aligner/internal/config"
	"github.com/JaimeStill/aligner/internal/infrastructure"
)

// Server owns the infrastructure, mounted modules, and HTTP listener of one process.
type Server struct {
	infra   *infrastructure.Infrastructure
	modules *Modules
	http    *httpServer
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra)
	if err := modules.Mount(router); err != nil {
		return nil, err
	}

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"env", cfg.Env(),
	)

	return &Server{
		infra:   infra,
		modules: modules,
		http:    newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

// Run starts the server and blocks until ctx is cancelled or a startup hook fails.
// Either way the lifecycle is shut down within shutdownTimeout before Run returns.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	if err := s.start(); err != nil {
		return err
	}

	startup := make(chan error, 1)
	go func() { startup <- s.infra.Lifecycle.WaitForStartup() }()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-startup:
		if err != nil {
			s.infra.Logger.Error("startup failed", "error", err)
			runErr = fmt.Errorf("startup: %w", err)
			break
		}
		s.infra.Logger.Info("all subsystems ready")
		<-ctx.Done()
	}

	return errors.Join(runErr, s.shutdown(shutdownTimeout))
}

func (s *Server) start() error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}
	return s.http.Start(s.infra.Lifecycle)
}

func (s *Server) shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}
