package api

import (
	"fmt"

	"github.com/JaimeStill/aligner/internal/analysis"
	"github.com/JaimeStill/aligner/internal/auth"
	"github.com/JaimeStill/aligner/internal/config"
	"github.com/JaimeStill/aligner/internal/documents"
	"github.com/JaimeStill/aligner/internal/domains"
	"github.com/JaimeStill/aligner/internal/insights"
	"github.com/JaimeStill/aligner/internal/mappings"
	"github.com/JaimeStill/aligner/internal/reports"
	"github.com/JaimeStill/aligner/internal/tags"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Auth      auth.System
	Domains   domains.System
	Documents documents.System
	Mappings  mappings.System
	Analysis  analysis.System
	Reports   reports.System
	Tags      tags.System
	Insights  insights.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) (*Domain, error) {
	db := runtime.Database.Connection()

	tokens, err := auth.NewTokens(cfg.Auth.TokenSecret, cfg.Auth.TokenExpiryDuration())
	if err != nil {
		return nil, fmt.Errorf("auth tokens: %w", err)
	}

	analysisSystem := analysis.New(db, runtime.Logger)

	return &Domain{
		Auth:    auth.New(db, tokens, cfg.Auth.BcryptCost, runtime.Logger),
		Domains: domains.New(db, runtime.Logger),
		Documents: documents.New(
			db,
			runtime.Storage,
			runtime.Logger,
			runtime.Pagination,
			runtime.MaxUploadSize,
		),
		Mappings: mappings.New(db, analysisSystem, runtime.Logger, runtime.Pagination),
		Analysis: analysisSystem,
		Reports:  reports.New(db, analysisSystem, runtime.Logger),
		Tags:     tags.New(db, runtime.Logger),
		Insights: insights.New(db, runtime.Logger, runtime.Pagination),
	}, nil
}
