package analysis

import (
	"context"
	"log/slog"
	"maps"
	"net/http"

	"github.com/JaimeStill/aligner/internal/scoring"
	"github.com/JaimeStill/aligner/pkg/handlers"
	"github.com/JaimeStill/aligner/pkg/openapi"
	"github.com/JaimeStill/aligner/pkg/routes"
)

// Handler provides HTTP endpoints for the aggregate views.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler for the given system.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "analysis"),
	}
}

// Routes returns the analysis route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/analysis",
		Tags:   []string{"Analysis"},
		Routes: []routes.Route{
			{
				Method: "GET", Pattern: "/domain-coverage", Handler: h.DomainCoverage,
				OpenAPI: view("Alignment and coverage per domain", "CoverageRow"),
			},
			{
				Method: "GET", Pattern: "/gap-matrix", Handler: h.GapMatrix,
				OpenAPI: view("Coverage of every domain within every document", "MatrixCell"),
			},
			{
				Method: "GET", Pattern: "/maturity-distribution", Handler: h.MaturityDistribution,
				OpenAPI: view("Mapping counts per domain and maturity level", "MaturityBucket"),
			},
			{
				Method: "GET", Pattern: "/areas-of-concern", Handler: h.AreasOfConcern,
				OpenAPI: view("Domains without mappings or aligned below 50%, worst first", "DomainScore"),
			},
			{
				Method: "GET", Pattern: "/document-coverage", Handler: h.DocumentCoverage,
				OpenAPI: view("Alignment and coverage per document", "DocumentCoverage"),
			},
		},
	}
}

func (h *Handler) DomainCoverage(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.sys.DomainCoverage)
}

func (h *Handler) GapMatrix(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.sys.GapMatrix)
}

func (h *Handler) MaturityDistribution(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.sys.MaturityDistribution)
}

func (h *Handler) AreasOfConcern(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.sys.AreasOfConcern)
}

func (h *Handler) DocumentCoverage(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.sys.DocumentCoverage)
}

func serve[T any](h *Handler, w http.ResponseWriter, r *http.Request, fn func(context.Context, Scope) ([]T, error)) {
	scope, err := ScopeFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	rows, err := fn(r.Context(), scope)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rows)
}

func view(summary, schema string) *openapi.Operation {
	return &openapi.Operation{
		Summary: summary,
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("document_ids", "string", "Comma-separated document ids; omit for all documents", false),
		},
		Responses: map[int]*openapi.Response{
			200: {
				Description: summary,
				Content: map[string]*openapi.MediaType{
					"application/json": {Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef(schema)}},
				},
			},
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
		},
		Security: openapi.Bearer,
	}
}

// Schemas returns the OpenAPI component schemas for analysis views.
func Schemas() map[string]*openapi.Schema {
	pct := &openapi.Schema{Type: "number", Description: "Null when there are no mappings"}
	counts := map[string]*openapi.Schema{
		"total_mappings":     {Type: "integer"},
		"fully_aligned":      {Type: "integer"},
		"partially_aligned":  {Type: "integer"},
		"not_aligned":        {Type: "integer"},
		"avg_maturity_level": {Type: "number"},
	}
	coverage := &openapi.Schema{Type: "string", Enum: enum(scoring.NoCoverage, scoring.StrongCoverage, scoring.PartialCoverage, scoring.WeakCoverage)}

	domainScore := with(counts, map[string]*openapi.Schema{
		"domain_id":            {Type: "integer", Format: "int64"},
		"domain_name":          {Type: "string"},
		"domain_code":          {Type: "string"},
		"description":          {Type: "string"},
		"alignment_percentage": pct,
	})

	return map[string]*openapi.Schema{
		"DomainScore": {Type: "object", Properties: domainScore},
		"CoverageRow": {Type: "object", Properties: with(domainScore, map[string]*openapi.Schema{
			"coverage_status": coverage,
		})},
		"MatrixCell": {Type: "object", Properties: with(counts, map[string]*openapi.Schema{
			"domain_id":       {Type: "integer", Format: "int64"},
			"domain_name":     {Type: "string"},
			"domain_code":     {Type: "string"},
			"document_id":     {Type: "integer", Format: "int64"},
			"document_name":   {Type: "string"},
			"relevant_agency": {Type: "string"},
			"coverage_status": coverage,
		})},
		"MaturityBucket": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"domain_id":      {Type: "integer", Format: "int64"},
				"domain_name":    {Type: "string"},
				"domain_code":    {Type: "string"},
				"maturity_level": {Type: "integer", Enum: []any{1, 2, 3}},
				"count":          {Type: "integer"},
			},
		},
		"DocumentCoverage": {Type: "object", Properties: with(counts, map[string]*openapi.Schema{
			"document_id":          {Type: "integer", Format: "int64"},
			"document_name":        {Type: "string"},
			"relevant_agency":      {Type: "string"},
			"alignment_percentage": pct,
			"domains_covered":      {Type: "integer"},
			"coverage_status":      coverage,
		})},
	}
}

func with(base, extra map[string]*openapi.Schema) map[string]*openapi.Schema {
	out := maps.Clone(base)
	maps.Copy(out, extra)
	return out
}

func enum[T ~string](values ...T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
