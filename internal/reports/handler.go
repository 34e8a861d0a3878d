package reports

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/aligner/internal/analysis"
	"github.com/JaimeStill/aligner/pkg/handlers"
	"github.com/JaimeStill/aligner/pkg/openapi"
	"github.com/JaimeStill/aligner/pkg/routes"
)

// Handler provides HTTP endpoints for reports.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler for the given system.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "reports"),
	}
}

// Routes returns the report route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/reports",
		Tags:   []string{"Reports"},
		Routes: []routes.Route{
			{
				Method: "GET", Pattern: "/comprehensive", Handler: h.Comprehensive,
				OpenAPI: operation("Comprehensive report", "ComprehensiveReport"),
			},
			{
				Method: "GET", Pattern: "/gap-analysis", Handler: h.GapAnalysis,
				OpenAPI: operation("Gap analysis report", "GapReport"),
			},
			{
				Method: "GET", Pattern: "/recommendations", Handler: h.Recommendations,
				OpenAPI: operation("Recommendations report", "RecommendationReport"),
			},
		},
	}
}

func (h *Handler) Comprehensive(w http.ResponseWriter, r *http.Request) {
	generate(h, w, r, h.sys.Comprehensive)
}

func (h *Handler) GapAnalysis(w http.ResponseWriter, r *http.Request) {
	generate(h, w, r, h.sys.GapAnalysis)
}

func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	generate(h, w, r, h.sys.Recommendations)
}

func generate[T any](h *Handler, w http.ResponseWriter, r *http.Request, fn func(context.Context, analysis.Scope) (*T, error)) {
	scope, err := analysis.ParseScope(r.URL.Query().Get("document_ids"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	report, err := fn(r.Context(), scope)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, report)
}

func operation(summary, schema string) *openapi.Operation {
	return &openapi.Operation{
		Summary:  summary,
		Security: openapi.Bearer,
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("document_ids", "string", "Comma-separated document ids", true),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON(summary, schema),
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
		},
	}
}

// Schemas returns the OpenAPI component schemas for reports.
// Row schemas are shared with the analysis and mapping packages.
func Schemas() map[string]*openapi.Schema {
	array := func(name string) *openapi.Schema {
		return &openapi.Schema{Type: "array", Items: openapi.SchemaRef(name)}
	}
	score := &openapi.Schema{Type: "number", Description: "Null when there are no mappings"}

	return map[string]*openapi.Schema{
		"ReportDocument": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":               {Type: "integer", Format: "int64"},
				"original_name":    {Type: "string"},
				"relevant_agency":  {Type: "string"},
				"publication_date": {Type: "string"},
				"created_at":       {Type: "string", Format: "date-time"},
			},
		},
		"ComprehensiveReport": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"metadata": {
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"generated_at":            {Type: "string", Format: "date-time"},
						"documents_analyzed":      {Type: "integer"},
						"total_mappings":          {Type: "integer"},
						"overall_alignment_score": score,
					},
				},
				"documents":         array("ReportDocument"),
				"domain_coverage":   array("CoverageRow"),
				"detailed_mappings": array("Mapping"),
				"areas_of_concern":  array("DomainScore"),
				"summary": {
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"total_mappings":          {Type: "integer"},
						"fully_aligned":           {Type: "integer"},
						"partially_aligned":       {Type: "integer"},
						"not_aligned":             {Type: "integer"},
						"overall_alignment_score": score,
						"domains_with_concerns":   {Type: "integer"},
					},
				},
			},
		},
		"GapReport": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"gap_analysis": {Type: "array", Items: &openapi.Schema{
					Type:        "object",
					Description: "DomainScore with gap_status",
					Properties: map[string]*openapi.Schema{
						"gap_status": {Type: "string", Enum: []any{"no_coverage", "critical_gap", "significant_gap", "minor_gap", "adequate_coverage"}},
					},
				}},
				"summary": {
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"total_domains":     {Type: "integer"},
						"no_coverage":       {Type: "integer"},
						"critical_gaps":     {Type: "integer"},
						"significant_gaps":  {Type: "integer"},
						"minor_gaps":        {Type: "integer"},
						"adequate_coverage": {Type: "integer"},
					},
				},
			},
		},
		"RecommendationReport": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"recommendations": {Type: "array", Items: &openapi.Schema{
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"domain_name":          {Type: "string"},
						"domain_code":          {Type: "string"},
						"description":          {Type: "string"},
						"alignment_percentage": score,
						"total_mappings":       {Type: "integer"},
						"recommendation":       {Type: "string"},
						"priority":             {Type: "string", Enum: []any{"High", "Medium"}},
					},
				}},
				"summary": {
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"total_recommendations": {Type: "integer"},
						"high_priority":         {Type: "integer"},
						"medium_priority":       {Type: "integer"},
					},
				},
			},
		},
	}
}
