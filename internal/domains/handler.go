package domains

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/aligner/pkg/handlers"
	"github.com/JaimeStill/aligner/pkg/openapi"
	"github.com/JaimeStill/aligner/pkg/routes"
)

// Handler provides HTTP endpoints for framework domains.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler for the given system.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "domains"),
	}
}

// Routes returns the public domain endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/domains",
		Tags:   []string{"Domains"},
		Routes: []routes.Route{
			{
				Method: "GET", Pattern: "", Handler: h.List,
				OpenAPI: &openapi.Operation{
					Summary: "List framework domains",
					Responses: map[int]*openapi.Response{
						200: {
							Description: "All five domains ordered by id",
							Content: map[string]*openapi.MediaType{
								"application/json": {Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("Domain")}},
							},
						},
					},
				},
			},
			{
				Method: "GET", Pattern: "/{id}", Handler: h.Find,
				OpenAPI: &openapi.Operation{
					Summary:    "Get a framework domain",
					Parameters: []*openapi.Parameter{openapi.PathParam("id", "Domain id")},
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Domain", "Domain"),
						400: openapi.ResponseRef("BadRequest"),
						404: openapi.ResponseRef("NotFound"),
					},
				},
			},
		},
	}
}

// LegacyRoutes serves the domain list at /mappings/domains for existing clients.
func (h *Handler) LegacyRoutes() routes.Group {
	return routes.Group{
		Prefix: "/mappings",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/domains", Handler: h.List},
		},
	}
}

// List returns every framework domain.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	domains, err := h.sys.List(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, domains)
}

// Find returns a single domain by id.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	d, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, d)
}

// Schemas returns the OpenAPI component schemas for domains.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Domain": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":              {Type: "integer", Format: "int64"},
				"domain_name":     {Type: "string", Example: "Understand"},
				"domain_code":     {Type: "string", Example: "UNDERSTAND"},
				"description":     {Type: "string"},
				"maturity_levels": {Type: "array", Items: &openapi.Schema{Type: "integer"}},
			},
		},
	}
}
