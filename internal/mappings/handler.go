package mappings

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/aligner/internal/auth"
	"github.com/JaimeStill/aligner/internal/scoring"
	"github.com/JaimeStill/aligner/pkg/handlers"
	"github.com/JaimeStill/aligner/pkg/openapi"
	"github.com/JaimeStill/aligner/pkg/pagination"
	"github.com/JaimeStill/aligner/pkg/routes"
)

// Handler provides HTTP endpoints for mapping operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "mappings"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for mapping endpoints.
func (h *Handler) Routes() routes.Group {
	idParam := []*openapi.Parameter{openapi.PathParam("id", "Mapping id")}

	return routes.Group{
		Prefix: "/mappings",
		Tags:   []string{"Mappings"},
		Routes: []routes.Route{
			{
				Method: "GET", Pattern: "", Handler: h.List,
				OpenAPI: &openapi.Operation{
					Summary:  "List mappings",
					Security: openapi.Bearer,
					Parameters: []*openapi.Parameter{
						openapi.QueryParam("page", "integer", "Page number", false),
						openapi.QueryParam("page_size", "integer", "Results per page", false),
						openapi.QueryParam("search", "string", "Search document, domain, and notes", false),
						openapi.QueryParam("sort", "string", "Sort fields, e.g. -CreatedAt", false),
						openapi.QueryParam("document_id", "integer", "Document id", false),
						openapi.QueryParam("section_id", "integer", "Section id", false),
						openapi.QueryParam("domain_id", "integer", "Domain id", false),
						openapi.QueryParam("maturity_level", "integer", "Maturity level", false),
						openapi.QueryParam("alignment_status", "string", "Alignment status", false),
						openapi.QueryParam("mapped_by", "integer", "Mapper user id", false),
					},
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Page of mappings", "MappingPage"),
						401: openapi.ResponseRef("Unauthorized"),
					},
				},
			},
			{
				Method: "POST", Pattern: "", Handler: h.Create,
				OpenAPI: &openapi.Operation{
					Summary:     "Create a mapping",
					Security:    openapi.Bearer,
					RequestBody: openapi.RequestBodyJSON("MappingCreate", true),
					Responses: map[int]*openapi.Response{
						201: openapi.ResponseJSON("Created mapping", "Mapping"),
						400: openapi.ResponseRef("BadRequest"),
						401: openapi.ResponseRef("Unauthorized"),
						409: openapi.ResponseRef("Conflict"),
					},
				},
			},
			{
				Method: "GET", Pattern: "/statistics", Handler: h.Statistics,
				OpenAPI: &openapi.Operation{
					Summary:  "Mapping statistics per domain",
					Security: openapi.Bearer,
					Parameters: []*openapi.Parameter{
						openapi.QueryParam("document_id", "integer", "Restrict to one document", false),
					},
					Responses: map[int]*openapi.Response{
						200: {
							Description: "One row per domain",
							Content: map[string]*openapi.MediaType{
								"application/json": {Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("CoverageRow")}},
							},
						},
						400: openapi.ResponseRef("BadRequest"),
					},
				},
			},
			{
				Method: "GET", Pattern: "/{id}", Handler: h.Find,
				OpenAPI: &openapi.Operation{
					Summary:    "Find a mapping",
					Security:   openapi.Bearer,
					Parameters: idParam,
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Mapping", "Mapping"),
						400: openapi.ResponseRef("BadRequest"),
						404: openapi.ResponseRef("NotFound"),
					},
				},
			},
			{
				Method: "PUT", Pattern: "/{id}", Handler: h.Update,
				OpenAPI: &openapi.Operation{
					Summary:     "Update a mapping",
					Security:    openapi.Bearer,
					Parameters:  idParam,
					RequestBody: openapi.RequestBodyJSON("MappingUpdate", true),
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Updated mapping", "Mapping"),
						400: openapi.ResponseRef("BadRequest"),
						404: openapi.ResponseRef("NotFound"),
						409: openapi.ResponseRef("Conflict"),
					},
				},
			},
			{
				Method: "DELETE", Pattern: "/{id}", Handler: h.Delete,
				OpenAPI: &openapi.Operation{
					Summary:    "Delete a mapping",
					Security:   openapi.Bearer,
					Parameters: idParam,
					Responses: map[int]*openapi.Response{
						204: {Description: "Deleted"},
						404: openapi.ResponseRef("NotFound"),
					},
				},
			},
		},
	}
}

// List returns a paginated list of mappings with optional filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	m, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, m)
}

// Create records a mapping for the authenticated user.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, auth.ErrUnauthorized)
		return
	}

	var cmd CreateCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	cmd.MappedBy = user.ID

	m, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, m)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var cmd UpdateCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	m, err := h.sys.Update(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, m)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Statistics returns per-domain aggregates, for one document when document_id is given.
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	var documentID *int64
	if raw := r.URL.Query().Get("document_id"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 1 {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: document_id %q", handlers.ErrInvalidID, raw))
			return
		}
		documentID = &v
	}

	stats, err := h.sys.Statistics(r.Context(), documentID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, stats)
}

// Schemas returns the OpenAPI component schemas for mappings.
func Schemas() map[string]*openapi.Schema {
	statuses := make([]any, len(scoring.Statuses))
	for i, s := range scoring.Statuses {
		statuses[i] = string(s)
	}
	maturity := &openapi.Schema{Type: "integer", Enum: []any{1, 2, 3}}
	status := &openapi.Schema{Type: "string", Enum: statuses}

	return map[string]*openapi.Schema{
		"Mapping": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":               {Type: "integer", Format: "int64"},
				"document_id":      {Type: "integer", Format: "int64"},
				"section_id":       {Type: "integer", Format: "int64", Description: "Null for a whole-document mapping"},
				"domain_id":        {Type: "integer", Format: "int64"},
				"maturity_level":   maturity,
				"alignment_status": status,
				"notes":            {Type: "string"},
				"mapped_by":        {Type: "integer", Format: "int64"},
				"created_at":       {Type: "string", Format: "date-time"},
				"updated_at":       {Type: "string", Format: "date-time"},
				"document_name":    {Type: "string"},
				"section_text":     {Type: "string"},
				"domain_name":      {Type: "string"},
				"domain_code":      {Type: "string"},
				"mapped_by_name":   {Type: "string"},
			},
		},
		"MappingCreate": {
			Type:     "object",
			Required: []string{"document_id", "domain_id", "maturity_level", "alignment_status"},
			Properties: map[string]*openapi.Schema{
				"document_id":      {Type: "integer", Format: "int64"},
				"section_id":       {Type: "integer", Format: "int64"},
				"domain_id":        {Type: "integer", Format: "int64"},
				"maturity_level":   maturity,
				"alignment_status": status,
				"notes":            {Type: "string"},
			},
		},
		"MappingUpdate": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"domain_id":        {Type: "integer", Format: "int64"},
				"maturity_level":   maturity,
				"alignment_status": status,
				"notes":            {Type: "string", Description: "Blank clears the notes"},
			},
		},
		"MappingPage": pagination.Schema("Mapping"),
	}
}
