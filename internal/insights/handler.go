package insights

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/aligner/internal/auth"
	"github.com/JaimeStill/aligner/pkg/handlers"
	"github.com/JaimeStill/aligner/pkg/openapi"
	"github.com/JaimeStill/aligner/pkg/pagination"
	"github.com/JaimeStill/aligner/pkg/routes"
)

// Handler provides HTTP endpoints for stakeholder insights.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "insights"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for insight endpoints.
func (h *Handler) Routes() routes.Group {
	idParam := []*openapi.Parameter{openapi.PathParam("id", "Insight id")}

	return routes.Group{
		Prefix: "/insights",
		Tags:   []string{"Insights"},
		Routes: []routes.Route{
			{
				Method: "GET", Pattern: "", Handler: h.List,
				OpenAPI: &openapi.Operation{
					Summary:  "List stakeholder insights",
					Security: openapi.Bearer,
					Parameters: []*openapi.Parameter{
						openapi.QueryParam("page", "integer", "Page number", false),
						openapi.QueryParam("page_size", "integer", "Results per page", false),
						openapi.QueryParam("search", "string", "Search title, content, and stakeholder", false),
						openapi.QueryParam("related_mapping_id", "integer", "Linked mapping id", false),
						openapi.QueryParam("insight_type", "string", "Insight type, e.g. interview", false),
					},
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Page of insights", "InsightPage"),
						401: openapi.ResponseRef("Unauthorized"),
					},
				},
			},
			{
				Method: "POST", Pattern: "", Handler: h.Create,
				OpenAPI: &openapi.Operation{
					Summary:     "Record a stakeholder insight",
					Security:    openapi.Bearer,
					RequestBody: openapi.RequestBodyJSON("InsightCreate", true),
					Responses: map[int]*openapi.Response{
						201: openapi.ResponseJSON("Created insight", "Insight"),
						400: openapi.ResponseRef("BadRequest"),
						401: openapi.ResponseRef("Unauthorized"),
					},
				},
			},
			{
				Method: "GET", Pattern: "/{id}", Handler: h.Find,
				OpenAPI: &openapi.Operation{
					Summary:    "Find an insight",
					Security:   openapi.Bearer,
					Parameters: idParam,
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Insight", "Insight"),
						404: openapi.ResponseRef("NotFound"),
					},
				},
			},
			{
				Method: "DELETE", Pattern: "/{id}", Handler: h.Delete,
				OpenAPI: &openapi.Operation{
					Summary:    "Delete an insight",
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

	i, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, i)
}

// Create records an insight attributed to the authenticated user.
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
	cmd.CreatedBy = user.ID

	i, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, i)
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

// Schemas returns the OpenAPI component schemas for insights.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Insight": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":                 {Type: "integer", Format: "int64"},
				"title":              {Type: "string"},
				"content":            {Type: "string"},
				"stakeholder_name":   {Type: "string"},
				"insight_type":       {Type: "string", Default: DefaultType},
				"related_mapping_id": {Type: "integer", Format: "int64"},
				"created_by":         {Type: "integer", Format: "int64"},
				"created_by_name":    {Type: "string"},
				"created_at":         {Type: "string", Format: "date-time"},
			},
		},
		"InsightCreate": {
			Type:     "object",
			Required: []string{"title", "content"},
			Properties: map[string]*openapi.Schema{
				"title":              {Type: "string"},
				"content":            {Type: "string"},
				"stakeholder_name":   {Type: "string"},
				"insight_type":       {Type: "string", Default: DefaultType},
				"related_mapping_id": {Type: "integer", Format: "int64"},
			},
		},
		"InsightPage": pagination.Schema("Insight"),
	}
}
