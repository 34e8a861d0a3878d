package tags

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/aligner/pkg/handlers"
	"github.com/JaimeStill/aligner/pkg/openapi"
	"github.com/JaimeStill/aligner/pkg/routes"
)

// Handler provides HTTP endpoints for tags.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler for the given system.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "tags"),
	}
}

// Routes returns the tag catalog group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/tags",
		Tags:   []string{"Tags"},
		Routes: []routes.Route{
			{
				Method: "GET", Pattern: "", Handler: h.List,
				OpenAPI: &openapi.Operation{
					Summary:  "List tags",
					Security: openapi.Bearer,
					Responses: map[int]*openapi.Response{
						200: {
							Description: "Tags ordered by name",
							Content: map[string]*openapi.MediaType{
								"application/json": {Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("Tag")}},
							},
						},
					},
				},
			},
			{
				Method: "POST", Pattern: "", Handler: h.Create,
				OpenAPI: &openapi.Operation{
					Summary:     "Create a tag",
					Security:    openapi.Bearer,
					RequestBody: openapi.RequestBodyJSON("TagCreate", true),
					Responses: map[int]*openapi.Response{
						201: openapi.ResponseJSON("Created tag", "Tag"),
						400: openapi.ResponseRef("BadRequest"),
						409: openapi.ResponseRef("Conflict"),
					},
				},
			},
			{
				Method: "DELETE", Pattern: "/{id}", Handler: h.Delete,
				OpenAPI: &openapi.Operation{
					Summary:    "Delete a tag",
					Security:   openapi.Bearer,
					Parameters: []*openapi.Parameter{openapi.PathParam("id", "Tag id")},
					Responses: map[int]*openapi.Response{
						204: {Description: "Deleted"},
						404: openapi.ResponseRef("NotFound"),
					},
				},
			},
		},
	}
}

// SectionRoutes returns the routes that attach tags to document sections.
func (h *Handler) SectionRoutes() routes.Group {
	params := []*openapi.Parameter{
		openapi.PathParam("section_id", "Section id"),
		openapi.PathParam("tag_id", "Tag id"),
	}

	return routes.Group{
		Prefix: "/sections/{section_id}/tags",
		Tags:   []string{"Tags"},
		Routes: []routes.Route{
			{
				Method: "PUT", Pattern: "/{tag_id}", Handler: h.TagSection,
				OpenAPI: &openapi.Operation{
					Summary:    "Tag a section",
					Security:   openapi.Bearer,
					Parameters: params,
					Responses: map[int]*openapi.Response{
						204: {Description: "Tagged"},
						400: openapi.ResponseRef("BadRequest"),
					},
				},
			},
			{
				Method: "DELETE", Pattern: "/{tag_id}", Handler: h.UntagSection,
				OpenAPI: &openapi.Operation{
					Summary:    "Remove a tag from a section",
					Security:   openapi.Bearer,
					Parameters: params,
					Responses: map[int]*openapi.Response{
						204: {Description: "Untagged"},
					},
				},
			},
		},
	}
}

// List returns every tag.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.sys.List(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, tags)
}

// Create adds a tag.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	tag, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, tag)
}

// Delete removes a tag.
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

// TagSection attaches a tag to a section.
func (h *Handler) TagSection(w http.ResponseWriter, r *http.Request) {
	sectionID, tagID, ok := h.linkIDs(w, r)
	if !ok {
		return
	}

	if err := h.sys.TagSection(r.Context(), tagID, sectionID); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UntagSection detaches a tag from a section.
func (h *Handler) UntagSection(w http.ResponseWriter, r *http.Request) {
	sectionID, tagID, ok := h.linkIDs(w, r)
	if !ok {
		return
	}

	if err := h.sys.UntagSection(r.Context(), tagID, sectionID); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) linkIDs(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	sectionID, err := handlers.PathID(r, "section_id")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return 0, 0, false
	}
	tagID, err := handlers.PathID(r, "tag_id")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return 0, 0, false
	}
	return sectionID, tagID, true
}

// Schemas returns the OpenAPI component schemas for tags.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Tag": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":             {Type: "integer", Format: "int64"},
				"name":           {Type: "string"},
				"color":          {Type: "string", Example: DefaultColor},
				"sections_count": {Type: "integer"},
				"created_at":     {Type: "string", Format: "date-time"},
			},
		},
		"TagCreate": {
			Type:     "object",
			Required: []string{"name"},
			Properties: map[string]*openapi.Schema{
				"name":  {Type: "string"},
				"color": {Type: "string", Pattern: colorPattern.String(), Default: DefaultColor},
			},
		},
	}
}
