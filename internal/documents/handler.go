package documents

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/JaimeStill/aligner/internal/auth"
	"github.com/JaimeStill/aligner/pkg/handlers"
	"github.com/JaimeStill/aligner/pkg/openapi"
	"github.com/JaimeStill/aligner/pkg/pagination"
	"github.com/JaimeStill/aligner/pkg/routes"
)

// multipartOverhead allows for form fields and part headers beyond the file itself.
const multipartOverhead = 1 << 20

// Handler provides HTTP endpoints for document operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// NewHandler creates a Handler with the given system, logger, pagination config, and upload size limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "documents"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for document endpoints.
func (h *Handler) Routes() routes.Group {
	idParam := []*openapi.Parameter{openapi.PathParam("id", "Document id")}

	return routes.Group{
		Prefix: "/documents",
		Tags:   []string{"Documents"},
		Routes: []routes.Route{
			{
				Method: "GET", Pattern: "", Handler: h.List,
				OpenAPI: &openapi.Operation{
					Summary:  "List documents",
					Security: openapi.Bearer,
					Parameters: []*openapi.Parameter{
						openapi.QueryParam("page", "integer", "Page number", false),
						openapi.QueryParam("page_size", "integer", "Results per page", false),
						openapi.QueryParam("search", "string", "Search name, source, and agency", false),
						openapi.QueryParam("sort", "string", "Sort fields, e.g. -CreatedAt", false),
						openapi.QueryParam("filename", "string", "Original name contains", false),
						openapi.QueryParam("file_type", "string", "Extension, e.g. pdf", false),
						openapi.QueryParam("source", "string", "Source contains", false),
						openapi.QueryParam("relevant_agency", "string", "Agency contains", false),
						openapi.QueryParam("uploaded_by", "integer", "Uploader user id", false),
					},
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Page of documents", "DocumentPage"),
						401: openapi.ResponseRef("Unauthorized"),
					},
				},
			},
			{
				Method: "POST", Pattern: "/upload", Handler: h.Upload,
				OpenAPI: &openapi.Operation{
					Summary:     "Upload a document",
					Description: "Multipart form with the file in the document field. Text is extracted and segmented into sections.",
					Security:    openapi.Bearer,
					RequestBody: &openapi.RequestBody{
						Required: true,
						Content: map[string]*openapi.MediaType{
							"multipart/form-data": {Schema: openapi.SchemaRef("DocumentUpload")},
						},
					},
					Responses: map[int]*openapi.Response{
						201: openapi.ResponseJSON("Stored document", "Document"),
						400: openapi.ResponseRef("BadRequest"),
						401: openapi.ResponseRef("Unauthorized"),
						413: openapi.ResponseRef("TooLarge"),
					},
				},
			},
			{
				Method: "GET", Pattern: "/file/{id}", Handler: h.File,
				OpenAPI: &openapi.Operation{
					Summary:    "Download the stored file",
					Security:   openapi.Bearer,
					Parameters: idParam,
					Responses: map[int]*openapi.Response{
						200: {Description: "File content"},
						404: openapi.ResponseRef("NotFound"),
					},
				},
			},
			{
				Method: "GET", Pattern: "/{id}", Handler: h.Find,
				OpenAPI: &openapi.Operation{
					Summary:    "Find a document with its sections",
					Security:   openapi.Bearer,
					Parameters: idParam,
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Document with sections", "DocumentDetail"),
						400: openapi.ResponseRef("BadRequest"),
						404: openapi.ResponseRef("NotFound"),
					},
				},
			},
			{
				Method: "PUT", Pattern: "/{id}", Handler: h.Update,
				OpenAPI: &openapi.Operation{
					Summary:     "Update document metadata",
					Security:    openapi.Bearer,
					Parameters:  idParam,
					RequestBody: openapi.RequestBodyJSON("DocumentUpdate", true),
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Updated document", "Document"),
						400: openapi.ResponseRef("BadRequest"),
						404: openapi.ResponseRef("NotFound"),
					},
				},
			},
			{
				Method: "DELETE", Pattern: "/{id}", Handler: h.Delete,
				OpenAPI: &openapi.Operation{
					Summary:     "Delete a document",
					Description: "Removes the document's insights, section tags, mappings, sections, and stored file.",
					Security:    openapi.Bearer,
					Parameters:  idParam,
					Responses: map[int]*openapi.Response{
						204: {Description: "Deleted"},
						404: openapi.ResponseRef("NotFound"),
					},
				},
			},
		},
	}
}

// List returns a paginated list of documents with optional query parameter filters.
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

// Find returns a single document with its sections.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	doc, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

// Upload accepts a multipart form with the file in "document" (or "file")
// and optional source, publication_date, and relevant_agency fields.
// The extension and size are checked before anything is stored.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, auth.ErrUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %w", ErrNoFile, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := formFile(r, "document", "file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNoFile)
		return
	}
	defer file.Close()

	if err := Validate(header.Filename, header.Size, h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}

	cmd := CreateCommand{
		Data:            data,
		Filename:        header.Filename,
		Source:          formValue(r, "source"),
		PublicationDate: formValue(r, "publication_date"),
		RelevantAgency:  formValue(r, "relevant_agency"),
		UploadedBy:      user.ID,
	}

	doc, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, doc)
}

// Update changes the supplied metadata fields.
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

	doc, err := h.sys.Update(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

// File streams the stored file with a content type chosen by extension.
func (h *Handler) File(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	f, err := h.sys.Open(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer f.Body.Close()

	disposition := "attachment"
	if f.Inline {
		disposition = "inline"
	}

	w.Header().Set("Content-Type", f.ContentType)
	if cd := mime.FormatMediaType(disposition, map[string]string{"filename": f.Name}); cd != "" {
		disposition = cd
	}
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, f.Body); err != nil {
		h.logger.Warn("file stream interrupted", "id", id, "error", err)
	}
}

// Delete removes a document and its dependents.
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

func formFile(r *http.Request, fields ...string) (multipart.File, *multipart.FileHeader, error) {
	var err error
	for _, field := range fields {
		var (
			f multipart.File
			h *multipart.FileHeader
		)
		f, h, err = r.FormFile(field)
		if err == nil {
			return f, h, nil
		}
	}
	return nil, nil, err
}

func formValue(r *http.Request, key string) *string {
	v := r.FormValue(key)
	if v == "" {
		return nil
	}
	return &v
}

// Schemas returns the OpenAPI component schemas for documents.
func Schemas() map[string]*openapi.Schema {
	nullableString := &openapi.Schema{Type: "string"}

	document := &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":               {Type: "integer", Format: "int64"},
			"filename":         {Type: "string", Description: "Stored file name"},
			"original_name":    {Type: "string"},
			"file_type":        {Type: "string", Enum: []any{".pdf", ".doc", ".docx", ".txt"}},
			"file_size":        {Type: "integer", Format: "int64"},
			"source":           nullableString,
			"publication_date": nullableString,
			"relevant_agency":  nullableString,
			"uploaded_by":      {Type: "integer", Format: "int64"},
			"uploaded_by_name": nullableString,
			"sections_count":   {Type: "integer"},
			"mappings_count":   {Type: "integer"},
			"created_at":       {Type: "string", Format: "date-time"},
		},
	}

	detail := maps.Clone(document.Properties)
	detail["sections"] = &openapi.Schema{Type: "array", Items: openapi.SchemaRef("Section")}

	return map[string]*openapi.Schema{
		"Document": document,
		"Section": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":            {Type: "integer", Format: "int64"},
				"document_id":   {Type: "integer", Format: "int64"},
				"section_text":  {Type: "string"},
				"section_start": {Type: "integer", Description: "Rune offset into the extracted text"},
				"section_end":   {Type: "integer", Description: "Exclusive rune offset"},
				"tags":          {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"created_at":    {Type: "string", Format: "date-time"},
			},
		},
		"DocumentDetail": {
			Type:       "object",
			Properties: detail,
		},
		"DocumentPage": pagination.Schema("Document"),
		"DocumentUpload": {
			Type:     "object",
			Required: []string{"document"},
			Properties: map[string]*openapi.Schema{
				"document":         {Type: "string", Format: "binary"},
				"source":           {Type: "string"},
				"publication_date": {Type: "string"},
				"relevant_agency":  {Type: "string"},
			},
		},
		"DocumentUpdate": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"source":           {Type: "string"},
				"publication_date": {Type: "string"},
				"relevant_agency":  {Type: "string"},
			},
		},
	}
}
