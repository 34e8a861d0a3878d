package auth

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/aligner/pkg/handlers"
	"github.com/JaimeStill/aligner/pkg/openapi"
	"github.com/JaimeStill/aligner/pkg/routes"
)

// Handler provides HTTP endpoints for registration, login, and user administration.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler for the given system.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "auth"),
	}
}

// RequireAuth returns the middleware enforcing a valid token.
func (h *Handler) RequireAuth() routes.Middleware {
	return RequireAuth(h.sys, h.logger)
}

// Routes returns the auth route group. Register and login are public;
// user administration requires an admin.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/auth",
		Tags:   []string{"Auth"},
		Routes: []routes.Route{
			{
				Method: "POST", Pattern: "/register",
				Handler: Authenticate(h.sys, h.logger)(h.Register),
				OpenAPI: &openapi.Operation{
					Summary:     "Register a user",
					Description: "Public. The role field is honored only when the caller is an admin; everyone else is registered as analyst.",
					RequestBody: openapi.RequestBodyJSON("RegisterCommand", true),
					Responses: map[int]*openapi.Response{
						201: openapi.ResponseJSON("Created user", "User"),
						400: openapi.ResponseRef("BadRequest"),
						409: openapi.ResponseRef("Conflict"),
					},
				},
			},
			{
				Method: "POST", Pattern: "/login", Handler: h.Login,
				OpenAPI: &openapi.Operation{
					Summary:     "Log in with username or email",
					RequestBody: openapi.RequestBodyJSON("LoginCommand", true),
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Signed token and user", "LoginResult"),
						400: openapi.ResponseRef("BadRequest"),
						401: openapi.ResponseRef("Unauthorized"),
						403: openapi.ResponseRef("Forbidden"),
					},
				},
			},
		},
		Children: []routes.Group{
			{
				Middleware: []routes.Middleware{h.RequireAuth()},
				Routes: []routes.Route{
					{
						Method: "GET", Pattern: "/me", Handler: h.Me,
						OpenAPI: &openapi.Operation{
							Summary:  "Current user",
							Security: openapi.Bearer,
							Responses: map[int]*openapi.Response{
								200: openapi.ResponseJSON("Authenticated user", "User"),
								401: openapi.ResponseRef("Unauthorized"),
							},
						},
					},
				},
			},
			{
				Prefix:     "/users",
				Middleware: []routes.Middleware{h.RequireAuth(), RequireAdmin(h.logger)},
				Routes: []routes.Route{
					{
						Method: "GET", Pattern: "", Handler: h.ListUsers,
						OpenAPI: &openapi.Operation{
							Summary:  "List users",
							Security: openapi.Bearer,
							Responses: map[int]*openapi.Response{
								200: {
									Description: "Users, newest first",
									Content: map[string]*openapi.MediaType{
										"application/json": {Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("User")}},
									},
								},
								401: openapi.ResponseRef("Unauthorized"),
								403: openapi.ResponseRef("Forbidden"),
							},
						},
					},
					{
						Method: "DELETE", Pattern: "/{id}", Handler: h.DeleteUser,
						OpenAPI: &openapi.Operation{
							Summary:    "Delete a user",
							Security:   openapi.Bearer,
							Parameters: []*openapi.Parameter{openapi.PathParam("id", "User id")},
							Responses: map[int]*openapi.Response{
								204: {Description: "Deleted"},
								403: openapi.ResponseRef("Forbidden"),
								404: openapi.ResponseRef("NotFound"),
								409: openapi.ResponseRef("Conflict"),
							},
						},
					},
					{
						Method: "PUT", Pattern: "/{id}/role", Handler: h.SetRole,
						OpenAPI: &openapi.Operation{
							Summary:     "Change a user's role",
							Security:    openapi.Bearer,
							Parameters:  []*openapi.Parameter{openapi.PathParam("id", "User id")},
							RequestBody: openapi.RequestBodyJSON("RoleCommand", true),
							Responses: map[int]*openapi.Response{
								200: openapi.ResponseJSON("Updated user", "User"),
								400: openapi.ResponseRef("BadRequest"),
								403: openapi.ResponseRef("Forbidden"),
								404: openapi.ResponseRef("NotFound"),
							},
						},
					},
					{
						Method: "PUT", Pattern: "/{id}/status", Handler: h.SetStatus,
						OpenAPI: &openapi.Operation{
							Summary:     "Activate or deactivate a user",
							Security:    openapi.Bearer,
							Parameters:  []*openapi.Parameter{openapi.PathParam("id", "User id")},
							RequestBody: openapi.RequestBodyJSON("StatusCommand", true),
							Responses: map[int]*openapi.Response{
								200: openapi.ResponseJSON("Updated user", "User"),
								400: openapi.ResponseRef("BadRequest"),
								403: openapi.ResponseRef("Forbidden"),
								404: openapi.ResponseRef("NotFound"),
							},
						},
					},
				},
			},
		},
	}
}

// Register creates an account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var cmd RegisterCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	u, err := h.sys.Register(r.Context(), cmd, UserFromContext(r.Context()))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, u)
}

// Login exchanges credentials for a token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var cmd LoginCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.Login(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Me returns the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, UserFromContext(r.Context()))
}

// ListUsers returns every account.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.sys.List(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, users)
}

// DeleteUser removes an account other than the protected admin.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
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

// SetRole changes an account's role.
func (h *Handler) SetRole(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if id == ProtectedUserID {
		handlers.RespondError(w, h.logger, http.StatusForbidden, ErrProtectedUser)
		return
	}

	var cmd RoleCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	u, err := h.sys.SetRole(r.Context(), id, cmd.Role)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, u)
}

// SetStatus activates or deactivates an account.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if id == ProtectedUserID {
		handlers.RespondError(w, h.logger, http.StatusForbidden, ErrProtectedUser)
		return
	}

	var cmd StatusCommand
	if err := handlers.DecodeJSON(r, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if cmd.IsActive == nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingStatus)
		return
	}

	u, err := h.sys.SetActive(r.Context(), id, *cmd.IsActive)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, u)
}

// Schemas returns the OpenAPI component schemas for auth.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"User": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":         {Type: "integer", Format: "int64"},
				"username":   {Type: "string"},
				"email":      {Type: "string"},
				"role":       {Type: "string", Enum: []any{"admin", "analyst"}},
				"is_active":  {Type: "boolean"},
				"created_at": {Type: "string", Format: "date-time"},
			},
		},
		"RegisterCommand": {
			Type:     "object",
			Required: []string{"username", "email", "password"},
			Properties: map[string]*openapi.Schema{
				"username": {Type: "string"},
				"email":    {Type: "string"},
				"password": {Type: "string"},
				"role":     {Type: "string", Enum: []any{"admin", "analyst"}},
			},
		},
		"LoginCommand": {
			Type:     "object",
			Required: []string{"username", "password"},
			Properties: map[string]*openapi.Schema{
				"username": {Type: "string", Description: "Username or email"},
				"password": {Type: "string"},
			},
		},
		"LoginResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"token":      {Type: "string"},
				"expires_at": {Type: "string", Format: "date-time"},
				"user":       openapi.SchemaRef("User"),
			},
		},
		"RoleCommand": {
			Type:       "object",
			Required:   []string{"role"},
			Properties: map[string]*openapi.Schema{"role": {Type: "string", Enum: []any{"admin", "analyst"}}},
		},
		"StatusCommand": {
			Type:       "object",
			Required:   []string{"is_active"},
			Properties: map[string]*openapi.Schema{"is_active": {Type: "boolean"}},
		},
	}
}
