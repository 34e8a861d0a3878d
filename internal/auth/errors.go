package auth

import (
	"errors"
	"net/http"
)

// Domain errors for authentication and user management.
var (
	ErrNotFound           = errors.New("user not found")
	ErrDuplicate          = errors.New("username or email already exists")
	ErrMissingFields      = errors.New("username, email, and password are required")
	ErrMissingCredentials = errors.New("username and password are required")
	ErrInvalidRole        = errors.New("invalid role: must be admin or analyst")
	ErrMissingStatus      = errors.New("is_active is required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactive           = errors.New("account is disabled")
	ErrUnauthorized       = errors.New("authentication required")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("admin access only")
	ErrProtectedUser      = errors.New("the main admin account cannot be deleted, demoted, or disabled")
	ErrUserInUse          = errors.New("user owns documents, mappings, or insights")
)

// MapHTTPStatus maps auth domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrUserInUse):
		return http.StatusConflict
	case errors.Is(err, ErrMissingFields),
		errors.Is(err, ErrMissingCredentials),
		errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrMissingStatus):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInactive),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrProtectedUser):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
