package documents

import (
	"errors"
	"net/http"
)

// Domain errors for document operations.
var (
	ErrNotFound        = errors.New("document not found")
	ErrDuplicate       = errors.New("document already exists")
	ErrFileMissing     = errors.New("file not found")
	ErrNoFile          = errors.New("no file uploaded")
	ErrInvalidFileType = errors.New("invalid file type: only PDF, DOCX, DOC, and TXT files are allowed")
	ErrFileTooLarge    = errors.New("file exceeds maximum upload size")
	ErrNoFields        = errors.New("no fields to update")
)

// MapHTTPStatus maps document domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrFileMissing):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrNoFile),
		errors.Is(err, ErrInvalidFileType),
		errors.Is(err, ErrNoFields):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
