package mappings

import (
	"errors"
	"net/http"
)

// Domain errors for mapping operations.
var (
	ErrNotFound         = errors.New("mapping not found")
	ErrDuplicate        = errors.New("mapping already exists for this document, section, and domain")
	ErrMissingFields    = errors.New("document_id, domain_id, maturity_level, and alignment_status are required")
	ErrInvalidMaturity  = errors.New("maturity_level must be 1, 2, or 3")
	ErrInvalidStatus    = errors.New("alignment_status must be fully_aligned, partially_aligned, or not_aligned")
	ErrInvalidReference = errors.New("document, section, or domain does not exist")
	ErrSectionMismatch  = errors.New("section does not belong to the document")
	ErrNoFields         = errors.New("no fields to update")
)

// MapHTTPStatus maps mapping domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrMissingFields),
		errors.Is(err, ErrInvalidMaturity),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidReference),
		errors.Is(err, ErrSectionMismatch),
		errors.Is(err, ErrNoFields):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
