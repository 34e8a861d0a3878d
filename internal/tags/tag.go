// Package tags manages the tag catalog and the tags attached to document sections.
package tags

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// DefaultColor is applied when a tag is created without a color.
const DefaultColor = "#3B82F6"

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Tag is a label that can be attached to document sections.
type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Sections  int       `json:"sections_count"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCommand carries a new tag.
type CreateCommand struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Normalize trims the name, applies the default color, and validates both.
func (c *CreateCommand) Normalize() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Color = strings.TrimSpace(c.Color)
	if c.Name == "" {
		return ErrMissingName
	}
	if c.Color == "" {
		c.Color = DefaultColor
	}
	if !colorPattern.MatchString(c.Color) {
		return ErrInvalidColor
	}
	return nil
}

// Domain errors for tag operations.
var (
	ErrNotFound         = errors.New("tag not found")
	ErrDuplicate        = errors.New("tag already exists")
	ErrMissingName      = errors.New("tag name is required")
	ErrInvalidColor     = errors.New("color must be a hex value like #3B82F6")
	ErrInvalidReference = errors.New("section or tag does not exist")
)

// MapHTTPStatus maps tag domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrMissingName),
		errors.Is(err, ErrInvalidColor),
		errors.Is(err, ErrInvalidReference):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
