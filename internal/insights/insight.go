// Package insights records stakeholder input, optionally linked to a mapping.
// Insights are annotations only and never feed scoring.
package insights

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/JaimeStill/aligner/pkg/query"
	"github.com/JaimeStill/aligner/pkg/repository"
)

// DefaultType is applied when an insight is created without a type.
const DefaultType = "interview"

// Insight is a piece of stakeholder input.
type Insight struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Content          string    `json:"content"`
	StakeholderName  *string   `json:"stakeholder_name"`
	InsightType      string    `json:"insight_type"`
	RelatedMappingID *int64    `json:"related_mapping_id"`
	CreatedBy        int64     `json:"created_by"`
	CreatedByName    *string   `json:"created_by_name"`
	CreatedAt        time.Time `json:"created_at"`
}

// CreateCommand carries a new insight. CreatedBy comes from the authenticated user.
type CreateCommand struct {
	Title            string  `json:"title"`
	Content          string  `json:"content"`
	StakeholderName  *string `json:"stakeholder_name,omitempty"`
	InsightType      string  `json:"insight_type,omitempty"`
	RelatedMappingID *int64  `json:"related_mapping_id,omitempty"`
	CreatedBy        int64   `json:"-"`
}

// Normalize trims text fields, applies the default type, and checks required fields.
func (c *CreateCommand) Normalize() error {
	c.Title = strings.TrimSpace(c.Title)
	c.Content = strings.TrimSpace(c.Content)
	c.InsightType = strings.ToLower(strings.TrimSpace(c.InsightType))
	if c.Title == "" || c.Content == "" {
		return ErrMissingFields
	}
	if c.InsightType == "" {
		c.InsightType = DefaultType
	}
	if c.StakeholderName != nil {
		if name := strings.TrimSpace(*c.StakeholderName); name != "" {
			c.StakeholderName = &name
		} else {
			c.StakeholderName = nil
		}
	}
	return nil
}

// Domain errors for insight operations.
var (
	ErrNotFound         = errors.New("insight not found")
	ErrMissingFields    = errors.New("title and content are required")
	ErrInvalidReference = errors.New("related mapping does not exist")
)

// MapHTTPStatus maps insight domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMissingFields), errors.Is(err, ErrInvalidReference):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

var projection = query.
	NewProjectionMap("public", "stakeholder_insights", "si").
	Project("id", "ID").
	Project("title", "Title").
	Project("content", "Content").
	Project("stakeholder_name", "StakeholderName").
	Project("insight_type", "InsightType").
	Project("related_mapping_id", "RelatedMappingID").
	Project("created_by", "CreatedBy").
	Project("created_at", "CreatedAt").
	Join("public", "users", "u", "LEFT JOIN", "si.created_by = u.id").
	Project("username", "CreatedByName")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional criteria for insight queries.
type Filters struct {
	RelatedMappingID *int64  `json:"related_mapping_id,omitempty"`
	InsightType      *string `json:"insight_type,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("RelatedMappingID", f.RelatedMappingID).
		WhereEquals("InsightType", f.InsightType)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if raw := values.Get("related_mapping_id"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			f.RelatedMappingID = &v
		}
	}

	if t := strings.ToLower(values.Get("insight_type")); t != "" {
		f.InsightType = &t
	}

	return f
}

func scanInsight(s repository.Scanner) (Insight, error) {
	var i Insight
	err := s.Scan(
		&i.ID,
		&i.Title,
		&i.Content,
		&i.StakeholderName,
		&i.InsightType,
		&i.RelatedMappingID,
		&i.CreatedBy,
		&i.CreatedAt,
		&i.CreatedByName,
	)
	return i, err
}
