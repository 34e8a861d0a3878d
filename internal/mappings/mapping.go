// Package mappings records how document content aligns with framework domains.
package mappings

import (
	"net/url"
	"strconv"
	"time"

	"github.com/JaimeStill/aligner/internal/scoring"
	"github.com/JaimeStill/aligner/pkg/query"
	"github.com/JaimeStill/aligner/pkg/repository"
)

// Mapping is an analyst's judgement of a document (or one of its sections)
// against a domain, with the joined names clients display.
type Mapping struct {
	ID              int64          `json:"id"`
	DocumentID      int64          `json:"document_id"`
	SectionID       *int64         `json:"section_id"`
	DomainID        int64          `json:"domain_id"`
	MaturityLevel   int            `json:"maturity_level"`
	AlignmentStatus scoring.Status `json:"alignment_status"`
	Notes           *string        `json:"notes"`
	MappedBy        int64          `json:"mapped_by"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`

	DocumentName string  `json:"document_name"`
	SectionText  *string `json:"section_text"`
	DomainName   string  `json:"domain_name"`
	DomainCode   string  `json:"domain_code"`
	MappedByName *string `json:"mapped_by_name"`
}

var projection = query.
	NewProjectionMap("public", "mappings", "m").
	Project("id", "ID").
	Project("document_id", "DocumentID").
	Project("section_id", "SectionID").
	Project("domain_id", "DomainID").
	Project("maturity_level", "MaturityLevel").
	Project("alignment_status", "AlignmentStatus").
	Project("notes", "Notes").
	Project("mapped_by", "MappedBy").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt").
	Join("public", "documents", "d", "JOIN", "m.document_id = d.id").
	Project("original_name", "DocumentName").
	Join("public", "document_sections", "ds", "LEFT JOIN", "m.section_id = ds.id").
	Project("section_text", "SectionText").
	Join("public", "qc2m2_domains", "qd", "JOIN", "m.domain_id = qd.id").
	Project("domain_name", "DomainName").
	Project("domain_code", "DomainCode").
	Join("public", "users", "u", "LEFT JOIN", "m.mapped_by = u.id").
	Project("username", "MappedByName")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional exact-match criteria for mapping queries.
type Filters struct {
	DocumentID      *int64  `json:"document_id,omitempty"`
	SectionID       *int64  `json:"section_id,omitempty"`
	DomainID        *int64  `json:"domain_id,omitempty"`
	MaturityLevel   *int    `json:"maturity_level,omitempty"`
	AlignmentStatus *string `json:"alignment_status,omitempty"`
	MappedBy        *int64  `json:"mapped_by,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("DocumentID", f.DocumentID).
		WhereEquals("SectionID", f.SectionID).
		WhereEquals("DomainID", f.DomainID).
		WhereEquals("MaturityLevel", f.MaturityLevel).
		WhereEquals("AlignmentStatus", f.AlignmentStatus).
		WhereEquals("MappedBy", f.MappedBy)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Unparseable numbers are ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	f.DocumentID = int64Param(values, "document_id")
	f.SectionID = int64Param(values, "section_id")
	f.DomainID = int64Param(values, "domain_id")
	f.MappedBy = int64Param(values, "mapped_by")

	if ml := values.Get("maturity_level"); ml != "" {
		if v, err := strconv.Atoi(ml); err == nil {
			f.MaturityLevel = &v
		}
	}

	if s := values.Get("alignment_status"); s != "" {
		f.AlignmentStatus = &s
	}

	return f
}

func int64Param(values url.Values, key string) *int64 {
	raw := values.Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func scanMapping(s repository.Scanner) (Mapping, error) {
	var m Mapping
	err := s.Scan(
		&m.ID,
		&m.DocumentID,
		&m.SectionID,
		&m.DomainID,
		&m.MaturityLevel,
		&m.AlignmentStatus,
		&m.Notes,
		&m.MappedBy,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.DocumentName,
		&m.SectionText,
		&m.DomainName,
		&m.DomainCode,
		&m.MappedByName,
	)
	return m, err
}
