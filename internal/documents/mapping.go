package documents

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/JaimeStill/aligner/pkg/query"
	"github.com/JaimeStill/aligner/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "documents", "d").
	Project("id", "ID").
	Project("filename", "Filename").
	Project("original_name", "OriginalName").
	Project("file_type", "FileType").
	Project("file_size", "FileSize").
	Project("storage_key", "StorageKey").
	Project("source", "Source").
	Project("publication_date", "PublicationDate").
	Project("relevant_agency", "RelevantAgency").
	Project("uploaded_by", "UploadedBy").
	Project("created_at", "CreatedAt").
	Join("public", "users", "u", "LEFT JOIN", "d.uploaded_by = u.id").
	Project("username", "UploadedByName").
	ProjectExpression("(SELECT COUNT(*) FROM public.document_sections ds WHERE ds.document_id = d.id)", "SectionsCount").
	ProjectExpression("(SELECT COUNT(*) FROM public.mappings m WHERE m.document_id = d.id)", "MappingsCount")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for document queries.
// FileType and UploadedBy match exactly; the rest are case-insensitive contains matches.
type Filters struct {
	Filename       *string `json:"filename,omitempty"`
	FileType       *string `json:"file_type,omitempty"`
	Source         *string `json:"source,omitempty"`
	RelevantAgency *string `json:"relevant_agency,omitempty"`
	UploadedBy     *int64  `json:"uploaded_by,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("OriginalName", f.Filename).
		WhereEquals("FileType", f.FileType).
		WhereContains("Source", f.Source).
		WhereContains("RelevantAgency", f.RelevantAgency).
		WhereEquals("UploadedBy", f.UploadedBy)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}

	if ft := strings.ToLower(values.Get("file_type")); ft != "" {
		if !strings.HasPrefix(ft, ".") {
			ft = "." + ft
		}
		f.FileType = &ft
	}

	if s := values.Get("source"); s != "" {
		f.Source = &s
	}

	if ra := values.Get("relevant_agency"); ra != "" {
		f.RelevantAgency = &ra
	}

	if ub := values.Get("uploaded_by"); ub != "" {
		if v, err := strconv.ParseInt(ub, 10, 64); err == nil {
			f.UploadedBy = &v
		}
	}

	return f
}

func scanDocument(s repository.Scanner) (Document, error) {
	var d Document
	err := s.Scan(
		&d.ID,
		&d.Filename,
		&d.OriginalName,
		&d.FileType,
		&d.FileSize,
		&d.StorageKey,
		&d.Source,
		&d.PublicationDate,
		&d.RelevantAgency,
		&d.UploadedBy,
		&d.CreatedAt,
		&d.UploadedByName,
		&d.SectionsCount,
		&d.MappingsCount,
	)
	return d, err
}

// sectionColumns aggregates tag names as a JSON array so the scan needs no driver array support.
const sectionColumns = `ds.id, ds.document_id, ds.section_text, ds.section_start, ds.section_end, ds.created_at,
	COALESCE((
		SELECT json_agg(t.name ORDER BY t.name)
		FROM public.section_tags st
		JOIN public.tags t ON t.id = st.tag_id
		WHERE st.section_id = ds.id
	), '[]')::text`

func scanSection(s repository.Scanner) (Section, error) {
	var (
		sec  Section
		tags string
	)
	err := s.Scan(
		&sec.ID,
		&sec.DocumentID,
		&sec.SectionText,
		&sec.SectionStart,
		&sec.SectionEnd,
		&sec.CreatedAt,
		&tags,
	)
	if err != nil {
		return sec, err
	}
	if err := json.Unmarshal([]byte(tags), &sec.Tags); err != nil {
		return sec, fmt.Errorf("decode section tags: %w", err)
	}
	if sec.Tags == nil {
		sec.Tags = []string{}
	}
	return sec, nil
}
