// Package documents implements policy document ingestion: upload validation,
// text extraction and segmentation, metadata, file serving, and cascade deletion.
package documents

import (
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// AllowedExtensions lists the accepted upload file types.
var AllowedExtensions = []string{".pdf", ".doc", ".docx", ".txt"}

// Document is an uploaded file with its metadata and aggregate counts.
type Document struct {
	ID              int64     `json:"id"`
	Filename        string    `json:"filename"`
	OriginalName    string    `json:"original_name"`
	FileType        string    `json:"file_type"`
	FileSize        int64     `json:"file_size"`
	StorageKey      string    `json:"-"`
	Source          *string   `json:"source"`
	PublicationDate *string   `json:"publication_date"`
	RelevantAgency  *string   `json:"relevant_agency"`
	UploadedBy      int64     `json:"uploaded_by"`
	UploadedByName  *string   `json:"uploaded_by_name"`
	SectionsCount   int       `json:"sections_count"`
	MappingsCount   int       `json:"mappings_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// Section is a contiguous span of a document's extracted text.
type Section struct {
	ID           int64     `json:"id"`
	DocumentID   int64     `json:"document_id"`
	SectionText  string    `json:"section_text"`
	SectionStart int       `json:"section_start"`
	SectionEnd   int       `json:"section_end"`
	Tags         []string  `json:"tags"`
	CreatedAt    time.Time `json:"created_at"`
}

// Detail is a document with its sections ordered by start offset.
type Detail struct {
	Document
	Sections []Section `json:"sections"`
}

// CreateCommand carries an upload. Data holds the raw file bytes.
type CreateCommand struct {
	Data            []byte
	Filename        string
	Source          *string
	PublicationDate *string
	RelevantAgency  *string
	UploadedBy      int64
}

// UpdateCommand changes document metadata. Nil fields are left unchanged.
type UpdateCommand struct {
	Source          *string `json:"source,omitempty"`
	PublicationDate *string `json:"publication_date,omitempty"`
	RelevantAgency  *string `json:"relevant_agency,omitempty"`
}

func (c UpdateCommand) empty() bool {
	return c.Source == nil && c.PublicationDate == nil && c.RelevantAgency == nil
}

// File is an open stored document. The caller must close Body.
type File struct {
	Body        io.ReadCloser
	Name        string
	ContentType string
	Inline      bool
}

// Extension returns the lower-cased extension of name, including the dot.
func Extension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// Allowed reports whether name has an accepted extension.
func Allowed(name string) bool {
	return slices.Contains(AllowedExtensions, Extension(name))
}

const wordContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// contentType returns the served content type and whether the file renders inline.
func contentType(ext string) (string, bool) {
	switch ext {
	case ".pdf":
		return "application/pdf", true
	case ".docx", ".doc":
		return wordContentType, false
	case ".txt":
		return "text/plain; charset=utf-8", true
	default:
		return "application/octet-stream", false
	}
}
