// Package extract pulls plain text out of uploaded policy documents.
package extract

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrUnsupportedFormat indicates no extractor exists for the file extension.
	ErrUnsupportedFormat = errors.New("unsupported format for text extraction")
	// ErrMalformed indicates the file could not be parsed as its declared format.
	ErrMalformed = errors.New("malformed document")
)

// Result holds extracted text and, for paginated formats, the page count.
type Result struct {
	Text  string
	Pages int
}

// Extract dispatches on the lower-cased file extension (including the dot).
func Extract(data []byte, ext string) (*Result, error) {
	switch strings.ToLower(ext) {
	case ".pdf":
		return PDF(data)
	case ".docx":
		text, err := DOCX(data)
		if err != nil {
			return nil, err
		}
		return &Result{Text: text}, nil
	case ".txt":
		return &Result{Text: Plain(data)}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// Plain decodes data as UTF-8, dropping a leading byte order mark
// and replacing invalid sequences with U+FFFD.
func Plain(data []byte) string {
	s := strings.TrimPrefix(string(data), "\ufeff")
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "\uFFFD")
	}
	return s
}
