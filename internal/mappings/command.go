package mappings

import (
	"strings"

	"github.com/JaimeStill/aligner/internal/scoring"
)

// CreateCommand carries a new mapping. MappedBy is taken from the
// authenticated user, never from the request body.
type CreateCommand struct {
	DocumentID      int64          `json:"document_id"`
	SectionID       *int64         `json:"section_id,omitempty"`
	DomainID        int64          `json:"domain_id"`
	MaturityLevel   int            `json:"maturity_level"`
	AlignmentStatus scoring.Status `json:"alignment_status"`
	Notes           *string        `json:"notes,omitempty"`
	MappedBy        int64          `json:"-"`
}

// Validate checks required fields and enum ranges. References are checked by the store.
func (c CreateCommand) Validate() error {
	if c.DocumentID == 0 || c.DomainID == 0 || c.MaturityLevel == 0 || c.AlignmentStatus == "" {
		return ErrMissingFields
	}
	if !validMaturity(c.MaturityLevel) {
		return ErrInvalidMaturity
	}
	if !c.AlignmentStatus.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// UpdateCommand carries the fields to change. Nil fields are left untouched.
type UpdateCommand struct {
	DomainID        *int64          `json:"domain_id,omitempty"`
	MaturityLevel   *int            `json:"maturity_level,omitempty"`
	AlignmentStatus *scoring.Status `json:"alignment_status,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
}

// Validate rejects an empty update and out-of-range values.
func (c UpdateCommand) Validate() error {
	if c.DomainID == nil && c.MaturityLevel == nil && c.AlignmentStatus == nil && c.Notes == nil {
		return ErrNoFields
	}
	if c.DomainID != nil && *c.DomainID < 1 {
		return ErrInvalidReference
	}
	if c.MaturityLevel != nil && !validMaturity(*c.MaturityLevel) {
		return ErrInvalidMaturity
	}
	if c.AlignmentStatus != nil && !c.AlignmentStatus.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

func validMaturity(level int) bool {
	return level >= 1 && level <= 3
}

// notesValue stores blank notes as NULL.
func notesValue(notes *string) any {
	if notes == nil || strings.TrimSpace(*notes) == "" {
		return nil
	}
	return *notes
}
