// Package analysis aggregates mapping counts in SQL and derives coverage,
// gap, maturity, and concern views through the scoring package.
package analysis

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/aligner/internal/scoring"
)

// MapHTTPStatus maps analysis errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidScope) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// CoverageRow is a domain score with its coverage classification.
type CoverageRow struct {
	scoring.DomainScore
	CoverageStatus scoring.Coverage `json:"coverage_status"`
}

// MatrixCell is the aggregate of one domain within one document.
type MatrixCell struct {
	DomainID       int64   `json:"domain_id"`
	DomainName     string  `json:"domain_name"`
	DomainCode     string  `json:"domain_code"`
	DocumentID     int64   `json:"document_id"`
	DocumentName   string  `json:"document_name"`
	RelevantAgency *string `json:"relevant_agency"`
	scoring.Counts
	AvgMaturityLevel *float64         `json:"avg_maturity_level"`
	CoverageStatus   scoring.Coverage `json:"coverage_status"`
}

// MaturityBucket counts a domain's mappings at one maturity level.
type MaturityBucket struct {
	DomainID      int64  `json:"domain_id"`
	DomainName    string `json:"domain_name"`
	DomainCode    string `json:"domain_code"`
	MaturityLevel int    `json:"maturity_level"`
	Count         int    `json:"count"`
}

// DocumentCoverage aggregates every mapping of one document.
type DocumentCoverage struct {
	DocumentID     int64   `json:"document_id"`
	DocumentName   string  `json:"document_name"`
	RelevantAgency *string `json:"relevant_agency"`
	scoring.Counts
	AvgMaturityLevel    *float64         `json:"avg_maturity_level"`
	AlignmentPercentage *float64         `json:"alignment_percentage"`
	DomainsCovered      int              `json:"domains_covered"`
	CoverageStatus      scoring.Coverage `json:"coverage_status"`
}

// Coverage classifies each domain score.
func Coverage(scores []scoring.DomainScore) []CoverageRow {
	rows := make([]CoverageRow, len(scores))
	for i, s := range scores {
		rows[i] = CoverageRow{
			DomainScore:    s,
			CoverageStatus: scoring.ClassifyCoverage(s.Counts),
		}
	}
	return rows
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := scoring.Round(*v)
	return &r
}
