// Package reports assembles the comprehensive, gap-analysis, and
// recommendations reports over a required set of documents.
package reports

import (
	"errors"
	"net/http"
	"time"

	"github.com/JaimeStill/aligner/internal/analysis"
	"github.com/JaimeStill/aligner/internal/scoring"
)

// ErrMissingDocuments indicates a report request without document_ids.
var ErrMissingDocuments = errors.New("document_ids parameter is required")

// MapHTTPStatus maps report errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingDocuments), errors.Is(err, analysis.ErrInvalidScope):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Document is the report view of an analyzed document.
type Document struct {
	ID              int64     `json:"id"`
	OriginalName    string    `json:"original_name"`
	RelevantAgency  *string   `json:"relevant_agency"`
	PublicationDate *string   `json:"publication_date"`
	CreatedAt       time.Time `json:"created_at"`
}

// MappingDetail is one mapping with the names a reader needs.
type MappingDetail struct {
	ID              int64          `json:"id"`
	DocumentName    string         `json:"document_name"`
	DomainName      string         `json:"domain_name"`
	DomainCode      string         `json:"domain_code"`
	MaturityLevel   int            `json:"maturity_level"`
	AlignmentStatus scoring.Status `json:"alignment_status"`
	Notes           *string        `json:"notes"`
	SectionText     *string        `json:"section_text"`
	MappedByName    *string        `json:"mapped_by_name"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Metadata describes a generated report.
type Metadata struct {
	GeneratedAt           time.Time `json:"generated_at"`
	DocumentsAnalyzed     int       `json:"documents_analyzed"`
	TotalMappings         int       `json:"total_mappings"`
	OverallAlignmentScore *float64  `json:"overall_alignment_score"`
}

// Summary totals the detailed mappings of a comprehensive report.
type Summary struct {
	scoring.Counts
	OverallAlignmentScore *float64 `json:"overall_alignment_score"`
	DomainsWithConcerns   int      `json:"domains_with_concerns"`
}

// Comprehensive is the full report over a set of documents.
type Comprehensive struct {
	Metadata         Metadata               `json:"metadata"`
	Documents        []Document             `json:"documents"`
	DomainCoverage   []analysis.CoverageRow `json:"domain_coverage"`
	DetailedMappings []MappingDetail        `json:"detailed_mappings"`
	AreasOfConcern   []scoring.DomainScore  `json:"areas_of_concern"`
	Summary          Summary                `json:"summary"`
}

// GapSummary counts domains per gap status.
type GapSummary struct {
	TotalDomains     int `json:"total_domains"`
	NoCoverage       int `json:"no_coverage"`
	CriticalGaps     int `json:"critical_gaps"`
	SignificantGaps  int `json:"significant_gaps"`
	MinorGaps        int `json:"minor_gaps"`
	AdequateCoverage int `json:"adequate_coverage"`
}

// GapReport classifies every domain by gap status, most severe first.
type GapReport struct {
	GapAnalysis []scoring.GapRow `json:"gap_analysis"`
	Summary     GapSummary       `json:"summary"`
}

// RecommendationSummary counts recommendations by priority.
type RecommendationSummary struct {
	TotalRecommendations int `json:"total_recommendations"`
	HighPriority         int `json:"high_priority"`
	MediumPriority       int `json:"medium_priority"`
}

// RecommendationReport lists improvement actions for the areas of concern.
type RecommendationReport struct {
	Recommendations []scoring.Recommendation `json:"recommendations"`
	Summary         RecommendationSummary    `json:"summary"`
}

func summarizeGaps(rows []scoring.GapRow) GapSummary {
	s := GapSummary{TotalDomains: len(rows)}
	for _, r := range rows {
		switch r.GapStatus {
		case scoring.GapNoCoverage:
			s.NoCoverage++
		case scoring.CriticalGap:
			s.CriticalGaps++
		case scoring.SignificantGap:
			s.SignificantGaps++
		case scoring.MinorGap:
			s.MinorGaps++
		case scoring.AdequateCoverage:
			s.AdequateCoverage++
		}
	}
	return s
}

func summarizeRecommendations(recs []scoring.Recommendation) RecommendationSummary {
	s := RecommendationSummary{TotalRecommendations: len(recs)}
	for _, r := range recs {
		switch r.Priority {
		case scoring.High:
			s.HighPriority++
		case scoring.Medium:
			s.MediumPriority++
		}
	}
	return s
}
