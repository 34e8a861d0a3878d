package scoring

import (
	"fmt"
	"strings"
)

// Priority ranks the urgency of a recommendation.
type Priority string

const (
	High   Priority = "High"
	Medium Priority = "Medium"
)

// Recommendation is remediation guidance for one area of concern.
type Recommendation struct {
	DomainName          string   `json:"domain_name"`
	DomainCode          string   `json:"domain_code"`
	Description         string   `json:"description"`
	AlignmentPercentage *float64 `json:"alignment_percentage"`
	TotalMappings       int      `json:"total_mappings"`
	Recommendation      string   `json:"recommendation"`
	Priority            Priority `json:"priority"`
}

// Recommend derives priority and text for a domain score.
// The second result is false when the domain is not an area of concern.
func Recommend(s DomainScore) (Recommendation, bool) {
	if !s.IsConcern() {
		return Recommendation{}, false
	}

	name := strings.ToLower(s.Name)
	r := Recommendation{
		DomainName:          s.Name,
		DomainCode:          s.Code,
		Description:         s.Description,
		AlignmentPercentage: s.AlignmentPercentage,
		TotalMappings:       s.Total,
	}

	p, _ := s.Percentage()
	switch {
	case s.Total == 0:
		r.Priority = High
		r.Recommendation = fmt.Sprintf(
			"Develop comprehensive policies and procedures for %s domain. Consider establishing dedicated cybersecurity frameworks and governance structures.",
			name,
		)
	case p < CriticalThreshold:
		r.Priority = High
		r.Recommendation = fmt.Sprintf(
			"Strengthen existing %s policies. Review current implementations and enhance coverage for critical areas.",
			name,
		)
	default:
		r.Priority = Medium
		r.Recommendation = fmt.Sprintf(
			"Improve alignment in %s domain. Identify specific gaps and develop targeted improvements.",
			name,
		)
	}

	return r, true
}

// Recommendations returns guidance for every area of concern, worst first.
func Recommendations(scores []DomainScore) []Recommendation {
	concerns := Concerns(scores)
	out := make([]Recommendation, 0, len(concerns))
	for _, s := range concerns {
		if r, ok := Recommend(s); ok {
			out = append(out, r)
		}
	}
	return out
}
