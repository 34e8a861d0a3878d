// Package scoring derives alignment percentages, coverage and gap
// classifications, areas of concern, and recommendations from mapping counts.
// Every function is pure; callers supply counts aggregated from the mapping table.
package scoring

import (
	"cmp"
	"math"
	"slices"
)

// Status is the tri-state alignment judgment recorded on a mapping.
type Status string

const (
	FullyAligned     Status = "fully_aligned"
	PartiallyAligned Status = "partially_aligned"
	NotAligned       Status = "not_aligned"
)

// Statuses lists every valid alignment status.
var Statuses = []Status{FullyAligned, PartiallyAligned, NotAligned}

// Valid reports whether s is one of the three alignment statuses.
func (s Status) Valid() bool {
	return slices.Contains(Statuses, s)
}

// Counts tallies mappings by alignment status.
type Counts struct {
	Total            int `json:"total_mappings"`
	FullyAligned     int `json:"fully_aligned"`
	PartiallyAligned int `json:"partially_aligned"`
	NotAligned       int `json:"not_aligned"`
}

// Tally counts statuses. Unknown values are counted toward Total only.
func Tally(statuses []Status) Counts {
	var c Counts
	for _, s := range statuses {
		c.Total++
		switch s {
		case FullyAligned:
			c.FullyAligned++
		case PartiallyAligned:
			c.PartiallyAligned++
		case NotAligned:
			c.NotAligned++
		}
	}
	return c
}

// Percentage returns 100 × (fully + 0.5 × partially) / total, unrounded.
// The second result is false when there are no mappings.
func (c Counts) Percentage() (float64, bool) {
	if c.Total == 0 {
		return 0, false
	}
	return 100 * (float64(c.FullyAligned) + 0.5*float64(c.PartiallyAligned)) / float64(c.Total), true
}

// Score returns the percentage rounded to two decimals,
// or nil when there are no mappings.
func (c Counts) Score() *float64 {
	p, ok := c.Percentage()
	if !ok {
		return nil
	}
	r := Round(p)
	return &r
}

// Overall scores a raw list of mapping statuses with the same formula as a
// single domain. It is nil for an empty list.
func Overall(statuses []Status) *float64 {
	return Tally(statuses).Score()
}

// Round rounds v to two decimal places.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

// Coverage is the priority-ordered presence classification of a domain's mappings.
type Coverage string

const (
	NoCoverage      Coverage = "no_coverage"
	StrongCoverage  Coverage = "strong_coverage"
	PartialCoverage Coverage = "partial_coverage"
	WeakCoverage    Coverage = "weak_coverage"
)

// ClassifyCoverage ignores percentages: a single fully aligned mapping makes
// coverage strong regardless of how many mappings are not aligned.
func ClassifyCoverage(c Counts) Coverage {
	switch {
	case c.Total == 0:
		return NoCoverage
	case c.FullyAligned > 0:
		return StrongCoverage
	case c.PartiallyAligned > 0:
		return PartialCoverage
	default:
		return WeakCoverage
	}
}

// Gap is the percentage-threshold classification of a domain's alignment.
type Gap string

const (
	GapNoCoverage    Gap = "no_coverage"
	CriticalGap      Gap = "critical_gap"
	SignificantGap   Gap = "significant_gap"
	MinorGap         Gap = "minor_gap"
	AdequateCoverage Gap = "adequate_coverage"
)

// Gaps lists gap statuses from most to least severe.
var Gaps = []Gap{GapNoCoverage, CriticalGap, SignificantGap, MinorGap, AdequateCoverage}

// Thresholds applied to the unrounded alignment percentage.
const (
	CriticalThreshold    = 25.0
	SignificantThreshold = 50.0
	MinorThreshold       = 75.0
	ConcernThreshold     = SignificantThreshold
)

// ClassifyGap evaluates the thresholds against the unrounded percentage.
func ClassifyGap(c Counts) Gap {
	p, ok := c.Percentage()
	switch {
	case !ok:
		return GapNoCoverage
	case p < CriticalThreshold:
		return CriticalGap
	case p < SignificantThreshold:
		return SignificantGap
	case p < MinorThreshold:
		return MinorGap
	default:
		return AdequateCoverage
	}
}

// Severity ranks g from 0 (no coverage) to 4 (adequate). Unknown values rank last.
func (g Gap) Severity() int {
	if i := slices.Index(Gaps, g); i >= 0 {
		return i
	}
	return len(Gaps)
}

// Domain identifies a framework domain in scoring output.
type Domain struct {
	ID          int64  `json:"domain_id"`
	Name        string `json:"domain_name"`
	Code        string `json:"domain_code"`
	Description string `json:"description"`
}

// DomainScore is one domain's aggregated mapping counts and derived percentage.
type DomainScore struct {
	Domain
	Counts
	AvgMaturityLevel    *float64 `json:"avg_maturity_level"`
	AlignmentPercentage *float64 `json:"alignment_percentage"`
}

// NewDomainScore derives the alignment percentage from counts.
// avgMaturity is rounded to two decimals when present.
func NewDomainScore(d Domain, c Counts, avgMaturity *float64) DomainScore {
	s := DomainScore{
		Domain:              d,
		Counts:              c,
		AlignmentPercentage: c.Score(),
	}
	if avgMaturity != nil {
		r := Round(*avgMaturity)
		s.AvgMaturityLevel = &r
	}
	return s
}

// IsConcern reports whether the domain has no mappings or aligns below 50%.
func (s DomainScore) IsConcern() bool {
	p, ok := s.Percentage()
	return !ok || p < ConcernThreshold
}

// Concerns filters scores to areas of concern ordered worst first:
// domains without mappings, then ascending percentage, ties by domain name.
func Concerns(scores []DomainScore) []DomainScore {
	out := make([]DomainScore, 0, len(scores))
	for _, s := range scores {
		if s.IsConcern() {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, compareByPercentage)
	return out
}

func compareByPercentage(a, b DomainScore) int {
	pa, oka := a.Percentage()
	pb, okb := b.Percentage()
	switch {
	case !oka && okb:
		return -1
	case oka && !okb:
		return 1
	}
	if c := cmp.Compare(pa, pb); c != 0 {
		return c
	}
	return cmp.Compare(a.Name, b.Name)
}

// GapRow is a domain score with its gap classification.
type GapRow struct {
	DomainScore
	GapStatus Gap `json:"gap_status"`
}

// GapAnalysis classifies every domain and orders rows by severity, then
// ascending percentage, then domain name.
func GapAnalysis(scores []DomainScore) []GapRow {
	rows := make([]GapRow, len(scores))
	for i, s := range scores {
		rows[i] = GapRow{DomainScore: s, GapStatus: ClassifyGap(s.Counts)}
	}
	slices.SortStableFunc(rows, func(a, b GapRow) int {
		if c := cmp.Compare(a.GapStatus.Severity(), b.GapStatus.Severity()); c != 0 {
			return c
		}
		return compareByPercentage(a.DomainScore, b.DomainScore)
	})
	return rows
}
