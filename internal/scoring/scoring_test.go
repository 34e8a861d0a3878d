package scoring_test

import (
	"encoding/json"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/JaimeStill/aligner/internal/scoring"
)

func score(name string, fully, partially, not int) scoring.DomainScore {
	c := scoring.Counts{
		Total:            fully + partially + not,
		FullyAligned:     fully,
		PartiallyAligned: partially,
		NotAligned:       not,
	}
	return scoring.NewDomainScore(scoring.Domain{Name: name, Code: strings.ToUpper(name)}, c, nil)
}

func ptr(v float64) *float64 { return &v }

func TestAlignmentPercentage(t *testing.T) {
	tests := []struct {
		name                  string
		fully, partially, not int
		want                  *float64
	}{
		{"no mappings is null", 0, 0, 0, nil},
		{"two fully two partially", 2, 2, 0, ptr(75.0)},
		{"all not aligned is zero", 0, 0, 3, ptr(0.0)},
		{"rounded to two decimals", 1, 0, 2, ptr(33.33)},
		{"all fully aligned", 4, 0, 0, ptr(100.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := score("Secure", tt.fully, tt.partially, tt.not).AlignmentPercentage
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("AlignmentPercentage = %v, want nil", *got)
			case tt.want != nil && got == nil:
				t.Errorf("AlignmentPercentage = nil, want %v", *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Errorf("AlignmentPercentage = %v, want %v", *got, *tt.want)
			}
		})
	}
}

func TestNullPercentageSerializesAsNull(t *testing.T) {
	data, err := json.Marshal(score("Expose", 0, 0, 0))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"alignment_percentage":null`) {
		t.Errorf("json = %s, want null alignment_percentage", data)
	}
	if !strings.Contains(string(data), `"total_mappings":0`) {
		t.Errorf("json = %s, want flattened counts", data)
	}
}

func TestClassifiersAreIndependent(t *testing.T) {
	s := score("Recover", 1, 0, 5)

	if got := scoring.ClassifyCoverage(s.Counts); got != scoring.StrongCoverage {
		t.Errorf("ClassifyCoverage = %s, want strong_coverage", got)
	}
	if got := scoring.ClassifyGap(s.Counts); got != scoring.CriticalGap {
		t.Errorf("ClassifyGap = %s, want critical_gap", got)
	}
}

func TestClassifyCoverage(t *testing.T) {
	tests := []struct {
		name                  string
		fully, partially, not int
		want                  scoring.Coverage
	}{
		{"empty", 0, 0, 0, scoring.NoCoverage},
		{"any fully aligned", 1, 3, 9, scoring.StrongCoverage},
		{"partial without fully", 0, 1, 4, scoring.PartialCoverage},
		{"only not aligned", 0, 0, 2, scoring.WeakCoverage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoring.ClassifyCoverage(score("x", tt.fully, tt.partially, tt.not).Counts); got != tt.want {
				t.Errorf("ClassifyCoverage = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassifyGap(t *testing.T) {
	tests := []struct {
		name                  string
		fully, partially, not int
		want                  scoring.Gap
	}{
		{"empty", 0, 0, 0, scoring.GapNoCoverage},
		{"zero percent", 0, 0, 1, scoring.CriticalGap},
		{"one sixth", 0, 1, 2, scoring.CriticalGap},
		{"exactly 25", 1, 0, 3, scoring.SignificantGap},
		{"exactly 50", 1, 0, 1, scoring.MinorGap},
		{"two thirds", 2, 0, 1, scoring.MinorGap},
		{"exactly 75", 2, 2, 0, scoring.AdequateCoverage},
		{"full", 3, 0, 0, scoring.AdequateCoverage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoring.ClassifyGap(score("x", tt.fully, tt.partially, tt.not).Counts); got != tt.want {
				t.Errorf("ClassifyGap = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassifyGapUsesUnroundedPercentage(t *testing.T) {
	// 24.9975% is reported as 25 but remains a critical gap.
	c := scoring.Counts{Total: 20000, PartiallyAligned: 9999, NotAligned: 10001}
	if p := c.Score(); p == nil || *p != 25 {
		t.Fatalf("Score = %v, want rounded 25", p)
	}
	if got := scoring.ClassifyGap(c); got != scoring.CriticalGap {
		t.Errorf("ClassifyGap = %s, want critical_gap", got)
	}
}

func TestConcerns(t *testing.T) {
	scores := []scoring.DomainScore{
		score("Understand", 3, 0, 0),
		score("Secure", 0, 1, 1),
		score("Sustain", 0, 0, 0),
		score("Expose", 0, 0, 2),
		score("Recover", 0, 0, 0),
		score("Adequate", 1, 1, 0),
	}

	got := scoring.Concerns(scores)

	want := []string{"Recover", "Sustain", "Expose", "Secure"}
	if len(got) != len(want) {
		t.Fatalf("Concerns length = %d, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("Concerns[%d] = %s, want %s", i, got[i].Name, name)
		}
	}
}

func TestRecommendations(t *testing.T) {
	scores := []scoring.DomainScore{
		score("Understand", 0, 0, 0),
		score("Secure", 0, 0, 5),
		score("Expose", 0, 3, 2),
		score("Recover", 4, 0, 0),
	}

	got := scoring.Recommendations(scores)
	if len(got) != 3 {
		t.Fatalf("Recommendations length = %d, want 3", len(got))
	}

	tests := []struct {
		domain   string
		priority scoring.Priority
		contains string
	}{
		{"Understand", scoring.High, "Develop comprehensive policies and procedures for understand domain."},
		{"Secure", scoring.High, "Strengthen existing secure policies."},
		{"Expose", scoring.Medium, "Improve alignment in expose domain."},
	}

	for i, tt := range tests {
		r := got[i]
		if r.DomainName != tt.domain {
			t.Errorf("[%d] domain = %s, want %s", i, r.DomainName, tt.domain)
		}
		if r.Priority != tt.priority {
			t.Errorf("[%d] priority = %s, want %s", i, r.Priority, tt.priority)
		}
		if !strings.Contains(r.Recommendation, tt.contains) {
			t.Errorf("[%d] recommendation = %q, want it to contain %q", i, r.Recommendation, tt.contains)
		}
	}

	if _, ok := scoring.Recommend(score("Recover", 4, 0, 0)); ok {
		t.Error("Recommend on adequate domain returned a recommendation")
	}
}

func TestGapAnalysisOrdering(t *testing.T) {
	rows := scoring.GapAnalysis([]scoring.DomainScore{
		score("Adequate", 3, 0, 0),
		score("Minor", 1, 1, 1),
		score("Critical", 0, 0, 4),
		score("Empty", 0, 0, 0),
		score("Significant", 1, 0, 2),
	})

	want := []scoring.Gap{
		scoring.GapNoCoverage,
		scoring.CriticalGap,
		scoring.SignificantGap,
		scoring.MinorGap,
		scoring.AdequateCoverage,
	}
	for i, g := range want {
		if rows[i].GapStatus != g {
			t.Errorf("rows[%d] = %s (%s), want %s", i, rows[i].GapStatus, rows[i].Name, g)
		}
	}
}

func TestOverall(t *testing.T) {
	if got := scoring.Overall(nil); got != nil {
		t.Errorf("Overall(nil) = %v, want nil", *got)
	}

	statuses := []scoring.Status{
		scoring.FullyAligned, scoring.FullyAligned,
		scoring.PartiallyAligned, scoring.NotAligned,
		scoring.NotAligned, scoring.PartiallyAligned,
	}
	want := scoring.Round(100 * (2 + 0.5*2) / 6.0)

	for range 10 {
		rand.Shuffle(len(statuses), func(i, j int) {
			statuses[i], statuses[j] = statuses[j], statuses[i]
		})
		got := scoring.Overall(statuses)
		if got == nil || *got != want {
			t.Fatalf("Overall(%v) = %v, want %v", statuses, got, want)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range scoring.Statuses {
		if !s.Valid() {
			t.Errorf("%s.Valid() = false", s)
		}
	}
	for _, s := range []scoring.Status{"", "aligned", "FULLY_ALIGNED"} {
		if s.Valid() {
			t.Errorf("%q.Valid() = true", s)
		}
	}
}
