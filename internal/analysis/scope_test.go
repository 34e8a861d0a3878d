package analysis_test

import (
	"errors"
	"net/url"
	"slices"
	"testing"

	"github.com/JaimeStill/aligner/internal/analysis"
)

func TestParseScope(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []int64
		all  bool
	}{
		{"empty", "", nil, true},
		{"blank entries", " , ,", nil, true},
		{"single", "4", []int64{4}, false},
		{"sorted and deduplicated", "3, 1,3,2,1", []int64{1, 2, 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := analysis.ParseScope(tt.raw)
			if err != nil {
				t.Fatalf("ParseScope(%q): %v", tt.raw, err)
			}
			if s.All() != tt.all {
				t.Errorf("All() = %v, want %v", s.All(), tt.all)
			}
			if got := s.IDs(); !slices.Equal(got, tt.want) {
				t.Errorf("IDs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseScopeRejectsInvalidIDs(t *testing.T) {
	for _, raw := range []string{"abc", "1,x", "0", "-2", "1.5"} {
		if _, err := analysis.ParseScope(raw); !errors.Is(err, analysis.ErrInvalidScope) {
			t.Errorf("ParseScope(%q) error = %v, want ErrInvalidScope", raw, err)
		}
	}
}

func TestScopeArg(t *testing.T) {
	if arg := (analysis.Scope{}).Arg(); arg != nil {
		t.Errorf("zero scope Arg() = %v, want nil", arg)
	}

	arg, ok := analysis.NewScope(5, 2, 5).Arg().([]int64)
	if !ok || !slices.Equal(arg, []int64{2, 5}) {
		t.Errorf("Arg() = %v, want [2 5]", arg)
	}
}

func TestScopeFromQuery(t *testing.T) {
	tests := []struct {
		query string
		want  []int64
	}{
		{"", nil},
		{"document_ids=2,1", []int64{1, 2}},
		{"document_id=7", []int64{7}},
		{"document_ids=3&document_id=7", []int64{3}},
	}

	for _, tt := range tests {
		values, _ := url.ParseQuery(tt.query)
		s, err := analysis.ScopeFromQuery(values)
		if err != nil {
			t.Fatalf("ScopeFromQuery(%q): %v", tt.query, err)
		}
		if got := s.IDs(); !slices.Equal(got, tt.want) {
			t.Errorf("ScopeFromQuery(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}
