package analysis_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/JaimeStill/aligner/internal/analysis"
	"github.com/JaimeStill/aligner/internal/scoring"
	"github.com/JaimeStill/aligner/pkg/routes"
)

type fakeSystem struct {
	scores []scoring.DomainScore
	scopes []analysis.Scope
}

func (f *fakeSystem) Handler() *analysis.Handler {
	return analysis.NewHandler(f, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (f *fakeSystem) DomainScores(_ context.Context, s analysis.Scope) ([]scoring.DomainScore, error) {
	f.scopes = append(f.scopes, s)
	return f.scores, nil
}

func (f *fakeSystem) DomainCoverage(ctx context.Context, s analysis.Scope) ([]analysis.CoverageRow, error) {
	scores, _ := f.DomainScores(ctx, s)
	return analysis.Coverage(scores), nil
}

func (f *fakeSystem) AreasOfConcern(ctx context.Context, s analysis.Scope) ([]scoring.DomainScore, error) {
	scores, _ := f.DomainScores(ctx, s)
	return scoring.Concerns(scores), nil
}

func (f *fakeSystem) GapMatrix(_ context.Context, s analysis.Scope) ([]analysis.MatrixCell, error) {
	f.scopes = append(f.scopes, s)
	return []analysis.MatrixCell{}, nil
}

func (f *fakeSystem) MaturityDistribution(_ context.Context, s analysis.Scope) ([]analysis.MaturityBucket, error) {
	f.scopes = append(f.scopes, s)
	return []analysis.MaturityBucket{{DomainID: 1, DomainName: "Understand", MaturityLevel: 2, Count: 3}}, nil
}

func (f *fakeSystem) DocumentCoverage(_ context.Context, s analysis.Scope) ([]analysis.DocumentCoverage, error) {
	f.scopes = append(f.scopes, s)
	return []analysis.DocumentCoverage{}, nil
}

func score(id int64, name string, fully, partially, not int) scoring.DomainScore {
	c := scoring.Counts{
		Total:            fully + partially + not,
		FullyAligned:     fully,
		PartiallyAligned: partially,
		NotAligned:       not,
	}
	return scoring.NewDomainScore(scoring.Domain{ID: id, Name: name, Code: name}, c, nil)
}

func newMux(sys *fakeSystem) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler().Routes())
	return mux
}

func TestCoverage(t *testing.T) {
	rows := analysis.Coverage([]scoring.DomainScore{
		score(1, "Understand", 0, 0, 0),
		score(2, "Secure", 3, 1, 0),
		score(3, "Expose", 1, 2, 1),
		score(4, "Recover", 0, 1, 3),
	})

	want := []scoring.Coverage{
		scoring.NoCoverage,
		scoring.StrongCoverage,
		scoring.PartialCoverage,
		scoring.WeakCoverage,
	}
	for i, row := range rows {
		if row.CoverageStatus != want[i] {
			t.Errorf("%s coverage = %q, want %q", row.Name, row.CoverageStatus, want[i])
		}
	}
}

func TestDomainCoverageEndpoint(t *testing.T) {
	sys := &fakeSystem{scores: []scoring.DomainScore{
		score(1, "Understand", 0, 0, 0),
		score(2, "Secure", 1, 0, 0),
	}}

	rec := httptest.NewRecorder()
	newMux(sys).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analysis/domain-coverage?document_ids=2,1,2", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("rows = %d, want 2", len(got))
	}
	if got[0]["alignment_percentage"] != nil || got[0]["coverage_status"] != "no_coverage" {
		t.Errorf("empty domain = %v", got[0])
	}
	if got[1]["alignment_percentage"] != 100.0 || got[1]["coverage_status"] != "strong_coverage" {
		t.Errorf("aligned domain = %v", got[1])
	}

	if len(sys.scopes) != 1 || !slices.Equal(sys.scopes[0].IDs(), []int64{1, 2}) {
		t.Errorf("scope = %v, want [1 2]", sys.scopes)
	}
}

func TestAreasOfConcernEndpoint(t *testing.T) {
	sys := &fakeSystem{scores: []scoring.DomainScore{
		score(1, "Understand", 1, 0, 1),
		score(2, "Secure", 4, 0, 0),
		score(3, "Expose", 0, 0, 0),
		score(4, "Recover", 0, 1, 3),
	}}

	rec := httptest.NewRecorder()
	newMux(sys).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analysis/areas-of-concern", nil))

	var got []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}

	names := make([]string, len(got))
	for i, row := range got {
		names[i] = row["domain_name"].(string)
	}
	if want := []string{"Expose", "Recover"}; !slices.Equal(names, want) {
		t.Errorf("concerns = %v, want %v", names, want)
	}
	if !sys.scopes[0].All() {
		t.Errorf("scope = %v, want all documents", sys.scopes[0].IDs())
	}
}

func TestEndpointsRejectInvalidScope(t *testing.T) {
	mux := newMux(&fakeSystem{})

	for _, path := range []string{
		"/analysis/domain-coverage",
		"/analysis/gap-matrix",
		"/analysis/maturity-distribution",
		"/analysis/areas-of-concern",
		"/analysis/document-coverage",
	} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path+"?document_ids=1,abc", nil))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}

			rec = httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Code != http.StatusOK {
				t.Errorf("unscoped status = %d, want 200", rec.Code)
			}
		})
	}
}
