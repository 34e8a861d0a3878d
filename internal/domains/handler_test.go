package domains_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/aligner/internal/domains"
	"github.com/JaimeStill/aligner/pkg/routes"
)

type fakeSystem struct {
	domains []domains.Domain
}

func (f *fakeSystem) Handler() *domains.Handler {
	return domains.NewHandler(f, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (f *fakeSystem) List(context.Context) ([]domains.Domain, error) {
	return f.domains, nil
}

func (f *fakeSystem) Find(_ context.Context, id int64) (*domains.Domain, error) {
	for _, d := range f.domains {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, domains.ErrNotFound
}

func newMux() *http.ServeMux {
	sys := &fakeSystem{domains: []domains.Domain{
		{ID: 1, Name: "Understand", Code: "UNDERSTAND", MaturityLevels: []int{1, 2, 3}},
		{ID: 2, Name: "Secure", Code: "SECURE", MaturityLevels: []int{1, 2, 3}},
	}}
	h := sys.Handler()

	mux := http.NewServeMux()
	routes.Register(mux, h.Routes(), h.LegacyRoutes())
	return mux
}

func TestList(t *testing.T) {
	mux := newMux()

	for _, path := range []string{"/domains", "/mappings/domains"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}

			var got []map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(got) != 2 || got[0]["domain_code"] != "UNDERSTAND" {
				t.Errorf("body = %v", got)
			}
		})
	}
}

func TestFind(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"found", "/domains/2", http.StatusOK},
		{"missing", "/domains/9", http.StatusNotFound},
		{"invalid id", "/domains/abc", http.StatusBadRequest},
		{"zero id", "/domains/0", http.StatusBadRequest},
	}

	mux := newMux()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}
