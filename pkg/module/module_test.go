package module_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/aligner/pkg/module"
)

func okHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}
}

func mustNew(t *testing.T, prefix string, router http.Handler) *module.Module {
	t.Helper()
	m, err := module.New(prefix, router)
	if err != nil {
		t.Fatalf("New(%q) error = %v", prefix, err)
	}
	return m
}

func TestNewInvalidPrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"empty", ""},
		{"no leading slash", "api"},
		{"nested path", "/api/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := module.New(tt.prefix, http.NewServeMux()); !errors.Is(err, module.ErrInvalidPrefix) {
				t.Errorf("New(%q) error = %v, want ErrInvalidPrefix", tt.prefix, err)
			}
		})
	}
}

func TestServePrefixStripping(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"nested path", "/api/documents/3", "/documents/3"},
		{"module root", "/api", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var received string
			mux := http.NewServeMux()
			mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
				received = r.URL.Path
			})

			m := mustNew(t, "/api", mux)
			m.Serve(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			if received != tt.want {
				t.Errorf("inner path = %q, want %q", received, tt.want)
			}
		})
	}
}

func TestModuleMiddlewareOrder(t *testing.T) {
	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	m := mustNew(t, "/api", okHandler("ok"))
	m.Use(tag("outer"), tag("inner"))

	for range 2 {
		m.Serve(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api", nil))
	}

	want := []string{"outer", "inner", "outer", "inner"}
	if len(order) != len(want) {
		t.Fatalf("middleware calls = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("call %d = %s, want %s", i, order[i], want[i])
		}
	}
}

func TestRouterDispatch(t *testing.T) {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /health", okHandler("api"))

	router := module.NewRouter()
	router.Mount(mustNew(t, "/api", apiMux))
	router.HandleNative("GET /healthz", okHandler("native"))

	tests := []struct {
		name     string
		path     string
		wantBody string
	}{
		{"module", "/api/health", "api"},
		{"trailing slash normalized", "/api/health/", "api"},
		{"native fallback", "/healthz", "native"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", rec.Code)
			}
			if body := rec.Body.String(); body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestRouterNotFound(t *testing.T) {
	router := module.NewRouter()
	router.HandleNative("GET /healthz", okHandler("ok"))
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("custom"))
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if rec.Code != http.StatusNotFound || rec.Body.String() != "custom" {
		t.Errorf("unmatched = %d %q, want 404 custom", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("native route status = %d, want 200", rec.Code)
	}
}

func TestRouterMountDuplicate(t *testing.T) {
	router := module.NewRouter()
	if err := router.Mount(mustNew(t, "/api", http.NewServeMux())); err != nil {
		t.Fatalf("first Mount() error = %v", err)
	}
	if err := router.Mount(mustNew(t, "/api", http.NewServeMux())); err == nil {
		t.Error("expected error for duplicate prefix")
	}
}
