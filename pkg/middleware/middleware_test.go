package middleware_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/aligner/pkg/middleware"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func ok() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestChainOrder(t *testing.T) {
	var (
		order []string
		chain middleware.Chain
	)

	for _, name := range []string{"first", "second"} {
		chain.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		})
	}

	handler := chain.Then(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if strings.Join(order, ",") != "first,second,handler" {
		t.Errorf("order: got %v, want [first second handler]", order)
	}
}

func TestCORS(t *testing.T) {
	cfg := &middleware.CORSConfig{
		Enabled:          true,
		Origins:          []string{"http://localhost:3000"},
		AllowCredentials: true,
	}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	handler := middleware.CORS(cfg)(ok())

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/domains", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
			t.Errorf("allow-origin: got %q", got)
		}
		if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
			t.Error("credentials header missing")
		}
	})

	t.Run("disallowed origin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/domains", nil)
		req.Header.Set("Origin", "http://evil.example")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("allow-origin should be empty, got %q", got)
		}
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/api/mappings", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", "POST")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("preflight status: got %d, want 204", rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, PUT, DELETE, OPTIONS" {
			t.Errorf("allow-methods: got %q", got)
		}
		if got := rec.Header().Get("Access-Control-Max-Age"); got != "3600" {
			t.Errorf("max-age: got %q", got)
		}
	})

	t.Run("preflight disallowed origin", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/api/mappings", nil)
		req.Header.Set("Origin", "http://evil.example")
		req.Header.Set("Access-Control-Request-Method", "DELETE")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Errorf("preflight status: got %d, want 403", rec.Code)
		}
	})

	t.Run("download exposes disposition", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/documents/1/download", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Expose-Headers"); got != "Content-Disposition" {
			t.Errorf("expose-headers: got %q", got)
		}
	})
}

func TestCORSWildcard(t *testing.T) {
	tests := []struct {
		name        string
		credentials bool
		want        string
	}{
		{"anonymous", false, "*"},
		{"credentials echo origin", true, "http://client.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &middleware.CORSConfig{
				Enabled:          true,
				Origins:          []string{middleware.WildcardOrigin},
				AllowCredentials: tt.credentials,
			}
			cfg.Finalize(nil)

			req := httptest.NewRequest("GET", "/api/domains", nil)
			req.Header.Set("Origin", "http://client.example")
			rec := httptest.NewRecorder()
			middleware.CORS(cfg)(ok()).ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("allow-origin: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCORSConfigEnv(t *testing.T) {
	t.Setenv("ALIGNER_TEST_CORS_ORIGINS", " http://a.example , ,http://b.example")
	t.Setenv("ALIGNER_TEST_CORS_ENABLED", "true")

	cfg := middleware.CORSConfig{}
	cfg.Finalize(&middleware.CORSEnv{
		Enabled: "ALIGNER_TEST_CORS_ENABLED",
		Origins: "ALIGNER_TEST_CORS_ORIGINS",
	})

	if !cfg.Enabled {
		t.Error("enabled not applied from env")
	}
	if strings.Join(cfg.Origins, "|") != "http://a.example|http://b.example" {
		t.Errorf("origins: got %q", cfg.Origins)
	}
	if cfg.MaxAge != 3600 || len(cfg.ExposedHeaders) != 1 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoggerCapturesStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/documents/9", nil))

	out := buf.String()
	for _, want := range []string{"level=WARN", "status=404", "uri=/api/documents/9"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	middleware.SecurityHeaders()(ok()).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("X-Content-Type-Options not set")
	}
	if rec.Header().Get("X-Frame-Options") == "" {
		t.Error("X-Frame-Options not set")
	}
}

func TestRateLimit(t *testing.T) {
	cfg := &middleware.RateLimitConfig{Enabled: true, Requests: 3, Window: "1h"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	handler := middleware.RateLimit(cfg, discard)(ok())

	do := func(addr string) int {
		req := httptest.NewRequest("GET", "/api/domains", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := range 3 {
		if code := do("10.0.0.1:5000"); code != http.StatusOK {
			t.Fatalf("request %d: got %d, want 200", i+1, code)
		}
	}
	if code := do("10.0.0.1:5001"); code != http.StatusTooManyRequests {
		t.Errorf("request over budget: got %d, want 429", code)
	}
	if code := do("10.0.0.2:5000"); code != http.StatusOK {
		t.Errorf("other client: got %d, want 200", code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	cfg := &middleware.RateLimitConfig{Requests: 1, Window: "1h"}
	handler := middleware.RateLimit(cfg, discard)(ok())

	for range 5 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("disabled limiter rejected request: %d", rec.Code)
		}
	}
}

func TestRateLimitConfigFinalize(t *testing.T) {
	t.Setenv("ALIGNER_TEST_RL_ENABLED", "true")
	t.Setenv("ALIGNER_TEST_RL_REQUESTS", "10")

	cfg := middleware.RateLimitConfig{}
	err := cfg.Finalize(&middleware.RateLimitEnv{
		Enabled:  "ALIGNER_TEST_RL_ENABLED",
		Requests: "ALIGNER_TEST_RL_REQUESTS",
	})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !cfg.Enabled || cfg.Requests != 10 || cfg.Window != "15m" {
		t.Errorf("config = %+v", cfg)
	}

	bad := middleware.RateLimitConfig{Window: "forever"}
	if err := bad.Finalize(nil); err == nil {
		t.Error("expected error for invalid window")
	}
}

func TestRecover(t *testing.T) {
	handler := middleware.Recover(discard)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil map write")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/reports/comprehensive", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error"`) {
		t.Errorf("body = %q, want JSON error", rec.Body.String())
	}
}

func TestRecoverAbortHandler(t *testing.T) {
	handler := middleware.Recover(discard)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if v := recover(); v != http.ErrAbortHandler {
			t.Errorf("recovered %v, want http.ErrAbortHandler", v)
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
}
