package handlers_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/aligner/pkg/handlers"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	return body
}

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	handlers.RespondJSON(rec, http.StatusCreated, struct {
		ID int64 `json:"id"`
	}{ID: 42})

	if rec.Code != http.StatusCreated {
		t.Errorf("status: got %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type: got %s", ct)
	}
	if !strings.Contains(rec.Body.String(), `"id":42`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRespondErrorClient(t *testing.T) {
	rec := httptest.NewRecorder()
	handlers.RespondError(rec, discard, http.StatusBadRequest, errors.New("level must be between 1 and 3"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
	if got := decode(t, rec)["error"]; got != "level must be between 1 and 3" {
		t.Errorf("error: got %q", got)
	}
}

func TestRespondErrorServer(t *testing.T) {
	secret := errors.New("pq: relation \"users\" does not exist")
	fail := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondError(w, discard, http.StatusInternalServerError, secret)
	})

	t.Run("production hides detail", func(t *testing.T) {
		rec := httptest.NewRecorder()
		fail.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		body := decode(t, rec)
		if body["error"] != "Internal server error" {
			t.Errorf("error: got %q", body["error"])
		}
		if _, ok := body["message"]; ok {
			t.Error("message should be absent outside development")
		}
	})

	t.Run("development exposes detail", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handlers.ExposeErrors(fail).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if got := decode(t, rec)["message"]; got != secret.Error() {
			t.Errorf("message: got %q, want %q", got, secret.Error())
		}
	})

	t.Run("detail survives wrapping writers", func(t *testing.T) {
		wrapped := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fail.ServeHTTP(&unwrapWriter{ResponseWriter: w}, r)
		})
		rec := httptest.NewRecorder()
		handlers.ExposeErrors(wrapped).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if got := decode(t, rec)["message"]; got != secret.Error() {
			t.Errorf("message: got %q, want %q", got, secret.Error())
		}
	})
}

type unwrapWriter struct {
	http.ResponseWriter
}

func (u *unwrapWriter) Unwrap() http.ResponseWriter {
	return u.ResponseWriter
}

func TestPathID(t *testing.T) {
	tests := []struct {
		value   string
		want    int64
		wantErr bool
	}{
		{"12", 12, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/documents/"+tt.value, nil)
			r.SetPathValue("id", tt.value)

			got, err := handlers.PathID(r, "id")
			if tt.wantErr {
				if !errors.Is(err, handlers.ErrInvalidID) {
					t.Errorf("PathID(%q) error = %v, want ErrInvalidID", tt.value, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("PathID(%q) = %d, %v; want %d", tt.value, got, err, tt.want)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Compliance"}`))
	if err := handlers.DecodeJSON(r, &v); err != nil || v.Name != "Compliance" {
		t.Errorf("DecodeJSON() = %+v, %v", v, err)
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	if err := handlers.DecodeJSON(r, &v); !errors.Is(err, handlers.ErrInvalidBody) {
		t.Errorf("DecodeJSON() malformed error = %v, want ErrInvalidBody", err)
	}
}
