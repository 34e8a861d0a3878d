// Package handlers provides shared HTTP response and request helpers.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
)

// ErrInvalidID indicates a path identifier that is not a positive integer.
var ErrInvalidID = errors.New("invalid id")

// ErrInvalidBody indicates a request body that is not valid JSON for the target type.
var ErrInvalidBody = errors.New("invalid request body")

const maxJSONBody = 1 << 20

type detailWriter struct {
	http.ResponseWriter
}

func (d *detailWriter) Unwrap() http.ResponseWriter {
	return d.ResponseWriter
}

// ExposeErrors returns middleware that lets RespondError include the
// underlying message in 5xx responses written downstream of it.
// Install it outermost, and only in development.
func ExposeErrors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&detailWriter{ResponseWriter: w}, r)
	})
}

func exposesErrors(w http.ResponseWriter) bool {
	for {
		switch v := w.(type) {
		case *detailWriter:
			return true
		case interface{ Unwrap() http.ResponseWriter }:
			w = v.Unwrap()
		default:
			return false
		}
	}
}

// RespondJSON writes data as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err and writes {"error": message}.
// Server errors are reported generically unless w passed through ExposeErrors.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("handler error", "status", status, "error", err)

		body := map[string]string{"error": "Internal server error"}
		if exposesErrors(w) {
			body["message"] = err.Error()
		}
		RespondJSON(w, status, body)
		return
	}

	logger.Warn("request rejected", "status", status, "error", err)
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}

// PathID parses the named path value as a positive int64.
func PathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, r.PathValue(name))
	}
	return id, nil
}

// DecodeJSON decodes a size-limited JSON request body into v.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	return nil
}
