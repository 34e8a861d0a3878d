package module

import (
	"fmt"
	"net/http"
	"strings"
)

// Router dispatches requests to mounted modules by path prefix,
// falling back to a native ServeMux for unmatched paths.
type Router struct {
	modules  map[string]*Module
	native   *http.ServeMux
	notFound http.HandlerFunc
}

// NewRouter creates a Router with an empty module map and native fallback mux.
func NewRouter() *Router {
	return &Router{
		modules: make(map[string]*Module),
		native:  http.NewServeMux(),
	}
}

// HandleNative registers a handler on the native fallback mux.
func (r *Router) HandleNative(pattern string, handler http.HandlerFunc) {
	r.native.HandleFunc(pattern, handler)
}

// NotFound sets the handler for requests that match neither a module nor a native route.
// Without one, the native mux's plain-text 404 is used.
func (r *Router) NotFound(handler http.HandlerFunc) {
	r.notFound = handler
}

// Mount registers a module to handle requests matching its prefix.
func (r *Router) Mount(m *Module) error {
	if _, exists := r.modules[m.prefix]; exists {
		return fmt.Errorf("module prefix already mounted: %s", m.prefix)
	}
	r.modules[m.prefix] = m
	return nil
}

// ServeHTTP dispatches to the matching module or falls back to the native mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	path := normalizePath(req)
	prefix := extractPrefix(path)

	if m, ok := r.modules[prefix]; ok {
		m.Serve(w, req)
		return
	}

	if r.notFound != nil {
		if _, pattern := r.native.Handler(req); pattern == "" {
			r.notFound(w, req)
			return
		}
	}

	r.native.ServeHTTP(w, req)
}

func extractPrefix(path string) string {
	parts := strings.SplitN(path, "/", 3)
	if len(parts) >= 2 {
		return "/" + parts[1]
	}
	return path
}

// normalizePath drops trailing slashes so "/api/documents/" routes like "/api/documents".
func normalizePath(req *http.Request) string {
	path := req.URL.Path
	if trimmed := strings.TrimRight(path, "/"); trimmed != "" && trimmed != path {
		req.URL.Path = trimmed
		return trimmed
	}
	return path
}
