// Package module mounts self-contained HTTP routers under single-level path prefixes.
package module

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/JaimeStill/aligner/pkg/middleware"
)

// ErrInvalidPrefix indicates a prefix that is empty, relative, or more than one segment deep.
var ErrInvalidPrefix = errors.New("invalid module prefix")

// Module serves an inner router beneath a prefix such as "/api".
// The inner router sees paths with the prefix removed.
type Module struct {
	prefix string
	router http.Handler
	chain  middleware.Chain

	once    sync.Once
	handler http.Handler
}

// New creates a Module for a single-level prefix.
func New(prefix string, router http.Handler) (*Module, error) {
	if prefix == "" || !strings.HasPrefix(prefix, "/") || strings.Count(prefix, "/") != 1 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPrefix, prefix)
	}
	return &Module{prefix: prefix, router: router}, nil
}

// Prefix returns the module's path prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends middleware. The first middleware added is outermost.
// Middleware added after the first request is ignored.
func (m *Module) Use(mw ...func(http.Handler) http.Handler) {
	for _, fn := range mw {
		m.chain.Use(fn)
	}
}

// Handler returns the inner router wrapped in the module's middleware.
func (m *Module) Handler() http.Handler {
	m.once.Do(func() {
		m.handler = m.chain.Then(m.router)
	})
	return m.handler
}

// Serve strips the prefix from the request path and dispatches to the inner router.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	m.Handler().ServeHTTP(w, m.strip(req))
}

func (m *Module) strip(req *http.Request) *http.Request {
	path := strings.TrimPrefix(req.URL.Path, m.prefix)
	if path == "" {
		path = "/"
	}

	r := req.Clone(req.Context())
	r.URL = &url.URL{}
	*r.URL = *req.URL
	r.URL.Path = path
	r.URL.RawPath = ""
	return r
}
