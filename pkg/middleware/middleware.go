// Package middleware provides the HTTP middleware applied to every API request:
// panic recovery, security headers, CORS, rate limiting and request logging.
package middleware

import "net/http"

// Func wraps an http.Handler with cross-cutting behavior.
type Func func(http.Handler) http.Handler

// Chain is an ordered middleware stack. The first entry is the outermost wrapper.
type Chain []Func

// Use appends fn to the chain.
func (c *Chain) Use(fn ...Func) {
	*c = append(*c, fn...)
}

// Then wraps handler with every middleware in the chain.
func (c Chain) Then(handler http.Handler) http.Handler {
	for i := len(c) - 1; i >= 0; i-- {
		handler = c[i](handler)
	}
	return handler
}
