// Package routes declares route groups and registers them on a ServeMux
// and in an OpenAPI spec.
package routes

import (
	"net/http"
	"slices"
	"strings"

	"github.com/JaimeStill/aligner/pkg/openapi"
)

// Group organizes routes under a common prefix with shared tags and middleware.
// Middleware applies to the group's routes and to all children.
type Group struct {
	Prefix     string
	Tags       []string
	Routes     []Route
	Children   []Group
	Middleware []Middleware
}

// With returns a copy of the group with mw appended to its middleware.
func (g Group) With(mw ...Middleware) Group {
	g.Middleware = append(slices.Clone(g.Middleware), mw...)
	return g
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		registerGroup(mux, "", nil, group)
	}
}

// Document adds an operation to spec for every route carrying OpenAPI metadata.
// Paths are relative to the spec's server URL.
func Document(spec *openapi.Spec, groups ...Group) {
	for _, group := range groups {
		documentGroup(spec, "", nil, group)
	}
}

func registerGroup(mux *http.ServeMux, parentPrefix string, parentMW []Middleware, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	mw := append(slices.Clone(parentMW), group.Middleware...)

	for _, route := range group.Routes {
		pattern := route.Method + " " + fullPrefix + route.Pattern
		mux.HandleFunc(pattern, wrap(route.Handler, mw))
	}
	for _, child := range group.Children {
		registerGroup(mux, fullPrefix, mw, child)
	}
}

func documentGroup(spec *openapi.Spec, parentPrefix string, parentTags []string, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	tags := group.Tags
	if len(tags) == 0 {
		tags = parentTags
	}

	for _, route := range group.Routes {
		if route.OpenAPI == nil {
			continue
		}
		op := *route.OpenAPI
		if len(op.Tags) == 0 {
			op.Tags = tags
		}
		spec.AddOperation(route.Method, specPath(fullPrefix+route.Pattern), &op)
	}
	for _, child := range group.Children {
		documentGroup(spec, fullPrefix, tags, child)
	}
}

// wrap applies mw so the first element is outermost.
func wrap(h http.HandlerFunc, mw []Middleware) http.HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

func specPath(pattern string) string {
	if pattern == "" {
		return "/"
	}
	return strings.ReplaceAll(pattern, "...}", "}")
}
