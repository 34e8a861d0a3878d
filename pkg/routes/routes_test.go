package routes_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/aligner/pkg/openapi"
	"github.com/JaimeStill/aligner/pkg/routes"
)

func status(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	}
}

func tag(name string, trail *[]string) routes.Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			*trail = append(*trail, name)
			next(w, r)
		}
	}
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()

	routes.Register(mux, routes.Group{
		Prefix: "/documents",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: status(http.StatusOK)},
			{Method: "GET", Pattern: "/{id}", Handler: status(http.StatusOK)},
			{Method: "DELETE", Pattern: "/{id}", Handler: status(http.StatusNoContent)},
		},
		Children: []routes.Group{
			{
				Prefix: "/file",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "/{id}", Handler: status(http.StatusAccepted)},
				},
			},
		},
	})

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/documents", http.StatusOK},
		{"GET", "/documents/4", http.StatusOK},
		{"DELETE", "/documents/4", http.StatusNoContent},
		{"GET", "/documents/file/4", http.StatusAccepted},
		{"POST", "/documents/4", http.StatusMethodNotAllowed},
		{"GET", "/mappings", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestGroupMiddleware(t *testing.T) {
	var trail []string
	mux := http.NewServeMux()

	base := routes.Group{
		Prefix: "/auth",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/me", Handler: status(http.StatusOK)},
		},
		Children: []routes.Group{
			{
				Prefix: "/users",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: status(http.StatusOK)},
				},
				Middleware: []routes.Middleware{tag("admin", &trail)},
			},
		},
	}

	protected := base.With(tag("authn", &trail))
	if len(base.Middleware) != 0 {
		t.Fatal("With must not mutate the receiver")
	}
	routes.Register(mux, protected)

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/auth/users", nil))
	if strings.Join(trail, ",") != "authn,admin" {
		t.Errorf("middleware order = %v, want [authn admin]", trail)
	}

	trail = nil
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/auth/me", nil))
	if strings.Join(trail, ",") != "authn" {
		t.Errorf("child middleware leaked to parent: %v", trail)
	}
}

func TestDocument(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")

	routes.Document(spec, routes.Group{
		Prefix: "/mappings",
		Tags:   []string{"Mappings"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: status(http.StatusOK), OpenAPI: &openapi.Operation{Summary: "List"}},
			{Method: "PUT", Pattern: "/{id}", Handler: status(http.StatusOK), OpenAPI: &openapi.Operation{Summary: "Update"}},
			{Method: "DELETE", Pattern: "/{id}", Handler: status(http.StatusOK)},
		},
	})

	list := spec.Paths["/mappings"]
	if list == nil || list.Get == nil || list.Get.Tags[0] != "Mappings" {
		t.Fatalf("list operation not documented: %+v", list)
	}
	item := spec.Paths["/mappings/{id}"]
	if item == nil || item.Put == nil {
		t.Fatalf("update operation not documented: %+v", item)
	}
	if item.Delete != nil {
		t.Error("routes without OpenAPI metadata should not be documented")
	}
}
