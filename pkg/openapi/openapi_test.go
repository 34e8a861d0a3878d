package openapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/aligner/pkg/openapi"
)

func TestNewSpec(t *testing.T) {
	spec := openapi.NewSpec("Policy Aligner API", "1.0.0")
	spec.AddServer("/api")
	spec.SetDescription("alignment scoring")

	if spec.OpenAPI != "3.1.0" {
		t.Errorf("openapi version: got %s, want 3.1.0", spec.OpenAPI)
	}
	if spec.Info.Title != "Policy Aligner API" || spec.Info.Description != "alignment scoring" {
		t.Errorf("info = %+v", spec.Info)
	}
	if len(spec.Servers) != 1 || spec.Servers[0].URL != "/api" {
		t.Errorf("servers = %v", spec.Servers)
	}
}

func TestAddOperation(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	get := &openapi.Operation{Summary: "Find mapping"}
	patch := &openapi.Operation{Summary: "Update mapping"}

	spec.AddOperation("GET", "/mappings/{id}", get)
	spec.AddOperation("patch", "/mappings/{id}", patch)
	spec.AddOperation("TRACE", "/mappings/{id}", &openapi.Operation{})

	item := spec.Paths["/mappings/{id}"]
	if item == nil {
		t.Fatal("path not registered")
	}
	if item.Get != get || item.Patch != patch {
		t.Errorf("operations not attached: %+v", item)
	}
}

func TestHelpers(t *testing.T) {
	if ref := openapi.SchemaRef("Mapping"); ref.Ref != "#/components/schemas/Mapping" {
		t.Errorf("schema ref: got %s", ref.Ref)
	}
	if ref := openapi.ResponseRef("NotFound"); ref.Ref != "#/components/responses/NotFound" {
		t.Errorf("response ref: got %s", ref.Ref)
	}

	rb := openapi.RequestBodyJSON("CreateMapping", true)
	if !rb.Required || rb.Content["application/json"].Schema.Ref != "#/components/schemas/CreateMapping" {
		t.Errorf("request body = %+v", rb)
	}

	p := openapi.PathParam("id", "Mapping ID")
	if p.In != "path" || !p.Required || p.Schema.Type != "integer" || p.Schema.Format != "int64" {
		t.Errorf("path param = %+v schema=%+v", p, p.Schema)
	}

	q := openapi.QueryParam("document_ids", "string", "Comma-separated document IDs", false)
	if q.In != "query" || q.Required {
		t.Errorf("query param = %+v", q)
	}
}

func TestNewComponentsDefaults(t *testing.T) {
	c := openapi.NewComponents()

	for _, name := range []string{"PageRequest", "Error"} {
		if _, ok := c.Schemas[name]; !ok {
			t.Errorf("missing default schema: %s", name)
		}
	}
	for _, name := range []string{"BadRequest", "Unauthorized", "Forbidden", "NotFound", "Conflict", "TooLarge"} {
		if _, ok := c.Responses[name]; !ok {
			t.Errorf("missing default response: %s", name)
		}
	}
	if s := c.SecuritySchemes["bearerAuth"]; s == nil || s.Scheme != "bearer" {
		t.Errorf("bearerAuth scheme = %+v", s)
	}

	c.AddSchemas(map[string]*openapi.Schema{"Document": {Type: "object"}})
	if _, ok := c.Schemas["Document"]; !ok {
		t.Error("Document schema not added")
	}
}

func TestServeSpec(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	spec.AddOperation("GET", "/domains", &openapi.Operation{Summary: "List domains"})

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	rec := httptest.NewRecorder()
	openapi.ServeSpec(data)(rec, httptest.NewRequest("GET", "/openapi.json", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}

	var parsed struct {
		OpenAPI string                    `json:"openapi"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if parsed.OpenAPI != "3.1.0" {
		t.Errorf("openapi: got %v", parsed.OpenAPI)
	}
	if _, ok := parsed.Paths["/domains"]["get"]; !ok {
		t.Errorf("paths = %v", parsed.Paths)
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Setenv("ALIGNER_TEST_API_TITLE", "Aligner")

	cfg := openapi.Config{}
	if err := cfg.Finalize(&openapi.ConfigEnv{Title: "ALIGNER_TEST_API_TITLE"}); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.Title != "Aligner" || cfg.Description == "" {
		t.Errorf("config = %+v", cfg)
	}
}

func TestConfigNewSpec(t *testing.T) {
	cfg := openapi.Config{ContactEmail: "admin@qc2m2.com", PublicURL: "https://aligner.example/api/"}
	cfg.Finalize(nil)

	spec := cfg.NewSpec("1.2.0", "/api")

	if spec.Info.Version != "1.2.0" || spec.Info.Title != "Policy Aligner API" {
		t.Errorf("info = %+v", spec.Info)
	}
	if spec.Info.Contact == nil || spec.Info.Contact.Email != "admin@qc2m2.com" {
		t.Errorf("contact = %+v", spec.Info.Contact)
	}
	if len(spec.Servers) != 2 || spec.Servers[0].URL != "https://aligner.example/api" || spec.Servers[1].URL != "/api" {
		t.Errorf("servers = %+v", spec.Servers)
	}

	bare := openapi.Config{}
	bare.Finalize(nil)
	if s := bare.NewSpec("1.2.0", "/api"); len(s.Servers) != 1 || s.Info.Contact != nil {
		t.Errorf("bare spec servers = %+v contact = %+v", s.Servers, s.Info.Contact)
	}
}
