package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/JaimeStill/aligner/internal/analysis"
	"github.com/JaimeStill/aligner/internal/api"
	"github.com/JaimeStill/aligner/internal/auth"
	"github.com/JaimeStill/aligner/internal/documents"
	"github.com/JaimeStill/aligner/internal/infrastructure"
	"github.com/JaimeStill/aligner/internal/mappings"
	"github.com/JaimeStill/aligner/internal/reports"
	"github.com/JaimeStill/aligner/pkg/module"
	"github.com/JaimeStill/aligner/pkg/pagination"
)

// envTestDSN points at a migrated database. Integration tests skip without it.
const envTestDSN = "ALIGNER_TEST_DSN"

type client struct {
	t     *testing.T
	m     *module.Module
	token string
}

func (c *client) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.m.Serve(rec, req)
	return rec
}

func (c *client) json(method, path string, in any, wantStatus int, out any) {
	c.t.Helper()
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			c.t.Fatalf("marshal: %v", err)
		}
		body = bytes.NewReader(data)
	}

	rec := c.do(method, path, body, "application/json")
	if rec.Code != wantStatus {
		c.t.Fatalf("%s %s: status %d, want %d: %s", method, path, rec.Code, wantStatus, rec.Body.String())
	}
	if out != nil {
		if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
			c.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
}

func setupIntegration(t *testing.T) *client {
	t.Helper()
	dsn := os.Getenv(envTestDSN)
	if dsn == "" {
		t.Skipf("%s not set", envTestDSN)
	}

	cfg := validConfig(t)
	cfg.Database.URL = dsn

	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}
	m, err := api.NewModule(cfg, infra)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}
	if err := infra.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := infra.Lifecycle.WaitForStartup(); err != nil {
		t.Fatalf("WaitForStartup() error = %v", err)
	}
	t.Cleanup(func() { infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration()) })

	c := &client{t: t, m: m}

	var login auth.LoginResult
	c.json("POST", "/api/auth/login", auth.LoginCommand{
		Username: cfg.Auth.AdminEmail,
		Password: cfg.Auth.AdminPassword,
	}, http.StatusOK, &login)
	c.token = login.Token

	return c
}

func upload(c *client, name, text string) documents.Document {
	c.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("document", name)
	if err != nil {
		c.t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte(text))
	w.WriteField("relevant_agency", "Integration Agency")
	w.Close()

	rec := c.do("POST", "/api/documents/upload", &buf, w.FormDataContentType())
	if rec.Code != http.StatusCreated {
		c.t.Fatalf("upload: status %d: %s", rec.Code, rec.Body.String())
	}

	var doc documents.Document
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		c.t.Fatalf("decode upload: %v", err)
	}
	return doc
}

func TestIntegrationAlignmentFlow(t *testing.T) {
	c := setupIntegration(t)

	text := strings.Repeat("Access to critical systems is restricted to authorised personnel. ", 4) +
		"Incidents must be reported to the national authority within twenty four hours."
	doc := upload(c, "integration-policy.txt", text)
	t.Cleanup(func() {
		c.do("DELETE", fmt.Sprintf("/api/documents/%d", doc.ID), nil, "")
	})

	var detail documents.Detail
	c.json("GET", fmt.Sprintf("/api/documents/%d", doc.ID), nil, http.StatusOK, &detail)
	if len(detail.Sections) == 0 {
		t.Fatal("uploaded document has no sections")
	}
	section := detail.Sections[0]

	create := map[string]any{
		"document_id":      doc.ID,
		"section_id":       section.ID,
		"domain_id":        1,
		"maturity_level":   3,
		"alignment_status": "fully_aligned",
		"notes":            "integration",
	}
	var mapping mappings.Mapping
	c.json("POST", "/api/mappings", create, http.StatusCreated, &mapping)
	c.json("POST", "/api/mappings", create, http.StatusConflict, nil)

	partial := map[string]any{
		"document_id":      doc.ID,
		"domain_id":        2,
		"maturity_level":   1,
		"alignment_status": "not_aligned",
	}
	c.json("POST", "/api/mappings", partial, http.StatusCreated, nil)

	var coverage []analysis.CoverageRow
	c.json("GET", fmt.Sprintf("/api/analysis/domain-coverage?document_ids=%d", doc.ID), nil, http.StatusOK, &coverage)
	if len(coverage) < 2 {
		t.Fatalf("coverage rows: got %d, want at least 2", len(coverage))
	}
	first := coverage[0]
	if first.ID != 1 || first.Total != 1 || first.AlignmentPercentage == nil || *first.AlignmentPercentage != 100 {
		t.Errorf("domain 1 coverage: got %+v", first)
	}

	var report reports.Comprehensive
	c.json("GET", fmt.Sprintf("/api/reports/comprehensive?document_ids=%d", doc.ID), nil, http.StatusOK, &report)
	if report.Metadata.TotalMappings != 2 {
		t.Errorf("total mappings: got %d, want 2", report.Metadata.TotalMappings)
	}
	if s := report.Metadata.OverallAlignmentScore; s == nil || *s != 50 {
		t.Errorf("overall score: got %v, want 50", s)
	}

	insight := map[string]any{
		"title":              "Reporting timelines",
		"content":            "Reporting timelines are already enforced.",
		"stakeholder_name":   "Integration Lead",
		"related_mapping_id": mapping.ID,
	}
	c.json("POST", "/api/insights", insight, http.StatusCreated, nil)

	c.json("DELETE", fmt.Sprintf("/api/mappings/%d", mapping.ID), nil, http.StatusNoContent, nil)
	c.json("GET", fmt.Sprintf("/api/mappings/%d", mapping.ID), nil, http.StatusNotFound, nil)
}

func TestIntegrationDeleteCascades(t *testing.T) {
	c := setupIntegration(t)

	doc := upload(c, "integration-cascade.txt", "Backups are tested quarterly. Recovery objectives are documented.")

	var detail documents.Detail
	c.json("GET", fmt.Sprintf("/api/documents/%d", doc.ID), nil, http.StatusOK, &detail)
	if len(detail.Sections) == 0 {
		t.Fatal("uploaded document has no sections")
	}

	for i, s := range detail.Sections {
		c.json("POST", "/api/mappings", map[string]any{
			"document_id":      doc.ID,
			"section_id":       s.ID,
			"domain_id":        4,
			"maturity_level":   2,
			"alignment_status": []string{"fully_aligned", "partially_aligned"}[i%2],
		}, http.StatusCreated, nil)
	}

	if rec := c.do("GET", fmt.Sprintf("/api/documents/file/%d", doc.ID), nil, ""); rec.Code != http.StatusOK {
		t.Fatalf("file before delete: status %d", rec.Code)
	}

	c.json("DELETE", fmt.Sprintf("/api/documents/%d", doc.ID), nil, http.StatusNoContent, nil)

	var remaining pagination.PageResult[mappings.Mapping]
	c.json("GET", fmt.Sprintf("/api/mappings?document_id=%d", doc.ID), nil, http.StatusOK, &remaining)
	if remaining.Total != 0 {
		t.Errorf("mappings after delete: got %d, want 0", remaining.Total)
	}

	c.json("GET", fmt.Sprintf("/api/documents/%d", doc.ID), nil, http.StatusNotFound, nil)
	if rec := c.do("GET", fmt.Sprintf("/api/documents/file/%d", doc.ID), nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("file after delete: status %d, want 404", rec.Code)
	}
}
