package insights

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/JaimeStill/aligner/internal/auth"
	"github.com/JaimeStill/aligner/pkg/pagination"
	"github.com/JaimeStill/aligner/pkg/routes"
)

func ptr(s string) *string { return &s }

func TestNormalize(t *testing.T) {
	blank := "   "
	named := " Jane Roe "

	tests := []struct {
		name     string
		cmd      CreateCommand
		wantErr  error
		wantType string
		wantName *string
	}{
		{"defaults type", CreateCommand{Title: "t", Content: "c"}, nil, DefaultType, nil},
		{"keeps type lowercased", CreateCommand{Title: "t", Content: "c", InsightType: " Survey "}, nil, "survey", nil},
		{"blank stakeholder dropped", CreateCommand{Title: "t", Content: "c", StakeholderName: &blank}, nil, DefaultType, nil},
		{"stakeholder trimmed", CreateCommand{Title: "t", Content: "c", StakeholderName: &named}, nil, DefaultType, ptr("Jane Roe")},
		{"missing title", CreateCommand{Title: " ", Content: "c"}, ErrMissingFields, "", nil},
		{"missing content", CreateCommand{Title: "t"}, ErrMissingFields, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := tt.cmd
			err := cmd.Normalize()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Normalize() = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if cmd.InsightType != tt.wantType {
				t.Errorf("InsightType = %q, want %q", cmd.InsightType, tt.wantType)
			}
			switch {
			case tt.wantName == nil && cmd.StakeholderName != nil:
				t.Errorf("StakeholderName = %q, want nil", *cmd.StakeholderName)
			case tt.wantName != nil && (cmd.StakeholderName == nil || *cmd.StakeholderName != *tt.wantName):
				t.Errorf("StakeholderName = %v, want %q", cmd.StakeholderName, *tt.wantName)
			}
		})
	}
}

func TestFiltersFromQuery(t *testing.T) {
	values, _ := url.ParseQuery("related_mapping_id=12&insight_type=Workshop")
	f := FiltersFromQuery(values)

	if f.RelatedMappingID == nil || *f.RelatedMappingID != 12 {
		t.Errorf("RelatedMappingID = %v, want 12", f.RelatedMappingID)
	}
	if f.InsightType == nil || *f.InsightType != "workshop" {
		t.Errorf("InsightType = %v, want workshop", f.InsightType)
	}

	if f := FiltersFromQuery(url.Values{"related_mapping_id": {"x"}}); f.RelatedMappingID != nil {
		t.Errorf("RelatedMappingID = %d, want nil", *f.RelatedMappingID)
	}
}

type fakeSystem struct {
	created []CreateCommand
}

func (f *fakeSystem) Handler() *Handler {
	return NewHandler(f, slog.New(slog.NewTextHandler(io.Discard, nil)), pagination.Config{DefaultPageSize: 20, MaxPageSize: 100})
}

func (f *fakeSystem) List(_ context.Context, page pagination.PageRequest, _ Filters) (*pagination.PageResult[Insight], error) {
	result := pagination.NewPageResult([]Insight{}, 0, page.Page, page.PageSize)
	return &result, nil
}

func (f *fakeSystem) Find(_ context.Context, id int64) (*Insight, error) {
	if id != 1 {
		return nil, ErrNotFound
	}
	return &Insight{ID: 1, Title: "t", Content: "c", InsightType: DefaultType}, nil
}

func (f *fakeSystem) Create(_ context.Context, cmd CreateCommand) (*Insight, error) {
	if err := cmd.Normalize(); err != nil {
		return nil, err
	}
	if cmd.RelatedMappingID != nil && *cmd.RelatedMappingID == 404 {
		return nil, ErrInvalidReference
	}
	f.created = append(f.created, cmd)
	return &Insight{ID: 2, Title: cmd.Title, Content: cmd.Content, InsightType: cmd.InsightType, CreatedBy: cmd.CreatedBy}, nil
}

func (f *fakeSystem) Delete(_ context.Context, id int64) error {
	if id != 1 {
		return ErrNotFound
	}
	return nil
}

func TestCreateEndpoint(t *testing.T) {
	user := &auth.User{ID: 8, Role: auth.RoleAnalyst, IsActive: true}

	tests := []struct {
		name   string
		body   string
		user   *auth.User
		status int
	}{
		{"created", `{"title":"Board interview","content":"IR plan is stale","created_by":1}`, user, http.StatusCreated},
		{"anonymous", `{"title":"t","content":"c"}`, nil, http.StatusUnauthorized},
		{"missing content", `{"title":"t"}`, user, http.StatusBadRequest},
		{"unknown mapping", `{"title":"t","content":"c","related_mapping_id":404}`, user, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &fakeSystem{}
			mux := http.NewServeMux()
			routes.Register(mux, sys.Handler().Routes())

			req := httptest.NewRequest(http.MethodPost, "/insights", strings.NewReader(tt.body))
			if tt.user != nil {
				req = req.WithContext(auth.WithUser(req.Context(), tt.user))
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status != http.StatusCreated {
				return
			}

			var got Insight
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.CreatedBy != user.ID || got.InsightType != DefaultType {
				t.Errorf("insight = %+v, want created_by %d and default type", got, user.ID)
			}
		})
	}
}

func TestFindAndDelete(t *testing.T) {
	sys := &fakeSystem{}
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler().Routes())

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/insights", http.StatusOK},
		{http.MethodGet, "/insights/1", http.StatusOK},
		{http.MethodGet, "/insights/2", http.StatusNotFound},
		{http.MethodGet, "/insights/zero", http.StatusBadRequest},
		{http.MethodDelete, "/insights/1", http.StatusNoContent},
		{http.MethodDelete, "/insights/3", http.StatusNotFound},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != tt.status {
			t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, rec.Code, tt.status)
		}
	}
}
