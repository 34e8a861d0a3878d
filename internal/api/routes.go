package api

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/aligner/internal/analysis"
	"github.com/JaimeStill/aligner/internal/auth"
	"github.com/JaimeStill/aligner/internal/config"
	"github.com/JaimeStill/aligner/internal/documents"
	"github.com/JaimeStill/aligner/internal/domains"
	"github.com/JaimeStill/aligner/internal/insights"
	"github.com/JaimeStill/aligner/internal/mappings"
	"github.com/JaimeStill/aligner/internal/reports"
	"github.com/JaimeStill/aligner/internal/tags"
	"github.com/JaimeStill/aligner/pkg/handlers"
	"github.com/JaimeStill/aligner/pkg/openapi"
	"github.com/JaimeStill/aligner/pkg/routes"
)

// HealthMessage is reported by the health endpoint.
const HealthMessage = "Q-C2M2 Policy Aligner API is running"

// ErrRouteNotFound is reported for requests under the API prefix that match no route.
var ErrRouteNotFound = errors.New("route not found")

// Health is the health endpoint response body.
type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	authHandler := domain.Auth.Handler()
	domainsHandler := domain.Domains.Handler()
	tagsHandler := domain.Tags.Handler()
	protect := authHandler.RequireAuth()

	groups := []routes.Group{
		healthRoutes(),
		authHandler.Routes(),
		domainsHandler.Routes(),
		domainsHandler.LegacyRoutes().With(protect),
		domain.Documents.Handler().Routes().With(protect),
		domain.Mappings.Handler().Routes().With(protect),
		domain.Analysis.Handler().Routes().With(protect),
		domain.Reports.Handler().Routes().With(protect),
		tagsHandler.Routes().With(protect),
		tagsHandler.SectionRoutes().With(protect),
		domain.Insights.Handler().Routes().With(protect),
	}

	spec, err := buildSpec(cfg, groups)
	if err != nil {
		return err
	}

	routes.Register(mux, groups...)
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(spec))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondError(w, runtime.Logger, http.StatusNotFound, ErrRouteNotFound)
	})

	return nil
}

func healthRoutes() routes.Group {
	return routes.Group{
		Prefix: "/health",
		Tags:   []string{"Health"},
		Routes: []routes.Route{
			{
				Method: "GET", Pattern: "", Handler: health,
				OpenAPI: &openapi.Operation{
					Summary: "API health",
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Service is running", "Health"),
					},
				},
			},
		},
	}
}

func health(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, Health{Status: "OK", Message: HealthMessage})
}

func buildSpec(cfg *config.Config, groups []routes.Group) ([]byte, error) {
	spec := cfg.API.OpenAPI.NewSpec(cfg.Version, cfg.API.BasePath)

	spec.Components.AddSchemas(map[string]*openapi.Schema{
		"Health": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"status":  {Type: "string", Example: "OK"},
				"message": {Type: "string", Example: HealthMessage},
			},
		},
	})
	spec.Components.AddSchemas(auth.Schemas())
	spec.Components.AddSchemas(domains.Schemas())
	spec.Components.AddSchemas(documents.Schemas())
	spec.Components.AddSchemas(mappings.Schemas())
	spec.Components.AddSchemas(analysis.Schemas())
	spec.Components.AddSchemas(reports.Schemas())
	spec.Components.AddSchemas(tags.Schemas())
	spec.Components.AddSchemas(insights.Schemas())

	routes.Document(spec, groups...)

	return openapi.MarshalJSON(spec)
}
