package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"worksim/internal/domain"
	"worksim/internal/repo"
)

// Reader is the read side of the store the API exposes.
type Reader interface {
	TableCounts(ctx context.Context) (map[string]int, error)
	Page(ctx context.Context, table string, limit, offset int) ([]map[string]any, error)
	LatestProvenance(ctx context.Context) ([]domain.Provenance, error)
	Consistency(ctx context.Context) ([]repo.Check, error)
}

// Config for the HTTP API handler.
type Config struct {
	Store    Reader
	BasePath string
	Auth     AuthConfig
	Log      zerolog.Logger
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"not_found"`
	Message string         `json:"message" example:"unknown table: widgets"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

// apiError is the error envelope every failure is rendered in.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the read-only dataset API.
func New(cfg Config) (http.Handler, error) {
	if cfg.Store == nil {
		return nil, errors.New("server: store required")
	}
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v0"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	router.Use(newAuthMiddleware(basePath, cfg.Auth))
	router.Use(requestLogger(cfg.Log))
	hcfg := huma.DefaultConfig("worksim API", "0.1.0")
	hcfg.OpenAPIPath = ""
	hcfg.DocsPath = ""
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerDocs(router, basePath)
	registerHealth(group)
	registerTables(group, cfg.Store)
	registerProvenance(group, cfg.Store)
	registerChecks(group, cfg.Store)
	registerOpenAPI(router, api, basePath, cfg.Auth.Enabled())

	return router, nil
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ev := log.Debug().Str("method", r.Method).Str("path", r.URL.Path)
			if p, ok := PrincipalFromContext(r.Context()); ok {
				ev = ev.Str("subject", p.Subject)
			}
			ev.Msg("request")
			next.ServeHTTP(w, r)
		})
	}
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, repo.ErrNotFound), errors.Is(err, repo.ErrUnknownTable):
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, context.Canceled):
		return newAPIError(http.StatusServiceUnavailable, "canceled", "request canceled", nil)
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": err.Error()})
	}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func registerDocs(r chi.Router, basePath string) {
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, docsHTML(basePath))
	})
}

func registerOpenAPI(r chi.Router, api huma.API, basePath string, secured bool) {
	var (
		once sync.Once
		spec []byte
	)
	r.Get(path.Join(basePath, "openapi.json"), func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() {
			oas := api.OpenAPI()
			if secured {
				applyAuthSecurity(oas, basePath)
			}
			spec, _ = json.Marshal(oas)
		})
		w.Header().Set("Content-Type", "application/json")
		w.Write(spec)
	})
}

func applyAuthSecurity(oas *huma.OpenAPI, basePath string) {
	if oas.Components == nil {
		oas.Components = &huma.Components{}
	}
	if oas.Components.SecuritySchemes == nil {
		oas.Components.SecuritySchemes = map[string]*huma.SecurityScheme{}
	}
	oas.Components.SecuritySchemes["bearerAuth"] = &huma.SecurityScheme{
		Type:         "http",
		Scheme:       "bearer",
		BearerFormat: "JWT",
	}
	security := []map[string][]string{{"bearerAuth": {}}}
	oas.Security = security
	healthPath := path.Join(basePath, "health")
	for route, item := range oas.Paths {
		for _, op := range []*huma.Operation{item.Get, item.Post, item.Put, item.Delete, item.Patch} {
			if op == nil {
				continue
			}
			if route == healthPath {
				op.Security = []map[string][]string{}
				continue
			}
			op.Security = security
		}
	}
}

func docsHTML(basePath string) string {
	specURL := path.Join("/", basePath, "openapi.json")
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <title>worksim API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
    <script>
      window.onload = () => SwaggerUIBundle({ url: '%s', dom_id: '#swagger-ui' });
    </script>
  </body>
</html>`, specURL)
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerTables(api huma.API, store Reader) {
	huma.Register(api, huma.Operation{
		OperationID: "list-tables",
		Method:      http.MethodGet,
		Path:        "/tables",
		Summary:     "Row counts per table",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []TableResponse `json:"body"`
	}, error) {
		counts, err := store.TableCounts(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []TableResponse `json:"body"`
		}{Body: mapTables(counts)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-rows",
		Method:      http.MethodGet,
		Path:        "/tables/{table}/rows",
		Summary:     "Page through the rows of one table",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		Table  string `path:"table"`
		Limit  int    `query:"limit" default:"50"`
		Offset int    `query:"offset" default:"0" minimum:"0"`
	}) (*struct {
		Body RowsPage `json:"body"`
	}, error) {
		limit := normalizeLimit(input.Limit)
		items, err := store.Page(ctx, input.Table, limit+1, input.Offset)
		if err != nil {
			return nil, handleError(err)
		}
		page := RowsPage{Table: input.Table, Items: items}
		if len(items) > limit {
			next := input.Offset + limit
			page.NextOffset = &next
			page.Items = items[:limit]
		}
		return &struct {
			Body RowsPage `json:"body"`
		}{Body: page}, nil
	})
}

func registerProvenance(api huma.API, store Reader) {
	huma.Register(api, huma.Operation{
		OperationID: "latest-provenance",
		Method:      http.MethodGet,
		Path:        "/provenance",
		Summary:     "Provenance of the latest generation batch",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body ProvenanceResponse `json:"body"`
	}, error) {
		items, err := store.LatestProvenance(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ProvenanceResponse `json:"body"`
		}{Body: provenanceResponse(items)}, nil
	})
}

func registerChecks(api huma.API, store Reader) {
	huma.Register(api, huma.Operation{
		OperationID: "consistency-checks",
		Method:      http.MethodGet,
		Path:        "/checks",
		Summary:     "Run the consistency queries against stored data",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body ChecksResponse `json:"body"`
	}, error) {
		checks, err := store.Consistency(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		resp := ChecksResponse{Passed: true, Checks: checks}
		for _, c := range checks {
			if c.Violations > 0 {
				resp.Passed = false
			}
		}
		return &struct {
			Body ChecksResponse `json:"body"`
		}{Body: resp}, nil
	})
}

func normalizeLimit(in int) int {
	if in <= 0 {
		return 50
	}
	if in > 500 {
		return 500
	}
	return in
}
