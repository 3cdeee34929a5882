package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"

	appmiddleware "github.com/janisto/todo-backend/internal/platform/middleware"
	"github.com/janisto/todo-backend/internal/service/todo"
)

func newTestRouter(servers ...*huma.Server) chi.Router {
	router := chi.NewRouter()
	router.Use(appmiddleware.Owner())
	cfg := huma.DefaultConfig("RoutesTest", "test")
	cfg.Servers = servers
	api := humachi.New(router, cfg)
	Register(api, todo.NewService(todo.NewMemoryStore()))
	return router
}

func TestRegisterRoutes(t *testing.T) {
	router := newTestRouter()
	for _, path := range []string{"/tags", "/tasks"} {
		t.Run(path, func(t *testing.T) {
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
			if resp.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", resp.Code)
			}
		})
	}
}

func TestLocationUsesServerPrefix(t *testing.T) {
	tests := []struct {
		name    string
		servers []*huma.Server
		prefix  string
	}{
		{name: "no server", prefix: "/tags/"},
		{name: "relative server", servers: []*huma.Server{{URL: "/api"}}, prefix: "/api/tags/"},
		{name: "absolute server", servers: []*huma.Server{{URL: "https://todo.example.com/api"}}, prefix: "/api/tags/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(tt.servers...)
			req := httptest.NewRequest(http.MethodPost, "/tags", strings.NewReader(`{"name":"work"}`))
			req.Header.Set("Content-Type", "application/json")
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			if resp.Code != http.StatusCreated {
				t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
			}
			if loc := resp.Header().Get("Location"); !strings.HasPrefix(loc, tt.prefix) {
				t.Fatalf("expected Location with prefix %q, got %q", tt.prefix, loc)
			}
		})
	}
}
