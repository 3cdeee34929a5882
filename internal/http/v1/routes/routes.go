package routes

import (
	"net/url"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/todo-backend/internal/http/v1/tags"
	"github.com/janisto/todo-backend/internal/http/v1/tasks"
	"github.com/janisto/todo-backend/internal/service/todo"
)

// Register wires all API operations into api.
func Register(api huma.API, svc todo.Service) {
	prefix := apiPrefix(api)

	tags.Register(api, svc, prefix)
	tasks.Register(api, svc, prefix)
}

// apiPrefix is the path of the first configured server, e.g. "/api".
func apiPrefix(api huma.API) string {
	for _, s := range api.OpenAPI().Servers {
		if u, err := url.Parse(s.URL); err == nil && u.Path != "" {
			return u.Path
		}
	}
	return ""
}
