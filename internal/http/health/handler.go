package health

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const (
	// Path is where the liveness probe is mounted.
	Path = "/health"

	StatusHealthy = "healthy"
	ServiceName   = "todo-backend"
)

// Status is the health payload.
type Status struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

var (
	healthy = Status{Status: StatusHealthy, Service: ServiceName}
	payload = mustMarshal(healthy)
)

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// Handler reports that the process is up. It touches no dependencies, so it
// is safe to call at any rate.
func Handler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// Register mounts Handler at Path for GET.
func Register(r chi.Router) {
	r.Get(Path, Handler)
}
