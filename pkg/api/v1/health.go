package v1

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/mcp-gateway/pkg/backend"
)

type backendStatus struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type healthResponse struct {
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Version   string          `json:"version"`
	Backends  []backendStatus `json:"backends"`
}

type healthcheckRoutes struct {
	registry *backend.Registry
	version  string
}

// HealthcheckRouter mounts the unauthenticated /health endpoint. The body
// reports the gateway version and the live status of every registered
// backend, rather than bare process liveness.
func HealthcheckRouter(registry *backend.Registry, version string) http.Handler {
	routes := &healthcheckRoutes{registry: registry, version: version}
	r := chi.NewRouter()
	r.Get("/", routes.getHealthcheck)
	return r
}

func (h *healthcheckRoutes) getHealthcheck(w http.ResponseWriter, _ *http.Request) {
	handles := h.registry.List()
	backends := make([]backendStatus, 0, len(handles))
	for _, handle := range handles {
		backends = append(backends, backendStatus{
			ID:     handle.Config.ID,
			Name:   handle.Config.Name,
			Status: handle.Status().String(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(healthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Backends:  backends,
	})
}
