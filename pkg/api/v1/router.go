// Package v1 implements the gateway's REST surface: unauthenticated health
// and token-exchange endpoints, and the bearer-protected backend-config CRUD
// and streaming endpoints.
package v1

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/mcp-gateway/pkg/auth"
	"github.com/stacklok/mcp-gateway/pkg/backend"
	"github.com/stacklok/mcp-gateway/pkg/store"
)

// Deps collects everything the REST surface needs to construct its routes.
// Stream is mounted as-is; it is built by the caller (pkg/streamhttp.New)
// since it depends on the protocol engine, not the REST layer.
type Deps struct {
	AuthService   *auth.Service
	BackendConfig store.BackendConfigRepository
	Registry      *backend.Registry
	Stream        http.Handler
	Version       string
}

// Router assembles the full REST surface: /health and /api/v1/auth/token
// are open; /api/v1/mcp/servers* and /api/v1/mcp/stream sit behind
// auth.Middleware.
func Router(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Mount("/health", HealthcheckRouter(deps.Registry, deps.Version))
	r.Mount("/api/v1/auth", AuthRouter(deps.AuthService))

	r.Route("/api/v1/mcp", func(mcp chi.Router) {
		mcp.Use(auth.Middleware(deps.AuthService))
		mcp.Mount("/servers", ServerRouter(deps.BackendConfig, deps.Registry))
		mcp.Mount("/stream", deps.Stream)
	})

	return r
}
