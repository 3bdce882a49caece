package v1

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stacklok/mcp-gateway/pkg/backend"
	gwerrors "github.com/stacklok/mcp-gateway/pkg/errors"
	"github.com/stacklok/mcp-gateway/pkg/logger"
	"github.com/stacklok/mcp-gateway/pkg/store"
)

// ServerRoutes manages the persisted catalog of backend MCP servers, and
// keeps the live registry in sync with it: creating a config spawns the
// backend, deleting one stops it.
type ServerRoutes struct {
	repo     store.BackendConfigRepository
	registry *backend.Registry
}

type serverListResponse struct {
	Servers []*backend.BackendConfig `json:"servers"`
}

type createServerRequest struct {
	Name       string            `json:"name"`
	Transport  backend.Transport `json:"transport"`
	URL        string            `json:"url,omitempty"`
	Command    string            `json:"command,omitempty"`
	Args       []string          `json:"args,omitempty"`
	Env        map[string]string `json:"env,omitempty"`
	WorkingDir string            `json:"working_dir,omitempty"`
}

// ServerRouter mounts the bearer-protected backend-config CRUD surface.
// The caller is expected to have already run auth.Middleware in front of
// the returned handler.
func ServerRouter(repo store.BackendConfigRepository, registry *backend.Registry) http.Handler {
	routes := &ServerRoutes{repo: repo, registry: registry}
	r := chi.NewRouter()
	r.Get("/", gwerrors.ErrorHandler(routes.listServers))
	r.Post("/", gwerrors.ErrorHandler(routes.createServer))
	r.Get("/{id}", gwerrors.ErrorHandler(routes.getServer))
	r.Put("/{id}", gwerrors.ErrorHandler(routes.updateServer))
	r.Delete("/{id}", gwerrors.ErrorHandler(routes.deleteServer))
	return r
}

func (s *ServerRoutes) listServers(w http.ResponseWriter, r *http.Request) error {
	servers, err := s.repo.ListAll(r.Context(), true)
	if err != nil {
		return gwerrors.NewDatabaseError("failed to list backend configs", err)
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(serverListResponse{Servers: servers})
}

func (s *ServerRoutes) getServer(w http.ResponseWriter, r *http.Request) error {
	cfg, err := s.repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(cfg)
}

func (s *ServerRoutes) createServer(w http.ResponseWriter, r *http.Request) error {
	var req createServerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return gwerrors.NewBadRequestError("malformed request body", err)
	}

	cfg := &backend.BackendConfig{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Transport:  req.Transport,
		URL:        req.URL,
		Command:    req.Command,
		Args:       req.Args,
		Env:        req.Env,
		WorkingDir: req.WorkingDir,
		Active:     true,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := s.repo.Create(r.Context(), cfg); err != nil {
		return gwerrors.NewDatabaseError("failed to persist backend config", err)
	}

	if _, err := s.registry.SpawnFromConfig(r.Context(), *cfg); err != nil {
		logger.Warnf("backend %s: spawn on create failed: %v", cfg.Name, err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	return json.NewEncoder(w).Encode(cfg)
}

func (s *ServerRoutes) updateServer(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")
	existing, err := s.repo.FindByID(r.Context(), id)
	if err != nil {
		return err
	}

	var req createServerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return gwerrors.NewBadRequestError("malformed request body", err)
	}

	cfg := &backend.BackendConfig{
		ID:         existing.ID,
		Name:       req.Name,
		Transport:  req.Transport,
		URL:        req.URL,
		Command:    req.Command,
		Args:       req.Args,
		Env:        req.Env,
		WorkingDir: req.WorkingDir,
		Active:     existing.Active,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := s.repo.Update(r.Context(), cfg); err != nil {
		return gwerrors.NewDatabaseError("failed to update backend config", err)
	}

	restartBackend(r.Context(), s.registry, *cfg)

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(cfg)
}

func (s *ServerRoutes) deleteServer(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")
	if _, err := s.repo.FindByID(r.Context(), id); err != nil {
		return err
	}
	if err := s.repo.Delete(r.Context(), id); err != nil {
		return gwerrors.NewDatabaseError("failed to delete backend config", err)
	}

	if err := s.registry.Stop(r.Context(), id); err != nil {
		logger.Warnf("backend %s: stop on delete failed: %v", id, err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// restartBackend re-spawns id with cfg's latest settings, stopping the
// existing handle first if one is registered.
func restartBackend(ctx context.Context, registry *backend.Registry, cfg backend.BackendConfig) {
	_ = registry.Stop(ctx, cfg.ID)
	if _, err := registry.SpawnFromConfig(ctx, cfg); err != nil {
		logger.Warnf("backend %s: respawn on update failed: %v", cfg.Name, err)
	}
}
