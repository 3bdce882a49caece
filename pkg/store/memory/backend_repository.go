package memory

import (
	"context"
	"sync"

	"github.com/stacklok/mcp-gateway/pkg/backend"
	gwerrors "github.com/stacklok/mcp-gateway/pkg/errors"
)

// BackendConfigRepository is a store.BackendConfigRepository backed by an
// in-process map.
type BackendConfigRepository struct {
	mu      sync.RWMutex
	configs map[string]*backend.BackendConfig
}

// NewBackendConfigRepository builds an empty BackendConfigRepository.
func NewBackendConfigRepository() *BackendConfigRepository {
	return &BackendConfigRepository{configs: make(map[string]*backend.BackendConfig)}
}

func (r *BackendConfigRepository) Create(_ context.Context, cfg *backend.BackendConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.configs {
		if existing.Name == cfg.Name {
			return gwerrors.NewConflictError("backend name already in use", nil)
		}
	}
	cp := *cfg
	r.configs[cfg.ID] = &cp
	return nil
}

func (r *BackendConfigRepository) FindByID(_ context.Context, id string) (*backend.BackendConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[id]
	if !ok {
		return nil, gwerrors.NewNotFoundError("backend config not found", nil)
	}
	cp := *cfg
	return &cp, nil
}

func (r *BackendConfigRepository) FindByName(_ context.Context, name string) (*backend.BackendConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, cfg := range r.configs {
		if cfg.Name == name {
			cp := *cfg
			return &cp, nil
		}
	}
	return nil, gwerrors.NewNotFoundError("backend config not found", nil)
}

func (r *BackendConfigRepository) ListAll(_ context.Context, includeInactive bool) ([]*backend.BackendConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*backend.BackendConfig
	for _, cfg := range r.configs {
		if cfg.Active || includeInactive {
			cp := *cfg
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *BackendConfigRepository) Update(_ context.Context, cfg *backend.BackendConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.configs[cfg.ID]; !ok {
		return gwerrors.NewNotFoundError("backend config not found", nil)
	}
	cp := *cfg
	r.configs[cfg.ID] = &cp
	return nil
}

func (r *BackendConfigRepository) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.configs[id]
	if !ok {
		return gwerrors.NewNotFoundError("backend config not found", nil)
	}
	cfg.Active = active
	return nil
}

func (r *BackendConfigRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.configs[id]; !ok {
		return gwerrors.NewNotFoundError("backend config not found", nil)
	}
	delete(r.configs, id)
	return nil
}
