// Package memory is a map-backed implementation of store.ApiKeyRepository
// and store.BackendConfigRepository, for tests and for running the gateway
// without a database file.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/stacklok/mcp-gateway/pkg/auth"
	gwerrors "github.com/stacklok/mcp-gateway/pkg/errors"
)

// ApiKeyRepository is an auth.Repository backed by an in-process map.
type ApiKeyRepository struct {
	mu   sync.RWMutex
	keys map[string]*auth.ApiKey
}

// NewApiKeyRepository builds an empty ApiKeyRepository.
func NewApiKeyRepository() *ApiKeyRepository {
	return &ApiKeyRepository{keys: make(map[string]*auth.ApiKey)}
}

func (r *ApiKeyRepository) Create(_ context.Context, key *auth.ApiKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *key
	r.keys[key.ID] = &cp
	return nil
}

func (r *ApiKeyRepository) FindByID(_ context.Context, id string) (*auth.ApiKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.keys[id]
	if !ok {
		return nil, gwerrors.NewNotFoundError("api key not found", nil)
	}
	cp := *k
	return &cp, nil
}

func (r *ApiKeyRepository) ListActive(ctx context.Context) ([]*auth.ApiKey, error) {
	return r.list(false)
}

func (r *ApiKeyRepository) ListAll(_ context.Context, includeInactive bool) ([]*auth.ApiKey, error) {
	return r.list(includeInactive)
}

func (r *ApiKeyRepository) list(includeInactive bool) ([]*auth.ApiKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*auth.ApiKey
	for _, k := range r.keys {
		if k.Active || includeInactive {
			cp := *k
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *ApiKeyRepository) UpdateLastUsed(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.keys[id]
	if !ok {
		return gwerrors.NewNotFoundError("api key not found", nil)
	}
	k.LastUsedAt = &at
	return nil
}

func (r *ApiKeyRepository) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.keys[id]
	if !ok {
		return gwerrors.NewNotFoundError("api key not found", nil)
	}
	k.Active = active
	return nil
}

func (r *ApiKeyRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.keys[id]; !ok {
		return gwerrors.NewNotFoundError("api key not found", nil)
	}
	delete(r.keys, id)
	return nil
}
