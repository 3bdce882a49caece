package auth

import (
	"context"
	"sync"
	"time"

	gwerrors "github.com/stacklok/mcp-gateway/pkg/errors"
)

// memoryRepository is a minimal in-test Repository used to exercise Service
// without pulling in pkg/store (kept here rather than importing pkg/store to
// avoid an import cycle risk between auth and store; pkg/store's own
// implementation is exercised independently in its own package tests).
type memoryRepository struct {
	mu   sync.Mutex
	keys map[string]*ApiKey
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{keys: make(map[string]*ApiKey)}
}

func (m *memoryRepository) Create(_ context.Context, key *ApiKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key.ID] = key
	return nil
}

func (m *memoryRepository) FindByID(_ context.Context, id string) (*ApiKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[id]
	if !ok {
		return nil, gwerrors.NewNotFoundError("api key not found", nil)
	}
	return k, nil
}

func (m *memoryRepository) ListActive(_ context.Context) ([]*ApiKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*ApiKey
	for _, k := range m.keys {
		if k.Active {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *memoryRepository) ListAll(_ context.Context, includeInactive bool) ([]*ApiKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*ApiKey
	for _, k := range m.keys {
		if k.Active || includeInactive {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *memoryRepository) UpdateLastUsed(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[id]
	if !ok {
		return gwerrors.NewNotFoundError("api key not found", nil)
	}
	k.LastUsedAt = &at
	return nil
}

func (m *memoryRepository) SetActive(_ context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[id]
	if !ok {
		return gwerrors.NewNotFoundError("api key not found", nil)
	}
	k.Active = active
	return nil
}

func (m *memoryRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, id)
	return nil
}
