// Package store defines the persistence-layer contract consumed by the auth
// service, the REST backend-config routes and the startup respawn of
// persisted backends, and ships two implementations: a
// modernc.org/sqlite-backed one for production and a map-backed one for
// tests and for running the gateway without a database file.
package store

import (
	"context"

	"github.com/stacklok/mcp-gateway/pkg/auth"
	"github.com/stacklok/mcp-gateway/pkg/backend"
)

// ApiKeyRepository persists auth.ApiKey records.
type ApiKeyRepository interface {
	auth.Repository
}

// BackendConfigRepository persists backend.BackendConfig records.
type BackendConfigRepository interface {
	Create(ctx context.Context, cfg *backend.BackendConfig) error
	FindByID(ctx context.Context, id string) (*backend.BackendConfig, error)
	FindByName(ctx context.Context, name string) (*backend.BackendConfig, error)
	ListAll(ctx context.Context, includeInactive bool) ([]*backend.BackendConfig, error)
	Update(ctx context.Context, cfg *backend.BackendConfig) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}
