package auth

import (
	"context"
	"time"
)

// Repository is the persistence-layer contract the auth service consumes.
// Every call is assumed async and may fail with a DatabaseError. A
// concrete implementation lives in pkg/store.
type Repository interface {
	Create(ctx context.Context, key *ApiKey) error
	FindByID(ctx context.Context, id string) (*ApiKey, error)
	ListActive(ctx context.Context) ([]*ApiKey, error)
	ListAll(ctx context.Context, includeInactive bool) ([]*ApiKey, error)
	UpdateLastUsed(ctx context.Context, id string, at time.Time) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}
