package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/mcp-gateway/pkg/backend"
	gwerrors "github.com/stacklok/mcp-gateway/pkg/errors"
)

func TestBackendConfigRepositoryCreateRejectsDuplicateName(t *testing.T) {
	repo := NewBackendConfigRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &backend.BackendConfig{ID: "a", Name: "dup", Transport: backend.TransportHTTP, URL: "http://a", Active: true}))
	err := repo.Create(ctx, &backend.BackendConfig{ID: "b", Name: "dup", Transport: backend.TransportHTTP, URL: "http://b", Active: true})
	assert.True(t, gwerrors.IsConflict(err))
}

func TestBackendConfigRepositoryFindByNameAndID(t *testing.T) {
	repo := NewBackendConfigRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &backend.BackendConfig{ID: "a", Name: "search", Transport: backend.TransportHTTP, URL: "http://a", Active: true}))

	byID, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "search", byID.Name)

	byName, err := repo.FindByName(ctx, "search")
	require.NoError(t, err)
	assert.Equal(t, "a", byName.ID)
}

func TestBackendConfigRepositoryListAllFiltersInactive(t *testing.T) {
	repo := NewBackendConfigRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &backend.BackendConfig{ID: "a", Name: "a", Transport: backend.TransportHTTP, URL: "http://a", Active: true}))
	require.NoError(t, repo.Create(ctx, &backend.BackendConfig{ID: "b", Name: "b", Transport: backend.TransportHTTP, URL: "http://b", Active: false}))

	active, err := repo.ListAll(ctx, false)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := repo.ListAll(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestBackendConfigRepositoryUpdateSetActiveDelete(t *testing.T) {
	repo := NewBackendConfigRepository()
	ctx := context.Background()
	cfg := &backend.BackendConfig{ID: "a", Name: "a", Transport: backend.TransportHTTP, URL: "http://a", Active: true}
	require.NoError(t, repo.Create(ctx, cfg))

	cfg.URL = "http://a-v2"
	require.NoError(t, repo.Update(ctx, cfg))
	found, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "http://a-v2", found.URL)

	require.NoError(t, repo.SetActive(ctx, "a", false))
	found, _ = repo.FindByID(ctx, "a")
	assert.False(t, found.Active)

	require.NoError(t, repo.Delete(ctx, "a"))
	_, err = repo.FindByID(ctx, "a")
	assert.True(t, gwerrors.IsNotFound(err))
}
