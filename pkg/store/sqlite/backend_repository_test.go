package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gwbackend "github.com/stacklok/mcp-gateway/pkg/backend"
	gwerrors "github.com/stacklok/mcp-gateway/pkg/errors"
)

func openTestBackendRepo(t *testing.T) *BackendConfigRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBackendConfigRepository(db)
}

func TestBackendConfigRepositoryCreateAndFind(t *testing.T) {
	repo := openTestBackendRepo(t)
	ctx := context.Background()

	cfg := &gwbackend.BackendConfig{
		ID:        "b1",
		Name:      "filesystem",
		Transport: gwbackend.TransportStdio,
		Command:   "mcp-fs",
		Args:      []string{"--root", "/tmp"},
		Env:       map[string]string{"FOO": "bar"},
		Active:    true,
	}
	require.NoError(t, repo.Create(ctx, cfg))

	found, err := repo.FindByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, cfg.Name, found.Name)
	assert.Equal(t, cfg.Args, found.Args)
	assert.Equal(t, cfg.Env, found.Env)

	byName, err := repo.FindByName(ctx, "filesystem")
	require.NoError(t, err)
	assert.Equal(t, "b1", byName.ID)
}

func TestBackendConfigRepositoryFindByIDNotFound(t *testing.T) {
	repo := openTestBackendRepo(t)
	_, err := repo.FindByID(context.Background(), "missing")
	assert.True(t, gwerrors.IsNotFound(err))
}

func TestBackendConfigRepositoryListAllRespectsActiveFilter(t *testing.T) {
	repo := openTestBackendRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &gwbackend.BackendConfig{ID: "a", Name: "a", Transport: gwbackend.TransportHTTP, URL: "http://a", Active: true}))
	require.NoError(t, repo.Create(ctx, &gwbackend.BackendConfig{ID: "b", Name: "b", Transport: gwbackend.TransportHTTP, URL: "http://b", Active: false}))

	active, err := repo.ListAll(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)

	all, err := repo.ListAll(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestBackendConfigRepositoryUpdate(t *testing.T) {
	repo := openTestBackendRepo(t)
	ctx := context.Background()

	cfg := &gwbackend.BackendConfig{ID: "a", Name: "a", Transport: gwbackend.TransportHTTP, URL: "http://a", Active: true}
	require.NoError(t, repo.Create(ctx, cfg))

	cfg.URL = "http://a-v2"
	require.NoError(t, repo.Update(ctx, cfg))

	found, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "http://a-v2", found.URL)
}

func TestBackendConfigRepositorySetActiveAndDelete(t *testing.T) {
	repo := openTestBackendRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &gwbackend.BackendConfig{ID: "a", Name: "a", Transport: gwbackend.TransportHTTP, URL: "http://a", Active: true}))
	require.NoError(t, repo.SetActive(ctx, "a", false))

	found, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.False(t, found.Active)

	require.NoError(t, repo.Delete(ctx, "a"))
	_, err = repo.FindByID(ctx, "a")
	assert.True(t, gwerrors.IsNotFound(err))
}
