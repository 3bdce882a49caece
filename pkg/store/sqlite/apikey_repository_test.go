package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/mcp-gateway/pkg/auth"
	gwerrors "github.com/stacklok/mcp-gateway/pkg/errors"
)

func openTestRepo(t *testing.T) (*ApiKeyRepository, *DB) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewApiKeyRepository(db), db
}

func TestApiKeyRepositoryCreateAndFind(t *testing.T) {
	repo, _ := openTestRepo(t)
	ctx := context.Background()

	key := &auth.ApiKey{
		ID:         "key-1",
		Name:       "ci",
		KeyHash:    "hash",
		Ciphertext: []byte("ciphertext"),
		Active:     true,
		CreatedAt:  time.Now().Truncate(time.Second),
	}
	require.NoError(t, repo.Create(ctx, key))

	found, err := repo.FindByID(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, key.Name, found.Name)
	assert.True(t, found.Active)
	assert.Nil(t, found.LastUsedAt)
}

func TestApiKeyRepositoryFindByIDNotFound(t *testing.T) {
	repo, _ := openTestRepo(t)
	_, err := repo.FindByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, gwerrors.IsNotFound(err))
}

func TestApiKeyRepositoryListActiveExcludesRevoked(t *testing.T) {
	repo, _ := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &auth.ApiKey{ID: "a", Name: "a", KeyHash: "h1", Ciphertext: []byte("x"), Active: true, CreatedAt: time.Now()}))
	require.NoError(t, repo.Create(ctx, &auth.ApiKey{ID: "b", Name: "b", KeyHash: "h2", Ciphertext: []byte("x"), Active: false, CreatedAt: time.Now()}))

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "a", active[0].ID)

	all, err := repo.ListAll(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestApiKeyRepositoryUpdateLastUsedAndSetActive(t *testing.T) {
	repo, _ := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &auth.ApiKey{ID: "a", Name: "a", KeyHash: "h1", Ciphertext: []byte("x"), Active: true, CreatedAt: time.Now()}))

	stamp := time.Now().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastUsed(ctx, "a", stamp))
	found, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, found.LastUsedAt)

	require.NoError(t, repo.SetActive(ctx, "a", false))
	found, err = repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.False(t, found.Active)
}

func TestApiKeyRepositoryDelete(t *testing.T) {
	repo, _ := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &auth.ApiKey{ID: "a", Name: "a", KeyHash: "h1", Ciphertext: []byte("x"), Active: true, CreatedAt: time.Now()}))
	require.NoError(t, repo.Delete(ctx, "a"))

	_, err := repo.FindByID(ctx, "a")
	assert.True(t, gwerrors.IsNotFound(err))
}

func TestApiKeyRepositoryDeleteNotFound(t *testing.T) {
	repo, _ := openTestRepo(t)
	err := repo.Delete(context.Background(), "missing")
	assert.True(t, gwerrors.IsNotFound(err))
}
