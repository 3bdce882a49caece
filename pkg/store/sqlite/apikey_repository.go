package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/stacklok/mcp-gateway/pkg/auth"
	gwerrors "github.com/stacklok/mcp-gateway/pkg/errors"
)

// ApiKeyRepository is an auth.Repository backed by the api_keys table.
type ApiKeyRepository struct {
	db *DB
}

// NewApiKeyRepository builds an ApiKeyRepository over db.
func NewApiKeyRepository(db *DB) *ApiKeyRepository {
	return &ApiKeyRepository{db: db}
}

func (r *ApiKeyRepository) Create(ctx context.Context, key *auth.ApiKey) error {
	_, err := r.db.DB().ExecContext(ctx,
		`INSERT INTO api_keys (id, name, key_hash, ciphertext, active, created_at, last_used_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		key.ID, key.Name, key.KeyHash, key.Ciphertext, boolToInt(key.Active), key.CreatedAt, key.LastUsedAt,
	)
	if err != nil {
		return gwerrors.NewDatabaseError("failed to insert api key", err)
	}
	return nil
}

func (r *ApiKeyRepository) FindByID(ctx context.Context, id string) (*auth.ApiKey, error) {
	row := r.db.DB().QueryRowContext(ctx,
		`SELECT id, name, key_hash, ciphertext, active, created_at, last_used_at
		 FROM api_keys WHERE id = ?`, id)
	return scanApiKey(row)
}

func (r *ApiKeyRepository) ListActive(ctx context.Context) ([]*auth.ApiKey, error) {
	return r.list(ctx, false)
}

func (r *ApiKeyRepository) ListAll(ctx context.Context, includeInactive bool) ([]*auth.ApiKey, error) {
	return r.list(ctx, includeInactive)
}

func (r *ApiKeyRepository) list(ctx context.Context, includeInactive bool) ([]*auth.ApiKey, error) {
	query := `SELECT id, name, key_hash, ciphertext, active, created_at, last_used_at FROM api_keys`
	if !includeInactive {
		query += ` WHERE active = 1`
	}
	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, gwerrors.NewDatabaseError("failed to list api keys", err)
	}
	defer rows.Close()

	var out []*auth.ApiKey
	for rows.Next() {
		key, err := scanApiKeyRow(rows)
		if err != nil {
			return nil, gwerrors.NewDatabaseError("failed to scan api key row", err)
		}
		out = append(out, key)
	}
	if err := rows.Err(); err != nil {
		return nil, gwerrors.NewDatabaseError("failed to iterate api keys", err)
	}
	return out, nil
}

func (r *ApiKeyRepository) UpdateLastUsed(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.DB().ExecContext(ctx, `UPDATE api_keys SET last_used_at = ? WHERE id = ?`, at, id)
	if err != nil {
		return gwerrors.NewDatabaseError("failed to update last_used_at", err)
	}
	return requireRowAffected(res, "api key")
}

func (r *ApiKeyRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.DB().ExecContext(ctx, `UPDATE api_keys SET active = ? WHERE id = ?`, boolToInt(active), id)
	if err != nil {
		return gwerrors.NewDatabaseError("failed to update active flag", err)
	}
	return requireRowAffected(res, "api key")
}

func (r *ApiKeyRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.DB().ExecContext(ctx, `DELETE FROM api_keys WHERE id = ?`, id)
	if err != nil {
		return gwerrors.NewDatabaseError("failed to delete api key", err)
	}
	return requireRowAffected(res, "api key")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApiKey(row *sql.Row) (*auth.ApiKey, error) {
	key, err := scanApiKeyRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gwerrors.NewNotFoundError("api key not found", nil)
	}
	if err != nil {
		return nil, gwerrors.NewDatabaseError("failed to scan api key", err)
	}
	return key, nil
}

func scanApiKeyRow(row rowScanner) (*auth.ApiKey, error) {
	var (
		key        auth.ApiKey
		activeInt  int
		lastUsedAt sql.NullTime
	)
	if err := row.Scan(&key.ID, &key.Name, &key.KeyHash, &key.Ciphertext, &activeInt, &key.CreatedAt, &lastUsedAt); err != nil {
		return nil, err
	}
	key.Active = activeInt != 0
	if lastUsedAt.Valid {
		t := lastUsedAt.Time
		key.LastUsedAt = &t
	}
	return &key, nil
}

func requireRowAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return gwerrors.NewDatabaseError("failed to read rows affected", err)
	}
	if n == 0 {
		return gwerrors.NewNotFoundError(what+" not found", nil)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
