// Package sqlite is a modernc.org/sqlite-backed implementation of
// store.ApiKeyRepository and store.BackendConfigRepository.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DB wraps a single pooled *sql.DB configured for the gateway's access
// pattern: one writer at a time, many readers, durable across restarts.
type DB struct {
	db *sql.DB
}

// DefaultDBPath returns the default sqlite file location under the user's
// config directory.
func DefaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "mcp-gateway", "mcp-gateway.db")
}

// Open opens (creating if necessary) the sqlite database at path, applies
// the gateway's pragmas, and runs migrations.
func Open(ctx context.Context, path string) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: failed to create db directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open %s: %w", path, err)
	}
	// modernc.org/sqlite serializes writes at the connection level; a
	// single open connection avoids SQLITE_BUSY under concurrent access
	// and keeps WAL readers consistent.
	sqlDB.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA cache_size = -2000",
	}
	for _, p := range pragmas {
		if _, err := sqlDB.ExecContext(ctx, p); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("sqlite: failed to apply %q: %w", p, err)
		}
	}

	db := &DB{db: sqlDB}
	if err := migrate(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// DB returns the underlying *sql.DB for repository implementations.
func (d *DB) DB() *sql.DB {
	return d.db
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	return d.db.Close()
}
