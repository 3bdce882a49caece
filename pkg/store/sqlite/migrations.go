package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied with CREATE TABLE IF NOT EXISTS, so re-running it
// against an already-migrated database is a no-op.
const schema = `
CREATE TABLE IF NOT EXISTS api_keys (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  key_hash TEXT NOT NULL UNIQUE,
  ciphertext BLOB NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  created_at TIMESTAMP NOT NULL,
  last_used_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS backend_configs (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  transport TEXT NOT NULL CHECK (transport IN ('http', 'sse', 'stdio')),
  url TEXT,
  command TEXT,
  args TEXT,
  env TEXT,
  working_dir TEXT,
  active INTEGER NOT NULL DEFAULT 1
);
`

func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite: migration failed: %w", err)
	}
	return nil
}
