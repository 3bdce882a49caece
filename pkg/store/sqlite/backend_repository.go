package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/stacklok/mcp-gateway/pkg/backend"
	gwerrors "github.com/stacklok/mcp-gateway/pkg/errors"
)

// BackendConfigRepository is a store.BackendConfigRepository backed by the
// backend_configs table.
type BackendConfigRepository struct {
	db *DB
}

// NewBackendConfigRepository builds a BackendConfigRepository over db.
func NewBackendConfigRepository(db *DB) *BackendConfigRepository {
	return &BackendConfigRepository{db: db}
}

func (r *BackendConfigRepository) Create(ctx context.Context, cfg *backend.BackendConfig) error {
	args, env, err := encodeArgsEnv(cfg)
	if err != nil {
		return err
	}
	_, err = r.db.DB().ExecContext(ctx,
		`INSERT INTO backend_configs (id, name, transport, url, command, args, env, working_dir, active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cfg.ID, cfg.Name, string(cfg.Transport), cfg.URL, cfg.Command, args, env, cfg.WorkingDir, boolToInt(cfg.Active),
	)
	if err != nil {
		return gwerrors.NewDatabaseError("failed to insert backend config", err)
	}
	return nil
}

func (r *BackendConfigRepository) FindByID(ctx context.Context, id string) (*backend.BackendConfig, error) {
	row := r.db.DB().QueryRowContext(ctx, backendSelect+` WHERE id = ?`, id)
	return scanBackendConfig(row)
}

func (r *BackendConfigRepository) FindByName(ctx context.Context, name string) (*backend.BackendConfig, error) {
	row := r.db.DB().QueryRowContext(ctx, backendSelect+` WHERE name = ?`, name)
	return scanBackendConfig(row)
}

func (r *BackendConfigRepository) ListAll(ctx context.Context, includeInactive bool) ([]*backend.BackendConfig, error) {
	query := backendSelect
	if !includeInactive {
		query += ` WHERE active = 1`
	}
	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, gwerrors.NewDatabaseError("failed to list backend configs", err)
	}
	defer rows.Close()

	var out []*backend.BackendConfig
	for rows.Next() {
		cfg, err := scanBackendConfigRow(rows)
		if err != nil {
			return nil, gwerrors.NewDatabaseError("failed to scan backend config row", err)
		}
		out = append(out, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, gwerrors.NewDatabaseError("failed to iterate backend configs", err)
	}
	return out, nil
}

func (r *BackendConfigRepository) Update(ctx context.Context, cfg *backend.BackendConfig) error {
	args, env, err := encodeArgsEnv(cfg)
	if err != nil {
		return err
	}
	res, err := r.db.DB().ExecContext(ctx,
		`UPDATE backend_configs SET name=?, transport=?, url=?, command=?, args=?, env=?, working_dir=?, active=?
		 WHERE id = ?`,
		cfg.Name, string(cfg.Transport), cfg.URL, cfg.Command, args, env, cfg.WorkingDir, boolToInt(cfg.Active), cfg.ID,
	)
	if err != nil {
		return gwerrors.NewDatabaseError("failed to update backend config", err)
	}
	return requireRowAffected(res, "backend config")
}

func (r *BackendConfigRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.DB().ExecContext(ctx, `UPDATE backend_configs SET active = ? WHERE id = ?`, boolToInt(active), id)
	if err != nil {
		return gwerrors.NewDatabaseError("failed to update active flag", err)
	}
	return requireRowAffected(res, "backend config")
}

func (r *BackendConfigRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.DB().ExecContext(ctx, `DELETE FROM backend_configs WHERE id = ?`, id)
	if err != nil {
		return gwerrors.NewDatabaseError("failed to delete backend config", err)
	}
	return requireRowAffected(res, "backend config")
}

const backendSelect = `SELECT id, name, transport, url, command, args, env, working_dir, active FROM backend_configs`

func encodeArgsEnv(cfg *backend.BackendConfig) (args string, env string, err error) {
	argsBytes, err := json.Marshal(cfg.Args)
	if err != nil {
		return "", "", gwerrors.NewInternalError("failed to encode backend args", err)
	}
	envBytes, err := json.Marshal(cfg.Env)
	if err != nil {
		return "", "", gwerrors.NewInternalError("failed to encode backend env", err)
	}
	return string(argsBytes), string(envBytes), nil
}

func scanBackendConfig(row *sql.Row) (*backend.BackendConfig, error) {
	cfg, err := scanBackendConfigRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gwerrors.NewNotFoundError("backend config not found", nil)
	}
	if err != nil {
		return nil, gwerrors.NewDatabaseError("failed to scan backend config", err)
	}
	return cfg, nil
}

func scanBackendConfigRow(row rowScanner) (*backend.BackendConfig, error) {
	var (
		cfg                         backend.BackendConfig
		transport                   string
		url, command, workingDir    sql.NullString
		argsJSON, envJSON           sql.NullString
		activeInt                   int
	)
	if err := row.Scan(&cfg.ID, &cfg.Name, &transport, &url, &command, &argsJSON, &envJSON, &workingDir, &activeInt); err != nil {
		return nil, err
	}
	cfg.Transport = backend.Transport(transport)
	cfg.URL = url.String
	cfg.Command = command.String
	cfg.WorkingDir = workingDir.String
	cfg.Active = activeInt != 0

	if argsJSON.Valid && argsJSON.String != "" {
		if err := json.Unmarshal([]byte(argsJSON.String), &cfg.Args); err != nil {
			return nil, err
		}
	}
	if envJSON.Valid && envJSON.String != "" {
		if err := json.Unmarshal([]byte(envJSON.String), &cfg.Env); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}
