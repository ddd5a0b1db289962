package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"notegraph-ai/internal/domain"
	"notegraph-ai/internal/domain/ports/repository"
)

// Ensure interface compliance
var _ repository.SnapshotRepository = (*SnapshotRepo)(nil)

// SnapshotRepo keeps one durable jsonb copy of each workspace slot. It is
// the autosave target, not the hot path: the Redis slots stay the source
// of truth while the process runs.
type SnapshotRepo struct {
	pool *pgxpool.Pool
}

func NewSnapshotRepo(pool *pgxpool.Pool) *SnapshotRepo {
	return &SnapshotRepo{pool: pool}
}

// EnsureSchema creates the snapshot table when absent.
func (r *SnapshotRepo) EnsureSchema(ctx context.Context) error {
	const sql = `
CREATE TABLE IF NOT EXISTS slot_snapshots (
    workspace  TEXT        NOT NULL,
    slot       TEXT        NOT NULL,
    payload    JSONB       NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (workspace, slot)
);
`
	if _, err := r.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("EnsureSchema: %w", err)
	}
	return nil
}

func (r *SnapshotRepo) Save(ctx context.Context, workspace, slot string, payload []byte) error {
	const insert = `
INSERT INTO slot_snapshots (workspace, slot, payload, updated_at)
VALUES ($1, $2, $3, now());
`
	_, err := r.pool.Exec(ctx, insert, workspace, slot, payload)
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return fmt.Errorf("Save snapshot: %w", err)
	}

	const update = `
UPDATE slot_snapshots
   SET payload = $3, updated_at = now()
 WHERE workspace = $1 AND slot = $2;
`
	if _, err := r.pool.Exec(ctx, update, workspace, slot, payload); err != nil {
		return fmt.Errorf("Save snapshot update: %w", err)
	}
	return nil
}

func (r *SnapshotRepo) LoadLatest(ctx context.Context, workspace, slot string) ([]byte, error) {
	const sql = `
SELECT payload
  FROM slot_snapshots
 WHERE workspace = $1 AND slot = $2;
`
	var payload []byte
	if err := r.pool.QueryRow(ctx, sql, workspace, slot).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("LoadLatest snapshot: %w", err)
	}
	return payload, nil
}

func (r *SnapshotRepo) ListWorkspaces(ctx context.Context) ([]string, error) {
	const sql = `SELECT DISTINCT workspace FROM slot_snapshots;`
	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("ListWorkspaces: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var ws string
		if err := rows.Scan(&ws); err != nil {
			return nil, fmt.Errorf("ListWorkspaces scan: %w", err)
		}
		out = append(out, ws)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
