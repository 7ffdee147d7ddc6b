package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/flowctl/flowctl/internal/workflow"
)

// PostgresRepository persists snapshots in Postgres, pruning rows past
// the retention count in the same transaction as the insert (the
// backup+mutate+commit pattern named for the Version Repository).
// Uses the same sql.Open/PingContext/pool-sizing sequence as
// catalog.NewPostgresCatalog.
type PostgresRepository struct {
	pool      *sql.DB
	retention int
}

// NewPostgresRepository opens a connection pool against databaseURL,
// ensures the history table exists, and retains at most retention
// snapshots per workflow identity (<=0 uses DefaultRetention).
func NewPostgresRepository(ctx context.Context, databaseURL string, retention int) (*PostgresRepository, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}

	pool, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pool.SetMaxOpenConns(25)
	pool.SetMaxIdleConns(5)

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := pool.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS workflow_history (
			id TEXT PRIMARY KEY,
			workflow_id TEXT NOT NULL,
			label TEXT NOT NULL DEFAULT '',
			snapshot JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			CONSTRAINT workflow_history_workflow_idx UNIQUE (workflow_id, id)
		)`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create workflow_history table: %w", err)
	}
	if _, err := pool.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS workflow_history_by_workflow ON workflow_history (workflow_id, created_at)`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create workflow_history index: %w", err)
	}

	return &PostgresRepository{pool: pool, retention: retention}, nil
}

// Close releases the underlying connection pool.
func (r *PostgresRepository) Close() error { return r.pool.Close() }

func (r *PostgresRepository) Snapshot(ctx context.Context, workflowID string, wf *workflow.Workflow) (*Entry, error) {
	raw, err := json.Marshal(wf)
	if err != nil {
		return nil, fmt.Errorf("marshal workflow snapshot: %w", err)
	}

	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	e := &Entry{
		ID:         uuid.NewString(),
		WorkflowID: workflowID,
		Workflow:   wf.Clone(),
		CreatedAt:  time.Now().UTC(),
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO workflow_history (id, workflow_id, label, snapshot, created_at) VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.WorkflowID, e.Label, raw, e.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM workflow_history
		WHERE workflow_id = $1 AND id NOT IN (
			SELECT id FROM workflow_history
			WHERE workflow_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		)`, workflowID, r.retention); err != nil {
		return nil, fmt.Errorf("prune old snapshots: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit snapshot transaction: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) List(ctx context.Context, workflowID string) ([]*Entry, error) {
	rows, err := r.pool.QueryContext(ctx,
		`SELECT id, workflow_id, label, snapshot, created_at FROM workflow_history
		 WHERE workflow_id = $1 ORDER BY created_at DESC`, workflowID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, workflowID, entryID string) (*Entry, error) {
	row := r.pool.QueryRowContext(ctx,
		`SELECT id, workflow_id, label, snapshot, created_at FROM workflow_history
		 WHERE workflow_id = $1 AND id = $2`, workflowID, entryID)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return e, err
}

func (r *PostgresRepository) Rollback(ctx context.Context, workflowID, entryID string) (*workflow.Workflow, error) {
	e, err := r.Get(ctx, workflowID, entryID)
	if err != nil {
		return nil, err
	}
	return e.Workflow.Clone(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var e Entry
	var raw []byte
	if err := row.Scan(&e.ID, &e.WorkflowID, &e.Label, &raw, &e.CreatedAt); err != nil {
		return nil, err
	}
	var wf workflow.Workflow
	if err := json.Unmarshal(raw, &wf); err != nil {
		return nil, fmt.Errorf("decode workflow snapshot: %w", err)
	}
	e.Workflow = &wf
	return &e, nil
}
