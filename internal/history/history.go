// Package history is the Version Repository: an append-only history of
// workflow snapshots per workflow identity, with bounded retention
// (keep latest N, default 10), used to implement rollback around any
// mutation. This is an external collaborator of the core; the diff
// engine and validator never call it directly.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/flowctl/flowctl/internal/workflow"
)

// ErrNotFound is returned when a workflow identity or entry id is unknown.
var ErrNotFound = errors.New("history: not found")

// Entry is one recorded snapshot.
type Entry struct {
	ID         string
	WorkflowID string
	Workflow   *workflow.Workflow
	CreatedAt  time.Time
	Label      string
}

// Repository is the Version Repository's interface.
type Repository interface {
	Snapshot(ctx context.Context, workflowID string, wf *workflow.Workflow) (*Entry, error)
	List(ctx context.Context, workflowID string) ([]*Entry, error)
	Get(ctx context.Context, workflowID, entryID string) (*Entry, error)
	Rollback(ctx context.Context, workflowID, entryID string) (*workflow.Workflow, error)
}
