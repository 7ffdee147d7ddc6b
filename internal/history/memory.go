package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flowctl/flowctl/internal/workflow"
)

// DefaultRetention is the default number of snapshots kept per workflow
// identity before FIFO eviction.
const DefaultRetention = 10

// MemoryRepository stores snapshots in memory with FIFO eviction per
// workflow identity: a map plus an insertion-order slice per key.
type MemoryRepository struct {
	mu        sync.RWMutex
	retention int
	entries   map[string][]*Entry // workflowID -> entries, oldest first
}

// NewMemoryRepository constructs a MemoryRepository retaining at most
// retention snapshots per workflow identity. retention <= 0 uses
// DefaultRetention.
func NewMemoryRepository(retention int) *MemoryRepository {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &MemoryRepository{
		retention: retention,
		entries:   make(map[string][]*Entry),
	}
}

func (r *MemoryRepository) Snapshot(_ context.Context, workflowID string, wf *workflow.Workflow) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := &Entry{
		ID:         uuid.NewString(),
		WorkflowID: workflowID,
		Workflow:   wf.Clone(),
		CreatedAt:  time.Now().UTC(),
	}

	list := r.entries[workflowID]
	list = append(list, e)
	if len(list) > r.retention {
		list = list[len(list)-r.retention:]
	}
	r.entries[workflowID] = list
	return e, nil
}

func (r *MemoryRepository) List(_ context.Context, workflowID string) ([]*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.entries[workflowID]
	out := make([]*Entry, len(list))
	// Newest first.
	for i, e := range list {
		out[len(list)-1-i] = e
	}
	return out, nil
}

func (r *MemoryRepository) Get(_ context.Context, workflowID, entryID string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries[workflowID] {
		if e.ID == entryID {
			return e, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) Rollback(ctx context.Context, workflowID, entryID string) (*workflow.Workflow, error) {
	e, err := r.Get(ctx, workflowID, entryID)
	if err != nil {
		return nil, err
	}
	return e.Workflow.Clone(), nil
}
