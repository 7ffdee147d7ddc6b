// Package serverclient is the thin HTTP client the enclosing CLI/server
// uses to reach the remote workflow server. The core (diff/validate/
// autofix) never speaks HTTP directly; it only ever sees the typed
// Workflow value this package returns.
package serverclient

import (
	"context"
	"fmt"

	"github.com/flowctl/flowctl/internal/workflow"
)

// ErrorCode is the taxonomy the core expects back from any remote call.
type ErrorCode string

const (
	ErrAuth       ErrorCode = "AUTH"
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrValidation ErrorCode = "VALIDATION"
	ErrRateLimit  ErrorCode = "RATE_LIMIT"
	ErrServer     ErrorCode = "SERVER"
	ErrConnection ErrorCode = "CONNECTION"
)

// Error is the error shape every Client method returns on failure.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]any
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

// ListWorkflowsOptions filters a ListWorkflows call.
type ListWorkflowsOptions struct {
	Active *bool
	Tags   []string
	Limit  int
	Cursor string
}

// Page is a cursor-paginated result envelope.
type Page[T any] struct {
	Data       []T
	NextCursor string
}

// Execution is a single workflow run record as the server reports it.
type Execution struct {
	ID         string
	WorkflowID string
	Status     string
	StartedAt  string
	StoppedAt  string
}

// ListExecutionsOptions filters a ListExecutions call.
type ListExecutionsOptions struct {
	WorkflowID string
	Status     string
	Limit      int
	Cursor     string
}

// Tag is a workflow tag as the server reports it.
type Tag struct {
	ID   string
	Name string
}

// Template is a community/workflow template as the server reports it.
type Template struct {
	ID          string
	Name        string
	Description string
}

// Client is the external interface the core's callers implement against
// the remote workflow server.
type Client interface {
	GetWorkflow(ctx context.Context, id string) (*workflow.Workflow, error)
	UpdateWorkflow(ctx context.Context, id string, wf *workflow.Workflow) (*workflow.Workflow, error)
	CreateWorkflow(ctx context.Context, wf *workflow.Workflow) (*workflow.Workflow, error)
	ListWorkflows(ctx context.Context, opts ListWorkflowsOptions) (Page[*workflow.Workflow], error)

	ListExecutions(ctx context.Context, opts ListExecutionsOptions) (Page[*Execution], error)
	GetExecution(ctx context.Context, id string) (*Execution, error)
	RetryExecution(ctx context.Context, id string) (*Execution, error)
	DeleteExecution(ctx context.Context, id string) error

	ListCredentialTypes(ctx context.Context) ([]string, error)

	ListTags(ctx context.Context) ([]Tag, error)
	CreateTag(ctx context.Context, name string) (Tag, error)
	DeleteTag(ctx context.Context, id string) error

	SearchTemplates(ctx context.Context, query string) ([]Template, error)
	GetTemplate(ctx context.Context, id string) (*Template, error)

	Health(ctx context.Context) error
}
