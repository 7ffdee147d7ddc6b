package diff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/flowctl/flowctl/internal/names"
	"github.com/flowctl/flowctl/internal/sanitize"
	"github.com/flowctl/flowctl/internal/workflow"
)

// Request is the input envelope for Apply.
type Request struct {
	Operations      []Operation
	ValidateOnly    bool
	ContinueOnError bool
}

// Result is the output envelope from Apply.
type Result struct {
	Success          bool
	Workflow         *workflow.Workflow
	OperationsApplied int
	Message          string
	Errors           []string
	Warnings         []string
	Applied          []int
	Failed           []int
	ShouldActivate   bool
	ShouldDeactivate bool
}

// opError is a single operation-level failure, carrying the index it
// occurred at so best-effort mode can record it.
type opError struct {
	index int
	err   error
}

// rename records one pass-1 node rename. Renames are kept in the order
// they were applied: with chained renames in one request (A->C then
// B->A) a map-ordered walk could rewrite the wrong edges.
type rename struct {
	from, to string
}

// Engine applies operation lists to workflow values. It holds no state
// between calls; every field here is local to one invocation.
type Engine struct{}

// New constructs a stateless Engine.
func New() *Engine { return &Engine{} }

// Apply runs req against wf, returning a new workflow value. wf is never
// mutated; Apply clones it first.
func (e *Engine) Apply(wf *workflow.Workflow, req Request) Result {
	working := wf.Clone()
	var renames []rename

	nodeOps, otherOps, nodeOpIdx, otherOpIdx := partition(req.Operations)

	var errs []opError
	var applied []int
	var warnings, messages []string
	var shouldActivate, shouldDeactivate bool

	applyOne := func(idx int, op Operation) error {
		warn := func(msg string) {
			warnings = append(warnings, fmt.Sprintf("operation %d: %s", idx, msg))
		}
		switch op.Type {
		case TagAddNode:
			return applyAddNode(working, op)
		case TagRemoveNode:
			return applyRemoveNode(working, op)
		case TagUpdateNode:
			return applyUpdateNode(working, op, &renames)
		case TagMoveNode:
			return applyMoveNode(working, op)
		case TagEnableNode:
			return applyEnableDisable(working, op, false)
		case TagDisableNode:
			return applyEnableDisable(working, op, true)
		case TagAddConnection:
			return applyAddConnection(working, op, warn)
		case TagRemoveConnection:
			return applyRemoveConnection(working, op)
		case TagRewireConnection:
			return applyRewireConnection(working, op)
		case TagUpdateSettings:
			return applyUpdateSettings(working, op)
		case TagUpdateName:
			return applyUpdateName(working, op)
		case TagAddTag:
			return applyAddTag(working, op)
		case TagRemoveTag:
			return applyRemoveTag(working, op)
		case TagActivateWorkflow:
			if err := checkActivatable(working); err != nil {
				return err
			}
			shouldActivate = true
			return nil
		case TagDeactivateWorkflow:
			shouldDeactivate = true
			return nil
		case TagCleanStaleConnections:
			count := applyCleanStaleConnections(working, op)
			if op.DryRun {
				messages = append(messages, fmt.Sprintf("cleanStaleConnections: %d stale connection(s) detected (dry run)", count))
			} else if count > 0 {
				messages = append(messages, fmt.Sprintf("cleanStaleConnections: removed %d stale connection(s)", count))
			}
			return nil
		case TagReplaceConnections:
			return applyReplaceConnections(working, op)
		default:
			panic(fmt.Sprintf("internal invariant violated: unknown operation tag %q reached dispatch", op.Type))
		}
	}

	if req.ContinueOnError {
		// Best-effort: node ops first, then other ops, each independent.
		for i, op := range nodeOps {
			idx := nodeOpIdx[i]
			if err := applyOne(idx, op); err != nil {
				errs = append(errs, opError{idx, err})
			} else {
				applied = append(applied, idx)
			}
		}
		propagateRenames(working, renames)
		for i, op := range otherOps {
			idx := otherOpIdx[i]
			if err := applyOne(idx, op); err != nil {
				errs = append(errs, opError{idx, err})
			} else {
				applied = append(applied, idx)
			}
		}
	} else {
		// Atomic: any failure aborts the whole request with no mutation
		// visible to the caller.
		for i, op := range nodeOps {
			if err := applyOne(nodeOpIdx[i], op); err != nil {
				return Result{Success: false, Message: err.Error(), Errors: []string{err.Error()}}
			}
			applied = append(applied, nodeOpIdx[i])
		}
		propagateRenames(working, renames)
		for i, op := range otherOps {
			if err := applyOne(otherOpIdx[i], op); err != nil {
				return Result{Success: false, Message: err.Error(), Errors: []string{err.Error()}}
			}
			applied = append(applied, otherOpIdx[i])
		}
	}

	if req.ValidateOnly {
		return Result{Success: len(errs) == 0, OperationsApplied: 0, Errors: errsToStrings(errs), Warnings: warnings}
	}

	if !req.ContinueOnError {
		// Final sanitization pass over every node.
		for i := range working.Nodes {
			working.Nodes[i] = sanitize.SanitizeNode(working.Nodes[i])
		}
	}

	res := Result{
		Success:           len(errs) == 0,
		Workflow:          working,
		OperationsApplied: len(applied),
		Applied:           applied,
		Warnings:          warnings,
		Message:           strings.Join(messages, "; "),
		ShouldActivate:    shouldActivate,
		ShouldDeactivate:  shouldDeactivate,
	}
	if len(errs) > 0 {
		res.Errors = errsToStrings(errs)
		for _, e := range errs {
			res.Failed = append(res.Failed, e.index)
		}
		sort.Ints(res.Failed)
	}
	sort.Ints(res.Applied)
	return res
}

func errsToStrings(errs []opError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = fmt.Sprintf("operation %d: %v", e.index, e.err)
	}
	return out
}

// partition splits ops by tag into node ops (in original order) and
// other ops (in original order), along with their original indices.
func partition(ops []Operation) (nodeOps, otherOps []Operation, nodeIdx, otherIdx []int) {
	for i, op := range ops {
		if nodeTags[op.Type] {
			nodeOps = append(nodeOps, op)
			nodeIdx = append(nodeIdx, i)
		} else {
			otherOps = append(otherOps, op)
			otherIdx = append(otherIdx, i)
		}
	}
	return
}

// propagateRenames rewrites every connection source key and target.Node
// reference recorded during pass 1, in the order the renames were
// applied. Called once between pass 1 and pass 2.
func propagateRenames(wf *workflow.Workflow, renames []rename) {
	for _, r := range renames {
		wf.Connections.RenameNode(r.from, r.to)
	}
}

// findNode resolves a target selector: by id, then by normalized name,
// then (if an id was given with no name) by treating the id as a name.
func findNode(wf *workflow.Workflow, nodeID, nodeName string) (*workflow.Node, int, error) {
	if nodeID != "" {
		if n, i := wf.NodeByID(nodeID); i >= 0 {
			return n, i, nil
		}
	}
	if nodeName != "" {
		if n, i := wf.NodeByName(nodeName); i >= 0 {
			return n, i, nil
		}
	}
	if nodeID != "" && nodeName == "" {
		if n, i := wf.NodeByName(nodeID); i >= 0 {
			return n, i, nil
		}
	}
	selector := nodeName
	if selector == "" {
		selector = nodeID
	}
	return nil, -1, notFoundError(wf, selector)
}

func notFoundError(wf *workflow.Workflow, selector string) error {
	var avail []string
	for _, n := range wf.Nodes {
		avail = append(avail, truncateID(n.Name))
		if len(avail) >= 5 {
			break
		}
	}
	return fmt.Errorf("node %q not found; available nodes: %s", selector, strings.Join(avail, ", "))
}

func truncateID(s string) string {
	if len(s) > 40 {
		return s[:40] + "…"
	}
	return s
}

// nameCollides reports whether candidate collides (by normalized form)
// with any node in wf other than the node at exceptIndex.
func nameCollides(wf *workflow.Workflow, candidate string, exceptIndex int) bool {
	for i, n := range wf.Nodes {
		if i == exceptIndex {
			continue
		}
		if names.Equal(n.Name, candidate) {
			return true
		}
	}
	return false
}
