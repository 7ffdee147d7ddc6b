package autofix

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/flowctl/flowctl/internal/breaking"
	"github.com/flowctl/flowctl/internal/catalog"
	"github.com/flowctl/flowctl/internal/diff"
	"github.com/flowctl/flowctl/internal/workflow"
)

// DefaultRules is the seven rule classes, one file per rule, run by a
// plain Autofixer built with NewAutofixer().
func DefaultRules() []Rule {
	return []Rule{
		TypePrefixRule{},
		UnknownTypeRule{},
		ExpressionPrefixRule{},
		ResourceLocatorRule{},
		ReadOnlyStripRule{},
		FilterMetadataRule{},
		VersionMigrationRule{},
	}
}

// Autofixer composes a rule set, a catalog, and a breaking-change
// registry to scan a workflow and (optionally) apply the result through
// the diff engine.
type Autofixer struct {
	Rules []Rule
	Cat   catalog.Catalog
	Reg   breaking.Registry
}

// NewAutofixer constructs an Autofixer with the seven built-in rules.
func NewAutofixer(cat catalog.Catalog, reg breaking.Registry) *Autofixer {
	return &Autofixer{Rules: DefaultRules(), Cat: cat, Reg: reg}
}

// Scan runs every rule concurrently (bounded by GOMAXPROCS, one
// goroutine per rule via errgroup) and returns the combined fix list
// sorted by (path, kind) for deterministic output regardless of which
// rule's goroutine finishes first.
func (a *Autofixer) Scan(ctx context.Context, wf *workflow.Workflow) ([]Fix, error) {
	results := make([][]Fix, len(a.Rules))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, rule := range a.Rules {
		i, rule := i, rule
		g.Go(func() error {
			results[i] = rule.Scan(gctx, wf, a.Cat, a.Reg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var fixes []Fix
	for _, r := range results {
		fixes = append(fixes, r...)
	}
	sort.SliceStable(fixes, func(i, j int) bool {
		if fixes[i].Path != fixes[j].Path {
			return fixes[i].Path < fixes[j].Path
		}
		return fixes[i].Kind < fixes[j].Kind
	})
	return fixes, nil
}

// Propose scans and filters by threshold, for a dry-run preview.
func (a *Autofixer) Propose(ctx context.Context, wf *workflow.Workflow, threshold Threshold) ([]Fix, error) {
	fixes, err := a.Scan(ctx, wf)
	if err != nil {
		return nil, err
	}
	return FilterByThreshold(fixes, threshold), nil
}

// Apply scans, filters by threshold, and routes every surviving
// node-level fix as an updateNode operation through the diff engine,
// returning the engine's result. Workflow-level fixes (no NodeName) and
// rename fixes whose node is not found are returned but not applied.
func (a *Autofixer) Apply(ctx context.Context, wf *workflow.Workflow, threshold Threshold) (diff.Result, []Fix, error) {
	fixes, err := a.Propose(ctx, wf, threshold)
	if err != nil {
		return diff.Result{}, nil, err
	}

	ops := make([]diff.Operation, 0, len(fixes))
	for _, f := range fixes {
		if f.NodeName == "" {
			// workflow-level fix (e.g. a leaked read-only key in
			// settings); nothing for the diff engine to route.
			continue
		}
		var updates map[string]any
		var removals []string
		switch after := f.After.(type) {
		case removeMarker:
			removals = []string{f.Path}
		case renameMarker:
			node, _ := wf.NodeByName(f.NodeName)
			if node == nil {
				continue
			}
			updates = map[string]any{f.Path: lookupDottedPath(node.Parameters, after.FromPath)}
			removals = []string{"parameters." + after.FromPath}
		default:
			updates = map[string]any{f.Path: f.After}
		}
		ops = append(ops, diff.Operation{
			Type:     diff.TagUpdateNode,
			NodeName: f.NodeName,
			Updates:  updates,
			Removals: removals,
		})
	}

	engine := diff.New()
	result := engine.Apply(wf, diff.Request{Operations: ops, ContinueOnError: true})
	return result, fixes, nil
}

// lookupDottedPath reads a dotted path out of a generic parameter map,
// used to carry a value from its old location to its renamed one.
func lookupDottedPath(params map[string]any, path string) any {
	if params == nil {
		return nil
	}
	cur := any(params)
	for _, seg := range splitDotted(path) {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[seg]
	}
	return cur
}

func splitDotted(path string) []string {
	var segs []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			segs = append(segs, path[start:i])
			start = i + 1
		}
	}
	segs = append(segs, path[start:])
	return segs
}
