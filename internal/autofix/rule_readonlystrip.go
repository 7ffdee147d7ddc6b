package autofix

import (
	"context"

	"github.com/flowctl/flowctl/internal/breaking"
	"github.com/flowctl/flowctl/internal/catalog"
	"github.com/flowctl/flowctl/internal/sanitize"
	"github.com/flowctl/flowctl/internal/workflow"
)

// ReadOnlyStripRule flags server-populated keys (id, versionId, meta,
// staticData, ...) that leaked into a node's parameters or the
// workflow's free-form settings map, typically from a copy-pasted
// server response. Of these keys the typed Workflow struct carries only
// tags, which sanitize.StripReadOnly removes on submission, so this
// rule only looks in the free-form maps.
type ReadOnlyStripRule struct{}

func (ReadOnlyStripRule) Name() string { return "read-only-strip" }

func (ReadOnlyStripRule) Scan(_ context.Context, wf *workflow.Workflow, _ catalog.Catalog, _ breaking.Registry) []Fix {
	var fixes []Fix
	for _, k := range sanitize.ReadOnlyKeys {
		if v, ok := wf.Settings[k]; ok {
			fixes = append(fixes, Fix{
				Path:        "settings." + k,
				Description: "strip server-populated key before submission",
				Before:      v,
				After:       removeMarker{},
				Confidence:  ConfidenceHigh,
				Kind:        "read-only-strip",
			})
		}
	}
	for _, n := range wf.Nodes {
		for _, k := range sanitize.ReadOnlyKeys {
			v, ok := n.Parameters[k]
			if !ok {
				continue
			}
			fixes = append(fixes, Fix{
				Path:        "parameters." + k,
				NodeName:    n.Name,
				Description: "strip server-populated key before submission",
				Before:      v,
				After:       removeMarker{},
				Confidence:  ConfidenceHigh,
				Kind:        "read-only-strip",
			})
		}
	}
	return fixes
}
