package autofix

import (
	"context"
	"strings"

	"github.com/flowctl/flowctl/internal/breaking"
	"github.com/flowctl/flowctl/internal/catalog"
	"github.com/flowctl/flowctl/internal/workflow"
)

// TypePrefixRule detects the deprecated "nodes-base." prefix exclusively
// via a fixed string-prefix test, same as the validator's check.
type TypePrefixRule struct{}

func (TypePrefixRule) Name() string { return "type-prefix" }

func (TypePrefixRule) Scan(_ context.Context, wf *workflow.Workflow, _ catalog.Catalog, _ breaking.Registry) []Fix {
	var fixes []Fix
	for _, n := range wf.Nodes {
		if !strings.HasPrefix(n.Type, "nodes-base.") {
			continue
		}
		corrected := "n8n-nodes-base." + strings.TrimPrefix(n.Type, "nodes-base.")
		fixes = append(fixes, Fix{
			Path:        "type",
			NodeName:    n.Name,
			Description: "replace deprecated prefix 'nodes-base.' with 'n8n-nodes-base.'",
			Before:      n.Type,
			After:       corrected,
			Confidence:  ConfidenceHigh,
			Kind:        "type-prefix",
		})
	}
	return fixes
}
