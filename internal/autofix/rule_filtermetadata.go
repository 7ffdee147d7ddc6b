package autofix

import (
	"context"
	"reflect"

	"github.com/flowctl/flowctl/internal/breaking"
	"github.com/flowctl/flowctl/internal/catalog"
	"github.com/flowctl/flowctl/internal/sanitize"
	"github.com/flowctl/flowctl/internal/workflow"
)

// FilterMetadataRule runs the sanitizer's filter-node normalization
// rules (options defaults, condition ids, operator shape repair) and
// surfaces any change as a discrete fix rather than applying it silently.
type FilterMetadataRule struct{}

func (FilterMetadataRule) Name() string { return "filter-metadata" }

func (FilterMetadataRule) Scan(_ context.Context, wf *workflow.Workflow, _ catalog.Catalog, _ breaking.Registry) []Fix {
	var fixes []Fix
	for _, n := range wf.Nodes {
		sanitized := sanitize.SanitizeNode(n)
		if reflect.DeepEqual(n.Parameters, sanitized.Parameters) {
			continue
		}
		fixes = append(fixes, Fix{
			Path:        "parameters",
			NodeName:    n.Name,
			Description: "normalize filter node shape: options defaults, condition ids, operator repair",
			Before:      n.Parameters,
			After:       sanitized.Parameters,
			Confidence:  ConfidenceHigh,
			Kind:        "filter-metadata",
		})
	}
	return fixes
}
