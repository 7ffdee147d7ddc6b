package autofix

import (
	"context"

	"github.com/flowctl/flowctl/internal/breaking"
	"github.com/flowctl/flowctl/internal/catalog"
	"github.com/flowctl/flowctl/internal/workflow"
)

// ResourceLocatorRule wraps a plain string in {mode: "list", value: <string>}
// for a catalog-marked resource-locator field.
type ResourceLocatorRule struct{}

func (ResourceLocatorRule) Name() string { return "resource-locator" }

func (ResourceLocatorRule) Scan(ctx context.Context, wf *workflow.Workflow, cat catalog.Catalog, _ breaking.Registry) []Fix {
	var fixes []Fix
	for _, n := range wf.Nodes {
		def, found, err := cat.Get(ctx, n.Type)
		if err != nil || !found || len(def.IsResourceLocatorField) == 0 {
			continue
		}
		for key, value := range n.Parameters {
			if !def.IsResourceLocatorField[key] {
				continue
			}
			str, ok := value.(string)
			if !ok {
				continue
			}
			fixes = append(fixes, Fix{
				Path:        "parameters." + key,
				NodeName:    n.Name,
				Description: "wrap plain string in a resource-locator object",
				Before:      str,
				After:       map[string]any{"mode": "list", "value": str},
				Confidence:  ConfidenceMedium,
				Kind:        "resource-locator",
			})
		}
	}
	return fixes
}
