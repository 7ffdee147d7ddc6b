package autofix

import (
	"context"

	"github.com/flowctl/flowctl/internal/breaking"
	"github.com/flowctl/flowctl/internal/catalog"
	"github.com/flowctl/flowctl/internal/workflow"
)

// VersionMigrationRule applies the registry's migration strategy
// (add_property, remove_property, rename_property, set_default) for
// every tracked breaking change between a node's current typeVersion
// and the registry's latest known version for that type.
type VersionMigrationRule struct{}

func (VersionMigrationRule) Name() string { return "version-migration" }

func (VersionMigrationRule) Scan(_ context.Context, wf *workflow.Workflow, _ catalog.Catalog, reg breaking.Registry) []Fix {
	var fixes []Fix
	for _, n := range wf.Nodes {
		latest, tracked := reg.LatestVersion(n.Type)
		if !tracked || n.TypeVersion >= latest {
			continue
		}
		changes := reg.Lookup(n.Type, n.TypeVersion, latest)
		if len(changes) == 0 {
			continue
		}

		allAuto := true
		autoFixCount := 0
		for _, c := range changes {
			if c.AutoMigratable {
				fixes = append(fixes, migrationFix(n.Name, c))
				autoFixCount++
			} else {
				allAuto = false
			}
		}

		bumpConfidence := ConfidenceLow
		if allAuto {
			bumpConfidence = ConfidenceHigh
		} else if autoFixCount > 0 {
			bumpConfidence = ConfidenceMedium
		}
		fixes = append(fixes, Fix{
			Path:        "typeVersion",
			NodeName:    n.Name,
			Description: "bump typeVersion to the latest tracked version",
			Before:      n.TypeVersion,
			After:       latest,
			Confidence:  bumpConfidence,
			Kind:        "version-migration",
		})
	}
	return fixes
}

// migrationFix builds the dotted-path fix for one tracked change. Only
// AutoMigratable changes reach here; a fix for a known strategy carries
// HIGH confidence, and an unrecognized strategy yields a LOW-confidence
// fix with no value.
// A Change's PropertyPath/NewPath is relative to the node's parameters
// object, so the fix path is prefixed with "parameters." to address the
// same location inside the generic node object the diff engine mutates.
func migrationFix(nodeName string, c breaking.Change) Fix {
	switch c.Strategy {
	case breaking.StrategyAddProperty, breaking.StrategySetDefault:
		return Fix{
			Path:        "parameters." + c.PropertyPath,
			NodeName:    nodeName,
			Description: c.Hint,
			After:       c.DefaultValue,
			Confidence:  ConfidenceHigh,
			Kind:        "version-migration",
		}
	case breaking.StrategyRemoveProperty:
		return Fix{
			Path:        "parameters." + c.PropertyPath,
			NodeName:    nodeName,
			Description: c.Hint,
			After:       removeMarker{},
			Confidence:  ConfidenceHigh,
			Kind:        "version-migration",
		}
	case breaking.StrategyRenameProperty:
		return Fix{
			Path:        "parameters." + c.NewPath,
			NodeName:    nodeName,
			Description: c.Hint,
			After:       renameMarker{FromPath: c.PropertyPath},
			Confidence:  ConfidenceHigh,
			Kind:        "version-migration",
		}
	default:
		return Fix{
			Path:        "parameters." + c.PropertyPath,
			NodeName:    nodeName,
			Description: c.Hint,
			Confidence:  ConfidenceLow,
			Kind:        "version-migration",
		}
	}
}

// renameMarker carries the source path for a rename_property strategy
// fix through to Apply, which reads the node's current value at
// FromPath, writes it under the fix's own Path, and deletes FromPath.
type renameMarker struct {
	FromPath string
}

// removeMarker marks a fix whose Path must be deleted outright rather
// than assigned; Apply routes it through updateNode's removals so the
// key itself disappears instead of surviving with a null value.
type removeMarker struct{}
