package validate

import (
	"sort"
	"strconv"

	"github.com/flowctl/flowctl/internal/names"
)

// checkConnectionReferences is pass 7: every connection source key and
// every target node reference must name a node present in the
// workflow, with both sides compared by normalized form. Each
// violation carries an inline hint with up to five available node names.
func checkConnectionReferences(conns map[string]any, known map[string]bool) []Issue {
	var issues []Issue

	for source, rawByLabel := range conns {
		if !known[names.Normalize(source)] {
			issues = append(issues, Issue{
				Code:     "UNKNOWN_CONNECTION_SOURCE",
				Severity: SeverityError,
				Message:  "connection source '" + source + "' does not match any node",
				Location: Location{Path: "connections." + source},
				Hint:     availableNamesHint(known),
			})
		}
		byLabel, ok := rawByLabel.(map[string]any)
		if !ok {
			continue
		}
		for label, rawOutputs := range byLabel {
			outputs, ok := rawOutputs.([]any)
			if !ok {
				continue
			}
			for outIdx, rawSlot := range outputs {
				slot, ok := rawSlot.([]any)
				if !ok {
					continue
				}
				for _, rawTarget := range slot {
					target, ok := rawTarget.(map[string]any)
					if !ok {
						continue
					}
					targetNode, _ := target["node"].(string)
					if targetNode != "" && !known[names.Normalize(targetNode)] {
						issues = append(issues, Issue{
							Code:     "UNKNOWN_CONNECTION_TARGET",
							Severity: SeverityError,
							Message:  "connection target '" + targetNode + "' does not match any node",
							Location: Location{Path: "connections." + source + "." + label + "[" + strconv.Itoa(outIdx) + "]"},
							Hint:     availableNamesHint(known),
						})
					}
				}
			}
		}
	}

	return issues
}

func availableNamesHint(known map[string]bool) string {
	sorted := make([]string, 0, len(known))
	for n := range known {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)
	if len(sorted) > 5 {
		sorted = sorted[:5]
	}
	hint := "available nodes: "
	for i, n := range sorted {
		if i > 0 {
			hint += ", "
		}
		hint += n
	}
	return hint
}
