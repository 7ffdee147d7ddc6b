package validate

import (
	"strconv"

	"github.com/flowctl/flowctl/internal/breaking"
)

// checkVersion is pass 8: for every node whose type is tracked by the
// breaking-change registry, flag when its typeVersion is behind the
// registry's latest known version, and note whether breaking changes
// exist between the two.
func checkVersion(i int, node map[string]any, reg breaking.Registry, severity Severity) []Issue {
	nodeType, _ := node["type"].(string)
	if nodeType == "" {
		return nil
	}
	latest, tracked := reg.LatestVersion(nodeType)
	if !tracked {
		return nil
	}
	current, _ := node["typeVersion"].(float64)
	if current >= latest {
		return nil
	}

	changes := reg.Lookup(nodeType, current, latest)
	breakingCount := 0
	for _, c := range changes {
		if c.Severity == breaking.SeverityError {
			breakingCount++
		}
	}

	return []Issue{{
		Code:     "OUTDATED_NODE_VERSION",
		Severity: severity,
		Message:  nodeType + " is at typeVersion " + formatVersion(current) + ", latest known is " + formatVersion(latest),
		Location: Location{Path: nodePath(i) + ".typeVersion", NodeIndex: intPtr(i), NodeType: nodeType},
		Context: map[string]any{
			"currentVersion": current,
			"latestVersion":  latest,
			"hasBreaking":    breakingCount > 0,
			"changeCount":    len(changes),
		},
	}}
}

func formatVersion(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
