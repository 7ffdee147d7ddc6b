package validate

import "strings"

// dedupeIssues collapses duplicate enhanced-vs-native issues. The
// primary key is (nodeIndex, path, severity); additionally, two issues
// whose normalized messages are identical once any data-type tag
// substring is stripped are treated as the same semantic error, so the
// same finding reported with different type wording collapses too.
func dedupeIssues(issues []Issue) []Issue {
	type key struct {
		nodeIndex int
		path      string
		severity  Severity
	}

	seenKey := make(map[key]int) // key -> index in out
	var out []Issue

	for _, is := range issues {
		idx := -1
		if is.Location.NodeIndex != nil {
			idx = *is.Location.NodeIndex
		}
		k := key{nodeIndex: idx, path: is.Location.Path, severity: is.Severity}

		if existingIdx, ok := seenKey[k]; ok {
			if isMoreSpecific(is.Message, out[existingIdx].Message) {
				out[existingIdx] = is
			}
			continue
		}

		// Semantic-class dedup: compare normalized message against
		// everything already kept for this node+severity.
		dupFound := false
		normalized := normalizeMessage(is.Message)
		for existingIdx, kept := range out {
			if kept.Severity != is.Severity {
				continue
			}
			keptIdx := -1
			if kept.Location.NodeIndex != nil {
				keptIdx = *kept.Location.NodeIndex
			}
			if keptIdx != idx {
				continue
			}
			if normalizeMessage(kept.Message) == normalized {
				if isMoreSpecific(is.Message, kept.Message) {
					out[existingIdx] = is
				}
				dupFound = true
				break
			}
		}
		if dupFound {
			continue
		}

		seenKey[k] = len(out)
		out = append(out, is)
	}

	return out
}

// isMoreSpecific prefers the longer message as the more specific one,
// without inventing a richer specificity model.
func isMoreSpecific(candidate, current string) bool {
	return len(candidate) > len(current)
}

// normalizeMessage strips quoted/typed substrings so that two messages
// differing only by a literal data-type tag collapse to the same key.
func normalizeMessage(msg string) string {
	lower := strings.ToLower(msg)
	for _, t := range []string{"string", "number", "boolean", "datetime", "array", "object"} {
		lower = strings.ReplaceAll(lower, t, "<type>")
	}
	return lower
}
