package autofix

import (
	"context"
	"strings"

	"github.com/flowctl/flowctl/internal/breaking"
	"github.com/flowctl/flowctl/internal/catalog"
	"github.com/flowctl/flowctl/internal/workflow"
)

// UnknownTypeRule finds the catalog's nearest-neighbor node type for a
// type the catalog doesn't recognize, scored by edit distance plus a
// local-name-prefix bonus.
type UnknownTypeRule struct{}

func (UnknownTypeRule) Name() string { return "unknown-type" }

func (UnknownTypeRule) Scan(ctx context.Context, wf *workflow.Workflow, cat catalog.Catalog, _ breaking.Registry) []Fix {
	all, err := cat.All(ctx)
	if err != nil || len(all) == 0 {
		return nil
	}

	var fixes []Fix
	for _, n := range wf.Nodes {
		if _, found, _ := cat.Get(ctx, n.Type); found {
			continue
		}
		bestType, bestScore := nearestType(n.Type, all)
		if bestType == "" {
			continue
		}
		fixes = append(fixes, Fix{
			Path:        "type",
			NodeName:    n.Name,
			Description: "unknown node type; nearest catalog match by edit distance",
			Before:      n.Type,
			After:       bestType,
			Confidence:  confidenceForSimilarity(bestScore),
			Kind:        "unknown-type",
		})
	}
	return fixes
}

func nearestType(want string, defs []*catalog.NodeDefinition) (string, float64) {
	bestType := ""
	bestScore := -1.0
	wantLocal := localName(want)

	for _, def := range defs {
		score := similarity(want, def.Type)
		defLocal := localName(def.Type)
		if wantLocal != "" && defLocal != "" &&
			(strings.HasPrefix(defLocal, wantLocal) || strings.HasPrefix(wantLocal, defLocal)) {
			score += 0.1
			if score > 1 {
				score = 1
			}
		}
		if score > bestScore {
			bestScore = score
			bestType = def.Type
		}
	}
	if bestScore < 0 {
		return "", 0
	}
	return bestType, bestScore
}

func localName(nodeType string) string {
	idx := strings.LastIndex(nodeType, ".")
	if idx < 0 {
		return nodeType
	}
	return nodeType[idx+1:]
}

// similarity returns a 0..1 score derived from normalized Levenshtein
// distance between a and b.
func similarity(a, b string) float64 {
	d := levenshtein(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(d)/float64(maxLen)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n, m := len(ra), len(rb)
	if n == 0 {
		return m
	}
	if m == 0 {
		return n
	}
	prev := make([]int, m+1)
	curr := make([]int, m+1)
	for j := 0; j <= m; j++ {
		prev[j] = j
	}
	for i := 1; i <= n; i++ {
		curr[0] = i
		for j := 1; j <= m; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			best := del
			if ins < best {
				best = ins
			}
			if sub < best {
				best = sub
			}
			curr[j] = best
		}
		prev, curr = curr, prev
	}
	return prev[m]
}

func confidenceForSimilarity(score float64) Confidence {
	switch {
	case score >= 0.9:
		return ConfidenceHigh
	case score >= 0.7:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
