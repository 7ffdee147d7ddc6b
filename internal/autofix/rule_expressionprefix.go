package autofix

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/flowctl/flowctl/internal/breaking"
	"github.com/flowctl/flowctl/internal/catalog"
	"github.com/flowctl/flowctl/internal/workflow"
)

var templateRef = regexp.MustCompile(`\{\{.*?\}\}`)
var contextPrefixes = []string{"$json", "$node", "$input", "$workflow"}

// ExpressionPrefixRule prepends '=' to string parameter values that
// reference workflow context without the leading expression marker.
type ExpressionPrefixRule struct{}

func (ExpressionPrefixRule) Name() string { return "expression-prefix" }

func (ExpressionPrefixRule) Scan(_ context.Context, wf *workflow.Workflow, _ catalog.Catalog, _ breaking.Registry) []Fix {
	var fixes []Fix
	for _, n := range wf.Nodes {
		walkParams(n.Parameters, "parameters", func(path, value string) {
			if isExpression(value) || !referencesWorkflowContext(value) {
				return
			}
			fixes = append(fixes, Fix{
				Path:        path,
				NodeName:    n.Name,
				Description: "prepend '=' so the value is evaluated as an expression",
				Before:      value,
				After:       "=" + value,
				Confidence:  ConfidenceHigh,
				Kind:        "expression-prefix",
			})
		})
	}
	return fixes
}

func isExpression(s string) bool {
	return strings.HasPrefix(s, "=") || templateRef.MatchString(s)
}

func referencesWorkflowContext(s string) bool {
	for _, p := range contextPrefixes {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// walkParams visits every string value under m, calling fn with its
// dotted path and value. It recurses into nested maps and into maps
// held in arrays; strings held directly in an array are not visited.
func walkParams(m map[string]any, prefix string, fn func(path, value string)) {
	for k, v := range m {
		path := prefix + "." + k
		switch val := v.(type) {
		case string:
			fn(path, val)
		case map[string]any:
			walkParams(val, path, fn)
		case []any:
			for idx, elem := range val {
				if child, ok := elem.(map[string]any); ok {
					walkParams(child, path+"["+strconv.Itoa(idx)+"]", fn)
				}
			}
		}
	}
}
