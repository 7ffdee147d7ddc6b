package validate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/flowctl/flowctl/internal/catalog"
)

var templateRef = regexp.MustCompile(`\{\{.*?\}\}`)

var contextPrefixes = []string{"$json", "$node", "$input", "$workflow"}

// isExpression reports whether a string parameter value is an
// n8n-style expression: it starts with '=' or contains a {{...}} block.
func isExpression(s string) bool {
	return strings.HasPrefix(s, "=") || templateRef.MatchString(s)
}

// checkExpressions is pass 5: expression-format validation over every
// string parameter, plus the resourceLocator structural rule and the
// expr-lang syntax-check addition.
func checkExpressions(i int, node map[string]any, def *catalog.NodeDefinition) []Issue {
	params, _ := node["parameters"].(map[string]any)
	if params == nil {
		return nil
	}
	var issues []Issue
	nodeType, _ := node["type"].(string)

	walkParams(params, nodePath(i)+".parameters", func(path string, key string, value any) {
		isResourceLocatorField := def != nil && def.IsResourceLocatorField[key]

		switch v := value.(type) {
		case string:
			if !isExpression(v) {
				if referencesWorkflowContext(v) {
					issues = append(issues, Issue{
						Code:           "EXPRESSION_MISSING_PREFIX",
						Severity:       SeverityError,
						Message:        "value references workflow context but is missing the leading '='",
						Location:       Location{Path: path, NodeIndex: intPtr(i), NodeType: nodeType},
						IssueType:      "missing_prefix",
						CurrentValue:   v,
						CorrectedValue: "=" + v,
						Confidence:     0.9,
					})
				}
				if isResourceLocatorField {
					issues = append(issues, Issue{
						Code:           "RESOURCE_LOCATOR_STRUCTURAL",
						Severity:       SeverityError,
						Message:        "field must be a resource-locator object {mode, value}, not a plain string",
						Location:       Location{Path: path, NodeIndex: intPtr(i), NodeType: nodeType},
						IssueType:      "resource_locator_shape",
						CurrentValue:   v,
						CorrectedValue: map[string]any{"mode": "list", "value": v},
						Confidence:     0.7,
					})
				}
				return
			}
			issues = append(issues, checkExpressionSyntax(path, i, nodeType, v)...)
		case map[string]any:
			if isResourceLocatorField {
				if _, hasMode := v["mode"]; !hasMode {
					issues = append(issues, Issue{
						Code:      "RESOURCE_LOCATOR_MISSING_MODE",
						Severity:  SeverityError,
						Message:   "resource-locator object is missing 'mode'",
						Location:  Location{Path: path, NodeIndex: intPtr(i), NodeType: nodeType},
						IssueType: "resource_locator_shape",
					})
				}
				if _, hasValue := v["value"]; !hasValue {
					issues = append(issues, Issue{
						Code:      "RESOURCE_LOCATOR_MISSING_VALUE",
						Severity:  SeverityError,
						Message:   "resource-locator object is missing 'value'",
						Location:  Location{Path: path, NodeIndex: intPtr(i), NodeType: nodeType},
						IssueType: "resource_locator_shape",
					})
				}
			}
		}
	})

	return issues
}

func referencesWorkflowContext(s string) bool {
	for _, p := range contextPrefixes {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// checkExpressionSyntax strips template markers and runs expr.Compile
// as a best-effort syntax hint. n8n expressions are a superset of
// plain JS that expr cannot fully parse, so a compile failure is only
// ever a warning, never an error.
func checkExpressionSyntax(path string, i int, nodeType, value string) []Issue {
	body := strings.TrimPrefix(value, "=")
	body = templateRef.ReplaceAllString(body, "")
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}
	if _, err := expr.Compile(body); err != nil {
		return []Issue{{
			Code:      "EXPRESSION_SYNTAX_ERROR",
			Severity:  SeverityWarning,
			Message:   "expression may not be valid: " + err.Error(),
			Location:  Location{Path: path, NodeIndex: intPtr(i), NodeType: nodeType},
			IssueType: "syntax_hint",
			Hint:      "this is a best-effort syntax check; n8n expressions support constructs expr cannot parse",
		}}
	}
	return nil
}

// walkParams visits every keyed value under params, calling fn with its
// dotted path, its own key, and its value. It recurses into nested maps
// and into maps held in arrays; other array elements are not visited.
func walkParams(m map[string]any, prefix string, fn func(path, key string, value any)) {
	for k, v := range m {
		path := prefix + "." + k
		fn(path, k, v)
		if child, ok := v.(map[string]any); ok {
			walkParams(child, path, fn)
		}
		if arr, ok := v.([]any); ok {
			for idx, elem := range arr {
				if child, ok := elem.(map[string]any); ok {
					walkParams(child, path+"["+strconv.Itoa(idx)+"]", fn)
				}
			}
		}
	}
}
