package validate

import (
	"strings"

	"github.com/flowctl/flowctl/internal/catalog"
)

// checkNativeParameters is pass 4: cross-reference a node's parameters
// against the catalog's required properties and visibility predicates.
func checkNativeParameters(i int, node map[string]any, def *catalog.NodeDefinition) []Issue {
	params, _ := node["parameters"].(map[string]any)
	if params == nil {
		params = map[string]any{}
	}
	opCtx := ExtractOperationContext(params)

	var issues []Issue
	for _, prop := range def.Properties {
		if !IsVisible(prop, def, params, opCtx) {
			continue
		}
		if !prop.Required {
			continue
		}
		val, present := params[prop.Name]
		if !present || isEmptyRequiredValue(val) {
			issues = append(issues, Issue{
				Code:     "MISSING_REQUIRED",
				Severity: SeverityError,
				Message:  "missing required property '" + prop.Name + "' for " + def.Type,
				Location: Location{Path: nodePath(i) + ".parameters." + prop.Name, NodeIndex: intPtr(i), NodeType: def.Type},
				Context:  map[string]any{"property": prop.Name, "displayName": prop.DisplayName},
			})
			continue
		}
		if prop.Type == "options" && len(prop.Options) > 0 {
			if s, ok := val.(string); ok && !validOption(prop.Options, s) {
				issues = append(issues, Issue{
					Code:              "INVALID_OPTION_VALUE",
					Severity:          SeverityError,
					Message:           "value " + s + " is not a valid option for '" + prop.Name + "'",
					Location:          Location{Path: nodePath(i) + ".parameters." + prop.Name, NodeIndex: intPtr(i), NodeType: def.Type},
					ValidAlternatives: optionNames(prop.Options),
				})
			}
		}
	}
	return issues
}

func isEmptyRequiredValue(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return true
	}
	return false
}

func validOption(options []catalog.OptionValue, value string) bool {
	for _, o := range options {
		if o.Value == value {
			return true
		}
	}
	return false
}

func optionNames(options []catalog.OptionValue) []string {
	out := make([]string, len(options))
	for i, o := range options {
		out[i] = o.Value
	}
	return out
}
