package validate

import "github.com/flowctl/flowctl/internal/catalog"

// runEnhancedValidation is pass 6: filter catalog properties by mode,
// apply type/required checks to the visible subset, then dispatch to a
// node-specific validator when one exists for def.Type.
func runEnhancedValidation(i int, node map[string]any, def *catalog.NodeDefinition, mode Mode) []Issue {
	params, _ := node["parameters"].(map[string]any)
	if params == nil {
		params = map[string]any{}
	}
	opCtx := ExtractOperationContext(params)

	var issues []Issue
	for _, prop := range def.Properties {
		if !propertyInScope(prop, mode, opCtx) {
			continue
		}
		if !IsVisible(prop, def, params, opCtx) {
			continue
		}
		issues = append(issues, checkPropertyTypeAndRequired(i, def.Type, prop, params)...)
	}

	if fn, ok := nodeValidators[def.Type]; ok {
		issues = append(issues, fn(i, params, def)...)
	}

	return issues
}

// propertyInScope implements the validation-mode filter: minimal keeps
// required properties only; operation keeps properties relevant to the
// current resource/operation/action/mode context; full keeps
// everything (visibility is applied separately by the caller).
func propertyInScope(prop catalog.PropertyDefinition, mode Mode, opCtx OperationContext) bool {
	switch mode {
	case ModeMinimal:
		return prop.Required
	case ModeFull:
		return true
	default: // ModeOperation
		if prop.DisplayOptions == nil {
			return true
		}
		for key := range prop.DisplayOptions.Show {
			switch key {
			case "resource", "operation", "action", "mode":
				return true
			}
		}
		return prop.Required
	}
}

func checkPropertyTypeAndRequired(i int, nodeType string, prop catalog.PropertyDefinition, params map[string]any) []Issue {
	val, present := params[prop.Name]

	if prop.Required && (!present || isEmptyRequiredValue(val)) {
		return []Issue{{
			Code:     "MISSING_REQUIRED",
			Severity: SeverityError,
			Message:  "missing required property '" + prop.Name + "'",
			Location: Location{Path: "parameters." + prop.Name, NodeType: nodeType, NodeIndex: intPtr(i)},
		}}
	}
	if !present {
		return nil
	}

	var issues []Issue
	switch prop.Type {
	case "string":
		if _, ok := val.(string); !ok {
			issues = append(issues, typeMismatch(i, nodeType, prop, "string"))
		}
	case "number":
		if _, ok := val.(float64); !ok {
			issues = append(issues, typeMismatch(i, nodeType, prop, "number"))
		}
	case "boolean":
		if _, ok := val.(bool); !ok {
			issues = append(issues, typeMismatch(i, nodeType, prop, "boolean"))
		}
	case "options":
		if s, ok := val.(string); ok && len(prop.Options) > 0 && !validOption(prop.Options, s) {
			issues = append(issues, Issue{
				Code:              "INVALID_OPTION_VALUE",
				Severity:          SeverityError,
				Message:           "value " + s + " is not valid for '" + prop.Name + "'",
				Location:          Location{Path: "parameters." + prop.Name, NodeType: nodeType, NodeIndex: intPtr(i)},
				ValidAlternatives: optionNames(prop.Options),
			})
		}
	case "resourceLocator":
		if _, ok := val.(map[string]any); !ok {
			issues = append(issues, Issue{
				Code:     "RESOURCE_LOCATOR_STRUCTURAL",
				Severity: SeverityError,
				Message:  "'" + prop.Name + "' must be a resource-locator object",
				Location: Location{Path: "parameters." + prop.Name, NodeType: nodeType, NodeIndex: intPtr(i)},
			})
		}
	}
	return issues
}

func typeMismatch(i int, nodeType string, prop catalog.PropertyDefinition, expected string) Issue {
	return Issue{
		Code:     "INVALID_VALUE_TYPE",
		Severity: SeverityError,
		Message:  "'" + prop.Name + "' must be a " + expected,
		Location: Location{Path: "parameters." + prop.Name, NodeType: nodeType, NodeIndex: intPtr(i)},
	}
}
