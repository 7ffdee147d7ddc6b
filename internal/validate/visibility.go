package validate

import "github.com/flowctl/flowctl/internal/catalog"

// OperationContext is the {resource, operation, action, mode} tuple
// extracted from a node's parameters, used to gate which properties
// are "relevant to current context" during enhanced validation.
type OperationContext struct {
	Resource  string
	Operation string
	Action    string
	Mode      string
}

// ExtractOperationContext reads the four well-known context keys out
// of a node's parameters map.
func ExtractOperationContext(params map[string]any) OperationContext {
	get := func(key string) string {
		s, _ := params[key].(string)
		return s
	}
	return OperationContext{
		Resource:  get("resource"),
		Operation: get("operation"),
		Action:    get("action"),
		Mode:      get("mode"),
	}
}

// IsVisible reports whether prop is visible given the current
// parameter values and operation context: every show-key's resolved
// value must be in its allowed set, and every hide-key's resolved
// value must not be in its forbidden set. A key absent from params
// resolves to the referenced property's registered default; an absent
// default resolves to nil, which satisfies neither show nor hide.
func IsVisible(prop catalog.PropertyDefinition, def *catalog.NodeDefinition, params map[string]any, _ OperationContext) bool {
	if prop.DisplayOptions == nil {
		return true
	}
	resolve := func(key string) any {
		if v, ok := params[key]; ok {
			return v
		}
		if def != nil {
			for _, p := range def.Properties {
				if p.Name == key {
					return p.Default
				}
			}
		}
		return nil
	}
	for key, allowed := range prop.DisplayOptions.Show {
		if !containsAny(allowed, resolve(key)) {
			return false
		}
	}
	for key, forbidden := range prop.DisplayOptions.Hide {
		if containsAny(forbidden, resolve(key)) {
			return false
		}
	}
	return true
}

func containsAny(set []any, value any) bool {
	if value == nil {
		return false
	}
	for _, v := range set {
		if v == value {
			return true
		}
		// JSON numbers decode as float64; params values for booleans/strings
		// compare directly above, but allow int/float64 cross-comparison.
		if vf, ok := toFloat(v); ok {
			if valf, ok := toFloat(value); ok && vf == valf {
				return true
			}
		}
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	}
	return 0, false
}
