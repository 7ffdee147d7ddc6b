// Package sanitize normalizes a single node to the shape the target
// server expects: filter metadata defaults, per-condition ids, operator
// shape repair, and (separately) read-only key stripping before
// submission. Every rule here is idempotent.
package sanitize

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/flowctl/flowctl/internal/workflow"
)

var knownOperatorTypes = map[string]bool{
	"string": true, "number": true, "boolean": true,
	"dateTime": true, "array": true, "object": true,
}

var unaryOps = map[string]bool{
	"true": true, "false": true, "isEmpty": true, "isNotEmpty": true, "isNumeric": true,
}

// filterNodeMinVersion names the node types and typeVersions at or above
// which parameters.conditions is the filter-component shape this
// sanitizer normalizes (as opposed to the legacy flat-array shape).
var filterNodeMinVersion = map[string]float64{
	"n8n-nodes-base.if":     2.2,
	"n8n-nodes-base.switch": 3.2,
}

// SanitizeNode returns a normalized copy of n. It never mutates n's
// backing maps; callers receive a fresh Parameters tree.
func SanitizeNode(n workflow.Node) workflow.Node {
	minVer, isFilterType := filterNodeMinVersion[n.Type]
	if !isFilterType || n.TypeVersion < minVer {
		return n
	}
	if n.Parameters == nil {
		return n
	}

	out := n
	out.Parameters = deepCloneMap(n.Parameters)

	// An if node keeps its filter at parameters.conditions; a switch
	// node keeps one filter per rule under parameters.rules.values.
	if conditions, ok := out.Parameters["conditions"].(map[string]any); ok {
		sanitizeFilter(conditions)
	}
	if rules, ok := out.Parameters["rules"].(map[string]any); ok {
		if values, ok := rules["values"].([]any); ok {
			for _, rv := range values {
				rule, ok := rv.(map[string]any)
				if !ok {
					continue
				}
				if conditions, ok := rule["conditions"].(map[string]any); ok {
					sanitizeFilter(conditions)
				}
			}
		}
	}

	return out
}

func sanitizeFilter(conditions map[string]any) {
	options, ok := conditions["options"].(map[string]any)
	if !ok {
		options = map[string]any{}
	}
	setDefault(options, "version", 2)
	setDefault(options, "leftValue", "")
	setDefault(options, "caseSensitive", true)
	setDefault(options, "typeValidation", "strict")
	conditions["options"] = options

	if rawConds, ok := conditions["conditions"].([]any); ok {
		for i, rc := range rawConds {
			cond, ok := rc.(map[string]any)
			if !ok {
				continue
			}
			sanitizeCondition(cond)
			rawConds[i] = cond
		}
		conditions["conditions"] = rawConds
	}
}

func sanitizeCondition(cond map[string]any) {
	if id, ok := cond["id"].(string); !ok || id == "" {
		cond["id"] = newConditionID()
	}

	op, ok := cond["operator"].(map[string]any)
	if !ok {
		return
	}
	op = normalizeOperator(op)
	cond["operator"] = op
}

// normalizeOperator repairs the common {type: "<operation-name>"}
// mistake (missing "operation" field) and sets singleValue for unary
// operations only.
func normalizeOperator(op map[string]any) map[string]any {
	out := make(map[string]any, len(op))
	for k, v := range op {
		out[k] = v
	}

	typeVal, _ := out["type"].(string)
	_, hasOperation := out["operation"]

	if !hasOperation && typeVal != "" && isLowerCamel(typeVal) && !knownOperatorTypes[typeVal] {
		out["operation"] = typeVal
		out["type"] = inferDataType(typeVal)
	}

	opName, _ := out["operation"].(string)
	if unaryOps[opName] {
		out["singleValue"] = true
	} else {
		delete(out, "singleValue")
	}

	return out
}

func inferDataType(op string) string {
	switch op {
	case "true", "false", "isEmpty", "isNotEmpty":
		return "boolean"
	}
	lower := strings.ToLower(op)
	if strings.Contains(lower, "isnumeric") || strings.Contains(lower, "gt") ||
		strings.Contains(lower, "gte") || strings.Contains(lower, "lt") || strings.Contains(lower, "lte") {
		return "number"
	}
	if strings.HasPrefix(op, "after") || strings.HasPrefix(op, "before") {
		return "dateTime"
	}
	return "string"
}

// isLowerCamel reports whether s starts with a lowercase letter, the
// shape the operator-repair heuristic keys off of.
func isLowerCamel(s string) bool {
	if s == "" {
		return false
	}
	r := s[0]
	return r >= 'a' && r <= 'z'
}

func setDefault(m map[string]any, key string, value any) {
	if _, ok := m[key]; !ok {
		m[key] = value
	}
}

func newConditionID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func deepCloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCloneValue(v)
	}
	return out
}

func deepCloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCloneValue(e)
		}
		return out
	default:
		return v
	}
}
