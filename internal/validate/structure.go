package validate

// checkTopLevelShape is pass 1: reject non-objects (handled by the
// caller), require nodes (array) and connections (object, not array).
func checkTopLevelShape(doc map[string]any) []Issue {
	var issues []Issue

	rawNodes, hasNodes := doc["nodes"]
	if !hasNodes {
		issues = append(issues, Issue{
			Code:     "MISSING_FIELD",
			Severity: SeverityError,
			Message:  "workflow is missing required field 'nodes'",
			Location: Location{Path: "nodes"},
			Context:  map[string]any{"expected": "array"},
		})
	} else if _, ok := rawNodes.([]any); !ok {
		issues = append(issues, Issue{
			Code:     "INVALID_FIELD_TYPE",
			Severity: SeverityError,
			Message:  "workflow field 'nodes' must be an array",
			Location: Location{Path: "nodes"},
			Context:  map[string]any{"expected": "array"},
		})
	}

	rawConns, hasConns := doc["connections"]
	if !hasConns {
		issues = append(issues, Issue{
			Code:     "MISSING_FIELD",
			Severity: SeverityError,
			Message:  "workflow is missing required field 'connections'",
			Location: Location{Path: "connections"},
			Context:  map[string]any{"expected": "object"},
		})
	} else if _, ok := rawConns.(map[string]any); !ok {
		issues = append(issues, Issue{
			Code:     "INVALID_FIELD_TYPE",
			Severity: SeverityError,
			Message:  "workflow field 'connections' must be an object, not an array",
			Location: Location{Path: "connections"},
			Context:  map[string]any{"expected": "object"},
		})
	}

	return issues
}
