package validate

import "strings"

// checkNodeStructure is pass 2: per-node structural checks (type,
// typeVersion, position, parameters required; name missing is only a
// warning since the server auto-assigns one).
func checkNodeStructure(i int, node map[string]any, suggestions map[string][]Suggestion) []Issue {
	var issues []Issue
	path := nodePath(i)

	if _, ok := node["name"].(string); !ok {
		issues = append(issues, Issue{
			Code:     "MISSING_NODE_NAME",
			Severity: SeverityWarning,
			Message:  "node has no name; the server will auto-assign one",
			Location: Location{Path: path, NodeIndex: intPtr(i)},
		})
	}

	nodeType, hasType := node["type"].(string)
	if !hasType || nodeType == "" {
		issues = append(issues, Issue{
			Code:     "MISSING_NODE_TYPE",
			Severity: SeverityError,
			Message:  "node is missing required field 'type'",
			Location: Location{Path: path + ".type", NodeIndex: intPtr(i)},
		})
	} else {
		issues = append(issues, checkNodeType(i, nodeType, suggestions)...)
	}

	if tv, ok := node["typeVersion"]; ok {
		if _, isNum := tv.(float64); !isNum {
			issues = append(issues, Issue{
				Code:     "INVALID_FIELD_TYPE",
				Severity: SeverityError,
				Message:  "node field 'typeVersion' must be a number",
				Location: Location{Path: path + ".typeVersion", NodeIndex: intPtr(i)},
			})
		}
	} else {
		issues = append(issues, Issue{
			Code:     "MISSING_FIELD",
			Severity: SeverityError,
			Message:  "node is missing required field 'typeVersion'",
			Location: Location{Path: path + ".typeVersion", NodeIndex: intPtr(i)},
		})
	}

	if pos, ok := node["position"].([]any); !ok || len(pos) != 2 {
		issues = append(issues, Issue{
			Code:     "INVALID_FIELD_TYPE",
			Severity: SeverityError,
			Message:  "node field 'position' must be a two-element array [x, y]",
			Location: Location{Path: path + ".position", NodeIndex: intPtr(i)},
		})
	}

	if _, ok := node["parameters"].(map[string]any); !ok {
		issues = append(issues, Issue{
			Code:     "MISSING_FIELD",
			Severity: SeverityError,
			Message:  "node is missing required field 'parameters'",
			Location: Location{Path: path + ".parameters", NodeIndex: intPtr(i)},
		})
	}

	return issues
}

func checkNodeType(i int, nodeType string, suggestions map[string][]Suggestion) []Issue {
	path := nodePath(i) + ".type"

	if strings.HasPrefix(nodeType, "nodes-base.") {
		corrected := "n8n-nodes-base." + strings.TrimPrefix(nodeType, "nodes-base.")
		return []Issue{{
			Code:     "DEPRECATED_NODE_TYPE_PREFIX",
			Severity: SeverityWarning,
			Message:  "node type " + nodeType + " uses the deprecated 'nodes-base.' prefix",
			Location: Location{Path: path, NodeIndex: intPtr(i), NodeType: nodeType},
			Hint:     "did you mean " + corrected + "?",
			Suggestions: []Suggestion{
				{Value: corrected, Confidence: 0.95, Reason: "prefix correction", AutoFixable: true},
			},
		}}
	}

	if !strings.Contains(nodeType, ".") {
		return []Issue{{
			Code:     "INVALID_NODE_TYPE_PREFIX",
			Severity: SeverityWarning,
			Message:  "node type " + nodeType + " has no package prefix",
			Location: Location{Path: path, NodeIndex: intPtr(i), NodeType: nodeType},
			Hint:     "expected a form like \"n8n-nodes-base.<localName>\"",
		}}
	}

	if sugg, ok := suggestions[nodeType]; ok && len(sugg) > 0 {
		return []Issue{{
			Code:        "UNKNOWN_NODE_TYPE",
			Severity:    SeverityError,
			Message:     "unknown node type " + nodeType,
			Location:    Location{Path: path, NodeIndex: intPtr(i), NodeType: nodeType},
			Suggestions: sugg,
		}}
	}

	return nil
}

// externalServiceTypes call out to a remote service and deserve an
// error-handling recommendation. Info severity means only the strict
// profile surfaces it.
var externalServiceTypes = map[string]bool{
	"n8n-nodes-base.httpRequest":  true,
	"n8n-nodes-base.slack":        true,
	"n8n-nodes-base.googleSheets": true,
	"n8n-nodes-base.postgres":     true,
	"n8n-nodes-base.mySql":        true,
	"n8n-nodes-base.mongoDb":      true,
	"n8n-nodes-base.openAi":       true,
}

func checkErrorHandling(i int, node map[string]any) []Issue {
	nodeType, _ := node["type"].(string)
	if !externalServiceTypes[nodeType] {
		return nil
	}
	if _, ok := node["onError"]; ok {
		return nil
	}
	if v, ok := node["continueOnFail"].(bool); ok && v {
		return nil
	}
	if v, ok := node["retryOnFail"].(bool); ok && v {
		return nil
	}
	return []Issue{{
		Code:     "ERROR_HANDLING_RECOMMENDATION",
		Severity: SeverityInfo,
		Message:  nodeType + " calls an external service; consider setting onError or retryOnFail",
		Location: Location{Path: nodePath(i), NodeIndex: intPtr(i), NodeType: nodeType},
	}}
}
