package validate

import "strings"

// checkAITopology is pass 9: when at least one node has a langchain
// type prefix, check basic AI-workflow topology: an agent should have
// at least one chat-model companion node, any output-parser node
// should be accompanied by an agent, and tool nodes need their
// schema-bearing parameters filled in.
func checkAITopology(rawNodes []any) []Issue {
	var agents, chatModels, outputParsers int
	hasLangchainNode := false
	var toolIssues []Issue

	for i, rn := range rawNodes {
		node, ok := rn.(map[string]any)
		if !ok {
			continue
		}
		nodeType, _ := node["type"].(string)
		if !strings.Contains(nodeType, "langchain") {
			continue
		}
		hasLangchainNode = true
		switch {
		case strings.HasSuffix(nodeType, ".agent"):
			agents++
		case strings.Contains(nodeType, "lmChat"):
			chatModels++
		case strings.Contains(nodeType, "outputParser"):
			outputParsers++
		case strings.Contains(nodeType, "tool"):
			toolIssues = append(toolIssues, checkToolSchema(i, node, nodeType)...)
		}
	}

	if !hasLangchainNode {
		return nil
	}

	var issues []Issue
	if agents > 0 && chatModels == 0 {
		issues = append(issues, Issue{
			Code:     "AI_AGENT_MISSING_CHAT_MODEL",
			Severity: SeverityWarning,
			Message:  "an AI agent node is present with no chat-model node attached",
			Location: Location{Path: "nodes"},
		})
	}
	if outputParsers > 0 && agents == 0 {
		issues = append(issues, Issue{
			Code:     "AI_OUTPUT_PARSER_WITHOUT_AGENT",
			Severity: SeverityWarning,
			Message:  "an output-parser node is present with no agent node to attach to",
			Location: Location{Path: "nodes"},
		})
	}
	issues = append(issues, toolIssues...)
	return issues
}

// checkToolSchema validates the schema-bearing parameters of langchain
// tool nodes: a code tool needs a body, a workflow tool needs a target.
func checkToolSchema(i int, node map[string]any, nodeType string) []Issue {
	params, _ := node["parameters"].(map[string]any)
	if params == nil {
		return nil
	}
	switch {
	case strings.Contains(nodeType, "toolCode"):
		if code, _ := params["jsCode"].(string); strings.TrimSpace(code) == "" {
			return []Issue{{
				Code:     "AI_TOOL_MISSING_SCHEMA",
				Severity: SeverityWarning,
				Message:  "code tool node has an empty body",
				Location: Location{Path: nodePath(i) + ".parameters.jsCode", NodeIndex: intPtr(i), NodeType: nodeType},
			}}
		}
	case strings.Contains(nodeType, "toolWorkflow"):
		if _, ok := params["workflowId"]; !ok {
			return []Issue{{
				Code:     "AI_TOOL_MISSING_SCHEMA",
				Severity: SeverityWarning,
				Message:  "workflow tool node has no workflowId configured",
				Location: Location{Path: nodePath(i) + ".parameters.workflowId", NodeIndex: intPtr(i), NodeType: nodeType},
			}}
		}
	}
	return nil
}
