package validate

import (
	"strconv"
	"strings"

	"github.com/flowctl/flowctl/internal/catalog"
)

// nodeValidatorFunc is a node-type-specific validation pass: it
// inspects a node's already-visibility-filtered parameters and emits
// issues + suggestions an autofix patch could act on.
type nodeValidatorFunc func(i int, params map[string]any, def *catalog.NodeDefinition) []Issue

// nodeValidators dispatches the node-specific validators by node type.
var nodeValidators = map[string]nodeValidatorFunc{
	"n8n-nodes-base.slack":           validateSlack,
	"n8n-nodes-base.googleSheets":    validateGoogleSheets,
	"n8n-nodes-base.httpRequest":     validateHTTPRequest,
	"n8n-nodes-base.code":            validateCode,
	"n8n-nodes-base.openAi":          validateOpenAI,
	"n8n-nodes-base.mongoDb":         validateMongoDB,
	"n8n-nodes-base.webhook":         validateWebhook,
	"n8n-nodes-base.postgres":        validatePostgres,
	"n8n-nodes-base.mySql":           validateMySQL,
	"n8n-nodes-base.set":             validateSet,
	"@n8n/n8n-nodes-langchain.agent": validateLangchainAgent,
}

func validateSlack(i int, params map[string]any, def *catalog.NodeDefinition) []Issue {
	var issues []Issue
	if _, hasChannel := params["channel"]; hasChannel {
		issues = append(issues, Issue{
			Code:     "DEPRECATED_PROPERTY",
			Severity: SeverityWarning,
			Message:  "'channel' is deprecated in favor of 'channelId' (resourceLocator)",
			Location: Location{Path: "parameters.channel", NodeType: def.Type, NodeIndex: intPtr(i)},
			Suggestions: []Suggestion{
				{Value: "channelId", Confidence: 0.9, Reason: "v2 rename", AutoFixable: true},
			},
		})
	}
	return issues
}

func validateGoogleSheets(i int, params map[string]any, def *catalog.NodeDefinition) []Issue {
	var issues []Issue
	if _, hasSheetID := params["sheetId"]; hasSheetID {
		issues = append(issues, Issue{
			Code:     "DEPRECATED_PROPERTY",
			Severity: SeverityWarning,
			Message:  "'sheetId' is deprecated in favor of 'sheetName' (resourceLocator)",
			Location: Location{Path: "parameters.sheetId", NodeType: def.Type, NodeIndex: intPtr(i)},
		})
	}
	return issues
}

func validateHTTPRequest(i int, params map[string]any, def *catalog.NodeDefinition) []Issue {
	var issues []Issue
	url, _ := params["url"].(string)
	if url != "" && !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") && !isExpression(url) {
		issues = append(issues, Issue{
			Code:     "INVALID_URL",
			Severity: SeverityWarning,
			Message:  "url does not look like an http(s) URL or expression",
			Location: Location{Path: "parameters.url", NodeType: def.Type, NodeIndex: intPtr(i)},
		})
	}
	if opts, ok := params["options"].(map[string]any); ok {
		if _, legacy := opts["allowUnauthorizedCerts"]; legacy {
			issues = append(issues, Issue{
				Code:     "DEPRECATED_PROPERTY",
				Severity: SeverityWarning,
				Message:  "'options.allowUnauthorizedCerts' was renamed to 'options.ignoreSSLIssues' in v4",
				Location: Location{Path: "parameters.options.allowUnauthorizedCerts", NodeType: def.Type, NodeIndex: intPtr(i)},
			})
		}
	}
	if hp, ok := params["headerParameters"].(map[string]any); ok {
		if entries, ok := hp["parameters"].([]any); ok {
			for idx, raw := range entries {
				h, ok := raw.(map[string]any)
				if !ok {
					continue
				}
				name, _ := h["name"].(string)
				value, _ := h["value"].(string)
				if isSecretHeader(name) && value != "" && !isExpression(value) {
					issues = append(issues, Issue{
						Code:     "HARDCODED_CREDENTIAL",
						Severity: SeverityWarning,
						Message:  "header '" + name + "' carries a literal secret; use a credential reference or an expression",
						Location: Location{Path: "parameters.headerParameters.parameters[" + strconv.Itoa(idx) + "].value", NodeType: def.Type, NodeIndex: intPtr(i)},
					})
				}
			}
		}
	}
	return issues
}

func isSecretHeader(name string) bool {
	switch strings.ToLower(name) {
	case "authorization", "x-api-key", "api-key", "apikey":
		return true
	}
	return false
}

func validateCode(i int, params map[string]any, def *catalog.NodeDefinition) []Issue {
	var issues []Issue
	jsCode, _ := params["jsCode"].(string)
	if strings.TrimSpace(jsCode) == "" {
		issues = append(issues, Issue{
			Code:     "EMPTY_CODE_BODY",
			Severity: SeverityWarning,
			Message:  "code node has an empty script body",
			Location: Location{Path: "parameters.jsCode", NodeType: def.Type, NodeIndex: intPtr(i)},
		})
	}
	return issues
}

func validateOpenAI(i int, params map[string]any, def *catalog.NodeDefinition) []Issue {
	var issues []Issue
	if _, hasCreds := params["credentials"]; !hasCreds {
		issues = append(issues, Issue{
			Code:     "BEST_PRACTICE",
			Severity: SeverityWarning,
			Message:  "openAi node has no credentials configured",
			Location: Location{Path: nodePath(i), NodeType: def.Type, NodeIndex: intPtr(i)},
		})
	}
	return issues
}

func validateMongoDB(i int, params map[string]any, def *catalog.NodeDefinition) []Issue {
	var issues []Issue
	coll, _ := params["collection"].(string)
	if coll == "" {
		issues = append(issues, Issue{
			Code:     "MISSING_REQUIRED",
			Severity: SeverityError,
			Message:  "mongoDb node requires 'collection'",
			Location: Location{Path: "parameters.collection", NodeType: def.Type, NodeIndex: intPtr(i)},
		})
	}
	return issues
}

func validateWebhook(i int, params map[string]any, def *catalog.NodeDefinition) []Issue {
	var issues []Issue
	p, _ := params["path"].(string)
	if p == "" {
		issues = append(issues, Issue{
			Code:     "MISSING_REQUIRED",
			Severity: SeverityError,
			Message:  "webhook node requires 'path'",
			Location: Location{Path: "parameters.path", NodeType: def.Type, NodeIndex: intPtr(i)},
		})
	}
	if strings.Contains(p, " ") {
		issues = append(issues, Issue{
			Code:     "INVALID_WEBHOOK_PATH",
			Severity: SeverityWarning,
			Message:  "webhook path contains whitespace",
			Location: Location{Path: "parameters.path", NodeType: def.Type, NodeIndex: intPtr(i)},
		})
	}
	return issues
}

func validatePostgres(i int, params map[string]any, def *catalog.NodeDefinition) []Issue {
	var issues []Issue
	op, _ := params["operation"].(string)
	if op == "executeQuery" {
		if q, _ := params["query"].(string); strings.TrimSpace(q) == "" {
			issues = append(issues, Issue{
				Code:     "MISSING_REQUIRED",
				Severity: SeverityError,
				Message:  "postgres executeQuery requires a non-empty 'query'",
				Location: Location{Path: "parameters.query", NodeType: def.Type, NodeIndex: intPtr(i)},
			})
		}
	}
	return issues
}

func validateMySQL(i int, params map[string]any, def *catalog.NodeDefinition) []Issue {
	var issues []Issue
	if table, _ := params["table"].(string); table == "" {
		if op, _ := params["operation"].(string); op != "executeQuery" {
			issues = append(issues, Issue{
				Code:     "MISSING_REQUIRED",
				Severity: SeverityError,
				Message:  "mysql node requires 'table' for non-raw-query operations",
				Location: Location{Path: "parameters.table", NodeType: def.Type, NodeIndex: intPtr(i)},
			})
		}
	}
	return issues
}

func validateSet(i int, params map[string]any, def *catalog.NodeDefinition) []Issue {
	var issues []Issue
	if mode, _ := params["mode"].(string); mode == "" {
		issues = append(issues, Issue{
			Code:     "BEST_PRACTICE",
			Severity: SeverityInfo,
			Message:  "set node has no explicit 'mode'; behavior depends on server default",
			Location: Location{Path: "parameters.mode", NodeType: def.Type, NodeIndex: intPtr(i)},
		})
	}
	return issues
}

func validateLangchainAgent(i int, params map[string]any, def *catalog.NodeDefinition) []Issue {
	var issues []Issue
	if text, _ := params["text"].(string); strings.TrimSpace(text) == "" {
		if prompt, _ := params["promptType"].(string); prompt != "auto" {
			issues = append(issues, Issue{
				Code:     "MISSING_REQUIRED",
				Severity: SeverityWarning,
				Message:  "langchain agent node has no prompt text and promptType is not 'auto'",
				Location: Location{Path: "parameters.text", NodeType: def.Type, NodeIndex: intPtr(i)},
			})
		}
	}
	return issues
}
