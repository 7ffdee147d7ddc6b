package validate

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/flowctl/flowctl/internal/breaking"
	"github.com/flowctl/flowctl/internal/catalog"
)

func testCatalog(t *testing.T) catalog.Catalog {
	t.Helper()
	cat, err := catalog.NewMemoryCatalog()
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}
	return cat
}

func TestValidate_RejectsNonObjectRoot(t *testing.T) {
	res := Validate(context.Background(), []any{}, NewOptions(), testCatalog(t), breaking.New())
	if res.Valid {
		t.Fatalf("expected invalid for a non-object root")
	}
}

func TestValidate_MissingNodesField(t *testing.T) {
	doc := map[string]any{"connections": map[string]any{}}
	res := Validate(context.Background(), doc, NewOptions(), testCatalog(t), breaking.New())
	if res.Valid {
		t.Fatalf("expected invalid when 'nodes' is missing")
	}
	found := false
	for _, is := range res.Issues {
		if is.Code == "MISSING_FIELD" && is.Location.Path == "nodes" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a MISSING_FIELD issue for 'nodes', got %+v", res.Issues)
	}
}

func TestValidate_ConnectionsMustBeObjectNotArray(t *testing.T) {
	doc := map[string]any{
		"nodes":       []any{},
		"connections": []any{},
	}
	res := Validate(context.Background(), doc, NewOptions(), testCatalog(t), breaking.New())
	if res.Valid {
		t.Fatalf("expected invalid when 'connections' is an array")
	}
}

func TestValidate_NeverMutatesInput(t *testing.T) {
	doc := map[string]any{
		"nodes": []any{
			map[string]any{
				"name":        "X",
				"type":        "nodes-base.webhook",
				"typeVersion": float64(2),
				"position":    []any{float64(0), float64(0)},
				"parameters":  map[string]any{},
			},
		},
		"connections": map[string]any{},
	}
	before, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal before: %v", err)
	}

	Validate(context.Background(), doc, NewOptions(), testCatalog(t), breaking.New())

	after, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal after: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("Validate mutated its input document\nbefore: %s\nafter:  %s", before, after)
	}
}

func TestValidate_DeprecatedTypePrefixSuggestion(t *testing.T) {
	doc := map[string]any{
		"nodes": []any{
			map[string]any{
				"name":        "X",
				"type":        "nodes-base.webhook",
				"typeVersion": float64(2),
				"position":    []any{float64(0), float64(0)},
				"parameters":  map[string]any{},
			},
		},
		"connections": map[string]any{},
	}
	opts := NewOptions()
	opts.Profile = ProfileStrict
	res := Validate(context.Background(), doc, opts, testCatalog(t), breaking.New())

	var found *Issue
	for i := range res.Issues {
		if res.Issues[i].Code == "DEPRECATED_NODE_TYPE_PREFIX" {
			found = &res.Issues[i]
		}
	}
	if found == nil {
		t.Fatalf("expected a DEPRECATED_NODE_TYPE_PREFIX issue, got %+v", res.Issues)
	}
	if found.Severity != SeverityWarning {
		t.Errorf("expected warning severity, got %v", found.Severity)
	}
	if found.Location.Path != "nodes[0].type" {
		t.Errorf("expected path nodes[0].type, got %v", found.Location.Path)
	}
	if len(found.Suggestions) != 1 || found.Suggestions[0].Confidence != 0.95 {
		t.Fatalf("expected one suggestion with confidence 0.95, got %+v", found.Suggestions)
	}
	if !found.Suggestions[0].AutoFixable {
		t.Errorf("expected the suggestion to be auto-fixable")
	}
	if found.Suggestions[0].Value != "n8n-nodes-base.webhook" {
		t.Errorf("expected corrected value n8n-nodes-base.webhook, got %v", found.Suggestions[0].Value)
	}
}

func TestValidate_UnknownConnectionReference(t *testing.T) {
	doc := map[string]any{
		"nodes": []any{
			map[string]any{
				"name":        "A",
				"type":        "n8n-nodes-base.noOp",
				"typeVersion": float64(1),
				"position":    []any{float64(0), float64(0)},
				"parameters":  map[string]any{},
			},
		},
		"connections": map[string]any{
			"A": map[string]any{
				"main": []any{
					[]any{map[string]any{"node": "Missing", "type": "main", "index": float64(0)}},
				},
			},
		},
	}
	opts := NewOptions()
	opts.Profile = ProfileStrict
	res := Validate(context.Background(), doc, opts, testCatalog(t), breaking.New())
	if res.Valid {
		t.Fatalf("expected invalid for a dangling connection target")
	}
	found := false
	for _, is := range res.Issues {
		if is.Code == "UNKNOWN_CONNECTION_TARGET" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an UNKNOWN_CONNECTION_TARGET issue, got %+v", res.Issues)
	}
}

func TestValidate_ConnectionNamesCompareNormalized(t *testing.T) {
	doc := map[string]any{
		"nodes": []any{
			map[string]any{
				"name":        "A",
				"type":        "n8n-nodes-base.noOp",
				"typeVersion": float64(1),
				"position":    []any{float64(0), float64(0)},
				"parameters":  map[string]any{},
			},
			map[string]any{
				"name":        "B",
				"type":        "n8n-nodes-base.noOp",
				"typeVersion": float64(1),
				"position":    []any{float64(0), float64(0)},
				"parameters":  map[string]any{},
			},
		},
		// Whitespace variants of real node names must resolve: name
		// lookups normalize both sides.
		"connections": map[string]any{
			" A ": map[string]any{
				"main": []any{
					[]any{map[string]any{"node": "  B", "type": "main", "index": float64(0)}},
				},
			},
		},
	}
	opts := NewOptions()
	opts.Profile = ProfileStrict
	res := Validate(context.Background(), doc, opts, testCatalog(t), breaking.New())
	for _, is := range res.Issues {
		if is.Code == "UNKNOWN_CONNECTION_SOURCE" || is.Code == "UNKNOWN_CONNECTION_TARGET" {
			t.Errorf("expected no dangling-reference issue for normalization-equivalent names, got %+v", is)
		}
	}
}

func TestValidate_EmptyRootOptionsOnFilterNode(t *testing.T) {
	doc := map[string]any{
		"nodes": []any{
			map[string]any{
				"name":        "Check",
				"type":        "n8n-nodes-base.if",
				"typeVersion": float64(2.2),
				"position":    []any{float64(0), float64(0)},
				"parameters":  map[string]any{"options": map[string]any{}},
			},
		},
		"connections": map[string]any{},
	}
	opts := NewOptions()
	opts.Profile = ProfileStrict
	res := Validate(context.Background(), doc, opts, testCatalog(t), breaking.New())
	if res.Valid {
		t.Fatalf("expected invalid for empty root options on a filter node")
	}
}

func TestValidate_ExpressionMissingPrefix(t *testing.T) {
	doc := map[string]any{
		"nodes": []any{
			map[string]any{
				"name":        "Set",
				"type":        "n8n-nodes-base.set",
				"typeVersion": float64(3),
				"position":    []any{float64(0), float64(0)},
				"parameters":  map[string]any{"value": "$json.foo"},
			},
		},
		"connections": map[string]any{},
	}
	opts := NewOptions()
	opts.Profile = ProfileStrict
	res := Validate(context.Background(), doc, opts, testCatalog(t), breaking.New())
	found := false
	for _, is := range res.Issues {
		if is.Code == "EXPRESSION_MISSING_PREFIX" {
			found = true
			if is.CorrectedValue != "=$json.foo" {
				t.Errorf("expected corrected value with leading '=', got %v", is.CorrectedValue)
			}
		}
	}
	if !found {
		t.Errorf("expected an EXPRESSION_MISSING_PREFIX issue, got %+v", res.Issues)
	}
}

func TestValidate_SourceLocationEnrichment(t *testing.T) {
	raw := []byte(`{
  "nodes": [
    {"name": "X", "type": "nodes-base.webhook", "typeVersion": 2, "position": [0,0], "parameters": {}}
  ],
  "connections": {}
}`)
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	opts := NewOptions()
	opts.RawSource = raw
	opts.Profile = ProfileStrict
	res := Validate(context.Background(), doc, opts, testCatalog(t), breaking.New())

	found := false
	for _, is := range res.Issues {
		if is.Code == "DEPRECATED_NODE_TYPE_PREFIX" {
			found = true
			if is.SourceLocation == nil {
				t.Fatalf("expected a source location to be attached")
			}
			if is.SourceSnippet == "" {
				t.Errorf("expected a non-empty snippet")
			}
		}
	}
	if !found {
		t.Fatalf("expected to find the deprecated-prefix issue")
	}
}

func TestValidate_StrictSurfacesCredentialAndErrorHandlingIssues(t *testing.T) {
	doc := map[string]any{
		"nodes": []any{
			map[string]any{
				"name":        "Call",
				"type":        "n8n-nodes-base.httpRequest",
				"typeVersion": float64(4.2),
				"position":    []any{float64(0), float64(0)},
				"parameters": map[string]any{
					"url": "https://api.example.com",
					"headerParameters": map[string]any{
						"parameters": []any{
							map[string]any{"name": "Authorization", "value": "Bearer sk-live-123"},
						},
					},
				},
			},
		},
		"connections": map[string]any{},
	}

	opts := NewOptions()
	opts.Enhanced = true
	opts.Profile = ProfileStrict
	res := Validate(context.Background(), doc, opts, testCatalog(t), breaking.New())

	var foundCred, foundErrHandling bool
	for _, is := range res.Issues {
		switch is.Code {
		case "HARDCODED_CREDENTIAL":
			foundCred = true
		case "ERROR_HANDLING_RECOMMENDATION":
			foundErrHandling = true
		}
	}
	if !foundCred {
		t.Errorf("expected a HARDCODED_CREDENTIAL warning under strict, got %+v", res.Issues)
	}
	if !foundErrHandling {
		t.Errorf("expected an ERROR_HANDLING_RECOMMENDATION under strict, got %+v", res.Issues)
	}

	// The runtime profile drops both.
	opts.Profile = ProfileRuntime
	res = Validate(context.Background(), doc, opts, testCatalog(t), breaking.New())
	for _, is := range res.Issues {
		if is.Code == "HARDCODED_CREDENTIAL" || is.Code == "ERROR_HANDLING_RECOMMENDATION" {
			t.Errorf("expected %s to be filtered under runtime", is.Code)
		}
	}
}

func TestValidate_UnknownTypeWithSuggestionInvalidUnderDefaultProfile(t *testing.T) {
	doc := map[string]any{
		"nodes": []any{
			map[string]any{
				"name":        "X",
				"type":        "n8n-nodes-base.webhok",
				"typeVersion": float64(2),
				"position":    []any{float64(0), float64(0)},
				"parameters":  map[string]any{},
			},
		},
		"connections": map[string]any{},
	}
	opts := NewOptions()
	opts.NodeSuggestions = map[string][]Suggestion{
		"n8n-nodes-base.webhok": {{Value: "n8n-nodes-base.webhook", Confidence: 0.95, AutoFixable: true}},
	}
	res := Validate(context.Background(), doc, opts, testCatalog(t), breaking.New())
	if res.Valid {
		t.Fatalf("expected an unknown type with a suggestion to fail validation under the default profile")
	}
}

func TestFilterByProfile_MinimalDropsSuggestions(t *testing.T) {
	issues := []Issue{
		{Code: "MISSING_REQUIRED", Severity: SeverityError},
		{Code: "INVALID_OPTION_VALUE", Severity: SeverityError},
		{Code: "DEPRECATED_PROPERTY", Severity: SeverityWarning},
	}
	out := FilterByProfile(issues, ProfileMinimal)
	if len(out) != 2 {
		t.Fatalf("expected 2 issues kept, got %d: %+v", len(out), out)
	}
}

func TestFilterByProfile_StrictKeepsEverything(t *testing.T) {
	issues := []Issue{
		{Code: "A", Severity: SeverityInfo},
		{Code: "B", Severity: SeverityWarning},
		{Code: "C", Severity: SeverityError},
	}
	out := FilterByProfile(issues, ProfileStrict)
	if len(out) != 3 {
		t.Fatalf("expected all issues kept under strict profile, got %d", len(out))
	}
}
