package apiserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flowctl/flowctl/internal/breaking"
	"github.com/flowctl/flowctl/internal/catalog"
	"github.com/flowctl/flowctl/internal/diff"
	"github.com/flowctl/flowctl/internal/workflow"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cat, err := catalog.NewMemoryCatalog()
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return NewServer(cat, breaking.New())
}

func TestHandleValidate_ReturnsIssues(t *testing.T) {
	srv := httptest.NewServer(testServer(t).Handler())
	defer srv.Close()

	body, _ := json.Marshal(map[string]any{
		"workflow": map[string]any{
			"nodes": []any{
				map[string]any{"name": "Hook", "type": "n8n-nodes-base.webhook", "typeVersion": 2, "parameters": map[string]any{}},
			},
			"connections": map[string]any{},
		},
		"profile": "strict",
	})

	resp, err := http.Post(srv.URL+"/v1/validate", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := result["Issues"]; !ok {
		t.Errorf("expected an Issues field in the response, got %v", result)
	}
}

func TestHandleDiff_AppliesOperations(t *testing.T) {
	srv := httptest.NewServer(testServer(t).Handler())
	defer srv.Close()

	reqBody := map[string]any{
		"workflow": &workflow.Workflow{
			Name:        "wf",
			Nodes:       []workflow.Node{{ID: "1", Name: "Hook", Type: "n8n-nodes-base.webhook", TypeVersion: 2, Parameters: map[string]any{}}},
			Connections: workflow.Connections{},
		},
		"operations": []diff.Operation{
			{Type: diff.TagUpdateName, Name: "renamed"},
		},
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(srv.URL+"/v1/diff", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result diff.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.Success {
		t.Errorf("expected success, got errors %v", result.Errors)
	}
	if result.Workflow.Name != "renamed" {
		t.Errorf("expected renamed workflow, got %q", result.Workflow.Name)
	}
}

func TestHandleAutofix_DryRunDoesNotMutate(t *testing.T) {
	srv := httptest.NewServer(testServer(t).Handler())
	defer srv.Close()

	reqBody := map[string]any{
		"workflow": &workflow.Workflow{
			Name:        "wf",
			Nodes:       []workflow.Node{{ID: "1", Name: "Hook", Type: "nodes-base.webhook", TypeVersion: 2, Parameters: map[string]any{}}},
			Connections: workflow.Connections{},
		},
		"apply": false,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(srv.URL+"/v1/autofix", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result autofixResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Applied {
		t.Error("expected a dry run to report Applied: false")
	}
	if result.Workflow != nil {
		t.Error("expected a dry run to omit the workflow field")
	}
	if len(result.Fixes) == 0 {
		t.Error("expected at least one proposed fix for a nodes-base. prefixed type")
	}
}

func TestHandleAgentCard_ListsThreeSkills(t *testing.T) {
	srv := httptest.NewServer(testServer(t).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/a2a/agent-card")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var raw bytes.Buffer
	if _, err := raw.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	body := raw.String()
	for _, skill := range []string{"validate", "diff", "autofix"} {
		if !bytes.Contains(raw.Bytes(), []byte(skill)) {
			t.Errorf("expected agent card to mention skill %q, got %s", skill, body)
		}
	}
}
