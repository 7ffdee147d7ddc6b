package diff

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowctl/flowctl/internal/workflow"
)

// End-to-end: renaming a node rewrites both the connection source key
// and every inner target reference.
func TestApply_RenamePropagationEndToEnd(t *testing.T) {
	wf := &workflow.Workflow{
		Nodes: []workflow.Node{
			{
				ID: "1", Name: "A", Type: "n8n-nodes-base.webhook", TypeVersion: 2,
				Position: [2]float64{0, 0},
				Parameters: map[string]any{
					"path": "p", "httpMethod": "GET",
				},
			},
			{
				ID: "2", Name: "B", Type: "n8n-nodes-base.set", TypeVersion: 3.4,
				Position:   [2]float64{200, 0},
				Parameters: map[string]any{},
			},
		},
		Connections: workflow.Connections{
			"A": {"main": [][]workflow.ConnectionTarget{{{Node: "B", Type: "main", Index: 0}}}},
		},
	}

	eng := New()
	res := eng.Apply(wf, Request{Operations: []Operation{
		{Type: TagUpdateNode, NodeName: "A", Updates: map[string]any{"name": "Start"}},
	}})

	require.True(t, res.Success, "errors: %v", res.Errors)
	require.Len(t, res.Workflow.Nodes, 2)
	require.Equal(t, "Start", res.Workflow.Nodes[0].Name)

	targets := res.Workflow.Connections["Start"]["main"][0]
	require.Len(t, targets, 1)
	require.Equal(t, "B", targets[0].Node)
	require.Equal(t, "main", targets[0].Type)
	require.Equal(t, 0, targets[0].Index)

	_, hasOld := res.Workflow.Connections["A"]
	require.False(t, hasOld, "old source key must be gone after rename")
}
