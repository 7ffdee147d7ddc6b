package diff

import (
	"strings"
	"testing"

	"github.com/flowctl/flowctl/internal/workflow"
)

func wfWithNodes(names ...string) *workflow.Workflow {
	wf := &workflow.Workflow{Connections: workflow.Connections{}}
	for _, n := range names {
		wf.Nodes = append(wf.Nodes, workflow.Node{
			ID:         workflow.NewNodeID(),
			Name:       n,
			Type:       "n8n-nodes-base.noOp",
			Parameters: map[string]any{},
		})
	}
	return wf
}

func TestApply_AddNode(t *testing.T) {
	wf := wfWithNodes("A")
	eng := New()

	res := eng.Apply(wf, Request{Operations: []Operation{
		{Type: TagAddNode, Node: &NodeValue{Name: "B", Type: "n8n-nodes-base.set"}},
	}})

	if !res.Success {
		t.Fatalf("expected success, errors: %v", res.Errors)
	}
	if len(res.Workflow.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(res.Workflow.Nodes))
	}
	if _, idx := res.Workflow.NodeByName("B"); idx < 0 {
		t.Fatalf("expected node B to exist")
	}
}

func TestApply_AddNode_RejectsNameCollision(t *testing.T) {
	wf := wfWithNodes("A")
	eng := New()
	res := eng.Apply(wf, Request{Operations: []Operation{
		{Type: TagAddNode, Node: &NodeValue{Name: "A", Type: "n8n-nodes-base.set"}},
	}})
	if res.Success {
		t.Fatalf("expected failure on name collision")
	}
}

func TestApply_AddNode_RejectsBareType(t *testing.T) {
	wf := wfWithNodes("A")
	eng := New()
	res := eng.Apply(wf, Request{Operations: []Operation{
		{Type: TagAddNode, Node: &NodeValue{Name: "B", Type: "set"}},
	}})
	if res.Success {
		t.Fatalf("expected failure for a type with no package prefix")
	}
}

func TestApply_UpdateNode_Rename_PropagatesToConnections(t *testing.T) {
	wf := wfWithNodes("A", "B")
	wf.Connections.Add("A", "main", 0, workflow.ConnectionTarget{Node: "B", Type: "main", Index: 0})
	eng := New()

	res := eng.Apply(wf, Request{Operations: []Operation{
		{Type: TagUpdateNode, NodeName: "A", Updates: map[string]any{"name": "Alpha"}},
	}})

	if !res.Success {
		t.Fatalf("expected success, errors: %v", res.Errors)
	}
	if _, ok := res.Workflow.Connections["Alpha"]; !ok {
		t.Fatalf("expected renamed source key 'Alpha' in connections")
	}
	if _, ok := res.Workflow.Connections["A"]; ok {
		t.Fatalf("expected old source key 'A' to be gone")
	}
}

func TestApply_UpdateNode_RejectsChangesKey(t *testing.T) {
	wf := wfWithNodes("A")
	eng := New()
	res := eng.Apply(wf, Request{Operations: []Operation{
		{Type: TagUpdateNode, NodeName: "A", Changes: map[string]any{"foo": "bar"}},
	}})
	if res.Success {
		t.Fatalf("expected failure when 'changes' is used instead of 'updates'")
	}
	if len(res.Errors) == 0 {
		t.Fatalf("expected an error message")
	}
	msg := res.Errors[0]
	if !strings.Contains(msg, "changes") || !strings.Contains(msg, "updates") {
		t.Fatalf("expected error to name both 'changes' and 'updates', got: %s", msg)
	}
}

func TestApply_UpdateNode_RenameRoundTrip(t *testing.T) {
	wf := wfWithNodes("A", "B")
	wf.Connections.Add("A", "main", 0, workflow.ConnectionTarget{Node: "B", Type: "main", Index: 0})
	eng := New()

	toB := eng.Apply(wf, Request{Operations: []Operation{
		{Type: TagUpdateNode, NodeName: "A", Updates: map[string]any{"name": "Alpha"}},
	}})
	if !toB.Success {
		t.Fatalf("rename A->Alpha failed: %v", toB.Errors)
	}

	back := eng.Apply(toB.Workflow, Request{Operations: []Operation{
		{Type: TagUpdateNode, NodeName: "Alpha", Updates: map[string]any{"name": "A"}},
	}})
	if !back.Success {
		t.Fatalf("rename Alpha->A failed: %v", back.Errors)
	}

	if _, ok := back.Workflow.Connections["A"]; !ok {
		t.Fatalf("expected connections keyed by 'A' again after round trip")
	}
	targets := back.Workflow.Connections["A"]["main"][0]
	if len(targets) != 1 || targets[0].Node != "B" {
		t.Fatalf("expected connection A->B preserved after round trip, got %+v", targets)
	}
}

func TestApply_ChainedRenames_PropagateInOperationOrder(t *testing.T) {
	wf := wfWithNodes("A", "B")
	wf.Connections.Add("A", "main", 0, workflow.ConnectionTarget{Node: "B", Type: "main", Index: 0})
	eng := New()

	// A takes the name C, then B takes A's old name. The connection
	// rewrite must follow operation order: C -> A, never a self-loop
	// C -> C.
	res := eng.Apply(wf, Request{Operations: []Operation{
		{Type: TagUpdateNode, NodeName: "A", Updates: map[string]any{"name": "C"}},
		{Type: TagUpdateNode, NodeName: "B", Updates: map[string]any{"name": "A"}},
	}})

	if !res.Success {
		t.Fatalf("expected success, errors: %v", res.Errors)
	}
	outputs, ok := res.Workflow.Connections["C"]
	if !ok {
		t.Fatalf("expected connections keyed by 'C', got %v", res.Workflow.Connections)
	}
	targets := outputs["main"][0]
	if len(targets) != 1 || targets[0].Node != "A" {
		t.Fatalf("expected C -> A after chained renames, got %v", targets)
	}
}

func TestApply_UpdateNode_RemovalsDeleteKeys(t *testing.T) {
	wf := wfWithNodes("A")
	wf.Nodes[0].Parameters = map[string]any{
		"options": map[string]any{"legacy": true, "keep": "yes"},
	}
	eng := New()

	res := eng.Apply(wf, Request{Operations: []Operation{
		{Type: TagUpdateNode, NodeName: "A", Removals: []string{"parameters.options.legacy"}},
	}})

	if !res.Success {
		t.Fatalf("expected success, errors: %v", res.Errors)
	}
	node, _ := res.Workflow.NodeByName("A")
	options := node.Parameters["options"].(map[string]any)
	if _, ok := options["legacy"]; ok {
		t.Errorf("expected 'legacy' to be deleted, got %v", options)
	}
	if options["keep"] != "yes" {
		t.Errorf("expected unrelated key preserved, got %v", options)
	}
}

func TestApply_UpdateNode_DottedPath(t *testing.T) {
	wf := wfWithNodes("A")
	eng := New()
	res := eng.Apply(wf, Request{Operations: []Operation{
		{Type: TagUpdateNode, NodeName: "A", Updates: map[string]any{"parameters.mode": "manual"}},
	}})
	if !res.Success {
		t.Fatalf("expected success, errors: %v", res.Errors)
	}
	node, _ := res.Workflow.NodeByName("A")
	if node.Parameters["mode"] != "manual" {
		t.Fatalf("expected parameters.mode set, got %v", node.Parameters)
	}
}

func TestApply_AddConnection_BranchAlias(t *testing.T) {
	wf := wfWithNodes("Yes", "No")
	wf.Nodes = append(wf.Nodes, workflow.Node{
		ID: workflow.NewNodeID(), Name: "Check", Type: "n8n-nodes-base.if", TypeVersion: 2.2,
		Parameters: map[string]any{},
	})
	eng := New()

	res := eng.Apply(wf, Request{Operations: []Operation{
		{Type: TagAddConnection, Source: "Check", Target: "Yes", Branch: "true"},
		{Type: TagAddConnection, Source: "Check", Target: "No", Branch: "false"},
	}})

	if !res.Success {
		t.Fatalf("expected success, errors: %v", res.Errors)
	}
	conns := res.Workflow.Connections["Check"]["main"]
	if len(conns) != 2 {
		t.Fatalf("expected 2 output slots, got %d", len(conns))
	}
	if conns[0][0].Node != "Yes" {
		t.Errorf("expected slot 0 -> Yes, got %v", conns[0])
	}
	if conns[1][0].Node != "No" {
		t.Errorf("expected slot 1 -> No, got %v", conns[1])
	}
}

func TestApply_AddConnection_GrowsSparseOutputArray(t *testing.T) {
	wf := wfWithNodes("Switch", "Target")
	eng := New()
	idx := 7
	res := eng.Apply(wf, Request{Operations: []Operation{
		{Type: TagAddConnection, Source: "Switch", Target: "Target", SourceIndex: &idx},
	}})
	if !res.Success {
		t.Fatalf("expected success, errors: %v", res.Errors)
	}
	outputs := res.Workflow.Connections["Switch"]["main"]
	if len(outputs) != 8 {
		t.Fatalf("expected output array length 8, got %d", len(outputs))
	}
	for i := 0; i < 7; i++ {
		if len(outputs[i]) != 0 {
			t.Errorf("expected empty slot at %d, got %v", i, outputs[i])
		}
	}
}

func TestApply_AddConnection_RejectsDuplicate(t *testing.T) {
	wf := wfWithNodes("A", "B")
	eng := New()
	ops := []Operation{
		{Type: TagAddConnection, Source: "A", Target: "B"},
		{Type: TagAddConnection, Source: "A", Target: "B"},
	}
	res := eng.Apply(wf, Request{Operations: ops})
	if res.Success {
		t.Fatalf("expected failure on duplicate connection")
	}
}

func TestApply_AddConnection_RejectsWrongParamNames(t *testing.T) {
	wf := wfWithNodes("A", "B")
	eng := New()
	res := eng.Apply(wf, Request{Operations: []Operation{
		{Type: TagAddConnection, SourceNodeID: "A", TargetNodeID: "B"},
	}})
	if res.Success {
		t.Fatalf("expected failure for sourceNodeId/targetNodeId keys")
	}
}

func TestApply_RemoveConnection_CollapsesEmptyContainers(t *testing.T) {
	wf := wfWithNodes("A", "B")
	wf.Connections.Add("A", "main", 0, workflow.ConnectionTarget{Node: "B", Type: "main", Index: 0})
	eng := New()
	res := eng.Apply(wf, Request{Operations: []Operation{
		{Type: TagRemoveConnection, Source: "A", Target: "B"},
	}})
	if !res.Success {
		t.Fatalf("expected success, errors: %v", res.Errors)
	}
	if _, ok := res.Workflow.Connections["A"]; ok {
		t.Errorf("expected source key 'A' to be removed once empty")
	}
}

func TestApply_RewireConnection(t *testing.T) {
	wf := wfWithNodes("A", "B", "C")
	wf.Connections.Add("A", "main", 0, workflow.ConnectionTarget{Node: "B", Type: "main", Index: 0})
	eng := New()
	res := eng.Apply(wf, Request{Operations: []Operation{
		{Type: TagRewireConnection, Source: "A", From: "B", To: "C"},
	}})
	if !res.Success {
		t.Fatalf("expected success, errors: %v", res.Errors)
	}
	outputs := res.Workflow.Connections["A"]["main"]
	if len(outputs) != 1 || len(outputs[0]) != 1 || outputs[0][0].Node != "C" {
		t.Fatalf("expected A -> C only, got %v", outputs)
	}
}

func TestApply_CleanStaleConnections_DryRun(t *testing.T) {
	wf := wfWithNodes("A", "B")
	wf.Connections["A"] = map[string][][]workflow.ConnectionTarget{
		"main": {{{Node: "B"}, {Node: "GONE"}}},
	}
	wf.Connections["GHOST"] = map[string][][]workflow.ConnectionTarget{
		"main": {{{Node: "A"}}},
	}
	eng := New()
	res := eng.Apply(wf, Request{Operations: []Operation{
		{Type: TagCleanStaleConnections, DryRun: true},
	}})
	if !res.Success {
		t.Fatalf("expected success, errors: %v", res.Errors)
	}
	// Workflow unchanged.
	if _, ok := res.Workflow.Connections["GHOST"]; !ok {
		t.Errorf("expected dry run to leave connections untouched")
	}
	got := applyCleanStaleConnections(wf.Clone(), Operation{DryRun: true})
	if got != 2 {
		t.Errorf("expected stale count 2, got %d", got)
	}
	if !strings.Contains(res.Message, "2 stale") {
		t.Errorf("expected dry-run count surfaced in message, got %q", res.Message)
	}
}

func TestApply_AddConnection_WarnsOnRawSourceIndexForIf(t *testing.T) {
	wf := wfWithNodes("Yes")
	wf.Nodes = append(wf.Nodes, workflow.Node{
		ID: workflow.NewNodeID(), Name: "Check", Type: "n8n-nodes-base.if", TypeVersion: 2.2,
		Parameters: map[string]any{},
	})
	eng := New()
	idx := 1
	res := eng.Apply(wf, Request{Operations: []Operation{
		{Type: TagAddConnection, Source: "Check", Target: "Yes", SourceIndex: &idx},
	}})
	if !res.Success {
		t.Fatalf("expected raw sourceIndex to still apply, errors: %v", res.Errors)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "branch") {
		t.Fatalf("expected a warning suggesting the branch alias, got %v", res.Warnings)
	}
	if got := res.Workflow.Connections["Check"]["main"][1][0].Node; got != "Yes" {
		t.Errorf("expected connection at output index 1, got %v", res.Workflow.Connections["Check"])
	}
}

func TestApply_CleanStaleConnections_Convergence(t *testing.T) {
	wf := wfWithNodes("A", "B")
	wf.Connections["A"] = map[string][][]workflow.ConnectionTarget{
		"main": {{{Node: "B"}, {Node: "GONE"}}},
	}
	eng := New()
	res1 := eng.Apply(wf, Request{Operations: []Operation{{Type: TagCleanStaleConnections}}})
	res2 := eng.Apply(res1.Workflow, Request{Operations: []Operation{{Type: TagCleanStaleConnections}}})
	if !res1.Success || !res2.Success {
		t.Fatalf("expected both passes to succeed")
	}
	count2 := applyCleanStaleConnections(res2.Workflow.Clone(), Operation{DryRun: true})
	if count2 != 0 {
		t.Errorf("expected second cleanup to be a no-op, got %d stale", count2)
	}
}

func TestApply_ActivateWorkflow_RejectsExecuteWorkflowTrigger(t *testing.T) {
	wf := &workflow.Workflow{Connections: workflow.Connections{}, Nodes: []workflow.Node{
		{ID: workflow.NewNodeID(), Name: "Trigger", Type: "n8n-nodes-base.executeWorkflowTrigger"},
	}}
	eng := New()
	res := eng.Apply(wf, Request{Operations: []Operation{{Type: TagActivateWorkflow}}})
	if res.Success {
		t.Fatalf("expected activation to be rejected")
	}
}

func TestApply_ActivateWorkflow_AcceptsWebhookTrigger(t *testing.T) {
	wf := &workflow.Workflow{Connections: workflow.Connections{}, Nodes: []workflow.Node{
		{ID: workflow.NewNodeID(), Name: "Trigger", Type: "n8n-nodes-base.webhook"},
	}}
	eng := New()
	res := eng.Apply(wf, Request{Operations: []Operation{{Type: TagActivateWorkflow}}})
	if !res.Success {
		t.Fatalf("expected activation to succeed, errors: %v", res.Errors)
	}
	if !res.ShouldActivate {
		t.Errorf("expected ShouldActivate flag set")
	}
}

func TestApply_ContinueOnError_CollectsFailuresIndependently(t *testing.T) {
	wf := wfWithNodes("A")
	eng := New()
	res := eng.Apply(wf, Request{ContinueOnError: true, Operations: []Operation{
		{Type: TagAddNode, Node: &NodeValue{Name: "B", Type: "n8n-nodes-base.set"}},
		{Type: TagRemoveNode, NodeName: "does-not-exist"},
	}})
	if res.Success {
		t.Fatalf("expected overall success=false when one op fails")
	}
	if len(res.Applied) != 1 {
		t.Fatalf("expected 1 applied op, got %v", res.Applied)
	}
	if len(res.Failed) != 1 || res.Failed[0] != 1 {
		t.Fatalf("expected op index 1 recorded as failed, got %v", res.Failed)
	}
	if _, idx := res.Workflow.NodeByName("B"); idx < 0 {
		t.Errorf("expected the successful addNode to still be applied")
	}
}

func TestApply_Atomic_AbortsOnFirstFailure(t *testing.T) {
	wf := wfWithNodes("A")
	eng := New()
	res := eng.Apply(wf, Request{Operations: []Operation{
		{Type: TagAddNode, Node: &NodeValue{Name: "B", Type: "n8n-nodes-base.set"}},
		{Type: TagRemoveNode, NodeName: "does-not-exist"},
	}})
	if res.Success {
		t.Fatalf("expected atomic failure")
	}
	if res.Workflow != nil {
		t.Errorf("expected no workflow returned on atomic failure")
	}
}

func TestApply_ReplaceConnections_ValidatesEndpoints(t *testing.T) {
	wf := wfWithNodes("A", "B")
	eng := New()
	res := eng.Apply(wf, Request{Operations: []Operation{
		{Type: TagReplaceConnections, Connections: map[string]map[string][][]ConnectionTargetValue{
			"A": {"main": {{{Node: "NOPE", Type: "main", Index: 0}}}},
		}},
	}})
	if res.Success {
		t.Fatalf("expected failure for unknown target in replaceConnections")
	}
}

func TestApply_UpdateSettings_ShallowMerges(t *testing.T) {
	wf := wfWithNodes("A")
	wf.Settings = map[string]any{"timezone": "UTC", "saveManualExecutions": true}
	eng := New()
	res := eng.Apply(wf, Request{Operations: []Operation{
		{Type: TagUpdateSettings, Settings: map[string]any{"timezone": "America/New_York"}},
	}})
	if !res.Success {
		t.Fatalf("expected success, errors: %v", res.Errors)
	}
	if res.Workflow.Settings["timezone"] != "America/New_York" {
		t.Errorf("expected timezone overwritten")
	}
	if res.Workflow.Settings["saveManualExecutions"] != true {
		t.Errorf("expected unrelated setting preserved")
	}
}

func TestApply_AddTag_Idempotent(t *testing.T) {
	wf := wfWithNodes("A")
	eng := New()
	res := eng.Apply(wf, Request{Operations: []Operation{
		{Type: TagAddTag, Tag_: "prod"},
		{Type: TagAddTag, Tag_: "prod"},
	}})
	if !res.Success {
		t.Fatalf("expected success, errors: %v", res.Errors)
	}
	if len(res.Workflow.Tags) != 1 {
		t.Fatalf("expected exactly one 'prod' tag, got %v", res.Workflow.Tags)
	}
}
