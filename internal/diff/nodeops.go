package diff

import (
	"fmt"
	"strings"

	"github.com/flowctl/flowctl/internal/names"
	"github.com/flowctl/flowctl/internal/sanitize"
	"github.com/flowctl/flowctl/internal/workflow"
)

func applyAddNode(wf *workflow.Workflow, op Operation) error {
	if op.Node == nil {
		return fmt.Errorf("addNode requires a node value")
	}
	nv := op.Node

	if !strings.Contains(nv.Type, ".") {
		return fmt.Errorf("invalid type %q: node type must contain a package prefix, e.g. \"n8n-nodes-base.set\"", nv.Type)
	}
	if strings.HasPrefix(nv.Type, "nodes-base.") {
		corrected := "n8n-nodes-base." + strings.TrimPrefix(nv.Type, "nodes-base.")
		return fmt.Errorf("invalid type %q: did you mean %q?", nv.Type, corrected)
	}
	if nameCollides(wf, nv.Name, -1) {
		return fmt.Errorf("name collision: a node named %q already exists (after whitespace normalization)", names.Normalize(nv.Name))
	}

	id := nv.ID
	if id == "" {
		id = workflow.NewNodeID()
	}

	n := workflow.Node{
		ID:               id,
		Name:             nv.Name,
		Type:             nv.Type,
		TypeVersion:      nv.TypeVersion,
		Position:         nv.Position,
		Parameters:       nv.Parameters,
		Disabled:         nv.Disabled,
		Notes:            nv.Notes,
		NotesInFlow:      nv.NotesInFlow,
		ContinueOnFail:   nv.ContinueOnFail,
		OnError:          nv.OnError,
		RetryOnFail:      nv.RetryOnFail,
		MaxTries:         nv.MaxTries,
		WaitBetweenTries: nv.WaitBetweenTries,
		AlwaysOutputData: nv.AlwaysOutputData,
		ExecuteOnce:      nv.ExecuteOnce,
	}
	if nv.Credentials != nil {
		n.Credentials = make(map[string]workflow.CredentialRef, len(nv.Credentials))
		for credType, ref := range nv.Credentials {
			id, _ := ref["id"].(string)
			name, _ := ref["name"].(string)
			n.Credentials[credType] = workflow.CredentialRef{ID: id, Name: name}
		}
	}
	if n.Parameters == nil {
		n.Parameters = map[string]any{}
	}

	n = sanitize.SanitizeNode(n)
	wf.Nodes = append(wf.Nodes, n)
	return nil
}

func applyRemoveNode(wf *workflow.Workflow, op Operation) error {
	_, idx, err := findNode(wf, op.NodeID, op.NodeName)
	if err != nil {
		return err
	}
	removed := wf.Nodes[idx]
	wf.Nodes = append(wf.Nodes[:idx], wf.Nodes[idx+1:]...)

	for source, byLabel := range wf.Connections {
		for label := range byLabel {
			wf.Connections.Remove(source, label, removed.Name)
		}
	}
	delete(wf.Connections, removed.Name)
	return nil
}

func applyUpdateNode(wf *workflow.Workflow, op Operation, renames *[]rename) error {
	if op.Updates == nil && len(op.Removals) == 0 {
		if op.Changes != nil {
			return fmt.Errorf("updateNode received key %q instead of %q; expected shape: {\"updates\": {\"<dotted.path>\": <value>}}", "changes", "updates")
		}
		return fmt.Errorf("updateNode requires an 'updates' map of dotted-path -> value")
	}

	node, idx, err := findNode(wf, op.NodeID, op.NodeName)
	if err != nil {
		return err
	}

	if rawName, ok := op.Updates["name"]; ok {
		newName, _ := rawName.(string)
		if newName != "" && !names.Equal(newName, node.Name) {
			if nameCollides(wf, newName, idx) {
				return fmt.Errorf("name collision: a node named %q already exists (after whitespace normalization)", names.Normalize(newName))
			}
			*renames = append(*renames, rename{from: node.Name, to: newName})
		}
	}

	target := asGenericNode(*node)
	for path, value := range op.Updates {
		setDottedPath(target, path, value)
	}
	for _, path := range op.Removals {
		deleteDottedPath(target, path)
	}
	updated, err := nodeFromGeneric(target, *node)
	if err != nil {
		return fmt.Errorf("updateNode: %w", err)
	}
	updated = sanitize.SanitizeNode(updated)
	wf.Nodes[idx] = updated
	return nil
}

func applyMoveNode(wf *workflow.Workflow, op Operation) error {
	node, _, err := findNode(wf, op.NodeID, op.NodeName)
	if err != nil {
		return err
	}
	if op.Position == nil {
		return fmt.Errorf("moveNode requires a position [x, y]")
	}
	node.Position = *op.Position
	return nil
}

func applyEnableDisable(wf *workflow.Workflow, op Operation, disabled bool) error {
	node, _, err := findNode(wf, op.NodeID, op.NodeName)
	if err != nil {
		return err
	}
	node.Disabled = disabled
	return nil
}
