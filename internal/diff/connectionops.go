package diff

import (
	"fmt"

	"github.com/flowctl/flowctl/internal/workflow"
)

// ifSwitchIndexAlias resolves branch/case smart parameters into a concrete
// sourceIndex for if/switch source nodes. Returns (index, true) when a
// smart alias applied, or (0, false) when none was given.
func ifSwitchIndexAlias(sourceType, branch string, caseN *int) (int, bool) {
	switch sourceType {
	case "n8n-nodes-base.if":
		switch branch {
		case "true":
			return 0, true
		case "false":
			return 1, true
		}
	case "n8n-nodes-base.switch":
		if caseN != nil {
			return *caseN, true
		}
	}
	return 0, false
}

// isBranchingType reports whether nodeType has named output branches the
// smart branch/case aliases address.
func isBranchingType(nodeType string) bool {
	return nodeType == "n8n-nodes-base.if" || nodeType == "n8n-nodes-base.switch"
}

func applyAddConnection(wf *workflow.Workflow, op Operation, warn func(string)) error {
	if op.SourceNodeID != "" || op.TargetNodeID != "" {
		return fmt.Errorf("addConnection takes 'source'/'target' node names, not 'sourceNodeId'/'targetNodeId'")
	}
	if op.Source == "" {
		return fmt.Errorf("addConnection requires 'source'")
	}
	if op.Target == "" {
		return fmt.Errorf("addConnection requires 'target'")
	}
	sourceNode, _, err := findNode(wf, "", op.Source)
	if err != nil {
		return err
	}
	if _, _, err := findNode(wf, "", op.Target); err != nil {
		return err
	}

	sourceOutput := op.SourceOutput
	if sourceOutput == "" {
		sourceOutput = "main"
	}
	targetInput := op.TargetInput
	if targetInput == "" {
		targetInput = "main"
	}

	sourceIndex := 0
	if op.SourceIndex != nil {
		sourceIndex = *op.SourceIndex
	}
	if alias, ok := ifSwitchIndexAlias(sourceNode.Type, op.Branch, op.Case); ok {
		sourceIndex = alias
	} else if op.SourceIndex != nil && isBranchingType(sourceNode.Type) {
		warn(fmt.Sprintf("raw sourceIndex %d on %s source %q; prefer 'branch' (if) or 'case' (switch)", *op.SourceIndex, sourceNode.Type, sourceNode.Name))
	}

	targetIndex := 0
	if op.TargetIndex != nil {
		targetIndex = *op.TargetIndex
	}

	target := workflow.ConnectionTarget{Node: op.Target, Type: targetInput, Index: targetIndex}
	added := wf.Connections.Add(sourceNode.Name, sourceOutput, sourceIndex, target)
	if !added {
		return fmt.Errorf("duplicate connection: %q already connects to %q on output %q index %d", sourceNode.Name, op.Target, sourceOutput, sourceIndex)
	}
	return nil
}

func applyRemoveConnection(wf *workflow.Workflow, op Operation) error {
	if op.Source == "" || op.Target == "" {
		if op.IgnoreErrors {
			return nil
		}
		return fmt.Errorf("removeConnection requires 'source' and 'target'")
	}
	sourceNode, _, err := findNode(wf, "", op.Source)
	if err != nil {
		if op.IgnoreErrors {
			return nil
		}
		return err
	}

	sourceOutput := op.SourceOutput
	if sourceOutput == "" {
		sourceOutput = "main"
	}

	removed := wf.Connections.Remove(sourceNode.Name, sourceOutput, op.Target)
	if removed == 0 && !op.IgnoreErrors {
		return fmt.Errorf("no connection from %q to %q on output %q", sourceNode.Name, op.Target, sourceOutput)
	}
	return nil
}

func applyRewireConnection(wf *workflow.Workflow, op Operation) error {
	if op.Source == "" || op.From == "" || op.To == "" {
		return fmt.Errorf("rewireConnection requires 'source', 'from', and 'to'")
	}
	sourceNode, _, err := findNode(wf, "", op.Source)
	if err != nil {
		return err
	}
	if _, _, err := findNode(wf, "", op.To); err != nil {
		return err
	}

	sourceOutput := op.SourceOutput
	if sourceOutput == "" {
		sourceOutput = "main"
	}
	targetInput := op.TargetInput
	if targetInput == "" {
		targetInput = "main"
	}

	sourceIndex := 0
	if op.SourceIndex != nil {
		sourceIndex = *op.SourceIndex
	}
	if alias, ok := ifSwitchIndexAlias(sourceNode.Type, op.Branch, op.Case); ok {
		sourceIndex = alias
	}

	removed := wf.Connections.Remove(sourceNode.Name, sourceOutput, op.From)
	if removed == 0 {
		return fmt.Errorf("no connection from %q to %q on output %q to rewire", sourceNode.Name, op.From, sourceOutput)
	}

	target := workflow.ConnectionTarget{Node: op.To, Type: targetInput, Index: 0}
	wf.Connections.Add(sourceNode.Name, sourceOutput, sourceIndex, target)
	return nil
}

func applyCleanStaleConnections(wf *workflow.Workflow, op Operation) int {
	known := wf.NodeNames()
	if op.DryRun {
		return len(wf.Connections.Stale(known))
	}
	return wf.Connections.CleanStale(known)
}

func applyReplaceConnections(wf *workflow.Workflow, op Operation) error {
	known := wf.NodeNames()
	for source, byLabel := range op.Connections {
		if !known[source] {
			return fmt.Errorf("replaceConnections: source node %q not found", source)
		}
		for _, outputs := range byLabel {
			for _, slot := range outputs {
				for _, t := range slot {
					if !known[t.Node] {
						return fmt.Errorf("replaceConnections: target node %q not found", t.Node)
					}
				}
			}
		}
	}

	next := make(workflow.Connections, len(op.Connections))
	for source, byLabel := range op.Connections {
		outByLabel := make(map[string][][]workflow.ConnectionTarget, len(byLabel))
		for label, outputs := range byLabel {
			outOutputs := make([][]workflow.ConnectionTarget, len(outputs))
			for i, slot := range outputs {
				outSlot := make([]workflow.ConnectionTarget, len(slot))
				for j, t := range slot {
					outSlot[j] = workflow.ConnectionTarget{Node: t.Node, Type: t.Type, Index: t.Index}
				}
				outOutputs[i] = outSlot
			}
			outByLabel[label] = outOutputs
		}
		next[source] = outByLabel
	}
	wf.Connections = next
	return nil
}
