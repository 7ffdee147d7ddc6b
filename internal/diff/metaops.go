package diff

import (
	"fmt"

	"github.com/flowctl/flowctl/internal/workflow"
)

func applyUpdateSettings(wf *workflow.Workflow, op Operation) error {
	if wf.Settings == nil {
		wf.Settings = map[string]any{}
	}
	for k, v := range op.Settings {
		wf.Settings[k] = v
	}
	return nil
}

func applyUpdateName(wf *workflow.Workflow, op Operation) error {
	wf.Name = op.Name
	return nil
}

func applyAddTag(wf *workflow.Workflow, op Operation) error {
	for _, t := range wf.Tags {
		if t == op.Tag_ {
			return nil
		}
	}
	wf.Tags = append(wf.Tags, op.Tag_)
	return nil
}

func applyRemoveTag(wf *workflow.Workflow, op Operation) error {
	kept := wf.Tags[:0:0]
	for _, t := range wf.Tags {
		if t != op.Tag_ {
			kept = append(kept, t)
		}
	}
	wf.Tags = kept
	return nil
}

// activatableTriggerTypes are the node types that may activate a workflow.
// executeWorkflowTrigger is intentionally excluded: it is invoked by
// another workflow, never by an external event, so it cannot arm a
// schedule/webhook-style activation. This list is diff's own concern
// rather than a catalog lookup, since diff does not depend on catalog.
var activatableTriggerTypes = map[string]bool{
	"n8n-nodes-base.webhook":         true,
	"n8n-nodes-base.scheduleTrigger": true,
	"n8n-nodes-base.emailReadImap":   true,
	"n8n-nodes-base.chatTrigger":     true,
	"n8n-nodes-base.formTrigger":     true,
}

// checkActivatable enforces the activateWorkflow gate: at least one
// enabled node whose type is an activatable trigger.
func checkActivatable(wf *workflow.Workflow) error {
	for _, n := range wf.Nodes {
		if n.Disabled {
			continue
		}
		if activatableTriggerTypes[n.Type] {
			return nil
		}
	}
	return fmt.Errorf("activateWorkflow: no enabled activatable trigger found (executeWorkflowTrigger and non-trigger nodes cannot activate a workflow)")
}
