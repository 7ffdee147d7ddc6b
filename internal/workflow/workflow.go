// Package workflow holds the graph value operated on by the diff engine,
// validator, sanitizer, and autofixer: nodes, connections, and workflow
// metadata. It owns no persistence and no network access.
package workflow

import (
	"github.com/google/uuid"

	"github.com/flowctl/flowctl/internal/names"
)

// Workflow is the graph value: nodes plus metadata plus the connections
// between them. Node order is semantically significant (stable display
// order); connections bind by node name, not array index.
type Workflow struct {
	Name        string         `json:"name" yaml:"name"`
	Nodes       []Node         `json:"nodes" yaml:"nodes"`
	Connections Connections    `json:"connections" yaml:"connections"`
	Settings    map[string]any `json:"settings,omitempty" yaml:"settings,omitempty"`
	Tags        []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
	Active      bool           `json:"active" yaml:"active"`
}

// Clone returns a deep-enough copy of wf so that mutating the diff
// engine's working value never touches the caller's original.
func (wf *Workflow) Clone() *Workflow {
	out := &Workflow{
		Name:   wf.Name,
		Active: wf.Active,
	}
	out.Nodes = make([]Node, len(wf.Nodes))
	for i, n := range wf.Nodes {
		out.Nodes[i] = n.Clone()
	}
	out.Connections = wf.Connections.Clone()
	out.Settings = cloneMap(wf.Settings)
	if wf.Tags != nil {
		out.Tags = append([]string(nil), wf.Tags...)
	}
	return out
}

// NodeByName returns the node whose normalized name matches, and its index.
func (wf *Workflow) NodeByName(name string) (*Node, int) {
	for i := range wf.Nodes {
		if names.Equal(wf.Nodes[i].Name, name) {
			return &wf.Nodes[i], i
		}
	}
	return nil, -1
}

// NodeByID returns the node with the given stable id, and its index.
func (wf *Workflow) NodeByID(id string) (*Node, int) {
	for i := range wf.Nodes {
		if wf.Nodes[i].ID == id {
			return &wf.Nodes[i], i
		}
	}
	return nil, -1
}

// NodeNames returns the set of all node names in the workflow (not
// normalized; callers normalize as needed for comparison).
func (wf *Workflow) NodeNames() map[string]bool {
	out := make(map[string]bool, len(wf.Nodes))
	for _, n := range wf.Nodes {
		out[n.Name] = true
	}
	return out
}

// Node is a typed graph vertex with parameters and a stable id.
type Node struct {
	ID               string                  `json:"id" yaml:"id"`
	Name             string                  `json:"name" yaml:"name"`
	Type             string                  `json:"type" yaml:"type"`
	TypeVersion      float64                 `json:"typeVersion" yaml:"typeVersion"`
	Position         [2]float64              `json:"position" yaml:"position"`
	Parameters       map[string]any          `json:"parameters" yaml:"parameters"`
	Disabled         bool                    `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Notes            string                  `json:"notes,omitempty" yaml:"notes,omitempty"`
	NotesInFlow      bool                    `json:"notesInFlow,omitempty" yaml:"notesInFlow,omitempty"`
	ContinueOnFail   bool                    `json:"continueOnFail,omitempty" yaml:"continueOnFail,omitempty"`
	OnError          string                  `json:"onError,omitempty" yaml:"onError,omitempty"`
	RetryOnFail      bool                    `json:"retryOnFail,omitempty" yaml:"retryOnFail,omitempty"`
	MaxTries         int                     `json:"maxTries,omitempty" yaml:"maxTries,omitempty"`
	WaitBetweenTries int                     `json:"waitBetweenTries,omitempty" yaml:"waitBetweenTries,omitempty"`
	AlwaysOutputData bool                    `json:"alwaysOutputData,omitempty" yaml:"alwaysOutputData,omitempty"`
	ExecuteOnce      bool                    `json:"executeOnce,omitempty" yaml:"executeOnce,omitempty"`
	Credentials      map[string]CredentialRef `json:"credentials,omitempty" yaml:"credentials,omitempty"`
}

// CredentialRef names a credential stored in the external credentials store.
type CredentialRef struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Clone returns a deep-enough copy of n.
func (n Node) Clone() Node {
	out := n
	out.Parameters = cloneMap(n.Parameters)
	if n.Credentials != nil {
		out.Credentials = make(map[string]CredentialRef, len(n.Credentials))
		for k, v := range n.Credentials {
			out.Credentials[k] = v
		}
	}
	return out
}

// NewNodeID generates a stable opaque node identifier.
func NewNodeID() string {
	return uuid.NewString()
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
