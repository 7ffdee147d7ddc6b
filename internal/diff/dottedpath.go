package diff

import (
	"strconv"
	"strings"

	"github.com/flowctl/flowctl/internal/workflow"
)

// setDottedPath assigns value at the dotted path within root (a
// map[string]any), creating missing intermediate maps as it walks.
// Array indices are permitted as numeric path segments when the current
// container is already a []any; they do not grow the array (per spec,
// these are rare and assumed already present).
func setDottedPath(root map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	cur := root
	for i := 0; i < len(segments); i++ {
		seg := segments[i]
		last := i == len(segments)-1

		if last {
			cur[seg] = value
			return
		}

		next, ok := cur[seg]
		if !ok || next == nil {
			next = map[string]any{}
			cur[seg] = next
		}
		switch typed := next.(type) {
		case map[string]any:
			cur = typed
		case []any:
			// The following segment addresses an element of this slice.
			if i+1 < len(segments) {
				if idx, err := strconv.Atoi(segments[i+1]); err == nil && idx >= 0 && idx < len(typed) {
					elem, ok := typed[idx].(map[string]any)
					if !ok {
						elem = map[string]any{}
						typed[idx] = elem
					}
					cur = elem
					i++ // consume the numeric segment too
					continue
				}
			}
			// Fall back: replace with a map so the assignment still lands.
			replacement := map[string]any{}
			cur[seg] = replacement
			cur = replacement
		default:
			replacement := map[string]any{}
			cur[seg] = replacement
			cur = replacement
		}
	}
}

// deleteDottedPath removes the value at the dotted path within root,
// walking intermediate containers without creating any. A path whose
// intermediate segments are missing or mis-typed is a no-op.
func deleteDottedPath(root map[string]any, path string) {
	segments := strings.Split(path, ".")
	cur := root
	for i := 0; i < len(segments)-1; i++ {
		seg := segments[i]
		next, ok := cur[seg]
		if !ok {
			return
		}
		switch typed := next.(type) {
		case map[string]any:
			cur = typed
		case []any:
			if i+1 < len(segments)-1 {
				if idx, err := strconv.Atoi(segments[i+1]); err == nil && idx >= 0 && idx < len(typed) {
					elem, ok := typed[idx].(map[string]any)
					if !ok {
						return
					}
					cur = elem
					i++ // consume the numeric segment too
					continue
				}
			}
			return
		default:
			return
		}
	}
	delete(cur, segments[len(segments)-1])
}

// asGenericNode converts a Node to its map[string]any wire representation
// so updateNode's dotted-path assignments can walk it uniformly.
func asGenericNode(n workflow.Node) map[string]any {
	m := map[string]any{
		"id":               n.ID,
		"name":             n.Name,
		"type":             n.Type,
		"typeVersion":      n.TypeVersion,
		"position":         []any{n.Position[0], n.Position[1]},
		"parameters":       cloneAny(n.Parameters),
		"disabled":         n.Disabled,
		"notes":            n.Notes,
		"notesInFlow":      n.NotesInFlow,
		"continueOnFail":   n.ContinueOnFail,
		"onError":          n.OnError,
		"retryOnFail":      n.RetryOnFail,
		"maxTries":         n.MaxTries,
		"waitBetweenTries": n.WaitBetweenTries,
		"alwaysOutputData": n.AlwaysOutputData,
		"executeOnce":      n.ExecuteOnce,
	}
	return m
}

// nodeFromGeneric reassembles a Node from its mutated map[string]any
// representation, using original as the source of truth for any field
// not representable generically (credentials references).
func nodeFromGeneric(m map[string]any, original workflow.Node) (workflow.Node, error) {
	n := original
	if v, ok := m["name"].(string); ok {
		n.Name = v
	}
	if v, ok := m["type"].(string); ok {
		n.Type = v
	}
	if v, ok := asFloat(m["typeVersion"]); ok {
		n.TypeVersion = v
	}
	if v, ok := m["position"].([]any); ok && len(v) == 2 {
		x, xok := asFloat(v[0])
		y, yok := asFloat(v[1])
		if xok && yok {
			n.Position = [2]float64{x, y}
		}
	}
	if v, ok := m["parameters"].(map[string]any); ok {
		n.Parameters = v
	} else if m["parameters"] == nil {
		n.Parameters = map[string]any{}
	}
	if v, ok := m["disabled"].(bool); ok {
		n.Disabled = v
	}
	if v, ok := m["notes"].(string); ok {
		n.Notes = v
	}
	if v, ok := m["notesInFlow"].(bool); ok {
		n.NotesInFlow = v
	}
	if v, ok := m["continueOnFail"].(bool); ok {
		n.ContinueOnFail = v
	}
	if v, ok := m["onError"].(string); ok {
		n.OnError = v
	}
	if v, ok := m["retryOnFail"].(bool); ok {
		n.RetryOnFail = v
	}
	if v, ok := asFloat(m["maxTries"]); ok {
		n.MaxTries = int(v)
	}
	if v, ok := asFloat(m["waitBetweenTries"]); ok {
		n.WaitBetweenTries = int(v)
	}
	if v, ok := m["alwaysOutputData"].(bool); ok {
		n.AlwaysOutputData = v
	}
	if v, ok := m["executeOnce"].(bool); ok {
		n.ExecuteOnce = v
	}
	return n, nil
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	}
	return 0, false
}

func cloneAny(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
