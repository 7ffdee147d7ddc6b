package workflow

// Connections is a nested mapping: source-name -> output-label ->
// array[outputIndex] of array of connection targets. "main" is the
// default output label. A connection is stale if either endpoint name
// is not present in the workflow's nodes.
type Connections map[string]map[string][][]ConnectionTarget

// ConnectionTarget is one edge endpoint: the target node name, the
// input label it connects to (defaults to "main"), and the target's
// input slot index.
type ConnectionTarget struct {
	Node  string `json:"node" yaml:"node"`
	Type  string `json:"type" yaml:"type"`
	Index int    `json:"index" yaml:"index"`
}

const defaultLabel = "main"

// Clone returns a deep copy of c.
func (c Connections) Clone() Connections {
	if c == nil {
		return nil
	}
	out := make(Connections, len(c))
	for src, byLabel := range c {
		outByLabel := make(map[string][][]ConnectionTarget, len(byLabel))
		for label, outputs := range byLabel {
			outOutputs := make([][]ConnectionTarget, len(outputs))
			for i, slot := range outputs {
				outOutputs[i] = append([]ConnectionTarget(nil), slot...)
			}
			outByLabel[label] = outOutputs
		}
		out[src] = outByLabel
	}
	return out
}

// EnsureOutput grows connections[source][label] (creating intermediate
// maps as needed) until index is a valid slot, returning the output array.
func (c Connections) EnsureOutput(source, label string, index int) [][]ConnectionTarget {
	if label == "" {
		label = defaultLabel
	}
	if c[source] == nil {
		c[source] = make(map[string][][]ConnectionTarget)
	}
	outputs := c[source][label]
	for len(outputs) <= index {
		outputs = append(outputs, nil)
	}
	c[source][label] = outputs
	return outputs
}

// Add appends target to connections[source][label][index], rejecting an
// exact duplicate entry. Returns false if the entry already exists.
func (c Connections) Add(source, label string, index int, target ConnectionTarget) bool {
	if label == "" {
		label = defaultLabel
	}
	c.EnsureOutput(source, label, index)
	slot := c[source][label][index]
	for _, existing := range slot {
		if existing.Node == target.Node && existing.Type == target.Type && existing.Index == target.Index {
			return false
		}
	}
	c[source][label][index] = append(slot, target)
	return true
}

// Remove deletes every entry under connections[source][label] whose
// target node matches targetName, collapsing empty containers per the
// trailing-slot / empty-label / empty-source rules. Returns the number
// of entries removed.
func (c Connections) Remove(source, label, targetName string) int {
	if label == "" {
		label = defaultLabel
	}
	byLabel, ok := c[source]
	if !ok {
		return 0
	}
	outputs, ok := byLabel[label]
	if !ok {
		return 0
	}

	removed := 0
	for i, slot := range outputs {
		kept := slot[:0:0]
		for _, t := range slot {
			if t.Node == targetName {
				removed++
				continue
			}
			kept = append(kept, t)
		}
		outputs[i] = kept
	}

	// Pop trailing empty slots.
	for len(outputs) > 0 && len(outputs[len(outputs)-1]) == 0 {
		outputs = outputs[:len(outputs)-1]
	}

	if len(outputs) == 0 {
		delete(byLabel, label)
	} else {
		byLabel[label] = outputs
	}
	if len(byLabel) == 0 {
		delete(c, source)
	}
	return removed
}

// RenameNode rewrites every source key and every target.Node reference
// equal to oldName (by exact string match; callers pass the exact
// prior name recorded in the rename map) to newName.
func (c Connections) RenameNode(oldName, newName string) {
	if byLabel, ok := c[oldName]; ok {
		delete(c, oldName)
		c[newName] = byLabel
	}
	for _, byLabel := range c {
		for _, outputs := range byLabel {
			for _, slot := range outputs {
				for i := range slot {
					if slot[i].Node == oldName {
						slot[i].Node = newName
					}
				}
			}
		}
	}
}

// StaleEdge describes one connection endpoint pair referencing a node
// name absent from the workflow's nodes.
type StaleEdge struct {
	Source string
	Target string
}

// Stale returns the distinct (source, target) pairs referencing a node
// name not present in known. Each stale pair is reported exactly once
// even if the source itself is also missing (a dangling-source edge is
// still one pair, not two).
func (c Connections) Stale(known map[string]bool) []StaleEdge {
	seen := make(map[StaleEdge]bool)
	var out []StaleEdge
	for source, byLabel := range c {
		for _, outputs := range byLabel {
			for _, slot := range outputs {
				for _, t := range slot {
					if known[source] && known[t.Node] {
						continue
					}
					edge := StaleEdge{Source: source, Target: t.Node}
					if !seen[edge] {
						seen[edge] = true
						out = append(out, edge)
					}
				}
			}
		}
	}
	return out
}

// CleanStale removes every stale connection (per Stale's known-set
// check) and returns how many distinct (source, target) pairs were removed.
func (c Connections) CleanStale(known map[string]bool) int {
	stale := c.Stale(known)
	for _, e := range stale {
		if byLabel, ok := c[e.Source]; ok {
			for label, outputs := range byLabel {
				for i, slot := range outputs {
					kept := slot[:0:0]
					for _, t := range slot {
						if t.Node == e.Target {
							continue
						}
						kept = append(kept, t)
					}
					outputs[i] = kept
				}
				for len(outputs) > 0 && len(outputs[len(outputs)-1]) == 0 {
					outputs = outputs[:len(outputs)-1]
				}
				if len(outputs) == 0 {
					delete(byLabel, label)
				} else {
					byLabel[label] = outputs
				}
			}
			if len(byLabel) == 0 {
				delete(c, e.Source)
			}
		}
	}
	return len(stale)
}
