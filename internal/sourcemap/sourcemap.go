// Package sourcemap builds a mapping from a workflow's dotted JSON paths
// (e.g. "nodes[3].parameters.url") to their {line, column} position and
// a source snippet in the original serialized text. It is pure and
// stateless: the same input always yields the same map.
package sourcemap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Location is a 1-indexed line/column position within the source text.
type Location struct {
	Line   int
	Column int
}

// SourceMap resolves dotted paths to source positions within one raw
// document. It is built once per validation call and used read-only.
type SourceMap struct {
	raw       []byte
	lineStart []int // byte offset of the start of each line (1-indexed via index 0 = line 1)
	positions map[string]Location
}

// Build walks raw as JSON, recording the source position at which the
// value for every dotted path begins. It never mutates raw.
func Build(raw []byte) (*SourceMap, error) {
	sm := &SourceMap{
		raw:       raw,
		positions: make(map[string]Location),
	}
	sm.indexLines()

	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := sm.walk(dec, ""); err != nil {
		return nil, fmt.Errorf("sourcemap: %w", err)
	}
	return sm, nil
}

func (sm *SourceMap) indexLines() {
	sm.lineStart = []int{0}
	for i, b := range sm.raw {
		if b == '\n' {
			sm.lineStart = append(sm.lineStart, i+1)
		}
	}
}

func (sm *SourceMap) offsetToLocation(offset int64) Location {
	off := int(offset)
	// Find the last line start <= off via linear scan from the start;
	// source documents here are workflow-sized (kB, not MB).
	line := 0
	for i, start := range sm.lineStart {
		if start <= off {
			line = i
		} else {
			break
		}
	}
	col := off - sm.lineStart[line] + 1
	return Location{Line: line + 1, Column: col}
}

// walk consumes one JSON value from dec and records its starting
// position under path, recursing into objects/arrays.
func (sm *SourceMap) walk(dec *json.Decoder, path string) error {
	startOffset := dec.InputOffset()
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch t := tok.(type) {
	case json.Delim:
		if t == '{' {
			sm.record(path, startOffset)
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return err
				}
				key, _ := keyTok.(string)
				childPath := joinField(path, key)
				if err := sm.walk(dec, childPath); err != nil {
					return err
				}
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return err
			}
		} else if t == '[' {
			sm.record(path, startOffset)
			idx := 0
			for dec.More() {
				childPath := joinIndex(path, idx)
				if err := sm.walk(dec, childPath); err != nil {
					return err
				}
				idx++
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return err
			}
		}
	default:
		sm.record(path, startOffset)
	}
	return nil
}

func (sm *SourceMap) record(path string, offset int64) {
	if path == "" {
		return
	}
	if _, exists := sm.positions[path]; exists {
		return
	}
	// The decoder's offset sits right after the previous token; step
	// over whitespace and any ':' or ',' to the value's first byte.
	for offset < int64(len(sm.raw)) && strings.IndexByte(" \t\r\n:,", sm.raw[offset]) >= 0 {
		offset++
	}
	sm.positions[path] = sm.offsetToLocation(offset)
}

func joinField(base, field string) string {
	if base == "" {
		return field
	}
	return base + "." + field
}

func joinIndex(base string, idx int) string {
	return fmt.Sprintf("%s[%d]", base, idx)
}

// Lookup resolves a dotted path to its location and a snippet of the
// surrounding source (the located line, with one line of context on
// each side where available). Returns ok=false if the path was never
// indexed (e.g. it names a value absent from the document).
func (sm *SourceMap) Lookup(path string) (Location, string, bool) {
	loc, ok := sm.positions[path]
	if !ok {
		return Location{}, "", false
	}
	return loc, sm.snippet(loc.Line), true
}

func (sm *SourceMap) snippet(line int) string {
	lines := strings.Split(string(sm.raw), "\n")
	start := line - 2
	if start < 0 {
		start = 0
	}
	end := line + 1
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}
