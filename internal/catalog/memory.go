package catalog

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed data/nodes.json
var embeddedFS embed.FS

// MemoryCatalog is a thread-safe in-memory catalog: a read-mostly map
// guarded by an RWMutex, swappable wholesale by Replace so a background
// refresh (internal/catalogsync) can update it without invalidating
// in-flight readers.
type MemoryCatalog struct {
	mu     sync.RWMutex
	byType map[string]*NodeDefinition
}

// NewMemoryCatalog loads the embedded node-definition snapshot.
func NewMemoryCatalog() (*MemoryCatalog, error) {
	data, err := EmbeddedSnapshot()
	if err != nil {
		return nil, err
	}
	c := &MemoryCatalog{}
	if err := c.Replace(data); err != nil {
		return nil, err
	}
	return c, nil
}

// EmbeddedSnapshot returns the raw bytes of the module's own embedded
// node-definition snapshot, for callers (internal/catalogsync) that
// need to re-read it without reaching into the unexported embed.FS.
func EmbeddedSnapshot() ([]byte, error) {
	data, err := embeddedFS.ReadFile("data/nodes.json")
	if err != nil {
		return nil, fmt.Errorf("read embedded catalog: %w", err)
	}
	return data, nil
}

// Replace atomically swaps the catalog contents with the definitions
// decoded from data (a JSON array of NodeDefinition).
func (c *MemoryCatalog) Replace(data []byte) error {
	var defs []*NodeDefinition
	if err := json.Unmarshal(data, &defs); err != nil {
		return fmt.Errorf("decode catalog snapshot: %w", err)
	}
	byType := make(map[string]*NodeDefinition, len(defs))
	for _, d := range defs {
		deriveResourceLocatorFields(d)
		byType[d.Type] = d
	}

	c.mu.Lock()
	c.byType = byType
	c.mu.Unlock()
	return nil
}

func (c *MemoryCatalog) Get(_ context.Context, nodeType string) (*NodeDefinition, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.byType[nodeType]
	return d, ok, nil
}

func (c *MemoryCatalog) Search(_ context.Context, query string, limit int) ([]*NodeDefinition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q := strings.ToLower(query)
	var out []*NodeDefinition
	for _, d := range c.byType {
		if strings.Contains(strings.ToLower(d.Type), q) || strings.Contains(strings.ToLower(d.DisplayName), q) {
			out = append(out, d)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (c *MemoryCatalog) All(_ context.Context) ([]*NodeDefinition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*NodeDefinition, 0, len(c.byType))
	for _, d := range c.byType {
		out = append(out, d)
	}
	return out, nil
}
