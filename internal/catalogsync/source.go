package catalogsync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/flowctl/flowctl/internal/catalog"
)

// EmbeddedSource re-reads the module's own embedded node-definition
// snapshot on every tick. Useful mainly so a long-lived process can
// pick up a redeployed binary's updated snapshot without a restart;
// most deployments that actually mutate the catalog at runtime will
// use PostgresSource instead.
type EmbeddedSource struct{}

func (EmbeddedSource) Fetch(_ context.Context) ([]byte, error) {
	return catalog.EmbeddedSnapshot()
}

// PostgresSource re-queries a PostgresCatalog and re-serializes its
// definitions into the JSON array shape MemoryCatalog.Replace expects,
// so a server can run against Postgres as the system of record while
// still serving reads from a fast in-memory snapshot.
type PostgresSource struct {
	Catalog *catalog.PostgresCatalog
}

func (s PostgresSource) Fetch(ctx context.Context) ([]byte, error) {
	defs, err := s.Catalog.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog definitions: %w", err)
	}
	data, err := json.Marshal(defs)
	if err != nil {
		return nil, fmt.Errorf("encode catalog snapshot: %w", err)
	}
	return data, nil
}
