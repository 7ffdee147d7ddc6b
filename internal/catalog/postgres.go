package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
)

// PostgresCatalog stores node definitions in Postgres, one JSONB column
// per definition, for deployments that manage their own evolving catalog
// instead of shipping the embedded snapshot.
type PostgresCatalog struct {
	pool *sql.DB
}

// NewPostgresCatalog opens a connection pool against databaseURL and
// ensures the catalog table exists.
func NewPostgresCatalog(ctx context.Context, databaseURL string) (*PostgresCatalog, error) {
	pool, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pool.SetMaxOpenConns(25)
	pool.SetMaxIdleConns(5)

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := pool.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS node_catalog (
			type TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			definition JSONB NOT NULL
		)`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create node_catalog table: %w", err)
	}

	return &PostgresCatalog{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (c *PostgresCatalog) Close() error { return c.pool.Close() }

// Upsert inserts or replaces a node definition.
func (c *PostgresCatalog) Upsert(ctx context.Context, def *NodeDefinition) error {
	raw, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("marshal node definition: %w", err)
	}
	_, err = c.pool.ExecContext(ctx, `
		INSERT INTO node_catalog (type, display_name, definition) VALUES ($1, $2, $3)
		ON CONFLICT (type) DO UPDATE SET display_name = $2, definition = $3`,
		def.Type, def.DisplayName, raw)
	if err != nil {
		return fmt.Errorf("upsert node definition: %w", err)
	}
	return nil
}

func (c *PostgresCatalog) Get(ctx context.Context, nodeType string) (*NodeDefinition, bool, error) {
	var raw []byte
	err := c.pool.QueryRowContext(ctx, `SELECT definition FROM node_catalog WHERE type = $1`, nodeType).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get node definition: %w", err)
	}
	var def NodeDefinition
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, false, fmt.Errorf("decode node definition: %w", err)
	}
	deriveResourceLocatorFields(&def)
	return &def, true, nil
}

func (c *PostgresCatalog) Search(ctx context.Context, query string, limit int) ([]*NodeDefinition, error) {
	rows, err := c.pool.QueryContext(ctx,
		`SELECT definition FROM node_catalog WHERE type ILIKE $1 OR display_name ILIKE $1 ORDER BY type LIMIT $2`,
		"%"+strings.ReplaceAll(query, "%", "")+"%", nullIfZero(limit))
	if err != nil {
		return nil, fmt.Errorf("search node definitions: %w", err)
	}
	defer rows.Close()
	return scanDefs(rows)
}

func (c *PostgresCatalog) All(ctx context.Context) ([]*NodeDefinition, error) {
	rows, err := c.pool.QueryContext(ctx, `SELECT definition FROM node_catalog ORDER BY type`)
	if err != nil {
		return nil, fmt.Errorf("list node definitions: %w", err)
	}
	defer rows.Close()
	return scanDefs(rows)
}

func scanDefs(rows *sql.Rows) ([]*NodeDefinition, error) {
	var out []*NodeDefinition
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan node definition: %w", err)
		}
		var def NodeDefinition
		if err := json.Unmarshal(raw, &def); err != nil {
			return nil, fmt.Errorf("decode node definition: %w", err)
		}
		deriveResourceLocatorFields(&def)
		out = append(out, &def)
	}
	return out, rows.Err()
}

// deriveResourceLocatorFields rebuilds the property-name -> bool index
// from Properties; it is excluded from JSON (json:"-") so every decode
// path must recompute it.
func deriveResourceLocatorFields(def *NodeDefinition) {
	def.IsResourceLocatorField = make(map[string]bool, len(def.Properties))
	for _, p := range def.Properties {
		if p.IsResourceLocator {
			def.IsResourceLocatorField[p.Name] = true
		}
	}
}

func nullIfZero(n int) int {
	if n <= 0 {
		return 1 << 30
	}
	return n
}
