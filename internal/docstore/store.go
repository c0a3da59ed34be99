// Package docstore stores entities as JSONB documents in PostgreSQL,
// one logical collection per entity type.
package docstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store groups the document collections of one database.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a store over the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Collection returns a handle for the named collection.
func (s *Store) Collection(name string) *Collection {
	return &Collection{pool: s.pool, name: name}
}

// EnsureSchema creates the backing table when it does not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS documents (
    collection text NOT NULL,
    id         text NOT NULL,
    doc        jsonb NOT NULL,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW(),
    PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_doc_idx ON documents USING gin (doc jsonb_path_ops);`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("docstore: ensure schema: %w", err)
	}
	return nil
}
