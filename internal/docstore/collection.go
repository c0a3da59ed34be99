package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talenttrack/talenttrack/internal/platform/httpx"
)

const uniqueViolation = "23505"

// Collection is a handle over one logical document collection.
type Collection struct {
	pool *pgxpool.Pool
	name string
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Get fetches a document by id.
func (c *Collection) Get(ctx context.Context, id string) (Document, error) {
	var doc Document
	err := c.pool.QueryRow(ctx,
		`SELECT doc FROM documents WHERE collection = $1 AND id = $2`,
		c.name, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("docstore: %s/%s: %w", c.name, id, httpx.ErrNotFound)
		}
		return nil, fmt.Errorf("docstore: get %s/%s: %w", c.name, id, err)
	}
	return doc, nil
}

// Insert stores a new document under the given id.
func (c *Collection) Insert(ctx context.Context, id string, doc Document) error {
	_, err := c.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, doc) VALUES ($1, $2, $3)`,
		c.name, id, doc)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("docstore: %s/%s: %w", c.name, id, httpx.ErrDuplicate)
		}
		return fmt.Errorf("docstore: insert %s/%s: %w", c.name, id, err)
	}
	return nil
}

// Replace upserts a document. Concurrent replacements of the same id are
// last-writer-wins; there is no optimistic concurrency token.
func (c *Collection) Replace(ctx context.Context, id string, doc Document) error {
	_, err := c.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, doc) VALUES ($1, $2, $3)
		 ON CONFLICT (collection, id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()`,
		c.name, id, doc)
	if err != nil {
		return fmt.Errorf("docstore: replace %s/%s: %w", c.name, id, err)
	}
	return nil
}

// Delete removes a document by id.
func (c *Collection) Delete(ctx context.Context, id string) error {
	tag, err := c.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		c.name, id)
	if err != nil {
		return fmt.Errorf("docstore: delete %s/%s: %w", c.name, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("docstore: %s/%s: %w", c.name, id, httpx.ErrNotFound)
	}
	return nil
}

// All returns every document in the collection in insertion order.
func (c *Collection) All(ctx context.Context) ([]Document, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT doc FROM documents WHERE collection = $1 ORDER BY created_at`,
		c.name)
	if err != nil {
		return nil, fmt.Errorf("docstore: all %s: %w", c.name, err)
	}
	defer rows.Close()
	return scanDocuments(c.name, rows)
}

// FindContains returns documents containing the filter document. Scalar
// values match on equality; array values match on membership, so
// {"userIds": ["u1"]} finds documents whose userIds array includes u1.
func (c *Collection) FindContains(ctx context.Context, filter Document) ([]Document, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT doc FROM documents WHERE collection = $1 AND doc @> $2 ORDER BY created_at`,
		c.name, filter)
	if err != nil {
		return nil, fmt.Errorf("docstore: find %s: %w", c.name, err)
	}
	defer rows.Close()
	return scanDocuments(c.name, rows)
}

func scanDocuments(name string, rows pgx.Rows) ([]Document, error) {
	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("docstore: scan %s: %w", name, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("docstore: scan %s: %w", name, err)
	}
	return docs, nil
}
