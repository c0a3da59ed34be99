// Package tenant resolves per-tenant storage connections. Each tenant maps
// to a dedicated database; the mapping lives in the global database.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talenttrack/talenttrack/internal/platform/httpx"
)

// DatabaseKind selects which of a tenant's databases to resolve.
type DatabaseKind string

// KindDocuments is the tenant document database.
const KindDocuments DatabaseKind = "documents"

// ConnectionInfo describes a resolved tenant connection.
type ConnectionInfo struct {
	Name     string
	Host     string
	Database string
	Username string
	Password string
}

// DSN builds the connection string, injecting credentials when present.
func (ci ConnectionInfo) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   ci.Host,
		Path:   "/" + ci.Database,
	}
	if ci.Username != "" {
		u.User = url.UserPassword(ci.Username, ci.Password)
	}
	return u.String()
}

// Resolver looks up tenant connections in the global database.
type Resolver struct {
	pool *pgxpool.Pool
}

// NewResolver constructs a resolver over the global pool.
func NewResolver(pool *pgxpool.Pool) *Resolver {
	return &Resolver{pool: pool}
}

// GetConnection resolves the connection for a tenant and database kind.
func (r *Resolver) GetConnection(ctx context.Context, tenantID string, kind DatabaseKind) (ConnectionInfo, error) {
	var ci ConnectionInfo
	err := r.pool.QueryRow(ctx,
		`SELECT name, host, database, username, password
		   FROM datacenter_connections
		  WHERE tenant_id = $1 AND kind = $2`,
		tenantID, string(kind)).Scan(&ci.Name, &ci.Host, &ci.Database, &ci.Username, &ci.Password)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ConnectionInfo{}, fmt.Errorf("tenant: connection for %q: %w", tenantID, httpx.ErrNotFound)
		}
		return ConnectionInfo{}, fmt.Errorf("tenant: resolve %q: %w", tenantID, err)
	}
	return ci, nil
}

// EnsureSchema creates the connection mapping table when missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS datacenter_connections (
    tenant_id text NOT NULL,
    kind      text NOT NULL,
    name      text NOT NULL DEFAULT '',
    host      text NOT NULL,
    database  text NOT NULL,
    username  text NOT NULL DEFAULT '',
    password  text NOT NULL DEFAULT '',
    PRIMARY KEY (tenant_id, kind)
);`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("tenant: ensure schema: %w", err)
	}
	return nil
}
