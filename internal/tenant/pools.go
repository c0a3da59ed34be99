package tenant

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talenttrack/talenttrack/internal/platform/db"
)

// Pools caches one connection pool per tenant document database.
type Pools struct {
	resolver *Resolver

	mu    sync.Mutex
	pools map[string]*pgxpool.Pool
}

// NewPools constructs the tenant pool cache.
func NewPools(resolver *Resolver) *Pools {
	return &Pools{resolver: resolver, pools: make(map[string]*pgxpool.Pool)}
}

// For returns the pool for the tenant's document database, opening it on
// first use.
func (p *Pools) For(ctx context.Context, tenantID string) (*pgxpool.Pool, error) {
	p.mu.Lock()
	if pool, ok := p.pools[tenantID]; ok {
		p.mu.Unlock()
		return pool, nil
	}
	p.mu.Unlock()

	ci, err := p.resolver.GetConnection(ctx, tenantID, KindDocuments)
	if err != nil {
		return nil, err
	}
	pool, err := db.New(ctx, ci.DSN())
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.pools[tenantID]; ok {
		pool.Close()
		return existing, nil
	}
	p.pools[tenantID] = pool
	return pool, nil
}

// Close releases every cached pool.
func (p *Pools) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, pool := range p.pools {
		pool.Close()
		delete(p.pools, id)
	}
}
