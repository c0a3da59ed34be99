package candidates

import (
	"context"
	"fmt"

	"github.com/talenttrack/talenttrack/internal/docstore"
	"github.com/talenttrack/talenttrack/internal/tenant"
)

const collectionCandidates = "candidates"

// Repository stores candidate documents in each tenant's database.
type Repository struct {
	pools *tenant.Pools
}

func NewRepository(pools *tenant.Pools) *Repository {
	return &Repository{pools: pools}
}

func (r *Repository) collection(ctx context.Context, tenantID string) (*docstore.Collection, error) {
	pool, err := r.pools.For(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("candidates: tenant %s: %w", tenantID, err)
	}
	return docstore.NewStore(pool).Collection(collectionCandidates), nil
}

func (r *Repository) Get(ctx context.Context, tenantID, id string) (docstore.Document, error) {
	coll, err := r.collection(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return coll.Get(ctx, id)
}

func (r *Repository) All(ctx context.Context, tenantID string) ([]docstore.Document, error) {
	coll, err := r.collection(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return coll.All(ctx)
}

func (r *Repository) Insert(ctx context.Context, tenantID, id string, doc docstore.Document) error {
	coll, err := r.collection(ctx, tenantID)
	if err != nil {
		return err
	}
	return coll.Insert(ctx, id, doc)
}

func (r *Repository) Replace(ctx context.Context, tenantID, id string, doc docstore.Document) error {
	coll, err := r.collection(ctx, tenantID)
	if err != nil {
		return err
	}
	return coll.Replace(ctx, id, doc)
}

func (r *Repository) Delete(ctx context.Context, tenantID, id string) error {
	coll, err := r.collection(ctx, tenantID)
	if err != nil {
		return err
	}
	return coll.Delete(ctx, id)
}
