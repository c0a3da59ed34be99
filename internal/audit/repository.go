package audit

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/talenttrack/talenttrack/internal/docstore"
	"github.com/talenttrack/talenttrack/internal/tenant"
)

const collectionChanges = "changes"

// ChangeStore keeps change logs in each tenant's document database.
type ChangeStore struct {
	pools *tenant.Pools
}

func NewChangeStore(pools *tenant.Pools) *ChangeStore {
	return &ChangeStore{pools: pools}
}

func (s *ChangeStore) collection(ctx context.Context, tenantID string) (*docstore.Collection, error) {
	pool, err := s.pools.For(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("audit: tenant %s: %w", tenantID, err)
	}
	return docstore.NewStore(pool).Collection(collectionChanges), nil
}

func (s *ChangeStore) Insert(ctx context.Context, tenantID string, change Change) error {
	coll, err := s.collection(ctx, tenantID)
	if err != nil {
		return err
	}
	doc, err := docstore.Marshal(change)
	if err != nil {
		return fmt.Errorf("audit: encode change %s: %w", change.ID, err)
	}
	return coll.Insert(ctx, change.ID, doc)
}

func (s *ChangeStore) ByEntity(ctx context.Context, tenantID, entityID string, from, to time.Time) ([]Change, error) {
	coll, err := s.collection(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	docs, err := coll.FindContains(ctx, docstore.Document{"entityId": entityID})
	if err != nil {
		return nil, err
	}
	changes := make([]Change, 0, len(docs))
	for _, doc := range docs {
		var c Change
		if err := docstore.Unmarshal(doc, &c); err != nil {
			return nil, fmt.Errorf("audit: decode change: %w", err)
		}
		if c.At.Before(from) || c.At.After(to) {
			continue
		}
		changes = append(changes, c)
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].At.Before(changes[j].At) })
	return changes, nil
}
