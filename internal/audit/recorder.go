package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/talenttrack/talenttrack/internal/docstore"
)

// Recorder writes change entries alongside entity mutations. Recording is
// synchronous: a failed insert fails the mutation that triggered it.
type Recorder struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewRecorder(repo Repository, logger *slog.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger, now: time.Now}
}

// RecordCreate stores a creation snapshot. Only the new state is kept.
func (r *Recorder) RecordCreate(ctx context.Context, tenantID, entityID, user string, newEntity docstore.Document) error {
	return r.record(ctx, tenantID, Change{
		EntityID:  entityID,
		User:      user,
		Type:      ChangeCreate,
		NewEntity: newEntity.Clone(),
	})
}

// RecordUpdate stores both the previous and the new state.
func (r *Recorder) RecordUpdate(ctx context.Context, tenantID, entityID, user string, newEntity, oldEntity docstore.Document) error {
	return r.record(ctx, tenantID, Change{
		EntityID:  entityID,
		User:      user,
		Type:      ChangeUpdate,
		NewEntity: newEntity.Clone(),
		OldEntity: oldEntity.Clone(),
	})
}

// RecordDelete stores a deletion snapshot. Only the old state is kept.
func (r *Recorder) RecordDelete(ctx context.Context, tenantID, entityID, user string, oldEntity docstore.Document) error {
	return r.record(ctx, tenantID, Change{
		EntityID:  entityID,
		User:      user,
		Type:      ChangeDelete,
		OldEntity: oldEntity.Clone(),
	})
}

func (r *Recorder) record(ctx context.Context, tenantID string, change Change) error {
	change.ID = uuid.NewString()
	change.At = r.now().UTC()
	if err := r.repo.Insert(ctx, tenantID, change); err != nil {
		return fmt.Errorf("audit: record %s change for %s: %w", change.Type, change.EntityID, err)
	}
	if r.logger != nil {
		r.logger.Debug("change recorded",
			slog.String("entity_id", change.EntityID),
			slog.String("type", string(change.Type)),
			slog.String("user", change.User))
	}
	return nil
}
