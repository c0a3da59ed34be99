package audit

import (
	"context"
	"time"

	"github.com/talenttrack/talenttrack/internal/docstore"
)

// ChangeType classifies a recorded mutation.
type ChangeType string

const (
	ChangeCreate ChangeType = "Create"
	ChangeUpdate ChangeType = "Update"
	ChangeDelete ChangeType = "Delete"
)

// Change is one recorded mutation of an entity. For creates only the new
// snapshot is stored, for deletes only the old one, and for updates both.
type Change struct {
	ID        string            `json:"id"`
	EntityID  string            `json:"entityId"`
	User      string            `json:"user"`
	Type      ChangeType        `json:"type"`
	At        time.Time         `json:"at"`
	NewEntity docstore.Document `json:"newEntity,omitempty"`
	OldEntity docstore.Document `json:"oldEntity,omitempty"`
}

// ChangeRow is one flattened field-level line of an entity's history.
type ChangeRow struct {
	EntityID      string    `json:"entityId"`
	ChangedBy     string    `json:"changedBy"`
	ChangedDate   time.Time `json:"changedDate"`
	PropertyName  string    `json:"propertyName"`
	PreviousValue string    `json:"previousValue"`
	NewValue      string    `json:"newValue"`
}

// Repository persists changes in the tenant's change log.
type Repository interface {
	Insert(ctx context.Context, tenantID string, change Change) error
	ByEntity(ctx context.Context, tenantID, entityID string, from, to time.Time) ([]Change, error)
}

// ignoredProperties are denormalized search helpers that would only add
// noise to a history view.
var ignoredProperties = map[string]struct{}{
	"LowerTerm":        {},
	"UpperTerm":        {},
	"LowerTranslation": {},
	"UpperTranslation": {},
}

func isIgnoredProperty(name string) bool {
	_, ok := ignoredProperties[name]
	return ok
}
