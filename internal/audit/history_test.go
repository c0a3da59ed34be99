package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talenttrack/talenttrack/internal/docstore"
)

type memoryChanges struct {
	changes []Change
}

func (m *memoryChanges) Insert(ctx context.Context, tenantID string, change Change) error {
	m.changes = append(m.changes, change)
	return nil
}

func (m *memoryChanges) ByEntity(ctx context.Context, tenantID, entityID string, from, to time.Time) ([]Change, error) {
	var out []Change
	for _, c := range m.changes {
		if c.EntityID != entityID || c.At.Before(from) || c.At.After(to) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func TestHistoryCreateRows(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &memoryChanges{changes: []Change{{
		ID:       "c1",
		EntityID: "e1",
		User:     "alice",
		Type:     ChangeCreate,
		At:       at,
		NewEntity: docstore.Document{
			"Name":      "Alice",
			"Age":       30,
			"LowerTerm": "alice",
		},
	}}}

	rows, err := NewHistory(repo).ForEntity(ctx, "t1", "e1", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byProp := map[string]ChangeRow{}
	for _, row := range rows {
		byProp[row.PropertyName] = row
	}
	assert.Equal(t, "Alice", byProp["Name"].NewValue)
	assert.Empty(t, byProp["Name"].PreviousValue)
	assert.Equal(t, "30", byProp["Age"].NewValue)
	assert.Empty(t, byProp["Age"].PreviousValue)
	assert.NotContains(t, byProp, "LowerTerm")
}

func TestHistoryDeleteMirrorsCreate(t *testing.T) {
	ctx := context.Background()
	repo := &memoryChanges{changes: []Change{{
		EntityID:  "e1",
		User:      "alice",
		Type:      ChangeDelete,
		At:        time.Now().UTC(),
		OldEntity: docstore.Document{"Name": "Alice"},
	}}}

	rows, err := NewHistory(repo).ForEntity(ctx, "t1", "e1", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Name", rows[0].PropertyName)
	assert.Equal(t, "Alice", rows[0].PreviousValue)
	assert.Empty(t, rows[0].NewValue)
}

func TestHistoryUpdateDiff(t *testing.T) {
	ctx := context.Background()
	repo := &memoryChanges{changes: []Change{{
		EntityID:  "e1",
		User:      "alice",
		Type:      ChangeUpdate,
		At:        time.Now().UTC(),
		OldEntity: docstore.Document{"Name": "Alice", "Age": 30},
		NewEntity: docstore.Document{"Name": "Bob", "Age": 30},
	}}}

	rows, err := NewHistory(repo).ForEntity(ctx, "t1", "e1", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Name", rows[0].PropertyName)
	assert.Equal(t, "Alice", rows[0].PreviousValue)
	assert.Equal(t, "Bob", rows[0].NewValue)
}

func TestHistoryUpdateSkipsNilAndMissing(t *testing.T) {
	ctx := context.Background()
	repo := &memoryChanges{changes: []Change{{
		EntityID:  "e1",
		Type:      ChangeUpdate,
		At:        time.Now().UTC(),
		OldEntity: docstore.Document{"Name": "Alice"},
		NewEntity: docstore.Document{"Name": nil, "Added": "later"},
	}}}

	rows, err := NewHistory(repo).ForEntity(ctx, "t1", "e1", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestHistoryUpdateSkipsStructuredValues(t *testing.T) {
	ctx := context.Background()
	repo := &memoryChanges{changes: []Change{{
		EntityID: "e1",
		Type:     ChangeUpdate,
		At:       time.Now().UTC(),
		OldEntity: docstore.Document{
			"Address": map[string]any{"City": "Oslo"},
			"Tags":    []any{"go"},
		},
		NewEntity: docstore.Document{
			"Address": map[string]any{"City": "Bergen"},
			"Tags":    []any{"go", "sql"},
		},
	}}}

	rows, err := NewHistory(repo).ForEntity(ctx, "t1", "e1", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestHistoryCreateFlattensNestedLists(t *testing.T) {
	ctx := context.Background()
	repo := &memoryChanges{changes: []Change{{
		EntityID: "e1",
		User:     "alice",
		Type:     ChangeCreate,
		At:       time.Now().UTC(),
		NewEntity: docstore.Document{
			"Name": "Alice",
			"Tracks": []any{
				map[string]any{"AccountId": "a1", "HireReason": "referral"},
				map[string]any{"AccountId": "a2"},
			},
			"Tags": []any{"go", "sql"},
		},
	}}}

	rows, err := NewHistory(repo).ForEntity(ctx, "t1", "e1", time.Time{}, time.Time{})
	require.NoError(t, err)

	var props []string
	for _, row := range rows {
		props = append(props, row.PropertyName)
	}
	// Nested object properties are prefixed with the list's property name;
	// no list index appears. Scalar list elements produce no rows.
	assert.ElementsMatch(t, []string{"Name", "Tracks.AccountId", "Tracks.HireReason", "Tracks.AccountId"}, props)
}

func TestHistoryDateFilter(t *testing.T) {
	ctx := context.Background()
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	repo := &memoryChanges{changes: []Change{
		{EntityID: "e1", Type: ChangeCreate, At: early, NewEntity: docstore.Document{"Name": "Alice"}},
		{EntityID: "e1", Type: ChangeUpdate, At: late, OldEntity: docstore.Document{"Name": "Alice"}, NewEntity: docstore.Document{"Name": "Bob"}},
	}}

	rows, err := NewHistory(repo).ForEntity(ctx, "t1", "e1", time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), time.Time{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Bob", rows[0].NewValue)
}

func TestRecorderStampsAndStoresSnapshots(t *testing.T) {
	ctx := context.Background()
	repo := &memoryChanges{}
	rec := NewRecorder(repo, nil)

	doc := docstore.Document{"Name": "Alice"}
	require.NoError(t, rec.RecordCreate(ctx, "t1", "e1", "alice", doc))
	require.NoError(t, rec.RecordDelete(ctx, "t1", "e1", "alice", doc))
	require.Len(t, repo.changes, 2)

	created := repo.changes[0]
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, ChangeCreate, created.Type)
	assert.Equal(t, time.UTC, created.At.Location())
	assert.Nil(t, created.OldEntity)

	deleted := repo.changes[1]
	assert.Equal(t, ChangeDelete, deleted.Type)
	assert.Nil(t, deleted.NewEntity)

	// Snapshots are copies; later mutation of the source must not leak in.
	doc["Name"] = "Bob"
	assert.Equal(t, "Alice", created.NewEntity["Name"])
}
