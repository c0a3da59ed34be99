package audit

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/talenttrack/talenttrack/internal/docstore"
)

// History renders the recorded changes of an entity as field-level rows.
type History struct {
	repo Repository
}

func NewHistory(repo Repository) *History {
	return &History{repo: repo}
}

// ForEntity returns the flattened history of an entity within [from, to].
// A zero "to" means now.
func (h *History) ForEntity(ctx context.Context, tenantID, entityID string, from, to time.Time) ([]ChangeRow, error) {
	if to.IsZero() {
		to = time.Now().UTC()
	}
	changes, err := h.repo.ByEntity(ctx, tenantID, entityID, from, to)
	if err != nil {
		return nil, fmt.Errorf("audit: history for %s: %w", entityID, err)
	}
	rows := make([]ChangeRow, 0, len(changes))
	for _, c := range changes {
		rows = append(rows, expand(c)...)
	}
	return rows, nil
}

// expand turns a single change into its field-level rows. Creates walk the
// new snapshot, deletes the old one, and updates compare the two top-level
// property by property.
func expand(c Change) []ChangeRow {
	switch c.Type {
	case ChangeCreate:
		return flatten(c, c.NewEntity, "", true)
	case ChangeDelete:
		return flatten(c, c.OldEntity, "", false)
	case ChangeUpdate:
		return diffTopLevel(c)
	default:
		return nil
	}
}

// flatten emits one row per scalar property. List properties recurse into
// their object elements, prefixing nested names with the list's property
// name; list indices do not appear in the output.
func flatten(c Change, doc docstore.Document, prefix string, asNew bool) []ChangeRow {
	var rows []ChangeRow
	for _, name := range sortedKeys(doc) {
		if isIgnoredProperty(name) {
			continue
		}
		value := doc[name]
		qualified := name
		if prefix != "" {
			qualified = prefix + "." + name
		}
		if list, ok := value.([]any); ok {
			for _, elem := range list {
				child, ok := elem.(map[string]any)
				if !ok {
					continue
				}
				rows = append(rows, flatten(c, docstore.Document(child), qualified, asNew)...)
			}
			continue
		}
		row := ChangeRow{
			EntityID:     c.EntityID,
			ChangedBy:    c.User,
			ChangedDate:  c.At,
			PropertyName: qualified,
		}
		if asNew {
			row.NewValue = stringify(value)
		} else {
			row.PreviousValue = stringify(value)
		}
		rows = append(rows, row)
	}
	return rows
}

// diffTopLevel compares the two snapshots of an update property by property.
// Only top-level scalar properties are compared; a property missing from
// either snapshot, or nil on either side, is skipped rather than reported.
func diffTopLevel(c Change) []ChangeRow {
	var rows []ChangeRow
	for _, name := range sortedKeys(c.NewEntity) {
		if isIgnoredProperty(name) {
			continue
		}
		newValue := c.NewEntity[name]
		oldValue, present := c.OldEntity[name]
		if !present || newValue == nil || oldValue == nil {
			continue
		}
		// Structured values are not compared at this level; creates and
		// deletes are the recursive paths.
		switch newValue.(type) {
		case []any, map[string]any:
			continue
		}
		prev, next := stringify(oldValue), stringify(newValue)
		if prev == next {
			continue
		}
		rows = append(rows, ChangeRow{
			EntityID:      c.EntityID,
			ChangedBy:     c.User,
			ChangedDate:   c.At,
			PropertyName:  name,
			PreviousValue: prev,
			NewValue:      next,
		})
	}
	return rows
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func sortedKeys(doc docstore.Document) []string {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
