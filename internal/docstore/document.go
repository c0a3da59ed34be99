package docstore

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Document is the structural key/value form every stored entity is reduced
// to at the persistence boundary. Redaction and change tracking operate on
// documents, never on concrete entity types.
type Document map[string]any

// Marshal reduces an entity to its document form via its JSON encoding.
func Marshal(v any) (Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("docstore: marshal: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("docstore: marshal: %w", err)
	}
	return doc, nil
}

// Unmarshal rebuilds an entity from its document form.
func Unmarshal(doc Document, target any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("docstore: unmarshal: %w", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("docstore: unmarshal: %w", err)
	}
	return nil
}

// Clone makes a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	clone := make(Document, len(d))
	for k, v := range d {
		clone[k] = cloneValue(v)
	}
	return clone
}

func cloneValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		inner := make(map[string]any, len(value))
		for k, item := range value {
			inner[k] = cloneValue(item)
		}
		return inner
	case Document:
		return map[string]any(value.Clone())
	case []any:
		items := make([]any, len(value))
		for i, item := range value {
			items[i] = cloneValue(item)
		}
		return items
	default:
		return v
	}
}

// Key resolves a stored key case-insensitively. Property names configured
// by administrators rarely match the JSON casing of the entity exactly.
func (d Document) Key(name string) (string, bool) {
	if _, ok := d[name]; ok {
		return name, true
	}
	for k := range d {
		if strings.EqualFold(k, name) {
			return k, true
		}
	}
	return "", false
}
