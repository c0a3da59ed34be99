package docstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalRoundTrip(t *testing.T) {
	type entity struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Age  int    `json:"age"`
	}

	doc, err := Marshal(entity{ID: "e1", Name: "Alice", Age: 30})
	require.NoError(t, err)
	assert.Equal(t, "Alice", doc["name"])
	// Numbers come back as float64, the JSON number type.
	assert.Equal(t, float64(30), doc["age"])

	var out entity
	require.NoError(t, Unmarshal(doc, &out))
	assert.Equal(t, "e1", out.ID)
	assert.Equal(t, 30, out.Age)
}

func TestCloneIsDeep(t *testing.T) {
	doc := Document{
		"name": "Alice",
		"tracks": []any{
			map[string]any{"accountId": "a1"},
		},
	}
	clone := doc.Clone()

	clone["name"] = "Bob"
	clone["tracks"].([]any)[0].(map[string]any)["accountId"] = "a2"

	assert.Equal(t, "Alice", doc["name"])
	assert.Equal(t, "a1", doc["tracks"].([]any)[0].(map[string]any)["accountId"])
}

func TestKeyIsCaseInsensitive(t *testing.T) {
	doc := Document{"hireReason": "referral"}

	key, ok := doc.Key("HireReason")
	require.True(t, ok)
	assert.Equal(t, "hireReason", key)

	_, ok = doc.Key("missing")
	assert.False(t, ok)
}
