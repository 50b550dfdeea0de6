package glossary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgen/internal/db"
)

const sampleYAML = `
terms:
  - term: story
    definition: A unit of user-facing work.
    source: docs/glossary.md
    variants:
      - phrase: user story
        usage_rule: product documents only
    forbidden: [ticket, task card]
  - term: save
    definition: A bookmarked item.
    source: docs/glossary.md
    forbidden: [bookmark]
`

func TestParse(t *testing.T) {
	g, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)
	require.Len(t, g.Terms, 2)
	assert.Equal(t, "story", g.Terms[0].Term)
	assert.Equal(t, []Variant{{Phrase: "user story", UsageRule: "product documents only"}}, g.Terms[0].Variants)
	assert.Equal(t, []string{"ticket", "task card"}, g.Terms[0].Forbidden)
}

func TestParse_Empty(t *testing.T) {
	g, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, g.Terms)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing definition", "terms:\n  - term: a\n    source: x.md\n"},
		{"missing source", "terms:\n  - term: a\n    definition: d\n"},
		{"empty forbidden", "terms:\n  - {term: a, definition: d, source: x.md, forbidden: ['']}\n"},
		{"empty variant", "terms:\n  - {term: a, definition: d, source: x.md, variants: [{usage_rule: r}]}\n"},
		{"unknown key", "terms:\n  - {term: a, definition: d, source: x.md, alias: b}\n"},
		{"duplicate term", "terms:\n  - {term: a, definition: d, source: x.md}\n  - {term: A, definition: d, source: x.md}\n"},
		{"forbidden is canonical", "terms:\n  - {term: a, definition: d, source: x.md}\n  - {term: b, definition: d, source: x.md, forbidden: [a]}\n"},
		{"variant forbidden elsewhere", "terms:\n  - {term: a, definition: d, source: x.md, variants: [{phrase: c}]}\n  - {term: b, definition: d, source: x.md, forbidden: [c]}\n"},
		{"malformed", "terms: [unclosed\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidGlossary)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glossary.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))
	g, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, g.Terms, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestInsertAndFromStore(t *testing.T) {
	store, err := db.OpenDB(":memory:")
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.UpsertNode(db.Node{ID: "docs/glossary.md", Tier: 1, Type: "implementation"}))

	g, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)
	require.NoError(t, store.WithTx(func(tx *db.Tx) error { return Insert(tx, g.Terms) }))

	c, err := store.Counts()
	require.NoError(t, err)
	assert.Equal(t, 2, c.Canonical)
	assert.Equal(t, 1, c.Variants)
	assert.Equal(t, 3, c.Forbidden)

	back, err := FromStore(store)
	require.NoError(t, err)
	require.Len(t, back.Terms, 2)
	// canonical terms come back ordered by term
	assert.Equal(t, "save", back.Terms[0].Term)
	assert.Equal(t, []string{"bookmark"}, back.Terms[0].Forbidden)
	assert.Equal(t, "story", back.Terms[1].Term)
	assert.ElementsMatch(t, []string{"ticket", "task card"}, back.Terms[1].Forbidden)
	assert.Equal(t, g.Terms[0].Variants, back.Terms[1].Variants)
}

func TestInsert_UnindexedSource(t *testing.T) {
	store, err := db.OpenDB(":memory:")
	require.NoError(t, err)
	defer store.Close()

	err = Insert(store, []Term{{Term: "a", Definition: "d", Source: "nowhere.md"}})
	assert.ErrorIs(t, err, db.ErrIntegrity)
}
