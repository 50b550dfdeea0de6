package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertEdge_DanglingFails(t *testing.T) {
	d := setupTestDB(t)
	mustUpsert(t, d, "a.md")

	err := d.InsertEdge(Edge{SourceID: "a.md", TargetID: "missing.md", EdgeType: "depends_on"})
	assert.ErrorIs(t, err, ErrIntegrity)

	err = d.InsertEdge(Edge{SourceID: "missing.md", TargetID: "a.md", EdgeType: "depends_on"})
	assert.ErrorIs(t, err, ErrIntegrity)
}

func TestInsertEdge_DuplicateTriple(t *testing.T) {
	d := setupTestDB(t)
	mustUpsert(t, d, "a.md", "b.md")
	e := Edge{SourceID: "a.md", TargetID: "b.md", EdgeType: "depends_on"}
	require.NoError(t, d.InsertEdge(e))

	assert.ErrorIs(t, d.InsertEdge(e), ErrIntegrity)

	// same endpoints, different type
	require.NoError(t, d.InsertEdge(Edge{SourceID: "a.md", TargetID: "b.md", EdgeType: "related"}))
	edges, err := d.AllEdges()
	require.NoError(t, err)
	assert.Len(t, edges, 2)
}

func TestEdgeQueries(t *testing.T) {
	d := setupTestDB(t)
	mustUpsert(t, d, "a.md", "b.md", "c.md")
	require.NoError(t, d.InsertEdge(Edge{SourceID: "a.md", TargetID: "c.md", EdgeType: "related"}))
	require.NoError(t, d.InsertEdge(Edge{SourceID: "a.md", TargetID: "b.md", EdgeType: "epic"}))
	require.NoError(t, d.InsertEdge(Edge{SourceID: "b.md", TargetID: "c.md", EdgeType: "depends_on"}))

	from, err := d.EdgesFrom("a.md")
	require.NoError(t, err)
	assert.Equal(t, []Edge{
		{SourceID: "a.md", TargetID: "b.md", EdgeType: "epic"},
		{SourceID: "a.md", TargetID: "c.md", EdgeType: "related"},
	}, from)

	to, err := d.EdgesTo("c.md")
	require.NoError(t, err)
	assert.Len(t, to, 2)

	require.NoError(t, d.ClearEdges())
	all, err := d.AllEdges()
	require.NoError(t, err)
	assert.Empty(t, all)

	c, err := d.Counts()
	require.NoError(t, err)
	assert.Equal(t, 3, c.Nodes)
}

func TestForeignKeys_BlockNodeDelete(t *testing.T) {
	d := setupTestDB(t)
	mustUpsert(t, d, "a.md", "b.md")
	require.NoError(t, d.InsertEdge(Edge{SourceID: "a.md", TargetID: "b.md", EdgeType: "related"}))

	_, err := d.Conn().Exec(`DELETE FROM nodes WHERE id = 'b.md'`)
	require.Error(t, err)
	assert.True(t, isConstraint(err))
}
