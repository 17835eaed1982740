package navgraph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport(t *testing.T) {
	g := New()
	a := g.AddNode(vec(0, 0), Exit)
	b := g.AddNode(vec(30, 40), Assembly)
	g.AddEdge(a, b, true)

	l := g.Export()
	require.Len(t, l.Nodes, 2)
	assert.Equal(t, NodeRecord{ID: 1, Pos: [2]float64{30, 40}, Type: "assembly"}, l.Nodes[1])
	assert.Equal(t, []EdgeRecord{
		{Start: 0, End: 1, Distance: 50},
		{Start: 1, End: 0, Distance: 50},
	}, l.Edges)

	raw, err := json.Marshal(l)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"nodes": [
			{"id": 0, "pos": [0, 0], "type": "exit"},
			{"id": 1, "pos": [30, 40], "type": "assembly"}
		],
		"edges": [
			{"start": 0, "end": 1, "distance": 50},
			{"start": 1, "end": 0, "distance": 50}
		]
	}`, string(raw))
}

func TestImport_RemapsAndDedups(t *testing.T) {
	// ids as left behind by a session that deleted nodes
	l := Layout{
		Nodes: []NodeRecord{
			{ID: 7, Pos: [2]float64{0, 0}, Type: "exit"},
			{ID: 12, Pos: [2]float64{100, 0}, Type: "ordinary"},
			{ID: 20, Pos: [2]float64{200, 0}, Type: "assembly"},
		},
		Edges: []EdgeRecord{
			{Start: 7, End: 12, Distance: 100},
			{Start: 12, End: 7, Distance: 100},
			{Start: 12, End: 20, Distance: 100},
			{Start: 20, End: 12, Distance: 999}, // stale weight is ignored
			{Start: 20, End: 55, Distance: 1},  // unknown node
		},
	}

	g := New()
	g.AddNode(vec(1, 1), Ordinary) // wiped by Import
	remap, err := g.Import(l)
	require.NoError(t, err)

	assert.Equal(t, 3, g.Len())
	require.Len(t, remap, 3)
	exit, asm := remap[7], remap[20]

	n, ok := g.Node(asm)
	require.True(t, ok)
	assert.Equal(t, Assembly, n.Category)

	w, ok := g.Weight(remap[20], remap[12])
	require.True(t, ok)
	assert.Equal(t, 100.0, w)

	path := g.ShortestPath(exit, asm)
	assert.Equal(t, []NodeID{exit, remap[12], asm}, path)

	// each saved pair became exactly one bidirectional edge
	assert.Len(t, g.Export().Edges, 4)
}

func TestImport_OneWayEdgeBecomesMutual(t *testing.T) {
	l := Layout{
		Nodes: []NodeRecord{
			{ID: 0, Pos: [2]float64{0, 0}, Type: "exit"},
			{ID: 1, Pos: [2]float64{10, 0}, Type: "assembly"},
		},
		Edges: []EdgeRecord{{Start: 1, End: 0, Distance: 10}},
	}
	g := New()
	remap, err := g.Import(l)
	require.NoError(t, err)
	assert.NotEmpty(t, g.ShortestPath(remap[0], remap[1]))
}

func TestImport_Errors(t *testing.T) {
	g := New()
	_, err := g.Import(Layout{Nodes: []NodeRecord{{ID: 0, Type: "stairwell"}}})
	assert.ErrorContains(t, err, "stairwell")

	_, err = g.Import(Layout{Nodes: []NodeRecord{{ID: 3, Type: "exit"}, {ID: 3, Type: "exit"}}})
	assert.ErrorContains(t, err, "duplicate")
}

func TestExportImportRoundTrip(t *testing.T) {
	g := New()
	a := g.AddNode(vec(0, 0), Exit)
	b := g.AddNode(vec(100, 0), Ordinary)
	c := g.AddNode(vec(100, 100), Destination)
	d := g.AddNode(vec(200, 0), Assembly)
	g.AddEdge(a, b, true)
	g.AddEdge(b, d, true)
	g.AddEdge(b, c, true)
	g.RemoveNode(c)

	h := New()
	remap, err := h.Import(g.Export())
	require.NoError(t, err)

	assert.Equal(t, g.Len(), h.Len())
	want := g.ShortestPath(a, d)
	got := h.ShortestPath(remap[int(a)], remap[int(d)])
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, remap[int(want[i])], got[i])
	}
}
