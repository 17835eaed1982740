package navgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeNodeGraph() (*Graph, []NodeID) {
	g := New()
	ids := []NodeID{
		g.AddNode(vec(0, 0), Exit),
		g.AddNode(vec(50, 0), Ordinary),
		g.AddNode(vec(100, 0), Assembly),
	}
	return g, ids
}

func TestRoute_AdvanceToCompletion(t *testing.T) {
	g, ids := threeNodeGraph()
	r := NewRoute(ids, g)

	var states []bool
	states = append(states, r.IsComplete())
	for range 3 {
		r.Advance()
		states = append(states, r.IsComplete())
	}
	assert.Equal(t, []bool{false, false, false, true}, states)

	_, ok := r.CurrentTarget()
	assert.False(t, ok)

	// completion is sticky
	r.Advance()
	assert.True(t, r.IsComplete())
	assert.Equal(t, 3, r.Cursor())
}

func TestRoute_CurrentTarget(t *testing.T) {
	g, ids := threeNodeGraph()
	r := NewRoute(ids, g)

	pos, ok := r.CurrentTarget()
	require.True(t, ok)
	assert.True(t, pos.Eq(vec(0, 0)))

	r.Advance()
	pos, ok = r.CurrentTarget()
	require.True(t, ok)
	assert.True(t, pos.Eq(vec(50, 0)))
}

func TestRoute_EmptyPath(t *testing.T) {
	r := NewRoute(nil, New())
	assert.True(t, r.IsComplete())
	_, ok := r.CurrentTarget()
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestRoute_DanglingNode(t *testing.T) {
	g, ids := threeNodeGraph()
	r := NewRoute(ids, g)
	r.Advance()

	g.RemoveNode(ids[1])
	_, ok := r.CurrentTarget()
	assert.False(t, ok, "removed waypoint must read as no target")
	assert.False(t, r.IsComplete())

	r.Advance()
	pos, ok := r.CurrentTarget()
	require.True(t, ok)
	assert.True(t, pos.Eq(vec(100, 0)))
}

func TestRoute_PathIsCopied(t *testing.T) {
	g, ids := threeNodeGraph()
	r := NewRoute(ids, g)
	ids[0] = 99

	assert.Equal(t, NodeID(0), r.Path()[0])
	p := r.Path()
	p[1] = 99
	assert.Equal(t, NodeID(1), r.Path()[1])
}
