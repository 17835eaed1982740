package navgraph

import (
	"fmt"
	"slices"

	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/geometry"
)

// NodeRecord is the saved form of a node. Pos is written as a two element
// array to stay compatible with existing map files.
type NodeRecord struct {
	ID   int        `json:"id"`
	Pos  [2]float64 `json:"pos"`
	Type string     `json:"type"`
}

// EdgeRecord is the saved form of one directed edge.
type EdgeRecord struct {
	Start    int     `json:"start"`
	End      int     `json:"end"`
	Distance float64 `json:"distance"`
}

// Layout is the saved form of a whole graph.
type Layout struct {
	Nodes []NodeRecord `json:"nodes"`
	Edges []EdgeRecord `json:"edges"`
}

// Export dumps every live node and every directed edge. Edges are emitted in
// node id order, then neighbour id order, so the output is stable.
func (g *Graph) Export() Layout {
	out := Layout{Nodes: []NodeRecord{}, Edges: []EdgeRecord{}}
	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, NodeRecord{
			ID:   int(n.ID),
			Pos:  [2]float64{n.Pos.X, n.Pos.Y},
			Type: n.Category.String(),
		})
	}
	for _, n := range g.Nodes() {
		rec := g.nodes[n.ID]
		for _, to := range sortedKeys(rec.out) {
			out.Edges = append(out.Edges, EdgeRecord{Start: int(n.ID), End: int(to), Distance: rec.out[to]})
		}
	}
	return out
}

// Import clears g and loads l into it. Saved ids are not kept: every node gets
// a fresh id and edges are remapped through the returned old->new table.
// Each unordered pair is added once, bidirectionally, with its weight taken
// from the node positions rather than the stored distance.
// Edges naming unknown nodes are skipped.
func (g *Graph) Import(l Layout) (map[int]NodeID, error) {
	g.Clear()
	remap := make(map[int]NodeID, len(l.Nodes))
	for _, n := range l.Nodes {
		c, err := ParseCategory(n.Type)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", n.ID, err)
		}
		if _, dup := remap[n.ID]; dup {
			return nil, fmt.Errorf("node %d: duplicate id", n.ID)
		}
		remap[n.ID] = g.AddNode(geometry.Vector2D{X: n.Pos[0], Y: n.Pos[1]}, c)
	}

	type pair struct{ lo, hi NodeID }
	done := make(map[pair]struct{}, len(l.Edges))
	for _, e := range l.Edges {
		a, okA := remap[e.Start]
		b, okB := remap[e.End]
		if !okA || !okB || a == b {
			continue
		}
		key := pair{min(a, b), max(a, b)}
		if _, seen := done[key]; seen {
			continue
		}
		done[key] = struct{}{}
		g.AddEdge(a, b, true)
	}
	return remap, nil
}

func sortedKeys(m map[NodeID]float64) []NodeID {
	keys := make([]NodeID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
