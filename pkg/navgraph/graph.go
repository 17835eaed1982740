// Package navgraph holds the waypoint graph agents are routed on: nodes with a
// category, weighted edges, nearest-node lookup and shortest paths.
//
// Node ids come from a counter that is never rewound, and removed nodes stay
// in the arena as tombstones, so an id held by a Route can go stale but can
// never point at a different node.
package navgraph

import (
	"fmt"
	"math"
	"strings"

	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/obstacle"
)

// NodeID identifies a node for the lifetime of a Graph.
type NodeID int

// Category classifies a node.
type Category uint8

const (
	Ordinary Category = iota
	Assembly
	Exit
	Destination
)

var categoryNames = [...]string{"ordinary", "assembly", "exit", "destination"}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("category(%d)", c)
}

// ParseCategory maps a layout string to a Category.
func ParseCategory(s string) (Category, error) {
	for i, name := range categoryNames {
		if strings.EqualFold(s, name) {
			return Category(i), nil
		}
	}
	return Ordinary, fmt.Errorf("unknown node category %q", s)
}

// Node is a read-only view of a graph node.
type Node struct {
	ID       NodeID
	Pos      geometry.Vector2D
	Category Category
}

type nodeRecord struct {
	pos      geometry.Vector2D
	category Category
	alive    bool
	out      map[NodeID]float64  // neighbour -> weight
	in       map[NodeID]struct{} // nodes holding an edge to this one
}

// Graph is a mutable directed graph with Euclidean edge weights.
// It is not safe for concurrent use.
type Graph struct {
	nodes []nodeRecord // index == NodeID
	live  int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{}
}

// AddNode inserts a node and returns its id.
func (g *Graph) AddNode(pos geometry.Vector2D, category Category) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, nodeRecord{
		pos:      pos,
		category: category,
		alive:    true,
		out:      make(map[NodeID]float64),
		in:       make(map[NodeID]struct{}),
	})
	g.live++
	return id
}

// AddEdge links a to b, and b to a as well when bidirectional is set.
// The weight is the distance between the nodes right now; moving a node
// later does not update it. Unknown ids and self loops are ignored.
func (g *Graph) AddEdge(a, b NodeID, bidirectional bool) {
	if a == b || !g.Has(a) || !g.Has(b) {
		return
	}
	w := g.nodes[a].pos.DistanceTo(g.nodes[b].pos)
	g.link(a, b, w)
	if bidirectional {
		g.link(b, a, w)
	}
}

func (g *Graph) link(from, to NodeID, w float64) {
	g.nodes[from].out[to] = w
	g.nodes[to].in[from] = struct{}{}
}

// RemoveNode deletes a node together with every edge touching it.
func (g *Graph) RemoveNode(id NodeID) {
	if !g.Has(id) {
		return
	}
	rec := &g.nodes[id]
	for from := range rec.in {
		delete(g.nodes[from].out, id)
	}
	for to := range rec.out {
		delete(g.nodes[to].in, id)
	}
	rec.alive = false
	rec.out = nil
	rec.in = nil
	g.live--
}

// Has reports whether id names a live node.
func (g *Graph) Has(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes) && g.nodes[id].alive
}

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) (Node, bool) {
	if !g.Has(id) {
		return Node{}, false
	}
	rec := g.nodes[id]
	return Node{ID: id, Pos: rec.pos, Category: rec.category}, true
}

// Position returns the position of a live node.
func (g *Graph) Position(id NodeID) (geometry.Vector2D, bool) {
	if !g.Has(id) {
		return geometry.Zero, false
	}
	return g.nodes[id].pos, true
}

// SetPosition moves a node. Existing edge weights are left untouched.
func (g *Graph) SetPosition(id NodeID, pos geometry.Vector2D) {
	if g.Has(id) {
		g.nodes[id].pos = pos
	}
}

// Weight returns the weight of the edge from a to b.
func (g *Graph) Weight(a, b NodeID) (float64, bool) {
	if !g.Has(a) {
		return 0, false
	}
	w, ok := g.nodes[a].out[b]
	return w, ok
}

// Neighbors returns a copy of the outgoing edges of id.
func (g *Graph) Neighbors(id NodeID) map[NodeID]float64 {
	if !g.Has(id) {
		return nil
	}
	out := make(map[NodeID]float64, len(g.nodes[id].out))
	for k, v := range g.nodes[id].out {
		out[k] = v
	}
	return out
}

// Len returns the number of live nodes.
func (g *Graph) Len() int { return g.live }

// Nodes returns every live node in id order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, g.live)
	for i, rec := range g.nodes {
		if rec.alive {
			out = append(out, Node{ID: NodeID(i), Pos: rec.pos, Category: rec.category})
		}
	}
	return out
}

// NodesByCategory returns the live nodes of one category in id order.
func (g *Graph) NodesByCategory(c Category) []Node {
	var out []Node
	for i, rec := range g.nodes {
		if rec.alive && rec.category == c {
			out = append(out, Node{ID: NodeID(i), Pos: rec.pos, Category: rec.category})
		}
	}
	return out
}

// Clear removes every node. The id counter keeps running so ids handed out
// before the reset are never reused.
func (g *Graph) Clear() {
	for i := range g.nodes {
		g.nodes[i] = nodeRecord{}
	}
	g.live = 0
}

// NearestNode returns the live node closest to pos. A nil category matches
// any node. ok is false when nothing matches.
func (g *Graph) NearestNode(pos geometry.Vector2D, category *Category) (id NodeID, ok bool) {
	best := math.Inf(1)
	for i, rec := range g.nodes {
		if !rec.alive || (category != nil && rec.category != *category) {
			continue
		}
		if d := pos.DistanceSquaredTo(rec.pos); d < best {
			best = d
			id = NodeID(i)
			ok = true
		}
	}
	return id, ok
}

// NodeAt returns the first node lying within radius of pos, in id order.
func (g *Graph) NodeAt(pos geometry.Vector2D, radius float64) (NodeID, bool) {
	for i, rec := range g.nodes {
		if rec.alive && pos.DistanceSquaredTo(rec.pos) < radius*radius {
			return NodeID(i), true
		}
	}
	return 0, false
}

// AutoConnect adds a bidirectional edge between every pair of nodes closer
// than radius whose straight line does not cross any wall.
// It returns the number of pairs linked.
func (g *Graph) AutoConnect(radius float64, walls []*obstacle.Obstacle) int {
	linked := 0
	for a := range g.nodes {
		if !g.nodes[a].alive {
			continue
		}
		for b := a + 1; b < len(g.nodes); b++ {
			if !g.nodes[b].alive {
				continue
			}
			pa, pb := g.nodes[a].pos, g.nodes[b].pos
			if pa.DistanceTo(pb) >= radius || !obstacle.ClearPath(pa, pb, walls) {
				continue
			}
			g.AddEdge(NodeID(a), NodeID(b), true)
			linked++
		}
	}
	return linked
}
