package navgraph

import "github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/geometry"

// Route walks one agent along a precomputed path. The cursor only moves
// forward; once it passes the last node the route is complete for good.
type Route struct {
	path     []NodeID
	graph    *Graph
	cursor   int
	complete bool
}

// NewRoute wraps path. The graph is only read, to resolve node positions.
// An empty path is complete from the start.
func NewRoute(path []NodeID, graph *Graph) *Route {
	p := make([]NodeID, len(path))
	copy(p, path)
	return &Route{path: p, graph: graph, complete: len(p) == 0}
}

// Advance moves the cursor to the next waypoint.
func (r *Route) Advance() {
	if r.complete {
		return
	}
	r.cursor++
	if r.cursor >= len(r.path) {
		r.complete = true
	}
}

// CurrentTarget returns the position of the waypoint under the cursor.
// ok is false once the route is complete, and also when that node has been
// removed from the graph since the path was computed.
func (r *Route) CurrentTarget() (pos geometry.Vector2D, ok bool) {
	if r.complete || r.cursor >= len(r.path) || r.graph == nil {
		return geometry.Zero, false
	}
	return r.graph.Position(r.path[r.cursor])
}

// IsComplete reports whether every waypoint has been passed.
func (r *Route) IsComplete() bool { return r.complete }

// Cursor returns the index of the current waypoint.
func (r *Route) Cursor() int { return r.cursor }

// Path returns a copy of the node ids the route follows.
func (r *Route) Path() []NodeID {
	out := make([]NodeID, len(r.path))
	copy(out, r.path)
	return out
}

// Graph returns the graph the route resolves positions against.
func (r *Route) Graph() *Graph { return r.graph }

// Len returns the number of waypoints.
func (r *Route) Len() int { return len(r.path) }
