package simulation

import (
	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/navgraph"
)

// AgentView is the read-only copy of an agent handed to the viewer.
type AgentView struct {
	ID    string
	Kind  Kind
	Pos   geometry.Vector2D
	Vel   geometry.Vector2D
	State RouteState
	// Waypoints still ahead of the agent, current one first.
	Waypoints []geometry.Vector2D
}

// WallView is a wall with its buffer corners.
type WallView struct {
	Wall   geometry.Segment
	Buffer []geometry.Vector2D
}

// EdgeView is one drawable graph edge.
type EdgeView struct {
	From, To geometry.Vector2D
}

// Snapshot is what the viewer draws for one frame. It shares nothing with
// the World it was taken from.
type Snapshot struct {
	Tick        uint64
	Agents      []AgentView
	Predators   []AgentView
	Walls       []WallView
	Nodes       []navgraph.Node
	Edges       []EdgeView
	Assembly    geometry.Vector2D
	HasAssembly bool
	Mode        BoundaryMode
	Paused      bool
	Stats       Stats
}

// Snapshot copies the current state of the world. Remaining waypoints are
// always included; whether routes are drawn is up to the viewer.
func (w *World) Snapshot(cfg *Config) *Snapshot {
	s := &Snapshot{
		Tick:        w.Ticks,
		Agents:      make([]AgentView, 0, len(w.Agents)),
		Predators:   make([]AgentView, 0, len(w.Predators)),
		Walls:       make([]WallView, 0, len(w.Obstacles)),
		Assembly:    w.Assembly,
		HasAssembly: w.HasAssembly,
		Mode:        cfg.BoundaryMode,
		Stats:       w.Stats(),
	}
	for _, a := range w.Agents {
		s.Agents = append(s.Agents, viewOf(a, true))
	}
	for _, p := range w.Predators {
		s.Predators = append(s.Predators, viewOf(p, false))
	}
	for _, o := range w.Obstacles {
		s.Walls = append(s.Walls, WallView{Wall: o.Wall(), Buffer: o.Buffer()})
	}
	if w.Graph != nil {
		s.Nodes = w.Graph.Nodes()
		for _, n := range s.Nodes {
			for to := range w.Graph.Neighbors(n.ID) {
				// mutual edges are drawn once
				if _, ok := w.Graph.Weight(to, n.ID); ok && to < n.ID {
					continue
				}
				if pos, ok := w.Graph.Position(to); ok {
					s.Edges = append(s.Edges, EdgeView{From: n.Pos, To: pos})
				}
			}
		}
	}
	return s
}

func viewOf(a *Agent, withRoute bool) AgentView {
	v := AgentView{ID: a.ID, Kind: a.Kind, Pos: a.Pos, Vel: a.Vel, State: a.RouteState()}
	if withRoute && a.route != nil && !a.route.IsComplete() && a.route.Graph() != nil {
		g := a.route.Graph()
		for _, id := range a.route.Path()[a.route.Cursor():] {
			if pos, ok := g.Position(id); ok {
				v.Waypoints = append(v.Waypoints, pos)
			}
		}
	}
	return v
}
