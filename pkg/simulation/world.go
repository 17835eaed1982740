package simulation

import (
	"fmt"

	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/navgraph"
	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/obstacle"
)

// World holds everything one simulation tick reads and writes.
// It is not safe for concurrent use; WorldActor owns it when running live.
type World struct {
	Agents    []*Agent
	Predators []*Agent
	Obstacles []*obstacle.Obstacle
	Graph     *navgraph.Graph

	// Assembly is the static point unrouted and finished agents drift to.
	Assembly    geometry.Vector2D
	HasAssembly bool

	Ticks uint64

	grid    *spatialGrid
	flock   []*Agent
	nextBID int
	nextPID int
}

func NewWorld() *World {
	return &World{Graph: navgraph.New(), grid: newSpatialGrid()}
}

// Step advances every agent one tick, using the assembly node of graph (if
// any) as the static seeking point.
func Step(agents []*Agent, obstacles []*obstacle.Obstacle, predators []*Agent, graph *navgraph.Graph, cfg *Config) {
	w := &World{Agents: agents, Obstacles: obstacles, Predators: predators, Graph: graph, grid: newSpatialGrid()}
	if graph != nil {
		if nodes := graph.NodesByCategory(navgraph.Assembly); len(nodes) > 0 {
			w.SetAssembly(nodes[0].Pos)
		}
	}
	w.Step(cfg)
}

// Step advances the world one tick in two phases. Every steerable agent first
// computes its acceleration from the state left by the previous tick, then
// all agents integrate and are confined to the arena. No agent sees another
// one half-updated, so the order of Agents does not change the outcome.
func (w *World) Step(cfg *Config) {
	if w.grid == nil {
		w.grid = newSpatialGrid()
	}
	w.grid.rebuild(w.Agents, cellSizeFor(cfg))

	for _, a := range w.Agents {
		if a.Kind != Steerable {
			continue
		}
		goal := w.goalFor(a, cfg)
		w.flock = w.grid.nearby(a.Pos, w.Agents, w.flock[:0])
		a.Acc = ComputeSteering(a, w.flock, w.Predators, w.Obstacles, goal, cfg)
	}

	for _, a := range w.Agents {
		a.integrate()
		a.confine(cfg.WorldWidth, cfg.WorldHeight, cfg.BoundaryMode)
	}
	for _, p := range w.Predators {
		p.integrate()
		p.confine(cfg.WorldWidth, cfg.WorldHeight, cfg.BoundaryMode)
	}
	w.Ticks++
}

// goalFor moves the route cursor on when the current waypoint is reached and
// returns what a should seek this tick.
func (w *World) goalFor(a *Agent, cfg *Config) Goal {
	if r := a.route; r != nil && !r.IsComplete() {
		if target, ok := r.CurrentTarget(); ok {
			if a.Pos.DistanceTo(target) < cfg.ArrivedRadius {
				r.Advance()
				target, ok = r.CurrentTarget()
			}
			if ok {
				return Goal{Pos: target, Weight: cfg.SeekingFactor, Valid: true}
			}
		}
	}
	if w.HasAssembly {
		return Goal{Pos: w.Assembly, Weight: cfg.AssemblySeekingFactor, Valid: true}
	}
	return Goal{}
}

// SetAssembly places the static assembly point.
func (w *World) SetAssembly(p geometry.Vector2D) {
	w.Assembly = p
	w.HasAssembly = true
}

// AddBoid spawns a steerable agent.
func (w *World) AddBoid(pos, vel geometry.Vector2D, cfg *Config) *Agent {
	a := NewBoid(fmt.Sprintf("Boid-%03d", w.nextBID), pos, vel, cfg)
	w.nextBID++
	w.Agents = append(w.Agents, a)
	return a
}

// AddPredator spawns an inert predator.
func (w *World) AddPredator(pos, vel geometry.Vector2D, cfg *Config) *Agent {
	p := NewPredator(fmt.Sprintf("Predator-%03d", w.nextPID), pos, vel, cfg)
	w.nextPID++
	w.Predators = append(w.Predators, p)
	return p
}

// AddWall validates and adds a wall with the configured buffer radius.
func (w *World) AddWall(start, end geometry.Vector2D, cfg *Config) (*obstacle.Obstacle, error) {
	o, err := obstacle.New(start, end, cfg.BufferRadius, cfg.MinWallLength)
	if err != nil {
		return nil, err
	}
	w.Obstacles = append(w.Obstacles, o)
	return o, nil
}

// RebuildBuffers rebuilds every buffer zone with a new radius. Call it
// between ticks only.
func (w *World) RebuildBuffers(radius float64) {
	for _, o := range w.Obstacles {
		o.BuildBuffer(radius)
	}
}

// AssignRoute routes a from the exit node nearest to it to the assembly node.
// With several assembly nodes the first one is used. It returns false, and
// leaves a untouched, when the graph has no exit, no assembly node, or no
// path between them.
func AssignRoute(a *Agent, g *navgraph.Graph) bool {
	if g == nil {
		return false
	}
	exit := navgraph.Exit
	start, ok := g.NearestNode(a.Pos, &exit)
	if !ok {
		return false
	}
	assembly := g.NodesByCategory(navgraph.Assembly)
	if len(assembly) == 0 {
		return false
	}
	path := g.ShortestPath(start, assembly[0].ID)
	if len(path) == 0 {
		return false
	}
	a.SetRoute(navgraph.NewRoute(path, g))
	return true
}

// AssignRoutes routes every steerable agent and returns how many got a route.
func (w *World) AssignRoutes() int {
	n := 0
	for _, a := range w.Agents {
		if a.Kind == Steerable && AssignRoute(a, w.Graph) {
			n++
		}
	}
	return n
}

// Stats counts agents per route state.
type Stats struct {
	Agents    int
	Predators int
	Unrouted  int
	Routed    int
	Advancing int
	Completed int
}

func (w *World) Stats() Stats {
	s := Stats{Agents: len(w.Agents), Predators: len(w.Predators)}
	for _, a := range w.Agents {
		switch a.RouteState() {
		case Unrouted:
			s.Unrouted++
		case Routed:
			s.Routed++
		case Advancing:
			s.Advancing++
		case Completed:
			s.Completed++
		}
	}
	return s
}
