package simulation

import (
	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/navgraph"
)

// Kind separates agents running the steering pipeline from those that only move.
type Kind uint8

const (
	// Steerable agents compute forces every tick.
	Steerable Kind = iota
	// Inert agents keep their velocity; predators are inert.
	Inert
)

func (k Kind) String() string {
	if k == Inert {
		return "inert"
	}
	return "steerable"
}

// RouteState is where an agent is on its evacuation route.
type RouteState uint8

const (
	Unrouted RouteState = iota
	Routed
	Advancing
	Completed
)

func (s RouteState) String() string {
	switch s {
	case Routed:
		return "routed"
	case Advancing:
		return "advancing"
	case Completed:
		return "completed"
	}
	return "unrouted"
}

type Agent struct {
	ID   string
	Kind Kind
	Pos  geometry.Vector2D
	Vel  geometry.Vector2D
	Acc  geometry.Vector2D // reset at the start of every tick

	MaxSpeed float64
	MaxForce float64

	route *navgraph.Route
}

// NewBoid returns a steerable agent with the kinematic limits of cfg.
func NewBoid(id string, pos, vel geometry.Vector2D, cfg *Config) *Agent {
	return &Agent{ID: id, Kind: Steerable, Pos: pos, Vel: vel, MaxSpeed: cfg.MaxSpeed, MaxForce: cfg.MaxForce}
}

// NewPredator returns an inert agent drifting with vel.
func NewPredator(id string, pos, vel geometry.Vector2D, cfg *Config) *Agent {
	return &Agent{ID: id, Kind: Inert, Pos: pos, Vel: vel.Limit(cfg.PredatorMaxSpeed), MaxSpeed: cfg.PredatorMaxSpeed}
}

// Route returns the route the agent follows, or nil.
func (a *Agent) Route() *navgraph.Route { return a.route }

// SetRoute hands r to the agent. Passing nil drops the current route.
func (a *Agent) SetRoute(r *navgraph.Route) { a.route = r }

// RouteState derives the route state from the route cursor.
func (a *Agent) RouteState() RouteState {
	switch {
	case a.route == nil:
		return Unrouted
	case a.route.IsComplete():
		return Completed
	case a.route.Cursor() == 0:
		return Routed
	default:
		return Advancing
	}
}

// DistanceTo gives the cartesian distance from this Agent to the other
func (a *Agent) DistanceTo(other *Agent) float64 {
	return a.Pos.DistanceTo(other.Pos)
}

// DistanceSquaredTo gives squared magnitude of the vector from this Agent to the other
func (a *Agent) DistanceSquaredTo(other *Agent) float64 {
	return a.Pos.DistanceSquaredTo(other.Pos)
}

// integrate applies the pending acceleration, clamps the speed and moves the agent.
func (a *Agent) integrate() {
	a.Vel = a.Vel.Add(a.Acc)
	if a.Vel.LenSqr() > a.MaxSpeed*a.MaxSpeed {
		a.Vel = a.Vel.ScaleToLength(a.MaxSpeed)
	}
	a.Pos = a.Pos.Add(a.Vel)
	a.Acc = geometry.Zero
}

// confine applies the arena boundary policy.
func (a *Agent) confine(width, height float64, mode BoundaryMode) {
	if width <= 0 || height <= 0 {
		return
	}
	if mode == Wrap {
		a.Pos.X = wrap(a.Pos.X, width)
		a.Pos.Y = wrap(a.Pos.Y, height)
		return
	}
	a.Pos.X, a.Vel.X = reflect(a.Pos.X, a.Vel.X, width)
	a.Pos.Y, a.Vel.Y = reflect(a.Pos.Y, a.Vel.Y, height)
}

// reflect clamps p into [0, size] and turns v around when it still points out.
func reflect(p, v, size float64) (float64, float64) {
	switch {
	case p <= 0:
		if v < 0 {
			v = -v
		}
		return 0, v
	case p >= size:
		if v > 0 {
			v = -v
		}
		return size, v
	}
	return p, v
}

func wrap(v, size float64) float64 {
	switch {
	case v > size:
		return v - size
	case v < 0:
		return v + size
	}
	return v
}
