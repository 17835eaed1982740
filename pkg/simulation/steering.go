package simulation

import (
	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/obstacle"
)

// Goal is the point the seeking behaviour pulls toward, with its weight.
type Goal struct {
	Pos    geometry.Vector2D
	Weight float64
	Valid  bool
}

// ComputeSteering returns the acceleration requested by me for this tick.
// Each behaviour is limited on its own and then weighted; the sum is not
// clamped again so a strong avoidance push can dominate the flock forces.
// flock may contain me, it is skipped.
func ComputeSteering(me *Agent, flock, predators []*Agent, obstacles []*obstacle.Obstacle, goal Goal, cfg *Config) geometry.Vector2D {
	acc := BoundaryAvoidance(me, obstacles, cfg).Mul(cfg.AvoidanceFactor)
	acc = acc.Add(Separation(me, flock, cfg).Mul(cfg.SeparationFactor))
	acc = acc.Add(Alignment(me, flock, cfg).Mul(cfg.AlignmentFactor))
	acc = acc.Add(Cohesion(me, flock, cfg).Mul(cfg.CohesionFactor))
	acc = acc.Add(PredatorAvoidance(me, predators, cfg).Mul(cfg.PredatorFactor))
	if goal.Valid {
		acc = acc.Add(Seek(me, goal.Pos, cfg).Mul(goal.Weight))
	}
	return acc
}

// Separation pushes me away from flockmates inside the protected range,
// harder the closer they are.
func Separation(me *Agent, flock []*Agent, cfg *Config) geometry.Vector2D {
	return repel(me, flock, cfg.ProtectedRange)
}

// PredatorAvoidance is separation keyed on the predators and the predator range.
func PredatorAvoidance(me *Agent, predators []*Agent, cfg *Config) geometry.Vector2D {
	return repel(me, predators, cfg.PredatorRange)
}

func repel(me *Agent, others []*Agent, radius float64) geometry.Vector2D {
	var (
		force geometry.Vector2D
		count int
	)
	for _, other := range others {
		if other == me {
			continue
		}
		dist := me.DistanceTo(other)
		if dist >= radius {
			continue
		}
		count++
		// coincident agents are counted but give no direction
		if dist == 0 {
			continue
		}
		force = force.Add(me.Pos.Sub(other.Pos).Mul(radius / dist))
	}
	if count == 0 {
		return geometry.Zero
	}
	return limit(me, force, count)
}

// Alignment steers toward the summed velocity of visible flockmates.
func Alignment(me *Agent, flock []*Agent, cfg *Config) geometry.Vector2D {
	var (
		force geometry.Vector2D
		count int
	)
	for _, other := range flock {
		if other == me || me.DistanceTo(other) >= cfg.VisualRange {
			continue
		}
		force = force.Add(other.Vel)
		count++
	}
	if count == 0 || force.IsZero() {
		return geometry.Zero
	}
	return limit(me, force, count)
}

// Cohesion steers toward the centre of visible flockmates.
func Cohesion(me *Agent, flock []*Agent, cfg *Config) geometry.Vector2D {
	var (
		force geometry.Vector2D
		count int
	)
	for _, other := range flock {
		if other == me || me.DistanceTo(other) >= cfg.VisualRange {
			continue
		}
		force = force.Add(other.Pos.Sub(me.Pos))
		count++
	}
	if count == 0 || force.IsZero() {
		return geometry.Zero
	}
	return limit(me, force, count)
}

// BoundaryAvoidance repels me from the first obstacle whose buffer zone it is
// in. A crossing predicted for the next move gives a strong push away from the
// crossing point; otherwise the push comes from the nearest point of the wall.
// Later containing obstacles only add to the normalising count.
func BoundaryAvoidance(me *Agent, obstacles []*obstacle.Obstacle, cfg *Config) geometry.Vector2D {
	var first *obstacle.Obstacle
	count := 0
	for _, o := range obstacles {
		if o.Contains(me.Pos) {
			if first == nil {
				first = o
			}
			count++
		}
	}
	if first == nil {
		return geometry.Zero
	}

	var force geometry.Vector2D
	if hit, ok := first.PredictCollision(me.Pos, me.Pos.Add(me.Vel)); ok {
		if away, ok := me.Pos.Sub(hit).TryNormalize(); ok {
			force = away.Mul(cfg.BoundaryRange * 5)
		} else {
			force = first.Perpendicular().Mul(cfg.BoundaryRange)
		}
	} else {
		closest := first.ClosestPoint(me.Pos)
		if dist := me.Pos.DistanceTo(closest); dist > 0 {
			force = me.Pos.Sub(closest).Mul(cfg.BoundaryRange / dist)
		} else {
			force = first.Perpendicular().Mul(cfg.BoundaryRange)
		}
	}
	return limit(me, force, count)
}

// Seek returns the arrival steering toward target: nothing inside the arrived
// radius, a linear slow down inside the slowing radius, full speed beyond.
// Unlike the neighbour forces it is not clamped to me.MaxForce.
func Seek(me *Agent, target geometry.Vector2D, cfg *Config) geometry.Vector2D {
	offset := target.Sub(me.Pos)
	dist := offset.Len()
	if dist < cfg.ArrivedRadius {
		return geometry.Zero
	}
	dir, ok := offset.TryNormalize()
	if !ok {
		return geometry.Zero
	}

	speed := me.MaxSpeed
	if cfg.SlowingRadius > 0 && dist < cfg.SlowingRadius {
		speed *= dist / cfg.SlowingRadius
	}
	return dir.Mul(speed).Sub(me.Vel)
}

// limit averages force over count and turns it into a steering delta: the
// averaged direction at full speed minus the current velocity, clamped to
// the agent's maximum force. A vanishing average is returned untouched.
func limit(me *Agent, force geometry.Vector2D, count int) geometry.Vector2D {
	if count > 0 {
		force, _ = force.Div(float64(count))
	}
	if geometry.Round3(force.Len()) <= 0 {
		return force
	}
	return force.Normalize().Mul(me.MaxSpeed).Sub(me.Vel).Limit(me.MaxForce)
}
