// Package obstacle models walls as line segments surrounded by an oriented
// rectangular buffer zone. Agents inside the buffer are repelled, and the
// buffer edges are what the predictive collision test looks at.
package obstacle

import (
	"errors"
	"fmt"
	"math"

	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/geometry"
)

// ErrWallTooShort is returned by New for walls below the requested minimum length.
var ErrWallTooShort = errors.New("wall is too short")

// Obstacle is a wall plus the buffer zone derived from it.
type Obstacle struct {
	wall   geometry.Segment
	radius float64
	buffer []geometry.Vector2D // top-left, top-right, bottom-right, bottom-left
}

// New creates a wall between start and end and builds its buffer.
// Walls shorter than minLength are refused, which is what the map editor
// relies on to keep degenerate walls out of a layout.
func New(start, end geometry.Vector2D, radius, minLength float64) (*Obstacle, error) {
	length := start.DistanceTo(end)
	if length < minLength || length*length < geometry.MinSegmentLenSqr {
		return nil, fmt.Errorf("%w: %.2f < %.2f", ErrWallTooShort, length, minLength)
	}
	return NewUnchecked(start, end, radius), nil
}

// NewUnchecked creates the wall without any length validation.
// A degenerate wall gets an empty buffer and never reports containment.
func NewUnchecked(start, end geometry.Vector2D, radius float64) *Obstacle {
	o := &Obstacle{wall: geometry.Segment{A: start, B: end}}
	o.BuildBuffer(radius)
	return o
}

// BuildBuffer recomputes the buffer zone for the given radius.
//
// The perpendicular offset is folded by ±45° at both ends, giving a convex
// quad that extends past the wall ends as well as to either side of it.
// When the wall is shorter than the minimum segment length the buffer is
// cleared and the obstacle becomes inert.
func (o *Obstacle) BuildBuffer(radius float64) {
	o.radius = radius
	if o.wall.Degenerate() {
		o.buffer = nil
		return
	}

	start, end := o.wall.A, o.wall.B
	offset := o.wall.Vector().Normalize().RotateDegrees(90).Mul(radius)

	o.buffer = []geometry.Vector2D{
		start.Add(offset.RotateDegrees(45)),
		end.Add(offset.RotateDegrees(-45)),
		end.Sub(offset.RotateDegrees(45)),
		start.Sub(offset.RotateDegrees(-45)),
	}
}

// SetEndpoints moves the wall and rebuilds the buffer with the current radius.
func (o *Obstacle) SetEndpoints(start, end geometry.Vector2D) {
	o.wall = geometry.Segment{A: start, B: end}
	o.BuildBuffer(o.radius)
}

// Contains reports whether p lies inside the buffer zone, borders included.
// Each edge is tested with the 2D cross product; the quad winds clockwise
// so the interior is on the non-positive side of every edge.
func (o *Obstacle) Contains(p geometry.Vector2D) bool {
	if len(o.buffer) != 4 {
		return false
	}
	for i := range 4 {
		a := o.buffer[i]
		b := o.buffer[(i+1)%4]
		if b.Sub(a).Cross(p.Sub(a)) > 0 {
			return false
		}
	}
	return true
}

// PredictCollision tests the straight move from current to next against the
// buffer edges. It returns the crossing nearest to current, if any.
// Edge parameters are exclusive so a path grazing a shared corner is not
// reported twice.
func (o *Obstacle) PredictCollision(current, next geometry.Vector2D) (geometry.Vector2D, bool) {
	if len(o.buffer) != 4 {
		return geometry.Zero, false
	}

	var (
		closest geometry.Vector2D
		found   bool
		minDist = math.Inf(1)
	)
	for i := range 4 {
		hit, ok := geometry.Intersect(current, next, o.buffer[i], o.buffer[(i+1)%4], false)
		if !ok {
			continue
		}
		if d := current.DistanceSquaredTo(hit); d < minDist {
			minDist = d
			closest = hit
			found = true
		}
	}
	return closest, found
}

// ClosestPoint returns the point of the bare wall (not the buffer) nearest to p.
func (o *Obstacle) ClosestPoint(p geometry.Vector2D) geometry.Vector2D {
	return o.wall.ClosestPoint(p)
}

// Perpendicular returns the wall normal used as fallback push direction.
// It is the zero vector for a degenerate wall.
func (o *Obstacle) Perpendicular() geometry.Vector2D {
	return o.wall.Vector().Normalize().RotateDegrees(90)
}

// NearWall reports whether p is within radius of the bare wall.
// The editor uses it for its erase tool.
func (o *Obstacle) NearWall(p geometry.Vector2D, radius float64) bool {
	return o.wall.DistanceTo(p) < radius
}

// Blocks reports whether the segment a→b crosses the bare wall, endpoints included.
func (o *Obstacle) Blocks(a, b geometry.Vector2D) bool {
	_, hit := geometry.Intersect(a, b, o.wall.A, o.wall.B, true)
	return hit
}

// Wall returns the underlying segment.
func (o *Obstacle) Wall() geometry.Segment { return o.wall }

// Radius returns the radius the buffer was last built with.
func (o *Obstacle) Radius() float64 { return o.radius }

// Buffer returns a copy of the buffer corners, empty for a degenerate wall.
func (o *Obstacle) Buffer() []geometry.Vector2D {
	out := make([]geometry.Vector2D, len(o.buffer))
	copy(out, o.buffer)
	return out
}

// ClearPath reports whether the straight line between a and b crosses none
// of the walls. Auto-generated graph edges must satisfy it.
func ClearPath(a, b geometry.Vector2D, walls []*Obstacle) bool {
	for _, w := range walls {
		if w.Blocks(a, b) {
			return false
		}
	}
	return true
}
