package geometry

// MinSegmentLenSqr is the squared length under which a segment is treated as a point.
const MinSegmentLenSqr = 0.01

// Segment is a straight line piece between two points.
type Segment struct {
	A Vector2D `json:"start" yaml:"start"`
	B Vector2D `json:"end" yaml:"end"`
}

// Vector returns B - A.
func (s Segment) Vector() Vector2D {
	return s.B.Sub(s.A)
}

// Midpoint returns the middle of the segment.
func (s Segment) Midpoint() Vector2D {
	return s.A.Lerp(s.B, 0.5)
}

// Degenerate reports whether the segment is too short to have a direction.
func (s Segment) Degenerate() bool {
	return s.Vector().LenSqr() < MinSegmentLenSqr
}

// ClosestPoint returns the point of the segment nearest to p.
// A degenerate segment collapses to its start point.
func (s Segment) ClosestPoint(p Vector2D) Vector2D {
	line := s.Vector()
	lenSq := line.LenSqr()
	if lenSq < MinSegmentLenSqr {
		return s.A
	}
	t := p.Sub(s.A).Dot(line) / lenSq
	t = max(0, min(1, t))
	return s.A.Add(line.Mul(t))
}

// DistanceTo returns the distance from p to the nearest point of the segment.
func (s Segment) DistanceTo(p Vector2D) float64 {
	return p.DistanceTo(s.ClosestPoint(p))
}

// Intersect computes where segment p1→p2 crosses segment p3→p4 using the
// parametric line equations. With inclusive set both parameters may sit on
// their bounds [0,1]; otherwise they must lie strictly inside (0,1), so
// touching at an endpoint does not count. Parallel segments never intersect.
func Intersect(p1, p2, p3, p4 Vector2D, inclusive bool) (Vector2D, bool) {
	den := (p1.X-p2.X)*(p3.Y-p4.Y) - (p1.Y-p2.Y)*(p3.X-p4.X)
	if den == 0 {
		return Zero, false
	}

	ua := ((p1.X-p3.X)*(p3.Y-p4.Y) - (p1.Y-p3.Y)*(p3.X-p4.X)) / den
	if !inRange(ua, inclusive) {
		return Zero, false
	}
	ub := ((p2.X-p1.X)*(p1.Y-p3.Y) - (p2.Y-p1.Y)*(p1.X-p3.X)) / den
	if !inRange(ub, inclusive) {
		return Zero, false
	}

	return Vector2D{
		X: p1.X + ua*(p2.X-p1.X),
		Y: p1.Y + ua*(p2.Y-p1.Y),
	}, true
}

// Intersects is Intersect for two Segment values.
func (s Segment) Intersects(other Segment, inclusive bool) (Vector2D, bool) {
	return Intersect(s.A, s.B, other.A, other.B, inclusive)
}

func inRange(t float64, inclusive bool) bool {
	if inclusive {
		return t >= 0 && t <= 1
	}
	return t > 0 && t < 1
}
