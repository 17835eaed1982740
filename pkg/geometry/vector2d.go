package geometry

import (
	"fmt"
	"math"
)

// Epsilon is the tolerance used for approximate float comparisons.
const Epsilon = 1e-9

// Vector2D is a 2D vector or point in cartesian space.
// Fields are public so literals like Vector2D{X: 1, Y: 2} stay readable.
type Vector2D struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Zero is the null vector.
var Zero = Vector2D{}

// NewVector creates a new Vector2D.
func NewVector(x, y float64) Vector2D {
	return Vector2D{X: x, Y: y}
}

// NewVectorPolar creates a Vector2D from a length and an angle in radians.
func NewVectorPolar(radius, theta float64) Vector2D {
	x := radius * math.Cos(theta)
	y := radius * math.Sin(theta)

	// snap values that are only non-zero because of rounding
	if math.Abs(x) < Epsilon {
		x = 0
	}
	if math.Abs(y) < Epsilon {
		y = 0
	}
	return Vector2D{X: x, Y: y}
}

// String implements fmt.Stringer.
func (v Vector2D) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", v.X, v.Y)
}

// ---------------------------------------------------------------------
// Arithmetic
// Value receivers everywhere: the struct is two floats, copies are cheap
// and callers never see their operands change.
// ---------------------------------------------------------------------

// Add returns v + other.
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{v.X + other.X, v.Y + other.Y}
}

// Sub returns v - other.
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D{v.X - other.X, v.Y - other.Y}
}

// Mul scales the vector by a scalar value.
func (v Vector2D) Mul(scalar float64) Vector2D {
	return Vector2D{v.X * scalar, v.Y * scalar}
}

// Div scales the vector by 1/scalar.
// A zero scalar yields the zero vector and ok=false.
func (v Vector2D) Div(scalar float64) (result Vector2D, ok bool) {
	if scalar == 0 {
		return Zero, false
	}
	return Vector2D{v.X / scalar, v.Y / scalar}, true
}

// Neg returns the opposite vector.
func (v Vector2D) Neg() Vector2D {
	return Vector2D{-v.X, -v.Y}
}

// Dot returns the dot product of two vectors.
func (v Vector2D) Dot(other Vector2D) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Cross returns the z-component of the 3D cross product.
// Its sign tells on which side of v the other vector lies.
func (v Vector2D) Cross(other Vector2D) float64 {
	return v.X*other.Y - v.Y*other.X
}

// ---------------------------------------------------------------------
// Magnitude
// ---------------------------------------------------------------------

// LenSqr returns the squared length. Prefer it for comparisons.
func (v Vector2D) LenSqr() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Len returns the length of the vector.
func (v Vector2D) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// IsZero reports whether the vector is too short to carry a direction.
func (v Vector2D) IsZero() bool {
	return v.LenSqr() < Epsilon*Epsilon
}

// Normalize returns a unit vector in the same direction,
// or the zero vector if v has no usable direction.
func (v Vector2D) Normalize() Vector2D {
	l := v.Len()
	if l < Epsilon {
		return Zero
	}
	return v.Mul(1 / l)
}

// TryNormalize is Normalize with an explicit failure flag,
// for callers that need a fallback instead of a silent zero.
func (v Vector2D) TryNormalize() (Vector2D, bool) {
	l := v.Len()
	if l < Epsilon {
		return Zero, false
	}
	return v.Mul(1 / l), true
}

// ScaleToLength returns a vector of the given length pointing like v.
func (v Vector2D) ScaleToLength(length float64) Vector2D {
	return v.Normalize().Mul(length)
}

// Limit caps the length of v to max, keeping its direction.
func (v Vector2D) Limit(max float64) Vector2D {
	if v.LenSqr() > max*max {
		return v.ScaleToLength(max)
	}
	return v
}

// ---------------------------------------------------------------------
// Geometric utilities
// ---------------------------------------------------------------------

// DistanceTo returns the Euclidean distance to another point.
func (v Vector2D) DistanceTo(other Vector2D) float64 {
	return v.Sub(other).Len()
}

// DistanceSquaredTo returns the squared Euclidean distance to another point.
func (v Vector2D) DistanceSquaredTo(other Vector2D) float64 {
	return v.Sub(other).LenSqr()
}

// Angle returns the heading of the vector in radians, in [-Pi, Pi].
func (v Vector2D) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// AngleTo returns the heading from v towards other.
func (v Vector2D) AngleTo(other Vector2D) float64 {
	return math.Atan2(other.Y-v.Y, other.X-v.X)
}

// Rotate rotates the vector counter-clockwise by angle radians around the origin.
func (v Vector2D) Rotate(angle float64) Vector2D {
	cosTheta := math.Cos(angle)
	sinTheta := math.Sin(angle)
	return Vector2D{
		X: v.X*cosTheta - v.Y*sinTheta,
		Y: v.X*sinTheta + v.Y*cosTheta,
	}
}

// RotateDegrees is Rotate with the angle given in degrees.
func (v Vector2D) RotateDegrees(deg float64) Vector2D {
	return v.Rotate(deg * math.Pi / 180)
}

// RotateAround rotates the vector by angle radians around center.
func (v Vector2D) RotateAround(angle float64, center Vector2D) Vector2D {
	return v.Sub(center).Rotate(angle).Add(center)
}

// Perpendicular returns v rotated by +90 degrees.
func (v Vector2D) Perpendicular() Vector2D {
	return Vector2D{-v.Y, v.X}
}

// Lerp returns the point at fraction t on the way from v to target.
func (v Vector2D) Lerp(target Vector2D, t float64) Vector2D {
	return v.Add(target.Sub(v).Mul(t))
}

// Project projects v onto on. Projecting onto a zero vector yields zero.
func (v Vector2D) Project(on Vector2D) Vector2D {
	l := on.LenSqr()
	if l == 0 {
		return Zero
	}
	return on.Mul(v.Dot(on) / l)
}

// Eq reports whether two vectors are equal within Epsilon.
func (v Vector2D) Eq(other Vector2D) bool {
	return math.Abs(v.X-other.X) <= Epsilon && math.Abs(v.Y-other.Y) <= Epsilon
}

// Round3 rounds a scalar to 3 decimal places.
func Round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
