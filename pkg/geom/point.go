// Package geom implements integer polygon algebra over micron
// coordinates: boolean set operations, offsetting, point queries and
// the small movement primitives the rest of the planner builds on.
//
// Coordinates are signed int64 microns, matching the wider module's
// convention that every length in the system is an integer count of
// micrometres. Angles passed into this package are radians.
package geom

import "math"

// Point is a single 2D integer coordinate in microns.
type Point struct {
	X, Y int64
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p scaled by a float factor, rounded to the nearest micron.
func (p Point) Scale(f float64) Point {
	return Point{
		X: int64(math.Round(float64(p.X) * f)),
		Y: int64(math.Round(float64(p.Y) * f)),
	}
}

// DistanceSquared returns the squared Euclidean distance to q. Always
// computed in int64 so that squaring typical machine-sized coordinates
// (up to a few metres in microns) never overflows.
func (p Point) DistanceSquared(q Point) int64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

// Distance returns the Euclidean distance to q.
func (p Point) Distance(q Point) float64 {
	return math.Sqrt(float64(p.DistanceSquared(q)))
}

// Cross returns the 2D cross product (p x q), i.e. p.X*q.Y - p.Y*q.X.
func (p Point) Cross(q Point) int64 {
	return p.X*q.Y - p.Y*q.X
}

// Dot returns the dot product p.q.
func (p Point) Dot(q Point) int64 {
	return p.X*q.X + p.Y*q.Y
}

// Rotate rotates p around the origin by angle radians.
func (p Point) Rotate(angle float64) Point {
	s, c := math.Sin(angle), math.Cos(angle)
	x := float64(p.X)
	y := float64(p.Y)
	return Point{
		X: int64(math.Round(x*c - y*s)),
		Y: int64(math.Round(x*s + y*c)),
	}
}

// Normal returns a vector pointing in the same direction as p but with
// length clamped to at most maxLength. If p is the zero vector, the
// zero vector is returned.
func Normal(p Point, maxLength int64) Point {
	d2 := p.X*p.X + p.Y*p.Y
	if d2 == 0 {
		return Point{}
	}
	maxLen2 := maxLength * maxLength
	if d2 <= maxLen2 {
		return p
	}
	length := math.Sqrt(float64(d2))
	scale := float64(maxLength) / length
	return p.Scale(scale)
}

// MinMaxInt64 returns a and b sorted ascending.
func MinMaxInt64(a, b int64) (int64, int64) {
	if a <= b {
		return a, b
	}
	return b, a
}
