// Package geometry implements the scene-unit primitives shared by every
// other package: points, rectangles, point vectors, and colour.
package geometry

import "math"

// Point is a location in scene units (1 unit = 1 grid tile).
type Point struct {
	X, Y float32
}

// Origin is the zero point.
var Origin = Point{}

// Same returns a point with both coordinates equal to v.
func Same(v float32) Point {
	return Point{X: v, Y: v}
}

func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

func (p Point) Scale(f float32) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Dist returns the Euclidean distance between p and o.
func (p Point) Dist(o Point) float32 {
	dx, dy := p.X-o.X, p.Y-o.Y
	return float32(math.Sqrt(float64(dx*dx + dy*dy)))
}

// Angle returns the angle in radians from p to o.
func (p Point) Angle(o Point) float32 {
	return float32(math.Atan2(float64(o.Y-p.Y), float64(o.X-p.X)))
}

// Round returns a new point with coordinates rounded to the nearest integer.
// Point is immutable under this operation; callers must use the result.
func (p Point) Round() Point {
	return Point{X: float32(math.Round(float64(p.X))), Y: float32(math.Round(float64(p.Y)))}
}

// Rect returns a zero-area Rect anchored at p.
func (p Point) Rect() Rect {
	return Rect{X: p.X, Y: p.Y}
}

// RectTo returns the Rect spanning p and o, with w/h possibly negative.
func (p Point) RectTo(o Point) Rect {
	return Rect{X: p.X, Y: p.Y, W: o.X - p.X, H: o.Y - p.Y}
}
