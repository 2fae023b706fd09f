package geometry

import "math"

// PointVector is an ordered sequence of points stored as a flat array of
// scene-unit floats, length 2n. Used both for drawings and for mesh
// geometry handed to a renderer.
type PointVector struct {
	data []float32
}

func NewPointVector() PointVector {
	return PointVector{}
}

func PointVectorFrom(data []float32) PointVector {
	return PointVector{data: data}
}

func SizedPointVector(n int) PointVector {
	return PointVector{data: make([]float32, 0, n*2)}
}

func OriginPointVector() PointVector {
	return PointVector{data: []float32{0, 0}}
}

// N returns the number of points held.
func (v PointVector) N() int {
	return len(v.data) / 2
}

// KeepN truncates the vector to its first n points.
func (v *PointVector) KeepN(n int) {
	if n*2 < len(v.data) {
		v.data = v.data[:n*2]
	}
}

// Nth returns the i-th point, 1-indexed, matching the source's convention.
func (v PointVector) Nth(i int) (Point, bool) {
	if i >= 1 && i <= v.N() {
		return Point{X: v.data[2*i-2], Y: v.data[2*i-1]}, true
	}
	return Point{}, false
}

func (v PointVector) Last() (Point, bool) {
	return v.Nth(v.N())
}

func (v PointVector) Iter(fn func(Point)) {
	for i := 0; i < len(v.data); i += 2 {
		fn(Point{X: v.data[i], Y: v.data[i+1]})
	}
}

// Map mutates every point in place.
func (v *PointVector) Map(fn func(Point) Point) {
	for i := 0; i < len(v.data); i += 2 {
		p := fn(Point{X: v.data[i], Y: v.data[i+1]})
		v.data[i] = p.X
		v.data[i+1] = p.Y
	}
}

func (v *PointVector) Add(p Point) {
	v.data = append(v.data, p.X, p.Y)
}

// AddTri appends three points, used when emitting triangle mesh geometry.
func (v *PointVector) AddTri(a, b, c Point) {
	v.Add(a)
	v.Add(b)
	v.Add(c)
}

// Rect returns the bounding box of every point in the vector.
func (v PointVector) Rect() Rect {
	if v.N() == 0 {
		return Rect{}
	}
	xMin, xMax := float32(math.MaxFloat32), -float32(math.MaxFloat32)
	yMin, yMax := float32(math.MaxFloat32), -float32(math.MaxFloat32)
	v.Iter(func(p Point) {
		xMin = minf(xMin, p.X)
		xMax = maxf(xMax, p.X)
		yMin = minf(yMin, p.Y)
		yMax = maxf(yMax, p.Y)
	})
	return Rect{X: xMin, Y: yMin, W: xMax - xMin, H: yMax - yMin}
}

func (v *PointVector) Scale(factor float32) {
	v.Map(func(p Point) Point { return p.Scale(factor) })
}

// ScaleXY applies an asymmetric scale to every point.
func (v *PointVector) ScaleXY(sx, sy float32) {
	v.Map(func(p Point) Point { return Point{X: p.X * sx, Y: p.Y * sy} })
}

func (v *PointVector) Translate(d Point) {
	v.Map(func(p Point) Point { return p.Add(d) })
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
