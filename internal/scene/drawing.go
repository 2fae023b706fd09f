package scene

import "github.com/owenfeik/vttserver/internal/geometry"

// DrawingMode distinguishes the three kinds of polyline a Drawing holds.
type DrawingMode int

const (
	DrawingFreehand DrawingMode = iota
	DrawingLine
	DrawingCone
)

// drawingMinDistance is the minimum gap between two adjacent freehand
// points; closer points are deduplicated on append.
const drawingMinDistance float32 = 0.1

// Drawing is the geometric data a Drawing-visual sprite displays: a
// polyline, a line, or a cone.
type Drawing struct {
	ID       Id
	Mode     DrawingMode
	Points   geometry.PointVector
	Finished bool
}

func NewDrawing(id Id, mode DrawingMode) *Drawing {
	return &Drawing{ID: id, Mode: mode, Points: geometry.OriginPointVector()}
}

// Line returns the first and last point, used by Line/Cone drawings.
func (d *Drawing) Line() (geometry.Point, geometry.Point) {
	p, ok := d.Points.Nth(1)
	if !ok {
		p = geometry.Origin
	}
	q, ok := d.Points.Last()
	if !ok {
		q = geometry.Origin
	}
	return p, q
}

func (d *Drawing) NPoints() int {
	return d.Points.N()
}

func (d *Drawing) KeepNPoints(n int) {
	d.Points.KeepN(n)
}

func (d *Drawing) LastPoint() (geometry.Point, bool) {
	return d.Points.Last()
}

// AddPoint appends a point unless it is too close to the previous one.
func (d *Drawing) AddPoint(p geometry.Point) {
	if prev, ok := d.Points.Last(); ok && prev.Dist(p) < drawingMinDistance {
		return
	}
	d.Points.Add(p)
}

// Simplify translates the drawing so its top-left-most point is the origin,
// returning the bounding rect it had before the transform.
func (d *Drawing) Simplify() geometry.Rect {
	rect := d.Points.Rect()
	delta := rect.TopLeft()
	if delta.X != 0 || delta.Y != 0 {
		d.Points.Translate(geometry.Point{X: -delta.X, Y: -delta.Y})
	}
	return rect
}

func (d *Drawing) Translate(offset float32) {
	d.Points.Translate(geometry.Same(offset))
}

func (d *Drawing) Scale(sx, sy float32) {
	d.Points.ScaleXY(sx, sy)
}

// Length returns the on-scene length of the drawing for measurement
// overlays: for Freehand it is the polyline length, for Line/Cone the
// straight-line distance between endpoints.
func (d *Drawing) Length(mode DrawingMode) float32 {
	if mode == DrawingFreehand {
		var total float32
		var prev geometry.Point
		have := false
		d.Points.Iter(func(p geometry.Point) {
			if have {
				total += prev.Dist(p)
			}
			prev = p
			have = true
		})
		return total
	}
	p, q := d.Line()
	return p.Dist(q)
}
