package geometry

import "math"

// Rect is an axis-aligned rectangle in scene units. W and H may be negative,
// which mirrors/flips the rect; callers that need a normalized box call
// PositiveDimensions first.
type Rect struct {
	X, Y, W, H float32
}

// At returns a Rect anchored at p with the given dimensions.
func At(p Point, w, h float32) Rect {
	return Rect{X: p.X, Y: p.Y, W: w, H: h}
}

func ScaledFrom(from Rect, factor float32) Rect {
	r := from
	r.X *= factor
	r.Y *= factor
	r.W *= factor
	r.H *= factor
	return r
}

func (r Rect) Translate(d Point) Rect {
	return Rect{X: r.X + d.X, Y: r.Y + d.Y, W: r.W, H: r.H}
}

func (r Rect) Scale(factor float32) Rect {
	return Rect{X: r.X * factor, Y: r.Y * factor, W: r.W * factor, H: r.H * factor}
}

// PositiveDimensions returns an equivalent rect with non-negative W and H,
// flipping the origin when a dimension was negative.
func (r Rect) PositiveDimensions() Rect {
	n := r
	if r.W < 0 {
		n.X = r.X + r.W
		n.W = -r.W
	}
	if r.H < 0 {
		n.Y = r.Y + r.H
		n.H = -r.H
	}
	return n
}

// Round rounds every field to the nearest integer, then clamps W and H to a
// minimum magnitude of 1 (preserving their sign) so a rounded rect never
// collapses to zero area.
func (r Rect) Round() Rect {
	n := Rect{
		X: float32(math.Round(float64(r.X))),
		Y: float32(math.Round(float64(r.Y))),
		W: float32(math.Round(float64(r.W))),
		H: float32(math.Round(float64(r.H))),
	}
	if n.W > -1 && n.W < 1 {
		if r.W < 0 {
			n.W = -1
		} else {
			n.W = 1
		}
	}
	if n.H > -1 && n.H < 1 {
		if r.H < 0 {
			n.H = -1
		} else {
			n.H = 1
		}
	}
	return n
}

// ContainsPoint handles negative W/H by checking the appropriate direction.
func (r Rect) ContainsPoint(p Point) bool {
	var inX, inY bool
	if r.W < 0 {
		inX = r.X+r.W <= p.X && p.X <= r.X
	} else {
		inX = r.X <= p.X && p.X <= r.X+r.W
	}
	if r.H < 0 {
		inY = r.Y+r.H <= p.Y && p.Y <= r.Y
	} else {
		inY = r.Y <= p.Y && p.Y <= r.Y+r.H
	}
	return inX && inY
}

// ContainsRect reports whether other lies entirely within r, normalizing
// both to positive dimensions first.
func (r Rect) ContainsRect(other Rect) bool {
	a := r.PositiveDimensions()
	b := other.PositiveDimensions()
	return b.X >= a.X && b.X+b.W <= a.X+a.W && b.Y >= a.Y && b.Y+b.H <= a.Y+a.H
}

// IntersectsRect reports whether r and other overlap, normalizing both to
// positive dimensions first.
func (r Rect) IntersectsRect(other Rect) bool {
	a := r.PositiveDimensions()
	b := other.PositiveDimensions()
	return a.X < b.X+b.W && b.X < a.X+a.W && a.Y < b.Y+b.H && b.Y < a.Y+a.H
}

func (r Rect) TopLeft() Point {
	return Point{X: r.X, Y: r.Y}
}

func (r Rect) Centre() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// IsAligned reports whether every field is an integer value, used to decide
// whether a drag should snap back to grid alignment on release.
func (r Rect) IsAligned() bool {
	return r.X == float32(math.Round(float64(r.X))) &&
		r.Y == float32(math.Round(float64(r.Y))) &&
		r.W == float32(math.Round(float64(r.W))) &&
		r.H == float32(math.Round(float64(r.H)))
}

// Delta returns a magnitude of difference between r and other, used for the
// drag-release ignore threshold.
func (r Rect) Delta(other Rect) float32 {
	dx := absf(r.X - other.X)
	dy := absf(r.Y - other.Y)
	dw := absf(r.W - other.W)
	dh := absf(r.H - other.H)
	return dx + dy + dw + dh
}

// MatchAspect adjusts r so its aspect ratio matches starting, keeping r's
// top-left fixed. Used when an anchor drag is held with the aspect-lock
// modifier.
func (r Rect) MatchAspect(starting Rect) Rect {
	if starting.H == 0 {
		return r
	}
	ratio := starting.W / starting.H
	n := r
	if absf(r.W) > absf(r.H)*absf(ratio) {
		if n.H < 0 {
			n.H = -absf(n.W) / absf(ratio)
		} else {
			n.H = absf(n.W) / absf(ratio)
		}
	} else {
		if n.W < 0 {
			n.W = -absf(n.H) * absf(ratio)
		} else {
			n.W = absf(n.H) * absf(ratio)
		}
	}
	return n
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
