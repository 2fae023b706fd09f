package geometry

// Colour is an RGBA colour, each channel in [0, 1].
type Colour struct {
	R, G, B, A float32
}

// White is the default opaque colour.
var White = Colour{R: 1, G: 1, B: 1, A: 1}

// WithOpacity returns a copy of c with alpha replaced by a.
func (c Colour) WithOpacity(a float32) Colour {
	c.A = a
	return c
}
