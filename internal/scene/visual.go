package scene

import "github.com/owenfeik/vttserver/internal/geometry"

// Shape is the basic geometric outline a Shape- or Texture-visual sprite
// renders as.
type Shape int

const (
	ShapeEllipse Shape = iota
	ShapeHexagon
	ShapeRectangle
	ShapeTriangle
)

// Cap is the line-end style for a Drawing-visual sprite.
type Cap int

const (
	CapNone Cap = iota
	CapArrow
	CapRound
)

// VisualKind distinguishes the three ways a Sprite may be rendered.
type VisualKind int

const (
	VisualTexture VisualKind = iota
	VisualShape
	VisualDrawing
)

// SpriteVisual is the tagged union of a sprite's rendering data. Only the
// fields relevant to Kind are meaningful; the others are zero. This mirrors
// the struct-with-Kind idiom the teacher uses throughout its packet and
// event types rather than a Go interface, so the whole value remains
// comparable and trivially copyable for undo/redo storage.
type SpriteVisual struct {
	Kind VisualKind

	// Texture
	MediaID Id

	// Shape / Texture
	Shape Shape

	// Shape
	Stroke  float32
	Solid   bool
	Colour  geometry.Colour

	// Drawing
	DrawingID Id
	CapStart  Cap
	CapEnd    Cap
}

func TextureVisual(shape Shape, mediaID Id) SpriteVisual {
	return SpriteVisual{Kind: VisualTexture, Shape: shape, MediaID: mediaID}
}

func ShapeVisual(shape Shape, stroke float32, solid bool, colour geometry.Colour) SpriteVisual {
	return SpriteVisual{Kind: VisualShape, Shape: shape, Stroke: stroke, Solid: solid, Colour: colour}
}

func DrawingVisual(drawingID Id, colour geometry.Colour, stroke float32, capStart, capEnd Cap) SpriteVisual {
	return SpriteVisual{
		Kind: VisualDrawing, DrawingID: drawingID, Colour: colour,
		Stroke: stroke, CapStart: capStart, CapEnd: capEnd,
	}
}
