package interactor

import (
	"github.com/owenfeik/vttserver/internal/geometry"
	"github.com/owenfeik/vttserver/internal/scene"
)

// DrawTool selects what a draw gesture produces: a fixed shape grown from an
// anchor drag, or a continuous freehand/line/cone stroke.
type DrawTool int

const (
	ToolCircle DrawTool = iota
	ToolEllipse
	ToolRectangle
	ToolFreehand
	ToolLine
	ToolCone
)

func (t DrawTool) drawingMode() (scene.DrawingMode, bool) {
	switch t {
	case ToolFreehand:
		return scene.DrawingFreehand, true
	case ToolLine:
		return scene.DrawingLine, true
	case ToolCone:
		return scene.DrawingCone, true
	default:
		return 0, false
	}
}

func (t DrawTool) shape() (scene.Shape, bool) {
	switch t {
	case ToolCircle, ToolEllipse:
		return scene.ShapeEllipse, true
	case ToolRectangle:
		return scene.ShapeRectangle, true
	default:
		return 0, false
	}
}

// SpriteDetails is the mutable visual appearance a client edits through a
// sprite's properties panel: a shape fill/outline, or a drawing's stroke.
type SpriteDetails struct {
	Colour   geometry.Colour
	Stroke   float32
	Solid    bool
	Shape    scene.Shape
	CapStart scene.Cap
	CapEnd   scene.Cap
}

func (d SpriteDetails) shapeVisual() scene.SpriteVisual {
	return scene.ShapeVisual(d.Shape, d.Stroke, d.Solid, d.Colour)
}

func (d SpriteDetails) drawingVisual(drawingID scene.Id) scene.SpriteVisual {
	return scene.DrawingVisual(drawingID, d.Colour, d.Stroke, d.CapStart, d.CapEnd)
}

// updateSprite applies the subset of d relevant to the sprite's visual kind,
// returning the forward event iff anything changed.
func (d SpriteDetails) updateSprite(s *scene.Sprite) (scene.SceneEvent, bool) {
	old := s.Visual
	next := old
	switch old.Kind {
	case scene.VisualShape, scene.VisualTexture:
		next.Shape, next.Stroke, next.Solid, next.Colour = d.Shape, d.Stroke, d.Solid, d.Colour
	case scene.VisualDrawing:
		next.Colour, next.Stroke, next.CapStart, next.CapEnd = d.Colour, d.Stroke, d.CapStart, d.CapEnd
	}
	if next == old {
		return scene.SceneEvent{}, false
	}
	s.Visual = next
	return scene.SpriteVisualChange(s.ID, old, next), true
}

// SelectedDetails is the per-attribute intersection of every selected
// sprite's visual: a field is non-nil iff every selected sprite agrees on
// its value.
type SelectedDetails struct {
	ID     scene.Id
	Colour *geometry.Colour
	Stroke *float32
	Solid  *bool
	Shape  *scene.Shape
}

func newSelectedDetails(id scene.Id, s *scene.Sprite) SelectedDetails {
	colour, stroke, solid, shape := s.Visual.Colour, s.Visual.Stroke, s.Visual.Solid, s.Visual.Shape
	return SelectedDetails{ID: id, Colour: &colour, Stroke: &stroke, Solid: &solid, Shape: &shape}
}

// intersect narrows d to agree only on fields s's visual also matches.
func (d *SelectedDetails) intersect(s *scene.Sprite) {
	if d.Colour != nil && *d.Colour != s.Visual.Colour {
		d.Colour = nil
	}
	if d.Stroke != nil && *d.Stroke != s.Visual.Stroke {
		d.Stroke = nil
	}
	if d.Solid != nil && *d.Solid != s.Visual.Solid {
		d.Solid = nil
	}
	if d.Shape != nil && *d.Shape != s.Visual.Shape {
		d.Shape = nil
	}
}
