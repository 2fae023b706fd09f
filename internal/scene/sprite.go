package scene

import "github.com/owenfeik/vttserver/internal/geometry"

// MinSpriteSize is the minimum size on any dimension, enforced on release
// (invariant I7), never mid-drag.
const MinSpriteSize float32 = 0.25

// DefaultWidth and DefaultHeight size a freshly created sprite.
const (
	DefaultWidth  float32 = 1
	DefaultHeight float32 = 1
)

// Sprite is a placed element on a layer: a rect, a z-order, and a visual.
type Sprite struct {
	ID     Id
	Rect   geometry.Rect
	Z      int32
	Visual SpriteVisual
}

func NewSprite(id Id, visual SpriteVisual) *Sprite {
	return &Sprite{
		ID:     id,
		Rect:   geometry.At(geometry.Origin, DefaultWidth, DefaultHeight),
		Z:      1,
		Visual: visual,
	}
}

// SetPos relocates the sprite's top-left corner, returning the forward
// SpriteMove event.
func (s *Sprite) SetPos(p geometry.Point) SceneEvent {
	from := s.Rect
	s.Rect.X, s.Rect.Y = p.X, p.Y
	return SpriteMove(s.ID, from, s.Rect)
}

func (s *Sprite) SetRect(r geometry.Rect) SceneEvent {
	from := s.Rect
	s.Rect = r
	return SpriteMove(s.ID, from, s.Rect)
}

// SnapToGrid rounds the sprite's rect to integer scene units.
func (s *Sprite) SnapToGrid() SceneEvent {
	from := s.Rect
	s.Rect = s.Rect.Round()
	return SpriteMove(s.ID, from, s.Rect)
}

// SnapPos rounds the sprite's position to the nearest grid line, leaving its
// size untouched.
func (s *Sprite) SnapPos() SceneEvent {
	from := s.Rect
	p := s.Rect.TopLeft().Round()
	s.Rect.X, s.Rect.Y = p.X, p.Y
	return SpriteMove(s.ID, from, s.Rect)
}

// SnapSize rounds the sprite's width and height to the nearest grid unit,
// leaving its position untouched.
func (s *Sprite) SnapSize() SceneEvent {
	from := s.Rect
	rounded := s.Rect.Round()
	s.Rect.W, s.Rect.H = rounded.W, rounded.H
	return SpriteMove(s.ID, from, s.Rect)
}

// Dimension names one field of a sprite's rect, addressed individually by a
// numeric input bound to a single axis or edge.
type Dimension int

const (
	DimensionX Dimension = iota
	DimensionY
	DimensionW
	DimensionH
)

// SetDimension updates a single field of the sprite's rect.
func (s *Sprite) SetDimension(d Dimension, value float32) SceneEvent {
	from := s.Rect
	switch d {
	case DimensionX:
		s.Rect.X = value
	case DimensionY:
		s.Rect.Y = value
	case DimensionW:
		s.Rect.W = value
	case DimensionH:
		s.Rect.H = value
	}
	return SpriteMove(s.ID, from, s.Rect)
}

// EnforceMinSize clamps W and H up to MinSpriteSize, returning the event iff
// it changed anything.
func (s *Sprite) EnforceMinSize() (SceneEvent, bool) {
	if s.Rect.W >= MinSpriteSize && s.Rect.H >= MinSpriteSize {
		return SceneEvent{}, false
	}
	from := s.Rect
	if s.Rect.W < MinSpriteSize {
		s.Rect.W = MinSpriteSize
	}
	if s.Rect.H < MinSpriteSize {
		s.Rect.H = MinSpriteSize
	}
	return SpriteMove(s.ID, from, s.Rect), true
}

func (s *Sprite) MoveBy(delta geometry.Point) SceneEvent {
	from := s.Rect
	s.Rect = s.Rect.Translate(delta)
	return SpriteMove(s.ID, from, s.Rect)
}

func (s *Sprite) Pos() geometry.Point {
	return s.Rect.TopLeft()
}

// AnchorPoint returns the point at the (dx, dy) anchor of the sprite's rect,
// dx and dy each in {-1, 0, 1}.
func (s *Sprite) AnchorPoint(dx, dy int) geometry.Point {
	return geometry.Point{
		X: s.Rect.X + (s.Rect.W/2)*float32(dx+1),
		Y: s.Rect.Y + (s.Rect.H/2)*float32(dy+1),
	}
}

func (s *Sprite) Clone() *Sprite {
	c := *s
	return &c
}
