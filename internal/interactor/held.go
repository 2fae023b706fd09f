package interactor

import (
	"github.com/owenfeik/vttserver/internal/geometry"
	"github.com/owenfeik/vttserver/internal/scene"
)

// anchorRadius bounds how close the cursor must be to a sprite's corner or
// edge midpoint before a drag grabs that anchor instead of the sprite body.
const anchorRadius float32 = 0.2

// HeldKind tags a HeldObject's variant.
type HeldKind int

const (
	HeldNone HeldKind = iota
	HeldMarquee
	HeldSelection
	HeldSprite
	HeldAnchor
	HeldCircle
	HeldDrawing
)

// HeldObject is the tagged variant describing whatever the pointer currently
// holds: nothing, a marquee-select rectangle in progress, a translating
// multi-selection, a single dragged sprite, a resize anchor, a growing
// circle shape, or an in-progress freehand/line/cone drawing.
type HeldObject struct {
	Kind HeldKind

	// Sprite, Anchor, Circle, Drawing: the sprite being manipulated.
	ID scene.Id

	// Drawing only: the underlying drawing's own id, distinct from its
	// sprite's id.
	DrawingID scene.Id

	// Marquee, Selection: the point the drag began at (Selection calls this
	// the "last selection anchor", updated every drag tick).
	// Circle: the shape's fixed centre.
	Anchor geometry.Point

	// Sprite: offset from the sprite's top-left to the grab point, held
	// constant through the drag so the sprite doesn't jump to the cursor.
	GrabOffset geometry.Point

	// Sprite, Anchor: the rect the drag began from, used by the release
	// policy's ignore-threshold and realignment checks.
	StartingRect geometry.Rect

	// Anchor: which edge(s) are being dragged, each in {-1, 0, 1}.
	Dx, Dy int

	// Anchor, Circle, Drawing: release should delete the sprite instead of
	// finalising it (used for ephemeral range/measurement indicators).
	Ephemeral bool

	// Drawing: set at stroke start to the inverse of the alt modifier. Release
	// decides whether to keep the stroke from Ephemeral alone and does not
	// read this flag.
	Measurement bool
}

func none() HeldObject { return HeldObject{Kind: HeldNone} }

// IsSprite reports whether the held object is one of the three variants that
// represent a grabbed sprite (single, in a selection, or via a resize
// anchor), matched by the interactor to decide whether a StartMoveGroup was
// opened for this grab.
func (h HeldObject) IsSprite() bool {
	switch h.Kind {
	case HeldSprite, HeldAnchor, HeldSelection:
		return true
	default:
		return false
	}
}

// anchorPoint returns the point at the (dx, dy) anchor of rect.
func anchorPoint(rect geometry.Rect, dx, dy int) geometry.Point {
	return geometry.Point{
		X: rect.X + (rect.W/2)*float32(dx+1),
		Y: rect.Y + (rect.H/2)*float32(dy+1),
	}
}

// grabSpriteAnchor finds the closest anchor of sprite's rect within the
// grab threshold min(anchorRadius, min(|w|,|h|)/5), if any.
func grabSpriteAnchor(sprite *scene.Sprite, at geometry.Point) (HeldObject, bool) {
	rect := sprite.Rect

	threshold := anchorRadius
	if m := minf(absf(rect.W), absf(rect.H)) / 5; m < threshold {
		threshold = m
	}

	closestDist := threshold
	foundDx, foundDy := 2, 2
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			dist := anchorPoint(rect, dx, dy).Dist(at)
			if dist <= closestDist {
				closestDist = dist
				foundDx, foundDy = dx, dy
			}
		}
	}

	if foundDx == 2 {
		return HeldObject{}, false
	}
	return HeldObject{
		Kind: HeldAnchor, ID: sprite.ID, Dx: foundDx, Dy: foundDy, StartingRect: rect,
	}, true
}

// grabSprite returns an Anchor hold if at is near one of sprite's resize
// anchors, else a Sprite hold tracking the grab offset.
func grabSprite(sprite *scene.Sprite, at geometry.Point) HeldObject {
	if h, ok := grabSpriteAnchor(sprite, at); ok {
		return h
	}
	return HeldObject{
		Kind: HeldSprite, ID: sprite.ID,
		GrabOffset:   at.Sub(sprite.Rect.TopLeft()),
		StartingRect: sprite.Rect,
	}
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
