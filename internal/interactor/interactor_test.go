package interactor

import (
	"testing"

	"github.com/owenfeik/vttserver/internal/geometry"
	"github.com/owenfeik/vttserver/internal/perms"
	"github.com/owenfeik/vttserver/internal/scene"
)

func newTestSprite(t *testing.T, it *Interactor, rect geometry.Rect) scene.Id {
	t.Helper()
	it.NewLayer()
	layers := it.Scene().Layers
	if len(layers) == 0 {
		t.Fatalf("expected a layer to exist after NewLayer")
	}
	layer := layers[0].ID
	it.SelectLayer(layer)

	visual := scene.ShapeVisual(scene.ShapeRectangle, 1, true, geometry.White)
	id, ok := it.NewSpriteAt(visual, layer, rect)
	if !ok {
		t.Fatalf("expected sprite creation to succeed")
	}
	return id
}

func TestGrabDragReleaseMovesSprite(t *testing.T) {
	it := New(perms.CanonicalUpdater, nil)
	rect := geometry.Rect{X: 0, Y: 0, W: 2, H: 2}
	id := newTestSprite(t, it, rect)

	it.Grab(geometry.Point{X: 1, Y: 1}, false)
	it.Drag(geometry.Point{X: 5, Y: 5}, false)
	it.Release(false, false)

	sp := it.Scene().SpriteRef(id)
	if sp == nil {
		t.Fatalf("sprite missing after release")
	}
	if sp.Rect.X != 4 || sp.Rect.Y != 4 {
		t.Fatalf("expected sprite translated to (4, 4), got %+v", sp.Rect)
	}
	if !it.IsSelected(id) {
		t.Fatalf("expected grabbed sprite to become selected")
	}
}

func TestDragBelowIgnoreThresholdReverts(t *testing.T) {
	it := New(perms.CanonicalUpdater, nil)
	rect := geometry.Rect{X: 0, Y: 0, W: 2, H: 2}
	id := newTestSprite(t, it, rect)

	it.Grab(geometry.Point{X: 1, Y: 1}, false)
	it.Drag(geometry.Point{X: 1.003, Y: 1.003}, false)
	it.Release(false, false)

	sp := it.Scene().SpriteRef(id)
	if sp.Rect != rect {
		t.Fatalf("expected sub-threshold drag to revert to %+v, got %+v", rect, sp.Rect)
	}
}

func TestUnauthorizedLayerCreationIsUnwound(t *testing.T) {
	it := New(scene.Id(42), nil)
	it.NewLayer()

	if len(it.Scene().Layers) != 0 {
		t.Fatalf("expected a spectator's layer creation to be unwound, got %d layers", len(it.Scene().Layers))
	}
}

func TestPlayerCanMoveSpriteButCannotCreateLayer(t *testing.T) {
	it := New(perms.CanonicalUpdater, nil)
	rect := geometry.Rect{X: 0, Y: 0, W: 1, H: 1}
	id := newTestSprite(t, it, rect)
	layer := it.SelectedLayer()

	player := scene.Id(7)
	if _, ok := it.Perms().RoleChange(perms.CanonicalUpdater, player, perms.Player); !ok {
		t.Fatalf("expected role change to succeed")
	}

	// Switch the acting user to the freshly-promoted player and attempt a
	// sprite move: a Player may move sprites...
	it.user = player
	it.role = it.Perms().RoleOf(player)

	it.SpriteRect(id, geometry.Rect{X: 3, Y: 3, W: 1, H: 1})
	if sp := it.Scene().SpriteRef(id); sp.Rect.X != 3 {
		t.Fatalf("expected player to be permitted to move a sprite, got %+v", sp.Rect)
	}

	// ...but not create new layers, an Editor-only operation.
	it.NewLayer()
	if len(it.Scene().Layers) != 1 {
		t.Fatalf("expected player's layer creation to be denied and unwound, got %d layers", len(it.Scene().Layers))
	}
	_ = layer
}

func TestUndoRedoRoundTrip(t *testing.T) {
	it := New(perms.CanonicalUpdater, nil)
	rect := geometry.Rect{X: 0, Y: 0, W: 1, H: 1}
	id := newTestSprite(t, it, rect)

	it.SpriteRect(id, geometry.Rect{X: 5, Y: 5, W: 1, H: 1})
	if sp := it.Scene().SpriteRef(id); sp.Rect.X != 5 {
		t.Fatalf("expected move to apply, got %+v", sp.Rect)
	}

	it.Undo()
	if sp := it.Scene().SpriteRef(id); sp.Rect.X != 0 {
		t.Fatalf("expected undo to restore original rect, got %+v", sp.Rect)
	}

	it.Redo()
	if sp := it.Scene().SpriteRef(id); sp.Rect.X != 5 {
		t.Fatalf("expected redo to reapply the move, got %+v", sp.Rect)
	}
}

func TestSelectionClearedAndGrouped(t *testing.T) {
	it := New(perms.CanonicalUpdater, nil)
	id1 := newTestSprite(t, it, geometry.Rect{X: 0, Y: 0, W: 1, H: 1})
	id2, ok := it.NewSpriteAt(
		scene.ShapeVisual(scene.ShapeEllipse, 1, true, geometry.White),
		it.SelectedLayer(),
		geometry.Rect{X: 2, Y: 2, W: 1, H: 1},
	)
	if !ok {
		t.Fatalf("expected second sprite creation to succeed")
	}

	it.SelectMultiple([]scene.Id{id1, id2})
	if !it.IsSelected(id1) || !it.IsSelected(id2) {
		t.Fatalf("expected both sprites selected")
	}

	it.GroupSelected()
	if it.Scene().SpriteGroup(id1) == nil {
		t.Fatalf("expected sprites to be grouped")
	}

	it.ClearSelection()
	if it.HasSelection() {
		t.Fatalf("expected selection to be empty after ClearSelection")
	}

	// Selecting one member of a group pulls in the whole group.
	it.Select(id1)
	if !it.IsSelected(id2) {
		t.Fatalf("expected selecting a grouped sprite to select its group-mate")
	}
}

func TestMarqueeSelectsContainedSprites(t *testing.T) {
	it := New(perms.CanonicalUpdater, nil)
	inside := newTestSprite(t, it, geometry.Rect{X: 1, Y: 1, W: 1, H: 1})
	outside, ok := it.NewSpriteAt(
		scene.ShapeVisual(scene.ShapeRectangle, 1, true, geometry.White),
		it.SelectedLayer(),
		geometry.Rect{X: 10, Y: 10, W: 1, H: 1},
	)
	if !ok {
		t.Fatalf("expected second sprite creation to succeed")
	}

	it.Grab(geometry.Point{X: 0, Y: 0}, false)
	it.Drag(geometry.Point{X: 4, Y: 4}, false)
	it.Release(false, false)

	if !it.IsSelected(inside) {
		t.Fatalf("expected marquee to select the contained sprite")
	}
	if it.IsSelected(outside) {
		t.Fatalf("expected marquee not to select the sprite outside its region")
	}
}
