package history

import (
	"testing"

	"github.com/owenfeik/vttserver/internal/geometry"
	"github.com/owenfeik/vttserver/internal/scene"
)

func TestGroupDrawingEvents(t *testing.T) {
	h := New(nil)

	drawingID := scene.Id(1)
	sprite := scene.NewSprite(drawingID, scene.DrawingVisual(drawingID, geometry.White, 1, scene.CapNone, scene.CapNone))

	h.IssueEvent(scene.SpriteDrawingStart(drawingID, scene.DrawingFreehand))
	h.IssueEvent(scene.SpriteNew(sprite, scene.Id(2)))
	h.IssueEvent(scene.SpriteDrawingPoint(drawingID, geometry.Point{X: 0.5, Y: 0.5}))
	h.IssueEvent(scene.SpriteDrawingPoint(drawingID, geometry.Point{X: 1, Y: 1}))
	h.IssueEvent(scene.SpriteDrawingPoint(drawingID, geometry.Point{X: 1.5, Y: 1.5}))

	if len(h.undo) != 5 {
		t.Fatalf("expected 5 ungrouped undo entries, got %d", len(h.undo))
	}

	h.EndMoveGroup()

	if len(h.undo) != 1 {
		t.Fatalf("expected drawing events to collapse to 1 entry, got %d", len(h.undo))
	}

	set := h.undo[0]
	if set.Kind != scene.KindEventSet {
		t.Fatalf("expected an EventSet, got kind %v", set.Kind)
	}
	if len(set.Events) != 2 {
		t.Fatalf("expected exactly a start and a new event, got %d", len(set.Events))
	}

	var hasStart, hasNew bool
	for _, e := range set.Events {
		switch e.Kind {
		case scene.KindSpriteDrawingStart:
			hasStart = true
		case scene.KindSpriteNew:
			hasNew = true
		}
	}
	if !hasStart || !hasNew {
		t.Fatalf("expected both SpriteDrawingStart and SpriteNew in the grouped set")
	}
}

func TestGroupMovesSingleCollapsesDragToOneUndo(t *testing.T) {
	h := New(nil)
	sprite := scene.Id(9)

	start := geometry.Rect{X: 0, Y: 0, W: 1, H: 1}
	mid := geometry.Rect{X: 1, Y: 1, W: 1, H: 1}
	end := geometry.Rect{X: 2, Y: 2, W: 1, H: 1}

	h.StartMoveGroup()
	h.IssueEvent(scene.SpriteMove(sprite, start, mid))
	h.IssueEvent(scene.SpriteMove(sprite, mid, end))
	h.EndMoveGroup()

	if len(h.undo) != 1 {
		t.Fatalf("expected the drag to collapse to 1 undo entry, got %d", len(h.undo))
	}
	collapsed := h.undo[0]
	if collapsed.Kind != scene.KindSpriteMove {
		t.Fatalf("expected a single SpriteMove, got kind %v", collapsed.Kind)
	}
	if collapsed.Rect != start || collapsed.Rect2 != end {
		t.Fatalf("expected collapsed move from %v to %v, got %v to %v", start, end, collapsed.Rect, collapsed.Rect2)
	}
}

func TestIssueEventClearsRedoStack(t *testing.T) {
	h := New(nil)
	h.redo = append(h.redo, scene.SceneEvent{Kind: scene.KindDummy})

	h.IssueEvent(scene.LayerRename(scene.Id(1), "old", "new"))

	if len(h.redo) != 0 {
		t.Fatalf("expected issuing a new event to clear the redo stack")
	}
}

func TestPointlessEventSetNeverEntersHistory(t *testing.T) {
	h := New(nil)
	h.IssueEvent(scene.Set(nil))
	if len(h.undo) != 0 {
		t.Fatalf("expected empty event set to be dropped, got %d entries", len(h.undo))
	}
}
