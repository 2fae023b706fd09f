// Package history implements the undo/redo stack and drag-collapsing rules
// shared by every scene editor (a connected client's local replica, or the
// server's own canonical scene).
package history

import (
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/owenfeik/vttserver/internal/scene"
	"github.com/owenfeik/vttserver/internal/wire"
)

// Sender issues a ClientMessage to the remote peer a History is tracking
// changes on behalf of. A History with no Sender (nil) only maintains the
// local undo/redo stack and never reports out — used for the server's own
// canonical history, which has no further "server" to reconcile against.
type Sender interface {
	Send(wire.ClientMessage)
}

var nextMessageID int64

func allocMessageID() int64 {
	return atomic.AddInt64(&nextMessageID, 1)
}

// History tracks applied SceneEvents so they can be undone, redone, and
// (for a networked editor) unwound if the server rejects them.
type History struct {
	sender   Sender
	modified bool

	undo []scene.SceneEvent
	redo []scene.SceneEvent

	// issued holds every message sent to the server that hasn't yet been
	// approved or rejected, so a rejection can be unwound against the exact
	// event it named.
	issued []wire.ClientMessage
}

// New constructs a History. Pass a nil sender for a non-networked (server
// canonical, or offline) history.
func New(sender Sender) *History {
	return &History{sender: sender}
}

// TakeEvent removes and returns the SceneEvent originally sent in the
// message with this id, for unwinding after a Rejection.
func (h *History) TakeEvent(id int64) (scene.SceneEvent, bool) {
	for i, m := range h.issued {
		if m.ID == id {
			h.issued = append(h.issued[:i], h.issued[i+1:]...)
			if m.Event.Kind == wire.ClientSceneUpdate {
				return m.Event.SceneEvent, true
			}
			return scene.SceneEvent{}, false
		}
	}
	return scene.SceneEvent{}, false
}

// ApproveEvent discards the record of a message once the server has
// confirmed it.
func (h *History) ApproveEvent(id int64) {
	for i, m := range h.issued {
		if m.ID == id {
			h.issued = append(h.issued[:i], h.issued[i+1:]...)
			return
		}
	}
}

// SaveRequired reports whether there are unsaved local changes. A History
// with a sender defers to the server's own save cycle; only a sender-less
// (canonical/offline) history tracks this itself.
func (h *History) SaveRequired() bool {
	return h.modified && h.sender == nil
}

func (h *History) ClearModified() {
	h.modified = false
}

func (h *History) issueMessage(e wire.ClientEvent) {
	if h.sender == nil {
		return
	}
	msg := wire.ClientMessage{ID: allocMessageID(), Event: e}
	h.sender.Send(msg)
	h.issued = append(h.issued, msg)
}

func isPointless(e scene.SceneEvent) bool {
	return e.Kind == scene.KindEventSet && len(e.Events) == 0
}

// IssueEvent records e on the undo stack and, if networked, sends it to the
// server. Every event produced by editing a scene should pass through this
// to keep the local replica and server in sync. Issuing a new event clears
// the redo stack: once you've done something new, what you undid is gone
// for good.
func (h *History) IssueEvent(e scene.SceneEvent) {
	if isPointless(e) {
		return
	}
	if h.sender != nil {
		h.issueMessage(wire.SceneUpdate(e))
	}
	h.redo = nil
	h.undo = append(h.undo, e)
	h.modified = true
}

// IssueEventNoHistory sends e to the server without touching the undo
// stack, for events that shouldn't themselves be undoable (e.g. events
// replayed while reconciling a rejection).
func (h *History) IssueEventNoHistory(e scene.SceneEvent) {
	h.issueMessage(wire.SceneUpdate(e))
}

// IssueRedo pushes a successfully re-applied event back onto the redo
// stack; ok false is a no-op, matching the common case where Redo had
// nothing to apply.
func (h *History) IssueRedo(e scene.SceneEvent, ok bool) {
	if ok {
		h.redo = append(h.redo, e)
	}
}

// IssueUndo pushes a successfully re-applied redo entry back onto the undo
// stack; ok false is a no-op, mirroring IssueRedo.
func (h *History) IssueUndo(e scene.SceneEvent, ok bool) {
	if ok {
		h.undo = append(h.undo, e)
	}
}

// Pop removes and returns the most recent undo-stack entry.
func (h *History) Pop() (scene.SceneEvent, bool) {
	if len(h.undo) == 0 {
		return scene.SceneEvent{}, false
	}
	e := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	return e, true
}

// PopRedo removes and returns the most recent redo-stack entry.
func (h *History) PopRedo() (scene.SceneEvent, bool) {
	if len(h.redo) == 0 {
		return scene.SceneEvent{}, false
	}
	e := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	return e, true
}

// StartMoveGroup pushes a Dummy sentinel, marking where a drag's
// intermediate events should be collapsed back to once the drag ends.
func (h *History) StartMoveGroup() {
	h.undo = append(h.undo, scene.SceneEvent{Kind: scene.KindDummy})
}

// consumeUntil pops entries while pred reports true, discarding a trailing
// Dummy sentinel if that's what stops the scan, and pushes back the first
// entry pred rejected.
func (h *History) consumeUntil(pred func(scene.SceneEvent) bool) {
	for len(h.undo) > 0 {
		e := h.undo[len(h.undo)-1]
		h.undo = h.undo[:len(h.undo)-1]
		if !pred(e) {
			if e.Kind != scene.KindDummy {
				h.undo = append(h.undo, e)
			}
			return
		}
	}
}

// drainUntil pops and collects entries while pred reports true, stopping
// under the same rule as consumeUntil.
func (h *History) drainUntil(pred func(scene.SceneEvent) bool) []scene.SceneEvent {
	var drained []scene.SceneEvent
	for len(h.undo) > 0 {
		e := h.undo[len(h.undo)-1]
		h.undo = h.undo[:len(h.undo)-1]
		if pred(e) {
			drained = append(drained, e)
		} else {
			if e.Kind != scene.KindDummy {
				h.undo = append(h.undo, e)
			}
			return drained
		}
	}
	return drained
}

// GroupForItem collapses every consecutive history entry touching item into
// a single EventSet, e.g. after a batch of related changes that should undo
// together.
func (h *History) GroupForItem(item scene.Id) {
	events := h.drainUntil(func(e scene.SceneEvent) bool {
		id, ok := e.Item()
		return ok && id == item
	})
	reverseInPlace(events)
	if set := scene.Set(events); !set.IsZero() {
		h.undo = append(h.undo, set)
	}
}

func (h *History) groupMovesSingle(last scene.SceneEvent) {
	if last.Kind != scene.KindSpriteMove {
		h.undo = append(h.undo, last)
		return
	}
	sprite := last.ID
	start := last.Rect
	finish := last.Rect2

	var prefix []scene.SceneEvent
	h.consumeUntil(func(e scene.SceneEvent) bool {
		switch e.Kind {
		case scene.KindSpriteMove:
			if e.ID == sprite {
				start = e.Rect
				return true
			}
			return false
		case scene.KindSpriteNew:
			if e.Sprite != nil && e.Sprite.ID == sprite {
				prefix = append(prefix, e)
				return true
			}
			return false
		default:
			return false
		}
	})

	reverseInPlace(prefix)
	events := append(prefix, scene.SpriteMove(sprite, start, finish))
	if set := scene.Set(events); !set.IsZero() {
		h.undo = append(h.undo, set)
	}
}

// GroupMovesDrawing collapses a finished freehand/line/cone stroke's many
// SpriteDrawingPoint entries (plus its SpriteDrawingStart and SpriteNew)
// into a single undoable unit. Undoing a drawing removes the whole sprite;
// individual points are never unwound.
func (h *History) GroupMovesDrawing(last scene.SceneEvent) {
	if last.Kind != scene.KindSpriteDrawingPoint {
		h.undo = append(h.undo, last)
		return
	}
	drawing := last.ID

	var prefix []scene.SceneEvent
	h.consumeUntil(func(e scene.SceneEvent) bool {
		switch e.Kind {
		case scene.KindSpriteDrawingPoint:
			return e.ID == drawing
		case scene.KindSpriteNew:
			if e.Sprite != nil && e.Sprite.Visual.Kind == scene.VisualDrawing &&
				e.Sprite.Visual.DrawingID == drawing {
				prefix = append(prefix, e)
				return true
			}
			return false
		case scene.KindSpriteDrawingStart:
			if e.ID == drawing {
				prefix = append(prefix, e)
				return true
			}
			return false
		case scene.KindEventSet:
			matched := false
			for _, sub := range e.Events {
				if sub.Kind == scene.KindSpriteDrawingStart && sub.ID == drawing {
					prefix = append(prefix, sub)
					matched = true
				}
			}
			return matched
		default:
			return false
		}
	})

	reverseInPlace(prefix)
	if set := scene.Set(prefix); !set.IsZero() {
		h.undo = append(h.undo, set)
	}
}

func (h *History) groupMovesSet(last scene.SceneEvent) {
	h.undo = append(h.undo, last)
	moves := make(map[scene.Id]scene.SceneEvent)
	var order []scene.Id

	h.consumeUntil(func(e scene.SceneEvent) bool {
		if e.Kind != scene.KindEventSet {
			return false
		}
		for _, sub := range e.Events {
			if sub.Kind != scene.KindSpriteMove {
				continue
			}
			if existing, ok := moves[sub.ID]; ok {
				existing.Rect = sub.Rect
				moves[sub.ID] = existing
			} else {
				moves[sub.ID] = sub
				order = append(order, sub.ID)
			}
		}
		return true
	})

	events := make([]scene.SceneEvent, 0, len(order))
	for _, id := range order {
		events = append(events, moves[id])
	}
	if set := scene.Set(events); !set.IsZero() {
		h.undo = append(h.undo, set)
	}
}

// EndMoveGroup collapses the entries pushed since the matching
// StartMoveGroup into a single undo-stack entry, the shape of the
// collapsing depending on what kind of drag just finished.
func (h *History) EndMoveGroup() {
	last, ok := h.Pop()
	if !ok {
		return
	}
	switch last.Kind {
	case scene.KindSpriteMove:
		h.groupMovesSingle(last)
	case scene.KindEventSet:
		h.groupMovesSet(last)
	case scene.KindSpriteDrawingPoint:
		h.GroupMovesDrawing(last)
	default:
		h.undo = append(h.undo, last)
	}
}

// ChangeScene requests a scene switch from the server, reporting whether
// the request was networked (and so a response should be awaited) at all.
func (h *History) ChangeScene(sceneUUID uuid.UUID) bool {
	h.issueMessage(wire.SceneChangeRequest(sceneUUID))
	return h.sender != nil
}

// EraseItem discards every undo/redo entry referencing id, used when an
// item is permanently destroyed rather than merely tombstoned.
func (h *History) EraseItem(id scene.Id) {
	keep := func(e scene.SceneEvent) bool {
		item, ok := e.Item()
		return !ok || item != id
	}
	h.undo = filterEvents(h.undo, keep)
	h.redo = filterEvents(h.redo, keep)
}

func (h *History) Disconnect() {
	h.issueMessage(wire.Ping())
}

func (h *History) ReplyToHealthCheck() {
	h.issueMessage(wire.Ping())
}

func filterEvents(events []scene.SceneEvent, keep func(scene.SceneEvent) bool) []scene.SceneEvent {
	out := events[:0]
	for _, e := range events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func reverseInPlace(events []scene.SceneEvent) {
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
}
