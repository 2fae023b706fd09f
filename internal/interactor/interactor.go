// Package interactor implements the client-side state machine that turns
// pointer gestures into SceneEvents: what's held under the cursor, which
// sprites are selected, and the optimistic apply-then-reconcile loop that
// keeps a local scene replica in sync with the server's authoritative copy.
package interactor

import (
	"math"

	"github.com/google/uuid"
	"github.com/owenfeik/vttserver/internal/geometry"
	"github.com/owenfeik/vttserver/internal/history"
	"github.com/owenfeik/vttserver/internal/perms"
	"github.com/owenfeik/vttserver/internal/scene"
	"github.com/owenfeik/vttserver/internal/wire"
)

// SelectionID addresses an operation at the current multi-selection as a
// whole rather than at one sprite.
const SelectionID scene.Id = -1

// DefaultFogBrush is the fog brush radius a fresh Interactor starts with.
const DefaultFogBrush float32 = 1.0

const minFogBrush float32 = 0.5

// ignoreThreshold bounds how far a resize or drag must move before release
// commits it; anything smaller is treated as a click and reverted.
const ignoreThreshold float32 = 0.01

// Interactor owns one side of a collaborative scene: its own replica, the
// permission model governing what it may do to it, the undo/redo history,
// and whatever the pointer currently holds.
type Interactor struct {
	scene *scene.Scene
	perms *perms.Perms

	user scene.Id
	role perms.Role

	selectedLayer    scene.Id
	selectedSprites  []scene.Id
	selectionAligned bool
	selectionMarquee *geometry.Rect

	holding HeldObject
	copied  []*scene.Sprite

	fogBrush float32

	history *history.History
	changes Changes
}

// New constructs an Interactor for user against a fresh, empty scene. Pass
// perms.CanonicalUpdater for a server's own canonical replica, which is
// always Owner; any other user starts as Spectator until a role change
// arrives.
func New(user scene.Id, sender history.Sender) *Interactor {
	s := scene.NewScene(uuid.Nil, uuid.Nil, "")
	p := perms.New()
	it := &Interactor{
		scene:            s,
		perms:            p,
		user:             user,
		selectedLayer:    s.FirstLayer(),
		selectionAligned: true,
		holding:          none(),
		copied:           nil,
		fogBrush:         DefaultFogBrush,
		history:          history.New(sender),
		changes:          newChanges(),
	}
	it.role = p.RoleOf(user)
	return it
}

// Scene, Perms, Role, User, SelectedLayer, and Changes expose an
// Interactor's internals for rendering and testing; treat the returned
// scene/perms as read-only except through Interactor's own methods.
func (it *Interactor) Scene() *scene.Scene     { return it.scene }
func (it *Interactor) Perms() *perms.Perms     { return it.perms }
func (it *Interactor) Role() perms.Role        { return it.role }
func (it *Interactor) User() scene.Id          { return it.user }
func (it *Interactor) SelectedLayer() scene.Id { return it.selectedLayer }
func (it *Interactor) Changes() *Changes       { return &it.changes }

func (it *Interactor) SaveRequired() bool { return it.history.SaveRequired() }
func (it *Interactor) ClearModified()     { it.history.ClearModified() }

// --- Event funnel ---
//
// Every mutating method below follows the same shape: call a Scene/Sprite
// method that mutates the replica directly and returns the forward event,
// then pass that event through sceneEvent. The mutation has already
// happened by the time permission is checked; a denial unwinds it rather
// than refusing it up front.

func (it *Interactor) eventLayer(e scene.SceneEvent) (scene.Id, bool) {
	if id, ok := e.LayerID(); ok {
		return id, true
	}
	if id, ok := e.SpriteID(); ok {
		if l := it.scene.LayerOf(id); l != nil {
			return l.ID, true
		}
	}
	if e.Kind == scene.KindEventSet {
		for _, sub := range e.Events {
			if id, ok := it.eventLayer(sub); ok {
				return id, true
			}
		}
	}
	return 0, false
}

func (it *Interactor) changeIf(e scene.SceneEvent) {
	if e.Kind == scene.KindEventSet {
		for _, sub := range e.Events {
			it.changeIf(sub)
		}
		return
	}
	it.changes.layerChangeIf(e.IsLayer())
	it.changes.spriteChangeIf(e.IsSprite() || e.IsFog())
	if id, ok := e.Item(); ok {
		it.changes.selectedChangeIf(it.IsSelected(id))
	}
}

// sceneEvent is the sole gate a locally-applied event passes through: an
// EventSet is decomposed so each leaf is checked on its own permission
// category, since EventSet and Dummy never carry one themselves.
func (it *Interactor) sceneEvent(e scene.SceneEvent) {
	if e.IsZero() {
		return
	}
	if e.Kind == scene.KindEventSet {
		it.sceneEvents(e.Events)
		return
	}

	layer, hasLayer := it.eventLayer(e)
	if it.perms.Permitted(it.user, e, layer, hasLayer) {
		it.changeIf(e)
		it.history.IssueEvent(e)
		return
	}
	scene.Unwind(it.scene, e)
}

func (it *Interactor) sceneEvents(events []scene.SceneEvent) {
	for _, e := range events {
		it.sceneEvent(e)
	}
}

func (it *Interactor) sceneOption(e scene.SceneEvent, ok bool) {
	if ok {
		it.sceneEvent(e)
	}
}

// unwindEvent reverts a locally-applied event the server has since
// rejected, releasing any hold on the item it touched.
func (it *Interactor) unwindEvent(e scene.SceneEvent) {
	if id, ok := e.Item(); ok {
		if held, ok := it.heldID(); ok && held == id {
			it.holding = none()
		}
	}
	it.changeIf(e)
	scene.Unwind(it.scene, e)
}

// --- Server reconciliation ---

// ProcessServerEvents applies a batch of server events in order, returning
// the most recent scene list the batch carried, if any.
func (it *Interactor) ProcessServerEvents(events []wire.ServerEvent) ([]scene.SceneListEntry, bool) {
	var list []scene.SceneListEntry
	var got bool
	for _, e := range events {
		if l, ok := it.processServerEvent(e); ok {
			list, got = l, true
		}
	}
	it.changes.spriteChange()
	return list, got
}

func (it *Interactor) processServerEvent(e wire.ServerEvent) ([]scene.SceneListEntry, bool) {
	switch e.Kind {
	case wire.ServerApproval:
		it.history.ApproveEvent(e.MessageID)
	case wire.ServerEventSet:
		for _, sub := range e.Events {
			it.processServerEvent(sub)
		}
	case wire.ServerGameOver:
		// The session layer handles tearing down the connection; the
		// interactor has nothing further to reconcile.
	case wire.ServerRejection:
		if rejected, ok := it.history.TakeEvent(e.MessageID); ok {
			it.unwindEvent(rejected)
		}
	case wire.ServerPermsChange:
		it.perms = e.Perms
		it.updateRole()
	case wire.ServerPermsUpdate:
		isRole := e.PermsEvent.Kind == perms.EventRoleChange
		it.perms.HandleEvent(perms.CanonicalUpdater, e.PermsEvent)
		if isRole {
			it.updateRole()
		}
	case wire.ServerSceneChange:
		it.replaceScene(e.Scene)
	case wire.ServerSceneList:
		return e.SceneList, true
	case wire.ServerSceneUpdate:
		it.changes.layerChangeIf(e.SceneEvent.IsLayer())
		scene.Apply(it.scene, e.SceneEvent)
	case wire.ServerSelectedLayer:
		it.selectedLayer = e.LayerID
	case wire.ServerUserID:
		// The account uuid identifies this connection to the persistence
		// layer; it is a separate namespace from the scene-local user id
		// perms is keyed on, which is assigned at session admission.
	}
	return nil, false
}

func (it *Interactor) updateRole() {
	it.role = it.perms.RoleOf(it.user)
	it.changes.roleChange()
}

func (it *Interactor) replaceScene(s *scene.Scene) {
	it.scene = s
	it.selectedSprites = nil
	it.selectionMarquee = nil
	it.holding = none()
	it.selectedLayer = s.FirstLayer()
	it.changes.allChange()
}

// ChangeScene requests the server switch this connection to a different
// scene, reporting whether a reply should be awaited.
func (it *Interactor) ChangeScene(sceneUUID uuid.UUID) bool {
	return it.history.ChangeScene(sceneUUID)
}

// --- Undo / redo ---

func (it *Interactor) Undo() {
	e, ok := it.history.Pop()
	if !ok {
		return
	}
	if e.Kind == scene.KindDummy {
		it.Undo()
		return
	}
	reverse, applied := scene.Unwind(it.scene, e)
	it.changeIf(e)
	it.history.IssueEventNoHistory(reverse)
	it.history.IssueRedo(reverse, applied)
}

func (it *Interactor) Redo() {
	e, ok := it.history.PopRedo()
	if !ok {
		return
	}
	if e.Kind == scene.KindDummy {
		it.Redo()
		return
	}
	forward, applied := scene.Unwind(it.scene, e)
	it.changeIf(e)
	it.history.IssueEventNoHistory(forward)
	it.history.IssueUndo(forward, applied)
}

// --- Selection ---

func (it *Interactor) HasSelection() bool { return len(it.selectedSprites) > 0 }

func (it *Interactor) IsSelected(id scene.Id) bool {
	if id == SelectionID {
		return true
	}
	for _, s := range it.selectedSprites {
		if s == id {
			return true
		}
	}
	return false
}

func (it *Interactor) singleSelected() bool { return len(it.selectedSprites) == 1 }

func (it *Interactor) ClearSelection() {
	if len(it.selectedSprites) == 0 {
		return
	}
	it.selectedSprites = nil
	it.selectionAligned = true
	it.changes.spriteSelectedChange()
}

func (it *Interactor) clearHeldSelection() {
	it.holding = none()
	it.ClearSelection()
}

// selectSingle adds id to the selection without expanding it to its group.
// requireVisible gates the add on the fog/visibility check grab uses; group
// expansion and programmatic multi-select skip it, since those ids were
// already screened by an earlier, direct click.
func (it *Interactor) selectSingle(id scene.Id, requireVisible bool) {
	if it.IsSelected(id) {
		return
	}
	sp := it.scene.SpriteRef(id)
	if sp == nil {
		return
	}
	if requireVisible && it.role < perms.Editor && it.scene.Fog.RectOccluded(sp.Rect) {
		return
	}
	it.selectionAligned = it.selectionAligned && sp.Rect.IsAligned()
	it.selectedSprites = append(it.selectedSprites, id)
	it.changes.spriteSelectedChange()
}

// Select adds id to the selection, expanding to every member of its group
// if it belongs to one.
func (it *Interactor) Select(id scene.Id) {
	if g := it.scene.SpriteGroup(id); g != nil {
		for _, m := range g.Sprites() {
			it.selectSingle(m, false)
		}
		return
	}
	it.selectSingle(id, true)
}

func (it *Interactor) SelectMultiple(ids []scene.Id) {
	for _, id := range ids {
		it.Select(id)
	}
}

func (it *Interactor) SelectAll() {
	l := it.scene.Layer(it.selectedLayer)
	if l == nil {
		return
	}
	ids := make([]scene.Id, len(l.Sprites))
	aligned := true
	for i, sp := range l.Sprites {
		ids[i] = sp.ID
		aligned = aligned && sp.Rect.IsAligned()
	}
	it.selectedSprites = ids
	it.selectionAligned = aligned
	it.changes.spriteSelectedChange()
}

// selectionEffect applies effect to every currently selected sprite,
// batching the resulting events through the usual permission funnel.
func (it *Interactor) selectionEffect(effect func(*scene.Sprite) (scene.SceneEvent, bool)) {
	events := make([]scene.SceneEvent, 0, len(it.selectedSprites))
	for _, id := range it.selectedSprites {
		if sp := it.scene.SpriteRef(id); sp != nil {
			if e, ok := effect(sp); ok {
				events = append(events, e)
			}
		}
	}
	it.sceneEvents(events)
}

func (it *Interactor) selectedID() (scene.Id, bool) {
	switch len(it.selectedSprites) {
	case 0:
		return scene.NoID, false
	case 1:
		return it.selectedSprites[0], true
	default:
		return SelectionID, true
	}
}

// SelectedDetails reports the visual attributes every currently selected
// sprite agrees on, or false if nothing is selected.
func (it *Interactor) SelectedDetails() (SelectedDetails, bool) {
	id, ok := it.selectedID()
	if !ok {
		return SelectedDetails{}, false
	}
	if id != SelectionID {
		sp := it.scene.SpriteRef(id)
		if sp == nil {
			return SelectedDetails{}, false
		}
		return newSelectedDetails(id, sp), true
	}

	first := it.scene.SpriteRef(it.selectedSprites[0])
	if first == nil {
		return SelectedDetails{}, false
	}
	d := newSelectedDetails(id, first)
	for _, sid := range it.selectedSprites[1:] {
		if sp := it.scene.SpriteRef(sid); sp != nil {
			d.intersect(sp)
		}
	}
	return d, true
}

// --- Grab / drag / release ---

// spriteToGrabAt finds the sprite a grab at at should act on: with exactly
// one sprite selected, its resize anchors extend its hitbox; otherwise only
// a direct hit counts.
func (it *Interactor) spriteToGrabAt(at geometry.Point) *scene.Sprite {
	if it.singleSelected() {
		return it.scene.SpriteNear(at, anchorRadius)
	}
	return it.scene.SpriteAtRef(at)
}

// grabAt decides what a click at at should pick up, and whether it
// implies adding a new sprite to the selection.
func (it *Interactor) grabAt(at geometry.Point, add bool) (held HeldObject, newSelected scene.Id, hasNew bool) {
	sp := it.spriteToGrabAt(at)
	if sp == nil {
		return HeldObject{Kind: HeldMarquee, Anchor: at}, scene.NoID, false
	}

	if it.role < perms.Editor && it.scene.Fog.RectOccluded(sp.Rect) {
		return HeldObject{Kind: HeldMarquee, Anchor: at}, scene.NoID, false
	}

	if it.IsSelected(sp.ID) {
		if it.singleSelected() && it.scene.SpriteGroup(sp.ID) == nil {
			return grabSprite(sp, at), scene.NoID, false
		}
		return HeldObject{Kind: HeldSelection, Anchor: at}, scene.NoID, false
	}

	if add || it.scene.SpriteGroup(sp.ID) != nil {
		return HeldObject{Kind: HeldSelection, Anchor: at}, sp.ID, true
	}

	return grabSprite(sp, at), sp.ID, true
}

// Grab starts a drag gesture at at. add is true for a modifier-held click,
// which extends the selection instead of replacing it.
func (it *Interactor) Grab(at geometry.Point, add bool) {
	held, id, hasNew := it.grabAt(at, add)
	it.holding = held
	if hasNew {
		if !add {
			it.ClearSelection()
		}
		it.Select(id)
	}
	if it.holding.IsSprite() {
		it.history.StartMoveGroup()
	}
	it.changes.spriteChange()
}

// GrabSelection re-grabs the current selection for dragging without
// changing what's selected, used when a drag starts from an already
// selected sprite's body.
func (it *Interactor) GrabSelection(at geometry.Point) {
	if it.singleSelected() {
		if sp := it.scene.SpriteRef(it.selectedSprites[0]); sp != nil {
			it.holding = grabSprite(sp, at)
		}
	} else {
		it.holding = HeldObject{Kind: HeldSelection, Anchor: at}
	}
	if it.holding.IsSprite() {
		it.history.StartMoveGroup()
	}
}

func (it *Interactor) heldID() (scene.Id, bool) {
	switch it.holding.Kind {
	case HeldSprite, HeldAnchor, HeldCircle, HeldDrawing:
		return it.holding.ID, true
	default:
		return 0, false
	}
}

func (it *Interactor) heldSprite() *scene.Sprite {
	id, ok := it.heldID()
	if !ok {
		return nil
	}
	return it.scene.SpriteRef(id)
}

func (it *Interactor) updateHeldSprite(at geometry.Point, maintainAspect bool) {
	held := it.holding
	sp := it.heldSprite()
	if sp == nil {
		return
	}

	var e scene.SceneEvent
	switch held.Kind {
	case HeldCircle:
		r := at.Dist(held.Anchor)
		e = sp.SetRect(geometry.Rect{X: held.Anchor.X - r, Y: held.Anchor.Y - r, W: 2 * r, H: 2 * r})
	case HeldSprite:
		e = sp.SetPos(at.Sub(held.GrabOffset))
	case HeldAnchor:
		delta := at.Sub(anchorPoint(held.StartingRect, held.Dx, held.Dy))
		x, y := sp.Rect.X, sp.Rect.Y
		if held.Dx == -1 {
			x += delta.X
		}
		if held.Dy == -1 {
			y += delta.Y
		}
		rect := geometry.Rect{
			X: x, Y: y,
			W: sp.Rect.W + delta.X*float32(held.Dx),
			H: sp.Rect.H + delta.Y*float32(held.Dy),
		}
		if maintainAspect {
			rect = rect.MatchAspect(held.StartingRect)
		}
		e = sp.SetRect(rect)
	default:
		return
	}
	it.sceneEvent(e)
}

func (it *Interactor) dragSelection(to geometry.Point) {
	from := it.holding.Anchor
	delta := to.Sub(from)
	it.selectionEffect(func(sp *scene.Sprite) (scene.SceneEvent, bool) {
		return sp.MoveBy(delta), true
	})
	it.holding.Anchor = to
}

// Drag updates whatever is currently held to track the pointer at at.
// shift toggles aspect-ratio locking for a resize; a drawing in progress
// ignores it.
func (it *Interactor) Drag(at geometry.Point, shift bool) {
	switch it.holding.Kind {
	case HeldNone:
	case HeldDrawing:
		e, ok := it.scene.AddDrawingPoint(it.holding.DrawingID, at)
		it.sceneOption(e, ok)
	case HeldMarquee:
		r := it.holding.Anchor.RectTo(at)
		it.selectionMarquee = &r
		it.changes.spriteSelectedChange()
	case HeldSelection:
		it.dragSelection(at)
	case HeldAnchor, HeldCircle, HeldSprite:
		it.updateHeldSprite(at, shift)
	}
}

// applyIgnoreThreshold reverts id to starting if the drag moved it less
// than ignoreThreshold, reporting whether it did so.
func (it *Interactor) applyIgnoreThreshold(id scene.Id, starting geometry.Rect) bool {
	sp := it.scene.SpriteRef(id)
	if sp == nil {
		return false
	}
	if sp.Rect.Delta(starting) >= ignoreThreshold {
		return false
	}
	if sp.Rect != starting {
		it.sceneEvent(sp.SetRect(starting))
	}
	return true
}

func (it *Interactor) finishSpriteResize(id scene.Id, starting geometry.Rect, switchAlign bool) {
	if it.applyIgnoreThreshold(id, starting) {
		return
	}
	sp := it.scene.SpriteRef(id)
	if sp == nil {
		return
	}
	if starting.IsAligned() != switchAlign {
		it.sceneEvent(sp.SnapSize())
	} else if e, ok := sp.EnforceMinSize(); ok {
		it.sceneEvent(e)
	}
}

func (it *Interactor) finishSpriteDrag(id scene.Id, starting geometry.Rect, switchAlign bool) {
	if it.applyIgnoreThreshold(id, starting) {
		return
	}
	if starting.IsAligned() == switchAlign {
		return
	}
	if sp := it.scene.SpriteRef(id); sp != nil {
		it.sceneEvent(sp.SnapPos())
	}
}

func (it *Interactor) finishSelectionDrag(switchAlign bool) {
	if it.selectionAligned == switchAlign {
		return
	}
	it.selectionEffect(func(sp *scene.Sprite) (scene.SceneEvent, bool) {
		return sp.SnapPos(), true
	})
}

func (it *Interactor) finishDraw(drawing, sprite scene.Id) {
	e, ok := it.scene.FinishDrawing(drawing, sprite)
	it.sceneOption(e, ok)
	it.history.EndMoveGroup()
}

func (it *Interactor) finishCircle(id scene.Id, snapToGrid bool) {
	if !snapToGrid {
		return
	}
	if sp := it.scene.SpriteRef(id); sp != nil {
		it.sceneEvent(sp.SnapSize())
	}
}

// Release ends whatever gesture is in progress: alt inverts the grid-snap
// (or marquee fully-contains-vs-intersects) default, ctrl keeps the
// existing selection instead of replacing it on a marquee release.
func (it *Interactor) Release(alt, ctrl bool) {
	held := it.holding

	switch {
	case (held.Kind == HeldAnchor || held.Kind == HeldCircle || held.Kind == HeldDrawing) && held.Ephemeral:
		if e, ok := it.scene.RemoveSprite(held.ID); ok {
			it.sceneEvent(e)
		}
		it.history.EraseItem(held.ID)
	case held.Kind == HeldCircle:
		it.finishCircle(held.ID, !alt)
	case held.Kind == HeldDrawing:
		it.finishDraw(held.DrawingID, held.ID)
	case held.Kind == HeldMarquee:
		if !ctrl {
			it.ClearSelection()
		}
		if it.selectionMarquee != nil {
			it.SelectMultiple(it.scene.SpritesIn(*it.selectionMarquee, alt))
		}
		it.selectionMarquee = nil
		it.changes.spriteSelectedChange()
	case held.Kind == HeldSelection:
		it.finishSelectionDrag(alt)
	case held.Kind == HeldSprite:
		it.finishSpriteDrag(held.ID, held.StartingRect, alt)
	case held.Kind == HeldAnchor:
		it.finishSpriteResize(held.ID, held.StartingRect, alt)
	}

	if held.IsSprite() {
		it.history.EndMoveGroup()
	}
	it.holding = none()
}

// --- Drawing / shape creation ---

// StartDraw begins a shape or stroke gesture at at. ephemeral marks a
// throwaway measurement overlay that Release discards instead of keeping.
func (it *Interactor) StartDraw(at geometry.Point, ephemeral, alt bool, details SpriteDetails, tool DrawTool) {
	it.clearHeldSelection()

	if mode, ok := tool.drawingMode(); ok {
		it.startStroke(mode, ephemeral, alt, details)
		return
	}

	shape, ok := tool.shape()
	if !ok {
		return
	}

	it.newHeldShape(shape, at, !alt, ephemeral, details)
	if tool == ToolCircle && it.holding.Kind == HeldAnchor {
		it.holding = HeldObject{Kind: HeldCircle, ID: it.holding.ID, Anchor: at, Ephemeral: ephemeral}
	}
}

func (it *Interactor) startStroke(mode scene.DrawingMode, ephemeral, alt bool, details SpriteDetails) {
	drawingID := it.scene.StartDrawing(mode)
	visual := details.drawingVisual(drawingID)
	rect := geometry.At(geometry.Origin, scene.DefaultWidth, scene.DefaultHeight)
	sp, e, ok := it.scene.NewSpriteAt(visual, &it.selectedLayer, rect)
	if !ok {
		return
	}
	it.history.StartMoveGroup()
	it.sceneEvent(e)
	it.holding = HeldObject{
		Kind: HeldDrawing, ID: sp.ID, DrawingID: drawingID,
		Ephemeral: ephemeral, Measurement: !alt,
	}
}

// newHeldShape creates a zero-size sprite at at and holds it by its
// bottom-right anchor, so the caller's following drags grow it like a
// rubber-band rectangle.
func (it *Interactor) newHeldShape(shape scene.Shape, at geometry.Point, snapToGrid, ephemeral bool, details SpriteDetails) {
	it.clearHeldSelection()
	p := at
	if snapToGrid {
		p = at.Round()
	}
	rect := geometry.At(p, 0, 0)
	visual := details.shapeVisual()
	visual.Shape = shape
	sp, e, ok := it.scene.NewSpriteAt(visual, &it.selectedLayer, rect)
	if !ok {
		return
	}
	it.sceneEvent(e)
	it.holding = HeldObject{Kind: HeldAnchor, ID: sp.ID, Dx: 1, Dy: 1, StartingRect: rect, Ephemeral: ephemeral}
}

// --- Sprite lifecycle ---

func (it *Interactor) newSpriteCommon(visual scene.SpriteVisual, layer scene.Id, rect *geometry.Rect) (scene.Id, bool) {
	if layer == scene.NoID {
		layer = it.selectedLayer
	}
	at := geometry.At(geometry.Origin, scene.DefaultWidth, scene.DefaultHeight)
	if rect != nil {
		at = *rect
	}
	sp, e, ok := it.scene.NewSpriteAt(visual, &layer, at)
	if !ok {
		return scene.NoID, false
	}
	it.sceneEvent(e)
	return sp.ID, true
}

func (it *Interactor) NewSprite(visual scene.SpriteVisual, layer scene.Id) (scene.Id, bool) {
	return it.newSpriteCommon(visual, layer, nil)
}

func (it *Interactor) NewSpriteAt(visual scene.SpriteVisual, layer scene.Id, rect geometry.Rect) (scene.Id, bool) {
	return it.newSpriteCommon(visual, layer, &rect)
}

func (it *Interactor) CloneSprite(id scene.Id) {
	if id == SelectionID {
		events := make([]scene.SceneEvent, 0, len(it.selectedSprites))
		for _, sid := range it.selectedSprites {
			if e, ok := it.scene.CloneSprite(sid); ok {
				events = append(events, e)
			}
		}
		it.sceneEvents(events)
		return
	}
	e, ok := it.scene.CloneSprite(id)
	it.sceneOption(e, ok)
}

func (it *Interactor) RemoveSprite(id scene.Id) {
	if id == SelectionID {
		if it.singleSelected() {
			it.RemoveSprite(it.selectedSprites[0])
		} else if it.HasSelection() {
			it.sceneEvent(it.scene.RemoveSprites(it.selectedSprites))
		}
		it.ClearSelection()
		return
	}
	e, ok := it.scene.RemoveSprite(id)
	it.sceneOption(e, ok)
}

func (it *Interactor) SpriteLayer(sprite, layer scene.Id) {
	if sprite == SelectionID {
		it.sceneEvent(it.scene.SpritesLayer(it.selectedSprites, layer))
		return
	}
	e, ok := it.scene.SetSpriteLayer(sprite, layer)
	it.sceneOption(e, ok)
}

func (it *Interactor) SpriteDimension(sprite scene.Id, dim scene.Dimension, value float32) {
	if sprite == SelectionID {
		it.selectionEffect(func(sp *scene.Sprite) (scene.SceneEvent, bool) {
			return sp.SetDimension(dim, value), true
		})
		return
	}
	if sp := it.scene.SpriteRef(sprite); sp != nil {
		it.sceneEvent(sp.SetDimension(dim, value))
	}
}

func (it *Interactor) SpriteRect(sprite scene.Id, rect geometry.Rect) {
	if sp := it.scene.SpriteRef(sprite); sp != nil {
		it.sceneEvent(sp.SetRect(rect))
	}
}

func (it *Interactor) SpriteDetailsUpdate(id scene.Id, details SpriteDetails) {
	if id == SelectionID {
		it.selectionEffect(details.updateSprite)
		return
	}
	if sp := it.scene.SpriteRef(id); sp != nil {
		e, ok := details.updateSprite(sp)
		it.sceneOption(e, ok)
	}
}

func (it *Interactor) MoveSelection(delta geometry.Point) {
	if delta == (geometry.Point{}) {
		return
	}
	it.selectionEffect(func(sp *scene.Sprite) (scene.SceneEvent, bool) {
		return sp.MoveBy(delta), true
	})
}

func (it *Interactor) GroupSelected() {
	it.sceneEvent(it.scene.GroupSprites(it.selectedSprites))
}

func (it *Interactor) UngroupSelected() {
	if len(it.selectedSprites) == 0 {
		return
	}
	g := it.scene.SpriteGroup(it.selectedSprites[0])
	if g == nil {
		return
	}
	e, ok := it.scene.RemoveGroup(g.ID)
	it.sceneOption(e, ok)
}

// --- Clipboard ---

// Copy snapshots the current selection, normalised so its bounding box's
// top-left sits at the origin, ready to be translated to a paste point.
func (it *Interactor) Copy() {
	if !it.HasSelection() {
		return
	}
	copied := make([]*scene.Sprite, 0, len(it.selectedSprites))
	minX, minY := float32(math.MaxFloat32), float32(math.MaxFloat32)
	for _, id := range it.selectedSprites {
		sp := it.scene.SpriteRef(id)
		if sp == nil {
			continue
		}
		c := sp.Clone()
		copied = append(copied, c)
		if c.Rect.X < minX {
			minX = c.Rect.X
		}
		if c.Rect.Y < minY {
			minY = c.Rect.Y
		}
	}
	offset := geometry.Point{X: -minX, Y: -minY}
	for _, c := range copied {
		c.Rect = c.Rect.Translate(offset)
	}
	it.copied = copied
}

// Paste places the last copied selection at at, selecting the new sprites.
func (it *Interactor) Paste(at geometry.Point) {
	if len(it.copied) == 0 {
		return
	}
	it.ClearSelection()
	delta := at.Round()
	events := make([]scene.SceneEvent, 0, len(it.copied))
	for _, c := range it.copied {
		rect := c.Rect.Translate(delta)
		sp, e, ok := it.scene.NewSpriteAt(c.Visual, &it.selectedLayer, rect)
		if !ok {
			continue
		}
		events = append(events, e)
		it.Select(sp.ID)
	}
	it.sceneEvents(events)
}

// --- Layers ---

func (it *Interactor) NewLayer() {
	z := int32(1)
	if len(it.scene.Layers) > 0 {
		if top := it.scene.Layers[0].Z + 1; top > z {
			z = top
		}
	}
	it.sceneEvent(it.scene.AddLayer(scene.NewLayer(it.scene.NextID(), "Untitled", z)))
	it.changes.layerChange()
}

func (it *Interactor) RemoveLayer(layer scene.Id) {
	e, ok := it.scene.RemoveLayer(layer)
	it.sceneOption(e, ok)
	if layer == it.selectedLayer {
		it.selectedLayer = it.scene.FirstLayer()
	}
	it.changes.allChange()
}

func (it *Interactor) RenameLayer(layer scene.Id, title string) {
	if l := it.scene.Layer(layer); l != nil {
		it.sceneEvent(l.Rename(title))
	}
}

func (it *Interactor) SelectLayer(layer scene.Id) {
	it.selectedLayer = layer
}

func (it *Interactor) SetLayerVisible(layer scene.Id, visible bool) {
	l := it.scene.Layer(layer)
	if l == nil {
		return
	}
	e, ok := l.SetVisible(visible)
	it.sceneOption(e, ok)
	it.changes.spriteChangeIf(len(l.Sprites) > 0)
}

func (it *Interactor) SetLayerLocked(layer scene.Id, locked bool) {
	if l := it.scene.Layer(layer); l != nil {
		e, ok := l.SetLocked(locked)
		it.sceneOption(e, ok)
	}
}

func (it *Interactor) MoveLayer(layer scene.Id, up bool) {
	e, ok := it.scene.MoveLayer(layer, up)
	it.sceneOption(e, ok)
	it.changes.layerChangeIf(ok)
}

// --- Scene-wide settings ---

func (it *Interactor) SetSceneTitle(title string) {
	if title == it.scene.Title {
		return
	}
	old := it.scene.Title
	it.scene.Title = title
	it.sceneEvent(scene.SceneTitleChange(old, title))
}

func (it *Interactor) SetSceneDimensions(w, h uint32) {
	if w == it.scene.W && h == it.scene.H {
		return
	}
	oldW, oldH := it.scene.W, it.scene.H
	it.scene.W, it.scene.H = w, h
	it.scene.Fog.Resize(w, h)
	it.sceneEvent(scene.SceneDimensions(oldW, oldH, w, h))
}

// --- Fog of war ---

func (it *Interactor) FogBrush() float32 { return it.fogBrush }

// ChangeFogBrush grows or shrinks the fog brush by one grid unit per call,
// floored at minFogBrush, and returns the resulting size.
func (it *Interactor) ChangeFogBrush(delta float32) float32 {
	switch {
	case delta > 0:
		v := it.fogBrush - 1
		if v < minFogBrush {
			v = minFogBrush
		}
		it.fogBrush = v
	case delta < 0:
		it.fogBrush += 1
	}
	return it.fogBrush
}

// SetFog paints the fog brush at at; occlude selects covering vs revealing.
func (it *Interactor) SetFog(at geometry.Point, occlude bool) {
	it.sceneEvent(it.scene.Fog.SetCircle(at, it.fogBrush, occlude))
}
