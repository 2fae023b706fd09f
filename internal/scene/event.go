package scene

import "github.com/owenfeik/vttserver/internal/geometry"

// Kind tags a SceneEvent's variant. SceneEvent carries every field any
// variant might need; only the fields relevant to Kind are meaningful. This
// mirrors the teacher's opcode-plus-fixed-fields idiom (see
// internal/net/packet) rather than a Go interface per variant, keeping
// SceneEvent a plain value that is cheap to store in history and redo
// stacks.
type Kind int

const (
	KindDummy Kind = iota
	KindEventSet

	KindFogActive
	KindFogOcclude
	KindFogReveal

	KindGroupNew
	KindGroupAdd
	KindGroupRemove
	KindGroupDelete

	KindLayerLocked
	KindLayerMove
	KindLayerNew
	KindLayerRemove
	KindLayerRename
	KindLayerRestore
	KindLayerVisibility

	KindSceneDimensions
	KindSceneTitle

	KindSpriteDrawingStart
	KindSpriteDrawingPoint
	KindSpriteLayer
	KindSpriteMove
	KindSpriteNew
	KindSpriteRemove
	KindSpriteRestore
	KindSpriteVisual
)

// SceneEvent is a tagged variant enumerating every lawful mutation of a
// Scene. Each variant carries enough information to apply it forward and to
// unwind it (apply its inverse).
type SceneEvent struct {
	Kind Kind

	ID     Id // primary item id: layer, sprite, drawing, or group
	Layer  Id // secondary item id: owning/target layer
	Group  Id

	Bool  bool
	Bool2 bool
	Int   int32
	Int2  int32

	U1, U2, U3, U4 uint32

	Str  string
	Str2 string

	Point geometry.Point
	Rect  geometry.Rect
	Rect2 geometry.Rect

	DrawingMode DrawingMode

	Sprite *Sprite
	Visual  SpriteVisual
	Visual2 SpriteVisual

	Events []SceneEvent
}

// Set returns nil if events is empty, the lone element if length 1, else a
// KindEventSet wrapping the whole slice.
func Set(events []SceneEvent) SceneEvent {
	switch len(events) {
	case 0:
		return SceneEvent{}
	case 1:
		return events[0]
	default:
		return SceneEvent{Kind: KindEventSet, Events: events}
	}
}

// IsZero reports whether e is the empty/absent event returned where the
// core spec's Option<SceneEvent> would be None.
func (e SceneEvent) IsZero() bool {
	return e.Kind == KindDummy && e.Events == nil && e.Sprite == nil
}

var fogKinds = map[Kind]bool{KindFogActive: true, KindFogOcclude: true, KindFogReveal: true}

var layerKinds = map[Kind]bool{
	KindLayerLocked: true, KindLayerMove: true, KindLayerNew: true,
	KindLayerRemove: true, KindLayerRename: true, KindLayerRestore: true,
	KindLayerVisibility: true,
}

var spriteKinds = map[Kind]bool{
	KindGroupAdd: true, KindGroupRemove: true, KindSpriteDrawingPoint: true,
	KindSpriteLayer: true, KindSpriteMove: true, KindSpriteNew: true,
	KindSpriteRemove: true, KindSpriteRestore: true, KindSpriteVisual: true,
}

var sceneKinds = map[Kind]bool{
	KindSceneDimensions: true, KindSceneTitle: true, KindFogActive: true,
}

func (e SceneEvent) IsFog() bool  { return e.recurseKind(fogKinds) }
func (e SceneEvent) IsLayer() bool { return e.recurseKind(layerKinds) }
func (e SceneEvent) IsSprite() bool { return e.recurseKind(spriteKinds) }
func (e SceneEvent) IsScene() bool { return e.recurseKind(sceneKinds) }

func (e SceneEvent) recurseKind(set map[Kind]bool) bool {
	if set[e.Kind] {
		return true
	}
	if e.Kind == KindEventSet {
		for _, sub := range e.Events {
			if sub.recurseKind(set) {
				return true
			}
		}
	}
	return false
}

// Item returns the event's primary item id, when is_sprite() or is_layer()
// would be true; EventSet has no single item.
func (e SceneEvent) Item() (Id, bool) {
	switch e.Kind {
	case KindGroupAdd, KindGroupRemove,
		KindLayerLocked, KindLayerMove, KindLayerNew, KindLayerRemove,
		KindLayerRename, KindLayerRestore, KindLayerVisibility,
		KindSpriteLayer, KindSpriteMove, KindSpriteRemove, KindSpriteRestore,
		KindSpriteVisual, KindSpriteDrawingStart, KindSpriteDrawingPoint:
		return e.ID, true
	case KindSpriteNew:
		return e.Sprite.ID, true
	default:
		return 0, false
	}
}

// SpriteID returns the event's sprite id, if it is sprite-scoped.
func (e SceneEvent) SpriteID() (Id, bool) {
	switch e.Kind {
	case KindGroupAdd, KindGroupRemove, KindSpriteLayer, KindSpriteMove,
		KindSpriteRemove, KindSpriteRestore, KindSpriteVisual:
		return e.ID, true
	case KindSpriteNew:
		return e.Sprite.ID, true
	default:
		return 0, false
	}
}

// LayerID returns the event's layer id, if it has one.
func (e SceneEvent) LayerID() (Id, bool) {
	switch e.Kind {
	case KindLayerLocked, KindLayerMove, KindLayerNew, KindLayerRemove,
		KindLayerRename, KindLayerRestore, KindLayerVisibility:
		return e.ID, true
	case KindSpriteLayer, KindSpriteNew, KindSpriteRemove:
		return e.Layer, true
	default:
		return 0, false
	}
}

// --- Constructors, one per variant ---

func LayerNew(id Id, title string, z int32) SceneEvent {
	return SceneEvent{Kind: KindLayerNew, ID: id, Str: title, Int: z}
}

func LayerRemove(id Id) SceneEvent { return SceneEvent{Kind: KindLayerRemove, ID: id} }

func LayerRestore(id Id) SceneEvent { return SceneEvent{Kind: KindLayerRestore, ID: id} }

func LayerRename(id Id, old, new string) SceneEvent {
	return SceneEvent{Kind: KindLayerRename, ID: id, Str: old, Str2: new}
}

func LayerMove(id Id, oldZ int32, up bool) SceneEvent {
	return SceneEvent{Kind: KindLayerMove, ID: id, Int: oldZ, Bool: up}
}

func LayerVisibility(id Id, new bool) SceneEvent {
	return SceneEvent{Kind: KindLayerVisibility, ID: id, Bool: new}
}

func LayerLocked(id Id, new bool) SceneEvent {
	return SceneEvent{Kind: KindLayerLocked, ID: id, Bool: new}
}

func SpriteNew(s *Sprite, layer Id) SceneEvent {
	return SceneEvent{Kind: KindSpriteNew, Sprite: s, Layer: layer}
}

func SpriteRemove(id, layer Id) SceneEvent {
	return SceneEvent{Kind: KindSpriteRemove, ID: id, Layer: layer}
}

func SpriteRestore(id Id) SceneEvent { return SceneEvent{Kind: KindSpriteRestore, ID: id} }

func SpriteMove(id Id, from, to geometry.Rect) SceneEvent {
	return SceneEvent{Kind: KindSpriteMove, ID: id, Rect: from, Rect2: to}
}

func SpriteLayer(id, old, new Id) SceneEvent {
	return SceneEvent{Kind: KindSpriteLayer, ID: id, Layer: old, Group: new}
}

func SpriteVisualChange(id Id, old, new SpriteVisual) SceneEvent {
	return SceneEvent{Kind: KindSpriteVisual, ID: id, Visual: old, Visual2: new}
}

func SpriteDrawingStart(id Id, mode DrawingMode) SceneEvent {
	return SceneEvent{Kind: KindSpriteDrawingStart, ID: id, DrawingMode: mode}
}

func SpriteDrawingPoint(id Id, p geometry.Point) SceneEvent {
	return SceneEvent{Kind: KindSpriteDrawingPoint, ID: id, Point: p}
}

func GroupNew(id Id) SceneEvent    { return SceneEvent{Kind: KindGroupNew, ID: id} }
func GroupDelete(id Id) SceneEvent { return SceneEvent{Kind: KindGroupDelete, ID: id} }

func GroupAdd(group, sprite Id) SceneEvent {
	return SceneEvent{Kind: KindGroupAdd, ID: sprite, Group: group}
}

func GroupRemove(group, sprite Id) SceneEvent {
	return SceneEvent{Kind: KindGroupRemove, ID: sprite, Group: group}
}

func FogActive(old, new bool) SceneEvent {
	return SceneEvent{Kind: KindFogActive, Bool: old, Bool2: new}
}

func FogOcclude(wasOccluded bool, x, y uint32) SceneEvent {
	return SceneEvent{Kind: KindFogOcclude, Bool: wasOccluded, U1: x, U2: y}
}

func FogReveal(wasOccluded bool, x, y uint32) SceneEvent {
	return SceneEvent{Kind: KindFogReveal, Bool: wasOccluded, U1: x, U2: y}
}

func SceneDimensions(oldW, oldH, newW, newH uint32) SceneEvent {
	return SceneEvent{Kind: KindSceneDimensions, U1: oldW, U2: oldH, U3: newW, U4: newH}
}

func SceneTitleChange(old, new string) SceneEvent {
	return SceneEvent{Kind: KindSceneTitle, Str: old, Str2: new}
}
