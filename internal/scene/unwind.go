package scene

// Unwind reverses e against scene and returns the event it applied to do so;
// unwinding that returned event in turn reapplies e (used by undo/redo and
// rejection rollback).
// The zero-value/false result means there is nothing to reverse.
func Unwind(s *Scene, e SceneEvent) (SceneEvent, bool) {
	switch e.Kind {
	case KindDummy:
		return e, true

	case KindEventSet:
		reversed := make([]SceneEvent, 0, len(e.Events))
		for i := len(e.Events) - 1; i >= 0; i-- {
			fwd, ok := Unwind(s, e.Events[i])
			if ok {
				reversed = append(reversed, fwd)
			}
		}
		return Set(reversed), true

	case KindFogActive:
		Apply(s, FogActive(e.Bool2, e.Bool))
		return FogActive(e.Bool2, e.Bool), true

	case KindFogOcclude:
		if e.Bool {
			Apply(s, FogOcclude(true, e.U1, e.U2))
			return FogOcclude(true, e.U1, e.U2), true
		}
		Apply(s, FogReveal(false, e.U1, e.U2))
		return FogReveal(false, e.U1, e.U2), true

	case KindFogReveal:
		if !e.Bool {
			Apply(s, FogReveal(false, e.U1, e.U2))
			return FogReveal(false, e.U1, e.U2), true
		}
		Apply(s, FogOcclude(true, e.U1, e.U2))
		return FogOcclude(true, e.U1, e.U2), true

	case KindGroupNew:
		Apply(s, GroupDelete(e.ID))
		return GroupDelete(e.ID), true

	case KindGroupDelete:
		Apply(s, GroupNew(e.ID))
		return GroupNew(e.ID), true

	case KindGroupAdd:
		Apply(s, GroupRemove(e.Group, e.ID))
		return GroupRemove(e.Group, e.ID), true

	case KindGroupRemove:
		Apply(s, GroupAdd(e.Group, e.ID))
		return GroupAdd(e.Group, e.ID), true

	case KindLayerLocked:
		fwd := LayerLocked(e.ID, !e.Bool)
		Apply(s, fwd)
		return fwd, true

	case KindLayerVisibility:
		fwd := LayerVisibility(e.ID, !e.Bool)
		Apply(s, fwd)
		return fwd, true

	case KindLayerRename:
		fwd := LayerRename(e.ID, e.Str2, e.Str)
		Apply(s, fwd)
		return fwd, true

	case KindLayerNew:
		fwd := LayerRemove(e.ID)
		Apply(s, fwd)
		return fwd, true

	case KindLayerRemove:
		fwd := LayerRestore(e.ID)
		Apply(s, fwd)
		return fwd, true

	case KindLayerRestore:
		fwd := LayerRemove(e.ID)
		Apply(s, fwd)
		return fwd, true

	case KindLayerMove:
		fwd := LayerMove(e.ID, e.Int, !e.Bool)
		Apply(s, fwd)
		return fwd, true

	case KindSceneDimensions:
		fwd := SceneDimensions(e.U3, e.U4, e.U1, e.U2)
		Apply(s, fwd)
		return fwd, true

	case KindSceneTitle:
		fwd := SceneTitleChange(e.Str2, e.Str)
		Apply(s, fwd)
		return fwd, true

	case KindSpriteDrawingStart:
		delete(s.Drawings, e.ID)
		return SceneEvent{}, false

	case KindSpriteDrawingPoint:
		if d := s.Drawings[e.ID]; d != nil {
			d.KeepNPoints(d.NPoints() - 1)
		}
		return SceneEvent{}, false

	case KindSpriteLayer:
		fwd := SpriteLayer(e.ID, e.Group, e.Layer)
		Apply(s, fwd)
		return fwd, true

	case KindSpriteMove:
		fwd := SpriteMove(e.ID, e.Rect2, e.Rect)
		Apply(s, fwd)
		return fwd, true

	case KindSpriteNew:
		l := s.Layer(e.Layer)
		if l != nil {
			l.TakeSprite(e.Sprite.ID)
		}
		fwd := SpriteRemove(e.Sprite.ID, e.Layer)
		return fwd, true

	case KindSpriteRemove:
		fwd := SpriteRestore(e.ID)
		Apply(s, fwd)
		return fwd, true

	case KindSpriteRestore:
		sp := s.SpriteRef(e.ID)
		var layer Id
		if l := s.LayerOf(e.ID); l != nil {
			layer = l.ID
		}
		if sp != nil {
			if l := s.LayerOf(e.ID); l != nil {
				l.RemoveSprite(e.ID)
			}
		}
		return SpriteRemove(e.ID, layer), true

	case KindSpriteVisual:
		fwd := SpriteVisualChange(e.ID, e.Visual2, e.Visual)
		Apply(s, fwd)
		return fwd, true
	}
	return SceneEvent{}, false
}
