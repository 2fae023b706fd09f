package scene

// Apply mutates scene according to e, returning false iff a precondition
// failed (e.g. a referenced id is missing). An EventSet returns true iff
// every sub-event applied; failed sub-events still leave their effects
// applied, matching the source's own EventSet semantics (apply is atomic
// per single event, not across a whole set).
func Apply(s *Scene, e SceneEvent) bool {
	switch e.Kind {
	case KindDummy:
		return true

	case KindEventSet:
		ok := true
		for _, sub := range e.Events {
			if !Apply(s, sub) {
				ok = false
			}
		}
		return ok

	case KindFogActive:
		s.Fog.Active = e.Bool2
		return true

	case KindFogOcclude:
		s.Fog.Occlude(e.U1, e.U2)
		return true

	case KindFogReveal:
		s.Fog.Reveal(e.U1, e.U2)
		return true

	case KindGroupNew:
		s.Groups[e.ID] = NewGroup(e.ID)
		return true

	case KindGroupDelete:
		_, ok := s.Groups[e.ID]
		delete(s.Groups, e.ID)
		return ok

	case KindGroupAdd:
		g, ok := s.Groups[e.Group]
		if !ok {
			return false
		}
		g.Add(e.ID)
		return true

	case KindGroupRemove:
		g, ok := s.Groups[e.Group]
		if !ok {
			return false
		}
		g.Remove(e.ID)
		return true

	case KindLayerLocked:
		l := s.Layer(e.ID)
		if l == nil {
			return false
		}
		l.Locked = e.Bool
		return true

	case KindLayerVisibility:
		l := s.Layer(e.ID)
		if l == nil {
			return false
		}
		l.Visible = e.Bool
		return true

	case KindLayerRename:
		l := s.Layer(e.ID)
		if l == nil {
			return false
		}
		l.Title = e.Str2
		return true

	case KindLayerNew:
		_, ok := s.AddLayer(NewLayer(e.ID, e.Str, e.Int)), true
		return ok

	case KindLayerRemove:
		_, ok := s.RemoveLayer(e.ID)
		return ok

	case KindLayerRestore:
		_, ok := s.RestoreLayer(e.ID)
		return ok

	case KindLayerMove:
		_, ok := s.MoveLayer(e.ID, e.Bool)
		return ok

	case KindSceneDimensions:
		s.W, s.H = e.U3, e.U4
		s.Fog.Resize(e.U3, e.U4)
		return true

	case KindSceneTitle:
		s.Title = e.Str2
		return true

	case KindSpriteDrawingStart:
		s.Drawings[e.ID] = NewDrawing(e.ID, e.DrawingMode)
		return true

	case KindSpriteDrawingPoint:
		d := s.Drawings[e.ID]
		if d == nil {
			return false
		}
		d.AddPoint(e.Point)
		return true

	case KindSpriteLayer:
		sp := s.SpriteRef(e.ID)
		from := s.Layer(e.Layer)
		to := s.Layer(e.Group)
		if sp == nil || from == nil || to == nil {
			return false
		}
		from.TakeSprite(e.ID)
		to.AddSprite(sp)
		return true

	case KindSpriteMove:
		sp := s.SpriteRef(e.ID)
		if sp == nil {
			return false
		}
		sp.Rect = e.Rect2
		return true

	case KindSpriteNew:
		l := s.Layer(e.Layer)
		if l == nil || e.Sprite == nil {
			return false
		}
		l.AddSprite(e.Sprite)
		return true

	case KindSpriteRemove:
		l := s.Layer(e.Layer)
		if l == nil {
			return false
		}
		_, ok := l.RemoveSprite(e.ID)
		return ok

	case KindSpriteRestore:
		for _, l := range s.Layers {
			l.RestoreSprite(e.ID)
		}
		return true

	case KindSpriteVisual:
		sp := s.SpriteRef(e.ID)
		if sp == nil {
			return false
		}
		sp.Visual = e.Visual2
		return true
	}
	return false
}
