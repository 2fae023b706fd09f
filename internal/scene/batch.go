package scene

import "github.com/owenfeik/vttserver/internal/geometry"

// FirstLayer returns the topmost selectable layer's id, falling back to the
// topmost layer of any kind, or NoID if the scene has no layers.
func (s *Scene) FirstLayer() Id {
	for _, l := range s.Layers {
		if l.Selectable() {
			return l.ID
		}
	}
	if len(s.Layers) > 0 {
		return s.Layers[0].ID
	}
	return NoID
}

// FirstBackgroundLayer returns the lowest-z layer's id (Layers is kept
// z-descending, so this is the last entry), or NoID if there are none.
func (s *Scene) FirstBackgroundLayer() Id {
	if n := len(s.Layers); n > 0 {
		return s.Layers[n-1].ID
	}
	return NoID
}

// SpritesIn returns the ids of every sprite on a selectable layer matching
// region: fully contained if intersects is false, merely overlapping if
// true.
func (s *Scene) SpritesIn(region geometry.Rect, intersects bool) []Id {
	var ids []Id
	for _, l := range s.Layers {
		if !l.Selectable() {
			continue
		}
		for _, sp := range l.Sprites {
			if intersects {
				if region.IntersectsRect(sp.Rect) {
					ids = append(ids, sp.ID)
				}
			} else if region.ContainsRect(sp.Rect) {
				ids = append(ids, sp.ID)
			}
		}
	}
	return ids
}

// RemoveSprite tombstones a single sprite wherever it lives.
func (s *Scene) RemoveSprite(id Id) (SceneEvent, bool) {
	l := s.LayerOf(id)
	if l == nil {
		return SceneEvent{}, false
	}
	return l.RemoveSprite(id)
}

// RemoveSprites tombstones every listed sprite, returning the batch as a
// single EventSet.
func (s *Scene) RemoveSprites(ids []Id) SceneEvent {
	events := make([]SceneEvent, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.RemoveSprite(id); ok {
			events = append(events, e)
		}
	}
	return Set(events)
}

// CloneSprite duplicates a sprite onto the same layer, offset by one tile so
// the copy doesn't exactly overlap the original.
func (s *Scene) CloneSprite(id Id) (SceneEvent, bool) {
	l := s.LayerOf(id)
	if l == nil {
		return SceneEvent{}, false
	}
	original := l.Sprite(id)
	if original == nil {
		return SceneEvent{}, false
	}
	clone := original.Clone()
	clone.ID = s.NextID()
	clone.Rect = clone.Rect.Translate(geometry.Same(1))
	return l.AddSprite(clone), true
}

// SetSpriteLayer moves a sprite from its current layer onto the target
// layer, returning the forward SpriteLayer event.
func (s *Scene) SetSpriteLayer(sprite, layer Id) (SceneEvent, bool) {
	from := s.LayerOf(sprite)
	to := s.Layer(layer)
	if from == nil || to == nil || from.ID == to.ID {
		return SceneEvent{}, false
	}
	e := SpriteLayer(sprite, from.ID, to.ID)
	if !Apply(s, e) {
		return SceneEvent{}, false
	}
	return e, true
}

// SpritesLayer batch-moves every listed sprite onto the target layer,
// returning the batch as a single EventSet.
func (s *Scene) SpritesLayer(ids []Id, layer Id) SceneEvent {
	events := make([]SceneEvent, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.SetSpriteLayer(id, layer); ok {
			events = append(events, e)
		}
	}
	return Set(events)
}

// GroupSprites creates a new group (or reuses the group the first listed
// sprite already belongs to) and adds every other listed sprite to it,
// returning the batch as a single EventSet.
func (s *Scene) GroupSprites(ids []Id) SceneEvent {
	if len(ids) < 2 {
		return SceneEvent{}
	}

	var groupID Id
	var events []SceneEvent
	if g := s.SpriteGroup(ids[0]); g != nil {
		groupID = g.ID
	} else {
		groupID = s.NextID()
		s.Groups[groupID] = NewGroup(groupID)
		events = append(events, GroupNew(groupID))
		s.Groups[groupID].Add(ids[0])
		events = append(events, GroupAdd(groupID, ids[0]))
	}

	for _, id := range ids[1:] {
		if s.Groups[groupID].Has(id) {
			continue
		}
		s.Groups[groupID].Add(id)
		events = append(events, GroupAdd(groupID, id))
	}

	return Set(events)
}

// RemoveGroup dissolves a group, leaving its former members ungrouped.
func (s *Scene) RemoveGroup(id Id) (SceneEvent, bool) {
	if _, ok := s.Groups[id]; !ok {
		return SceneEvent{}, false
	}
	delete(s.Groups, id)
	return GroupDelete(id), true
}

// FinishDrawing finalises a freehand/line/cone stroke: it simplifies the
// drawing's points to a local origin and repositions its sprite to match the
// resulting bounding rect, returning the forward SpriteMove event.
func (s *Scene) FinishDrawing(drawing, sprite Id) (SceneEvent, bool) {
	d := s.Drawings[drawing]
	sp := s.SpriteRef(sprite)
	if d == nil || sp == nil {
		return SceneEvent{}, false
	}
	d.Finished = true
	bounds := d.Simplify()
	from := sp.Rect
	sp.Rect = bounds
	return SpriteMove(sprite, from, sp.Rect), true
}
