package scene

import "github.com/owenfeik/vttserver/internal/geometry"

// Layer is a z-ordered group of sprites with a title, visibility, and
// locked flag. A layer is selectable iff visible and not locked
// (invariant I8).
type Layer struct {
	ID             Id
	Title          string
	Z              int32
	Visible        bool
	Locked         bool
	Sprites        []*Sprite
	RemovedSprites []*Sprite
	ZMin, ZMax     int32
}

func NewLayer(id Id, title string, z int32) *Layer {
	return &Layer{ID: id, Title: title, Z: z, Visible: true}
}

func (l *Layer) Rename(newTitle string) SceneEvent {
	old := l.Title
	l.Title = newTitle
	return LayerRename(l.ID, old, newTitle)
}

func (l *Layer) SetVisible(visible bool) (SceneEvent, bool) {
	if l.Visible == visible {
		return SceneEvent{}, false
	}
	l.Visible = visible
	return LayerVisibility(l.ID, visible), true
}

func (l *Layer) SetLocked(locked bool) (SceneEvent, bool) {
	if l.Locked == locked {
		return SceneEvent{}, false
	}
	l.Locked = locked
	return LayerLocked(l.ID, locked), true
}

// Selectable reports whether sprites on this layer may ordinarily be
// selected (invariant I8); editors bypass this check at the caller.
func (l *Layer) Selectable() bool {
	return l.Visible && !l.Locked
}

func (l *Layer) updateZBounds(s *Sprite) {
	if s.Z > l.ZMax {
		l.ZMax = s.Z
	} else if s.Z < l.ZMin {
		l.ZMin = s.Z
	}
}

func (l *Layer) sortSprites() {
	sortSpritesByZ(l.Sprites)
}

func sortSpritesByZ(sprites []*Sprite) {
	for i := 1; i < len(sprites); i++ {
		for j := i; j > 0 && sprites[j-1].Z > sprites[j].Z; j-- {
			sprites[j-1], sprites[j] = sprites[j], sprites[j-1]
		}
	}
}

// AddSprite appends a sprite, keeping z-order and bounds current.
func (l *Layer) AddSprite(s *Sprite) SceneEvent {
	l.updateZBounds(s)
	l.Sprites = append(l.Sprites, s)
	l.sortSprites()
	return SpriteNew(s, l.ID)
}

func (l *Layer) AddSprites(sprites []*Sprite) {
	for _, s := range sprites {
		l.updateZBounds(s)
	}
	l.Sprites = append(l.Sprites, sprites...)
	l.sortSprites()
}

// RestoreSprite un-tombstones the sprite with the given id, if present.
func (l *Layer) RestoreSprite(id Id) {
	for i, s := range l.RemovedSprites {
		if s.ID == id {
			l.RemovedSprites = append(l.RemovedSprites[:i], l.RemovedSprites[i+1:]...)
			l.AddSprite(s)
			return
		}
	}
}

func (l *Layer) Sprite(id Id) *Sprite {
	for _, s := range l.Sprites {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (l *Layer) TakeSprite(id Id) *Sprite {
	for i, s := range l.Sprites {
		if s.ID == id {
			l.Sprites = append(l.Sprites[:i], l.Sprites[i+1:]...)
			return s
		}
	}
	return nil
}

// RemoveSprite tombstones the sprite with the given id and returns the
// forward SpriteRemove event.
func (l *Layer) RemoveSprite(id Id) (SceneEvent, bool) {
	s := l.TakeSprite(id)
	if s == nil {
		return SceneEvent{}, false
	}
	l.RemovedSprites = append(l.RemovedSprites, s)
	return SpriteRemove(id, l.ID), true
}

// SpriteAt returns the topmost (highest-index, i.e. rendered-last) sprite
// whose rect contains at.
func (l *Layer) SpriteAt(at geometry.Point) *Sprite {
	for i := len(l.Sprites) - 1; i >= 0; i-- {
		if l.Sprites[i].Rect.ContainsPoint(at) {
			return l.Sprites[i]
		}
	}
	return nil
}

// SpritesIn returns the ids of every sprite fully contained in region.
func (l *Layer) SpritesIn(region geometry.Rect) []Id {
	var ids []Id
	for _, s := range l.Sprites {
		if region.ContainsRect(s.Rect) {
			ids = append(ids, s.ID)
		}
	}
	return ids
}
