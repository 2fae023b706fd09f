package scene

import (
	"github.com/google/uuid"
	"github.com/owenfeik/vttserver/internal/geometry"
)

// DefaultGridSize and MaxGridSize bound a Scene's tile grid.
const (
	DefaultGridSize = 32
	MaxGridSize     = 512
)

// Scene is the unit of play: a bounded tile grid, an ordered stack of
// layers, drawings, groups, and fog state.
type Scene struct {
	UUID        uuid.UUID
	ProjectUUID uuid.UUID
	Title       string
	W, H        uint32

	Layers        []*Layer
	RemovedLayers []*Layer
	Drawings      map[Id]*Drawing
	Groups        map[Id]*Group
	Fog           *Fog

	// Key is the session key clients use to address this scene over the
	// wire protocol (distinct from the game key used to find the game).
	Key string

	ids *IdAllocator
}

// NewScene constructs an empty scene of the default grid size with no
// layers.
func NewScene(id, project uuid.UUID, title string) *Scene {
	return &Scene{
		UUID:        id,
		ProjectUUID: project,
		Title:       title,
		W:           DefaultGridSize,
		H:           DefaultGridSize,
		Drawings:    make(map[Id]*Drawing),
		Groups:      make(map[Id]*Group),
		Fog:         NewFog(DefaultGridSize, DefaultGridSize),
		ids:         NewIdAllocator(),
	}
}

// NextID allocates a fresh, never-reused id (invariant I3).
func (s *Scene) NextID() Id {
	return s.ids.Next()
}

func (s *Scene) ObserveID(id Id) {
	s.ids.Observe(id)
}

// Layer finds a layer by id among the live (non-removed) layers.
func (s *Scene) Layer(id Id) *Layer {
	for _, l := range s.Layers {
		if l.ID == id {
			return l
		}
	}
	return nil
}

func (s *Scene) removedLayer(id Id) *Layer {
	for _, l := range s.RemovedLayers {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// insertLayerSorted inserts l keeping Layers ordered by Z descending.
func (s *Scene) insertLayerSorted(l *Layer) {
	i := 0
	for i < len(s.Layers) && s.Layers[i].Z >= l.Z {
		i++
	}
	s.Layers = append(s.Layers, nil)
	copy(s.Layers[i+1:], s.Layers[i:])
	s.Layers[i] = l
}

// AddLayer inserts a freshly created layer in z order and returns the
// forward LayerNew event.
func (s *Scene) AddLayer(l *Layer) SceneEvent {
	s.insertLayerSorted(l)
	return LayerNew(l.ID, l.Title, l.Z)
}

// RemoveLayer tombstones a layer and cascade-tombstones every sprite on it.
func (s *Scene) RemoveLayer(id Id) (SceneEvent, bool) {
	for i, l := range s.Layers {
		if l.ID == id {
			s.Layers = append(s.Layers[:i], s.Layers[i+1:]...)
			s.RemovedLayers = append(s.RemovedLayers, l)
			return LayerRemove(id), true
		}
	}
	return SceneEvent{}, false
}

// RestoreLayer un-tombstones a previously removed layer.
func (s *Scene) RestoreLayer(id Id) (SceneEvent, bool) {
	for i, l := range s.RemovedLayers {
		if l.ID == id {
			s.RemovedLayers = append(s.RemovedLayers[:i], s.RemovedLayers[i+1:]...)
			s.insertLayerSorted(l)
			return LayerRestore(id), true
		}
	}
	return SceneEvent{}, false
}

// MoveLayer adjusts the target layer's z relative to its z-sorted
// neighbour. At an edge z (already at min/max) this is a no-op emitting no
// event, per Open Question (b).
func (s *Scene) MoveLayer(id Id, up bool) (SceneEvent, bool) {
	idx := -1
	for i, l := range s.Layers {
		if l.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return SceneEvent{}, false
	}
	// Layers is ordered Z descending: moving "up" (toward the front) means
	// swapping with the previous (higher-z) entry.
	var swapWith int
	if up {
		swapWith = idx - 1
	} else {
		swapWith = idx + 1
	}
	if swapWith < 0 || swapWith >= len(s.Layers) {
		return SceneEvent{}, false
	}
	oldZ := s.Layers[idx].Z
	s.Layers[idx].Z, s.Layers[swapWith].Z = s.Layers[swapWith].Z, s.Layers[idx].Z
	s.Layers[idx], s.Layers[swapWith] = s.Layers[swapWith], s.Layers[idx]
	return LayerMove(id, oldZ, up), true
}

// SpriteRef finds a sprite across every live layer.
func (s *Scene) SpriteRef(id Id) *Sprite {
	for _, l := range s.Layers {
		if sp := l.Sprite(id); sp != nil {
			return sp
		}
	}
	return nil
}

// LayerOf returns the layer currently holding the given sprite id.
func (s *Scene) LayerOf(id Id) *Layer {
	for _, l := range s.Layers {
		if l.Sprite(id) != nil {
			return l
		}
	}
	return nil
}

// SpriteGroup returns the group a sprite belongs to, if any.
func (s *Scene) SpriteGroup(id Id) *Group {
	for _, g := range s.Groups {
		if g.Has(id) {
			return g
		}
	}
	return nil
}

// SpriteAtRef returns the topmost sprite at a point across every layer,
// front-to-back (front = first in Layers, since Layers is z-desc). Layer
// visibility and locking are not checked.
func (s *Scene) SpriteAtRef(at geometry.Point) *Sprite {
	for _, l := range s.Layers {
		if sp := l.SpriteAt(at); sp != nil {
			return sp
		}
	}
	return nil
}

// SpriteNear returns a sprite whose rect contains at, OR whose anchor lies
// within radius of at — used for anchor-grab detection when nothing is
// directly under the cursor but a resize handle is nearby.
func (s *Scene) SpriteNear(at geometry.Point, radius float32) *Sprite {
	if sp := s.SpriteAtRef(at); sp != nil {
		return sp
	}
	for _, l := range s.Layers {
		for _, sp := range l.Sprites {
			for dx := -1; dx <= 1; dx++ {
				for dy := -1; dy <= 1; dy++ {
					if dx == 0 && dy == 0 {
						continue
					}
					if sp.AnchorPoint(dx, dy).Dist(at) <= radius {
						return sp
					}
				}
			}
		}
	}
	return nil
}

// NewSpriteAt creates a sprite with the given visual at rect, on the given
// layer (or the first selectable layer if layer is nil), returning the
// forward SpriteNew event.
func (s *Scene) NewSpriteAt(visual SpriteVisual, layer *Id, rect geometry.Rect) (*Sprite, SceneEvent, bool) {
	var l *Layer
	if layer != nil {
		l = s.Layer(*layer)
	}
	if l == nil {
		for _, candidate := range s.Layers {
			if candidate.Selectable() {
				l = candidate
				break
			}
		}
	}
	if l == nil {
		return nil, SceneEvent{}, false
	}
	sp := NewSprite(s.NextID(), visual)
	sp.Rect = rect
	ev := l.AddSprite(sp)
	return sp, ev, true
}

// StartDrawing allocates a fresh drawing id and registers an empty,
// unfinished drawing for it.
func (s *Scene) StartDrawing(mode DrawingMode) Id {
	id := s.NextID()
	s.Drawings[id] = NewDrawing(id, mode)
	return id
}

func (s *Scene) GetDrawing(id Id) *Drawing {
	return s.Drawings[id]
}

// AddDrawingPoint appends a point to drawing id, returning the forward
// event iff the point wasn't deduplicated.
func (s *Scene) AddDrawingPoint(id Id, p geometry.Point) (SceneEvent, bool) {
	d := s.Drawings[id]
	if d == nil {
		return SceneEvent{}, false
	}
	before := d.NPoints()
	d.AddPoint(p)
	if d.NPoints() == before {
		return SceneEvent{}, false
	}
	return SpriteDrawingPoint(id, p), true
}
