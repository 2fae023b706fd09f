package scene

import (
	"math"

	"github.com/owenfeik/vttserver/internal/geometry"
)

// fogBits is the word width used by the Fog bitmap, matching the teacher's
// own use of whole-word bit manipulation in internal/net/cipher.go.
const fogBits = 32

// Fog tracks fog-of-war as a bit-per-tile grid: 1 means revealed, 0 means
// occluded. Rows are packed into the smallest number of 32-bit words that
// cover the width, matching invariant I6.
type Fog struct {
	Active     bool
	W, H       uint32
	NRevealed  uint32
	words      []uint32
}

func NewFog(w, h uint32) *Fog {
	return &Fog{W: w, H: h, words: makeFogWords(w, h)}
}

// Words exposes the packed bitmap for serialization; callers must treat it
// as read-only.
func (f *Fog) Words() []uint32 { return f.words }

// FogFromWords reconstructs a Fog from previously serialized state.
func FogFromWords(active bool, w, h, nRevealed uint32, words []uint32) *Fog {
	return &Fog{Active: active, W: w, H: h, NRevealed: nRevealed, words: words}
}

func rowWords(w uint32) uint32 {
	return (w + fogBits - 1) / fogBits
}

func makeFogWords(w, h uint32) []uint32 {
	return make([]uint32, rowWords(w)*h)
}

func (f *Fog) rowLen() uint32 {
	return rowWords(f.W)
}

func (f *Fog) idx(x, y uint32) int {
	return int(f.rowLen()*y + x/fogBits)
}

func (f *Fog) onMap(x, y uint32) bool {
	return x < f.W && y < f.H
}

// Resize preserves the occluded/revealed state of every tile in the
// intersection of the old and new extents.
func (f *Fog) Resize(w, h uint32) {
	newWords := makeFogWords(w, h)
	newRowWords := rowWords(w)
	for y := uint32(0); y < h; y++ {
		for x := uint32(0); x < w; x++ {
			if f.onMap(x, y) {
				newWords[newRowWords*y+x/fogBits] = f.words[f.idx(x, y)]
			}
		}
	}
	f.W, f.H = w, h
	f.words = newWords
}

// Occluded returns true when (x, y) is off-map or its bit is unset.
func (f *Fog) Occluded(x, y uint32) bool {
	if !f.onMap(x, y) {
		return true
	}
	idx := f.idx(x, y)
	if idx < 0 || idx >= len(f.words) {
		return false
	}
	return f.words[idx]&(1<<(x%fogBits)) == 0
}

// RectOccluded reports whether every tile overlapping rect is occluded.
// Inactive fog never occludes anything.
func (f *Fog) RectOccluded(rect geometry.Rect) bool {
	if !f.Active {
		return false
	}
	x0 := maxu(int(math.Floor(float64(rect.X))), 0)
	y0 := maxu(int(math.Floor(float64(rect.Y))), 0)
	x1 := maxu(int(rect.X+rect.W), 0)
	y1 := maxu(int(rect.Y+rect.H), 0)
	for x := x0; x < x1; x++ {
		for y := y0; y < y1; y++ {
			if !f.Occluded(uint32(x), uint32(y)) {
				return false
			}
		}
	}
	return true
}

// Reveal sets (x, y) revealed, returning the forward event if it changed
// anything (off-map or already-revealed tiles are no-ops).
func (f *Fog) Reveal(x, y uint32) (SceneEvent, bool) {
	if !f.onMap(x, y) || !f.Occluded(x, y) {
		return SceneEvent{}, false
	}
	f.NRevealed++
	f.words[f.idx(x, y)] |= 1 << (x % fogBits)
	return FogReveal(true, x, y), true
}

// Occlude sets (x, y) occluded, returning the forward event if it changed
// anything.
func (f *Fog) Occlude(x, y uint32) (SceneEvent, bool) {
	if !f.onMap(x, y) || f.Occluded(x, y) {
		return SceneEvent{}, false
	}
	f.NRevealed--
	f.words[f.idx(x, y)] &^= 1 << (x % fogBits)
	return FogOcclude(false, x, y), true
}

func (f *Fog) Set(x, y uint32, occluded bool) (SceneEvent, bool) {
	if occluded {
		return f.Occlude(x, y)
	}
	return f.Reveal(x, y)
}

func tileCentre(x, y uint32) geometry.Point {
	return geometry.Point{X: float32(x) + 0.5, Y: float32(y) + 0.5}
}

// SetCircle sets occluded state for every tile whose centre lies within r
// of at, returning the batch as a single EventSet.
func (f *Fog) SetCircle(at geometry.Point, r float32, occluded bool) SceneEvent {
	var events []SceneEvent

	xmin := clampu32(at.X - r)
	xmax := clampu32(at.X+r) + 1
	ymin := clampu32(at.Y - r)
	ymax := clampu32(at.Y+r) + 1

	for x := xmin; x < xmax; x++ {
		for y := ymin; y < ymax; y++ {
			if tileCentre(x, y).Dist(at) <= r {
				if ev, ok := f.Set(x, y, occluded); ok {
					events = append(events, ev)
				}
			}
		}
	}
	return Set(events)
}

func (f *Fog) SetActive(active bool) (SceneEvent, bool) {
	if f.Active == active {
		return SceneEvent{}, false
	}
	old := f.Active
	f.Active = active
	return FogActive(old, active), true
}

// NearestClear performs a breadth-first search outward from (x, y) for the
// closest non-occluded tile, used when placing a token in fogged territory.
func (f *Fog) NearestClear(x, y uint32) (uint32, uint32) {
	if !f.Active {
		return x, y
	}

	type tile struct{ x, y uint32 }
	seen := map[tile]bool{{x, y}: true}
	queue := []tile{{x, y}}

	addTile := func(t tile) {
		if !seen[t] {
			seen[t] = true
			queue = append(queue, t)
		}
	}
	addAdjacent := func(t tile) {
		xm, ym := t.x > 0, t.y > 0
		xp, yp := t.x < f.W-1, t.y < f.H-1
		if xm {
			if ym {
				addTile(tile{t.x - 1, t.y - 1})
			}
			addTile(tile{t.x - 1, t.y})
			if yp {
				addTile(tile{t.x - 1, t.y + 1})
			}
		}
		if ym {
			addTile(tile{t.x, t.y - 1})
		}
		if yp {
			addTile(tile{t.x, t.y + 1})
		}
		if xp {
			if ym {
				addTile(tile{t.x + 1, t.y - 1})
			}
			addTile(tile{t.x + 1, t.y})
			if yp {
				addTile(tile{t.x + 1, t.y + 1})
			}
		}
	}

	for i := 0; i < len(queue); i++ {
		t := queue[i]
		if !f.Occluded(t.x, t.y) {
			return t.x, t.y
		}
		addAdjacent(t)
	}
	return x, y
}

func maxu(v, floor int) int {
	if v < floor {
		return floor
	}
	return v
}

func clampu32(v float32) uint32 {
	if v < 0 {
		return 0
	}
	return uint32(v)
}
