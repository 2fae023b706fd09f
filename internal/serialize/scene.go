// Package serialize implements the versioned binary encoding used to
// persist a Project/Scene and to restore one on load. It shares its
// primitive read/write layer with the wire protocol (internal/codec) but
// is otherwise independent of it: a scene can be saved and reloaded
// without ever touching a network connection.
package serialize

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/owenfeik/vttserver/internal/codec"
	"github.com/owenfeik/vttserver/internal/geometry"
	"github.com/owenfeik/vttserver/internal/scene"
)

// Version identifies the encoding a payload was written with. The encoder
// always writes CurrentVersion; the decoder reads every version tag, newer
// or older, as CurrentVersion, on the theory that an unrecognized payload is
// more likely forward-compatible than corrupt.
const CurrentVersion uint32 = 1

func writeUUID(w *codec.Writer, u uuid.UUID) { w.WriteUUID(u) }

func readUUID(r *codec.Reader) (uuid.UUID, error) {
	b, err := r.ReadUUID()
	return uuid.UUID(b), err
}

func writePoint(w *codec.Writer, p geometry.Point) {
	w.WriteF32(p.X)
	w.WriteF32(p.Y)
}

func readPoint(r *codec.Reader) (geometry.Point, error) {
	x, err := r.ReadF32()
	if err != nil {
		return geometry.Point{}, err
	}
	y, err := r.ReadF32()
	if err != nil {
		return geometry.Point{}, err
	}
	return geometry.Point{X: x, Y: y}, nil
}

func writeRect(w *codec.Writer, rect geometry.Rect) {
	w.WriteF32(rect.X)
	w.WriteF32(rect.Y)
	w.WriteF32(rect.W)
	w.WriteF32(rect.H)
}

func readRect(r *codec.Reader) (geometry.Rect, error) {
	x, err := r.ReadF32()
	if err != nil {
		return geometry.Rect{}, err
	}
	y, err := r.ReadF32()
	if err != nil {
		return geometry.Rect{}, err
	}
	width, err := r.ReadF32()
	if err != nil {
		return geometry.Rect{}, err
	}
	height, err := r.ReadF32()
	if err != nil {
		return geometry.Rect{}, err
	}
	return geometry.Rect{X: x, Y: y, W: width, H: height}, nil
}

func writeColour(w *codec.Writer, c geometry.Colour) {
	w.WriteF32(c.R)
	w.WriteF32(c.G)
	w.WriteF32(c.B)
	w.WriteF32(c.A)
}

func readColour(r *codec.Reader) (geometry.Colour, error) {
	rr, err := r.ReadF32()
	if err != nil {
		return geometry.Colour{}, err
	}
	g, err := r.ReadF32()
	if err != nil {
		return geometry.Colour{}, err
	}
	b, err := r.ReadF32()
	if err != nil {
		return geometry.Colour{}, err
	}
	a, err := r.ReadF32()
	if err != nil {
		return geometry.Colour{}, err
	}
	return geometry.Colour{R: rr, G: g, B: b, A: a}, nil
}

func writeVisual(w *codec.Writer, v scene.SpriteVisual) {
	w.WriteU8(uint8(v.Kind))
	switch v.Kind {
	case scene.VisualTexture:
		w.WriteI64(int64(v.MediaID))
		w.WriteU8(uint8(v.Shape))
	case scene.VisualShape:
		w.WriteU8(uint8(v.Shape))
		w.WriteF32(v.Stroke)
		w.WriteBool(v.Solid)
		writeColour(w, v.Colour)
	case scene.VisualDrawing:
		w.WriteI64(int64(v.DrawingID))
		writeColour(w, v.Colour)
		w.WriteF32(v.Stroke)
		w.WriteU8(uint8(v.CapStart))
		w.WriteU8(uint8(v.CapEnd))
	}
}

func readVisual(r *codec.Reader) (scene.SpriteVisual, error) {
	kind, err := r.ReadU8()
	if err != nil {
		return scene.SpriteVisual{}, err
	}
	switch scene.VisualKind(kind) {
	case scene.VisualTexture:
		id, err := r.ReadI64()
		if err != nil {
			return scene.SpriteVisual{}, err
		}
		shape, err := r.ReadU8()
		if err != nil {
			return scene.SpriteVisual{}, err
		}
		return scene.TextureVisual(scene.Shape(shape), scene.Id(id)), nil
	case scene.VisualShape:
		shape, err := r.ReadU8()
		if err != nil {
			return scene.SpriteVisual{}, err
		}
		stroke, err := r.ReadF32()
		if err != nil {
			return scene.SpriteVisual{}, err
		}
		solid, err := r.ReadBool()
		if err != nil {
			return scene.SpriteVisual{}, err
		}
		colour, err := readColour(r)
		if err != nil {
			return scene.SpriteVisual{}, err
		}
		return scene.ShapeVisual(scene.Shape(shape), stroke, solid, colour), nil
	case scene.VisualDrawing:
		id, err := r.ReadI64()
		if err != nil {
			return scene.SpriteVisual{}, err
		}
		colour, err := readColour(r)
		if err != nil {
			return scene.SpriteVisual{}, err
		}
		stroke, err := r.ReadF32()
		if err != nil {
			return scene.SpriteVisual{}, err
		}
		capStart, err := r.ReadU8()
		if err != nil {
			return scene.SpriteVisual{}, err
		}
		capEnd, err := r.ReadU8()
		if err != nil {
			return scene.SpriteVisual{}, err
		}
		return scene.DrawingVisual(scene.Id(id), colour, stroke, scene.Cap(capStart), scene.Cap(capEnd)), nil
	default:
		return scene.SpriteVisual{}, fmt.Errorf("serialize: unknown visual kind %d", kind)
	}
}

func writeSprite(w *codec.Writer, sp *scene.Sprite) {
	w.WriteI64(int64(sp.ID))
	writeRect(w, sp.Rect)
	w.WriteI32(sp.Z)
	writeVisual(w, sp.Visual)
}

func readSprite(r *codec.Reader) (*scene.Sprite, error) {
	id, err := r.ReadI64()
	if err != nil {
		return nil, err
	}
	rect, err := readRect(r)
	if err != nil {
		return nil, err
	}
	z, err := r.ReadI32()
	if err != nil {
		return nil, err
	}
	visual, err := readVisual(r)
	if err != nil {
		return nil, err
	}
	return &scene.Sprite{ID: scene.Id(id), Rect: rect, Z: z, Visual: visual}, nil
}

func writeSpriteList(w *codec.Writer, sprites []*scene.Sprite) {
	w.WriteU32(uint32(len(sprites)))
	for _, sp := range sprites {
		writeSprite(w, sp)
	}
}

func readSpriteList(r *codec.Reader) ([]*scene.Sprite, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	sprites := make([]*scene.Sprite, n)
	for i := range sprites {
		sprites[i], err = readSprite(r)
		if err != nil {
			return nil, err
		}
	}
	return sprites, nil
}

func writeLayer(w *codec.Writer, l *scene.Layer) {
	w.WriteI64(int64(l.ID))
	w.WriteString(l.Title)
	w.WriteI32(l.Z)
	w.WriteBool(l.Visible)
	w.WriteBool(l.Locked)
	writeSpriteList(w, l.Sprites)
	writeSpriteList(w, l.RemovedSprites)
}

func readLayer(r *codec.Reader) (*scene.Layer, error) {
	id, err := r.ReadI64()
	if err != nil {
		return nil, err
	}
	title, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	z, err := r.ReadI32()
	if err != nil {
		return nil, err
	}
	visible, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	locked, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	sprites, err := readSpriteList(r)
	if err != nil {
		return nil, err
	}
	removed, err := readSpriteList(r)
	if err != nil {
		return nil, err
	}

	l := scene.NewLayer(scene.Id(id), title, z)
	l.Visible = visible
	l.Locked = locked
	l.AddSprites(sprites)
	l.RemovedSprites = removed
	return l, nil
}

func writeDrawing(w *codec.Writer, d *scene.Drawing) {
	w.WriteI64(int64(d.ID))
	w.WriteU8(uint8(d.Mode))
	w.WriteBool(d.Finished)
	n := d.NPoints()
	w.WriteU32(uint32(n))
	for i := 1; i <= n; i++ {
		p, ok := d.Points.Nth(i)
		if !ok {
			continue
		}
		writePoint(w, p)
	}
}

func readDrawing(r *codec.Reader) (*scene.Drawing, error) {
	id, err := r.ReadI64()
	if err != nil {
		return nil, err
	}
	mode, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	finished, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	d := scene.NewDrawing(scene.Id(id), scene.DrawingMode(mode))
	for i := uint32(0); i < n; i++ {
		p, err := readPoint(r)
		if err != nil {
			return nil, err
		}
		d.AddPoint(p)
	}
	d.Finished = finished
	return d, nil
}

func writeGroup(w *codec.Writer, g *scene.Group) {
	w.WriteI64(int64(g.ID))
	members := g.Sprites()
	w.WriteU32(uint32(len(members)))
	for _, id := range members {
		w.WriteI64(int64(id))
	}
}

func readGroup(r *codec.Reader) (*scene.Group, error) {
	id, err := r.ReadI64()
	if err != nil {
		return nil, err
	}
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	g := scene.NewGroup(scene.Id(id))
	for i := uint32(0); i < n; i++ {
		member, err := r.ReadI64()
		if err != nil {
			return nil, err
		}
		g.Add(scene.Id(member))
	}
	return g, nil
}

func writeFog(w *codec.Writer, f *scene.Fog) {
	w.WriteBool(f.Active)
	w.WriteU32(f.W)
	w.WriteU32(f.H)
	w.WriteU32(f.NRevealed)
	words := f.Words()
	w.WriteU32(uint32(len(words)))
	for _, word := range words {
		w.WriteU32(word)
	}
}

func readFog(r *codec.Reader) (*scene.Fog, error) {
	active, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	width, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	height, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	nRevealed, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	words := make([]uint32, n)
	for i := range words {
		words[i], err = r.ReadU32()
		if err != nil {
			return nil, err
		}
	}
	return scene.FogFromWords(active, width, height, nRevealed, words), nil
}

// EncodeScene writes s's current state, version-prefixed.
func EncodeScene(s *scene.Scene) []byte {
	w := codec.NewWriter()
	w.WriteU32(CurrentVersion)
	encodeSceneBody(w, s)
	return w.Bytes()
}

func encodeSceneBody(w *codec.Writer, s *scene.Scene) {
	writeUUID(w, s.UUID)
	writeUUID(w, s.ProjectUUID)
	w.WriteString(s.Title)
	w.WriteU32(s.W)
	w.WriteU32(s.H)
	w.WriteString(s.Key)

	w.WriteU32(uint32(len(s.Layers)))
	for _, l := range s.Layers {
		writeLayer(w, l)
	}
	w.WriteU32(uint32(len(s.RemovedLayers)))
	for _, l := range s.RemovedLayers {
		writeLayer(w, l)
	}

	w.WriteU32(uint32(len(s.Drawings)))
	for _, d := range s.Drawings {
		writeDrawing(w, d)
	}

	w.WriteU32(uint32(len(s.Groups)))
	for _, g := range s.Groups {
		writeGroup(w, g)
	}

	writeFog(w, s.Fog)
}

// DecodeScene reads a scene previously written by EncodeScene. A version
// newer than CurrentVersion is decoded as CurrentVersion on the assumption
// that later versions only add fields this decoder doesn't yet know to
// read, never change the meaning of earlier ones.
func DecodeScene(data []byte) (*scene.Scene, error) {
	r := codec.NewReader(data)
	version, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	switch version {
	case CurrentVersion:
		return decodeSceneBodyV1(r)
	default:
		return decodeSceneBodyV1(r)
	}
}

func decodeSceneBodyV1(r *codec.Reader) (*scene.Scene, error) {
	id, err := readUUID(r)
	if err != nil {
		return nil, err
	}
	project, err := readUUID(r)
	if err != nil {
		return nil, err
	}
	title, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	width, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	height, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	key, err := r.ReadString()
	if err != nil {
		return nil, err
	}

	s := scene.NewScene(id, project, title)
	s.W, s.H = width, height
	s.Key = key

	nLayers, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nLayers; i++ {
		l, err := readLayer(r)
		if err != nil {
			return nil, err
		}
		s.Layers = append(s.Layers, l)
		observeLayer(s, l)
	}

	nRemovedLayers, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nRemovedLayers; i++ {
		l, err := readLayer(r)
		if err != nil {
			return nil, err
		}
		s.RemovedLayers = append(s.RemovedLayers, l)
		observeLayer(s, l)
	}

	nDrawings, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nDrawings; i++ {
		d, err := readDrawing(r)
		if err != nil {
			return nil, err
		}
		s.Drawings[d.ID] = d
		s.ObserveID(d.ID)
	}

	nGroups, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nGroups; i++ {
		g, err := readGroup(r)
		if err != nil {
			return nil, err
		}
		s.Groups[g.ID] = g
		s.ObserveID(g.ID)
	}

	fog, err := readFog(r)
	if err != nil {
		return nil, err
	}
	s.Fog = fog

	return s, nil
}

func observeLayer(s *scene.Scene, l *scene.Layer) {
	s.ObserveID(l.ID)
	for _, sp := range l.Sprites {
		s.ObserveID(sp.ID)
	}
	for _, sp := range l.RemovedSprites {
		s.ObserveID(sp.ID)
	}
}
