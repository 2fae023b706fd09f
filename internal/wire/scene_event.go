package wire

import (
	"fmt"

	"github.com/owenfeik/vttserver/internal/geometry"
	"github.com/owenfeik/vttserver/internal/scene"
)

func writePoint(w *Writer, p geometry.Point) {
	w.WriteF32(p.X)
	w.WriteF32(p.Y)
}

func readPoint(r *Reader) (geometry.Point, error) {
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

func writeRect(w *Writer, rect geometry.Rect) {
	w.WriteF32(rect.X)
	w.WriteF32(rect.Y)
	w.WriteF32(rect.W)
	w.WriteF32(rect.H)
}

func readRect(r *Reader) (geometry.Rect, error) {
	x, err := r.ReadF32()
	if err != nil {
		return geometry.Rect{}, err
	}
	y, err := r.ReadF32()
	if err != nil {
		return geometry.Rect{}, err
	}
	w, err := r.ReadF32()
	if err != nil {
		return geometry.Rect{}, err
	}
	h, err := r.ReadF32()
	if err != nil {
		return geometry.Rect{}, err
	}
	return geometry.Rect{X: x, Y: y, W: w, H: h}, nil
}

func writeColour(w *Writer, c geometry.Colour) {
	w.WriteF32(c.R)
	w.WriteF32(c.G)
	w.WriteF32(c.B)
	w.WriteF32(c.A)
}

func readColour(r *Reader) (geometry.Colour, error) {
	vals := make([]float32, 4)
	for i := range vals {
		v, err := r.ReadF32()
		if err != nil {
			return geometry.Colour{}, err
		}
		vals[i] = v
	}
	return geometry.Colour{R: vals[0], G: vals[1], B: vals[2], A: vals[3]}, nil
}

func writeVisual(w *Writer, v scene.SpriteVisual) {
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

func readVisual(r *Reader) (scene.SpriteVisual, error) {
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
		return scene.SpriteVisual{}, fmt.Errorf("wire: unknown visual kind %d", kind)
	}
}

func writeSprite(w *Writer, sp *scene.Sprite) {
	w.WriteI64(int64(sp.ID))
	writeRect(w, sp.Rect)
	w.WriteI32(sp.Z)
	writeVisual(w, sp.Visual)
}

func readSprite(r *Reader) (*scene.Sprite, error) {
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

// EncodeSceneEvent appends e's wire encoding to w.
func EncodeSceneEvent(w *Writer, e scene.SceneEvent) {
	w.WriteU8(uint8(e.Kind))
	switch e.Kind {
	case scene.KindDummy:
		// no fields

	case scene.KindEventSet:
		w.WriteU32(uint32(len(e.Events)))
		for _, sub := range e.Events {
			EncodeSceneEvent(w, sub)
		}

	case scene.KindFogActive:
		w.WriteBool(e.Bool)
		w.WriteBool(e.Bool2)

	case scene.KindFogOcclude, scene.KindFogReveal:
		w.WriteBool(e.Bool)
		w.WriteU32(e.U1)
		w.WriteU32(e.U2)

	case scene.KindGroupNew, scene.KindGroupDelete:
		w.WriteI64(int64(e.ID))

	case scene.KindGroupAdd, scene.KindGroupRemove:
		w.WriteI64(int64(e.ID))
		w.WriteI64(int64(e.Group))

	case scene.KindLayerLocked, scene.KindLayerVisibility:
		w.WriteI64(int64(e.ID))
		w.WriteBool(e.Bool)

	case scene.KindLayerMove:
		w.WriteI64(int64(e.ID))
		w.WriteI32(e.Int)
		w.WriteBool(e.Bool)

	case scene.KindLayerNew:
		w.WriteI64(int64(e.ID))
		w.WriteString(e.Str)
		w.WriteI32(e.Int)

	case scene.KindLayerRemove, scene.KindLayerRestore:
		w.WriteI64(int64(e.ID))

	case scene.KindLayerRename:
		w.WriteI64(int64(e.ID))
		w.WriteString(e.Str)
		w.WriteString(e.Str2)

	case scene.KindSceneDimensions:
		w.WriteU32(e.U1)
		w.WriteU32(e.U2)
		w.WriteU32(e.U3)
		w.WriteU32(e.U4)

	case scene.KindSceneTitle:
		w.WriteString(e.Str)
		w.WriteString(e.Str2)

	case scene.KindSpriteDrawingStart:
		w.WriteI64(int64(e.ID))
		w.WriteU8(uint8(e.DrawingMode))

	case scene.KindSpriteDrawingPoint:
		w.WriteI64(int64(e.ID))
		writePoint(w, e.Point)

	case scene.KindSpriteLayer:
		w.WriteI64(int64(e.ID))
		w.WriteI64(int64(e.Layer))
		w.WriteI64(int64(e.Group))

	case scene.KindSpriteMove:
		w.WriteI64(int64(e.ID))
		writeRect(w, e.Rect)
		writeRect(w, e.Rect2)

	case scene.KindSpriteNew:
		writeSprite(w, e.Sprite)
		w.WriteI64(int64(e.Layer))

	case scene.KindSpriteRemove:
		w.WriteI64(int64(e.ID))
		w.WriteI64(int64(e.Layer))

	case scene.KindSpriteRestore:
		w.WriteI64(int64(e.ID))

	case scene.KindSpriteVisual:
		w.WriteI64(int64(e.ID))
		writeVisual(w, e.Visual)
		writeVisual(w, e.Visual2)
	}
}

// DecodeSceneEvent reads one SceneEvent from r.
func DecodeSceneEvent(r *Reader) (scene.SceneEvent, error) {
	kind, err := r.ReadU8()
	if err != nil {
		return scene.SceneEvent{}, err
	}

	switch scene.Kind(kind) {
	case scene.KindDummy:
		return scene.SceneEvent{Kind: scene.KindDummy}, nil

	case scene.KindEventSet:
		n, err := r.ReadU32()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		events := make([]scene.SceneEvent, n)
		for i := range events {
			events[i], err = DecodeSceneEvent(r)
			if err != nil {
				return scene.SceneEvent{}, err
			}
		}
		return scene.Set(events), nil

	case scene.KindFogActive:
		old, err := r.ReadBool()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		new, err := r.ReadBool()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		return scene.FogActive(old, new), nil

	case scene.KindFogOcclude, scene.KindFogReveal:
		was, err := r.ReadBool()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		x, err := r.ReadU32()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		y, err := r.ReadU32()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		if scene.Kind(kind) == scene.KindFogOcclude {
			return scene.FogOcclude(was, x, y), nil
		}
		return scene.FogReveal(was, x, y), nil

	case scene.KindGroupNew:
		id, err := r.ReadI64()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		return scene.GroupNew(scene.Id(id)), nil

	case scene.KindGroupDelete:
		id, err := r.ReadI64()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		return scene.GroupDelete(scene.Id(id)), nil

	case scene.KindGroupAdd, scene.KindGroupRemove:
		sprite, err := r.ReadI64()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		group, err := r.ReadI64()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		if scene.Kind(kind) == scene.KindGroupAdd {
			return scene.GroupAdd(scene.Id(group), scene.Id(sprite)), nil
		}
		return scene.GroupRemove(scene.Id(group), scene.Id(sprite)), nil

	case scene.KindLayerLocked, scene.KindLayerVisibility:
		id, err := r.ReadI64()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		status, err := r.ReadBool()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		if scene.Kind(kind) == scene.KindLayerLocked {
			return scene.LayerLocked(scene.Id(id), status), nil
		}
		return scene.LayerVisibility(scene.Id(id), status), nil

	case scene.KindLayerMove:
		id, err := r.ReadI64()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		oldZ, err := r.ReadI32()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		up, err := r.ReadBool()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		return scene.LayerMove(scene.Id(id), oldZ, up), nil

	case scene.KindLayerNew:
		id, err := r.ReadI64()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		title, err := r.ReadString()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		z, err := r.ReadI32()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		return scene.LayerNew(scene.Id(id), title, z), nil

	case scene.KindLayerRemove:
		id, err := r.ReadI64()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		return scene.LayerRemove(scene.Id(id)), nil

	case scene.KindLayerRestore:
		id, err := r.ReadI64()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		return scene.LayerRestore(scene.Id(id)), nil

	case scene.KindLayerRename:
		id, err := r.ReadI64()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		oldTitle, err := r.ReadString()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		newTitle, err := r.ReadString()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		return scene.LayerRename(scene.Id(id), oldTitle, newTitle), nil

	case scene.KindSceneDimensions:
		oldW, err := r.ReadU32()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		oldH, err := r.ReadU32()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		newW, err := r.ReadU32()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		newH, err := r.ReadU32()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		return scene.SceneDimensions(oldW, oldH, newW, newH), nil

	case scene.KindSceneTitle:
		old, err := r.ReadString()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		new, err := r.ReadString()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		return scene.SceneTitleChange(old, new), nil

	case scene.KindSpriteDrawingStart:
		id, err := r.ReadI64()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		mode, err := r.ReadU8()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		return scene.SpriteDrawingStart(scene.Id(id), scene.DrawingMode(mode)), nil

	case scene.KindSpriteDrawingPoint:
		id, err := r.ReadI64()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		p, err := readPoint(r)
		if err != nil {
			return scene.SceneEvent{}, err
		}
		return scene.SpriteDrawingPoint(scene.Id(id), p), nil

	case scene.KindSpriteLayer:
		id, err := r.ReadI64()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		oldLayer, err := r.ReadI64()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		newLayer, err := r.ReadI64()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		return scene.SpriteLayer(scene.Id(id), scene.Id(oldLayer), scene.Id(newLayer)), nil

	case scene.KindSpriteMove:
		id, err := r.ReadI64()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		from, err := readRect(r)
		if err != nil {
			return scene.SceneEvent{}, err
		}
		to, err := readRect(r)
		if err != nil {
			return scene.SceneEvent{}, err
		}
		return scene.SpriteMove(scene.Id(id), from, to), nil

	case scene.KindSpriteNew:
		sp, err := readSprite(r)
		if err != nil {
			return scene.SceneEvent{}, err
		}
		layer, err := r.ReadI64()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		return scene.SpriteNew(sp, scene.Id(layer)), nil

	case scene.KindSpriteRemove:
		id, err := r.ReadI64()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		layer, err := r.ReadI64()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		return scene.SpriteRemove(scene.Id(id), scene.Id(layer)), nil

	case scene.KindSpriteRestore:
		id, err := r.ReadI64()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		return scene.SpriteRestore(scene.Id(id)), nil

	case scene.KindSpriteVisual:
		id, err := r.ReadI64()
		if err != nil {
			return scene.SceneEvent{}, err
		}
		old, err := readVisual(r)
		if err != nil {
			return scene.SceneEvent{}, err
		}
		new, err := readVisual(r)
		if err != nil {
			return scene.SceneEvent{}, err
		}
		return scene.SpriteVisualChange(scene.Id(id), old, new), nil
	}

	return scene.SceneEvent{}, fmt.Errorf("wire: unknown scene event kind %d", kind)
}
