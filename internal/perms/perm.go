package perms

import "github.com/owenfeik/vttserver/internal/scene"

// perm categorises a SceneEvent for the purpose of role checks. Events that
// share a category are permitted or denied together.
type perm int

const (
	permLayerNew perm = iota
	permLayerRemove
	permLayerUpdate
	permSceneUpdate
	permSpecial
	permSpriteNew
	permSpriteRemove
	permSpriteUpdate
)

// permOf classifies e. EventSet and Dummy are "special" and never permitted
// by role alone; they are decomposed into their sub-events by the caller
// before this is consulted. Fog, group, and scene-level events have no
// counterpart in the source's smaller event set and are classified as
// scene-wide updates, gated the same as a layer update (Editor or above).
func permOf(e scene.SceneEvent) perm {
	switch e.Kind {
	case scene.KindDummy, scene.KindEventSet:
		return permSpecial
	case scene.KindLayerLocked, scene.KindLayerMove, scene.KindLayerRename,
		scene.KindLayerVisibility, scene.KindSpriteLayer:
		return permLayerUpdate
	case scene.KindLayerRemove:
		return permLayerRemove
	case scene.KindLayerNew, scene.KindLayerRestore:
		return permLayerNew
	case scene.KindSpriteMove, scene.KindSpriteVisual,
		scene.KindSpriteDrawingStart, scene.KindSpriteDrawingPoint:
		return permSpriteUpdate
	case scene.KindSpriteNew, scene.KindSpriteRestore:
		return permSpriteNew
	case scene.KindSpriteRemove:
		return permSpriteRemove
	case scene.KindFogActive, scene.KindFogOcclude, scene.KindFogReveal,
		scene.KindGroupNew, scene.KindGroupAdd, scene.KindGroupRemove,
		scene.KindGroupDelete, scene.KindSceneDimensions, scene.KindSceneTitle:
		return permSceneUpdate
	default:
		return permSpecial
	}
}
