package perms

import "github.com/owenfeik/vttserver/internal/scene"

// Override grants a single user a permission category, either scene-wide
// (Item absent) or scoped to one item.
type Override struct {
	User scene.Id
	Perm string
	Item scene.Id
	// HasItem distinguishes a scene-wide override from one scoped to Item,
	// since scene.Id's zero value (0) is also NoID.
	HasItem bool
}

// NewOverride constructs a scene-wide override for the named permission
// category. PermName values come from PermNames.
func NewOverride(user scene.Id, permName string) Override {
	return Override{User: user, Perm: permName}
}

// NewItemOverride scopes the override to a single item.
func NewItemOverride(user scene.Id, permName string, item scene.Id) Override {
	return Override{User: user, Perm: permName, Item: item, HasItem: true}
}

func (o Override) Equal(other Override) bool {
	return o.User == other.User && o.Perm == other.Perm &&
		o.HasItem == other.HasItem && o.Item == other.Item
}

func (o Override) allows(user scene.Id, e scene.SceneEvent) bool {
	if user != o.User {
		return false
	}
	if permName(permOf(e)) != o.Perm {
		return false
	}
	if !o.HasItem {
		return true
	}
	item, ok := overrideTarget(e)
	return ok && item == o.Item
}

// overrideTarget is the id an item-scoped Override is checked against: a
// sprite's own id where one already exists, but its enclosing layer for
// SpriteNew/SpriteRemove/SpriteRestore, since the sprite doesn't have an id
// a grant could have named before it existed. This lets a per-layer grant
// (e.g. a player's own implicit layer) cover sprite creation and removal on
// that layer without naming individual sprites in advance.
func overrideTarget(e scene.SceneEvent) (scene.Id, bool) {
	switch e.Kind {
	case scene.KindSpriteNew, scene.KindSpriteRemove, scene.KindSpriteRestore:
		if id, ok := e.LayerID(); ok {
			return id, true
		}
	}
	return e.Item()
}

// PermNames are the permission category names usable with NewOverride,
// matching the categories permOf assigns to scene events.
var PermNames = struct {
	LayerNew, LayerRemove, LayerUpdate, SceneUpdate,
	SpriteNew, SpriteRemove, SpriteUpdate string
}{
	LayerNew:     "layer-new",
	LayerRemove:  "layer-remove",
	LayerUpdate:  "layer-update",
	SceneUpdate:  "scene-update",
	SpriteNew:    "sprite-new",
	SpriteRemove: "sprite-remove",
	SpriteUpdate: "sprite-update",
}

func permName(p perm) string {
	switch p {
	case permLayerNew:
		return PermNames.LayerNew
	case permLayerRemove:
		return PermNames.LayerRemove
	case permLayerUpdate:
		return PermNames.LayerUpdate
	case permSceneUpdate:
		return PermNames.SceneUpdate
	case permSpriteNew:
		return PermNames.SpriteNew
	case permSpriteRemove:
		return PermNames.SpriteRemove
	case permSpriteUpdate:
		return PermNames.SpriteUpdate
	default:
		return ""
	}
}
