package perms

import (
	"testing"

	"github.com/owenfeik/vttserver/internal/geometry"
	"github.com/owenfeik/vttserver/internal/scene"
)

func TestRoleOrdering(t *testing.T) {
	if !(Owner > Editor && Editor > Player && Player > Spectator) {
		t.Fatalf("role order broken: owner=%d editor=%d player=%d spectator=%d", Owner, Editor, Player, Spectator)
	}
}

func TestCanonicalUpdaterIsOwner(t *testing.T) {
	p := New()
	if p.getRole(CanonicalUpdater) != Owner {
		t.Fatalf("canonical updater should be owner by default")
	}
}

func TestOwnerRoleIsIrrevocable(t *testing.T) {
	p := New()
	owner := scene.Id(1)
	p.SetOwner(owner)

	if _, ok := p.RoleChange(CanonicalUpdater, owner, Editor); ok {
		t.Fatalf("owner's role should not be changeable")
	}
	if p.getRole(owner) != Owner {
		t.Fatalf("owner's role should remain owner")
	}
}

func TestNobodyCanGrantOwnership(t *testing.T) {
	p := New()
	if _, ok := p.RoleChange(CanonicalUpdater, scene.Id(2), Owner); ok {
		t.Fatalf("role change should never grant owner")
	}
}

func TestRoleChangeRequiresSufficientUpdaterRole(t *testing.T) {
	p := New()
	editor := scene.Id(2)
	player := scene.Id(3)
	p.setRole(editor, Editor)
	p.setRole(player, Player)

	// An editor may promote a player up to editor, but not above themselves.
	if _, ok := p.RoleChange(editor, player, Editor); !ok {
		t.Fatalf("editor should be able to promote a player to editor")
	}

	// A player cannot raise anyone above their own role.
	other := scene.Id(4)
	if _, ok := p.RoleChange(player, other, Editor); ok {
		t.Fatalf("player should not be able to grant a role above their own")
	}
}

func TestSpectatorCannotUpdateSprite(t *testing.T) {
	p := New()
	user := scene.Id(5)
	p.setRole(user, Spectator)

	ev := scene.SpriteMove(scene.Id(10), geometry.Rect{}, geometry.Rect{})
	if p.Permitted(user, ev, 0, false) {
		t.Fatalf("spectator should not be permitted to move a sprite")
	}
}

func TestPlayerCanUpdateSpriteButNotLayer(t *testing.T) {
	p := New()
	user := scene.Id(6)
	p.setRole(user, Player)

	move := scene.SpriteMove(scene.Id(11), geometry.Rect{}, geometry.Rect{})
	if !p.Permitted(user, move, 0, false) {
		t.Fatalf("player should be permitted to move a sprite")
	}

	rename := scene.LayerRename(scene.Id(12), "old", "new")
	if p.Permitted(user, rename, 0, false) {
		t.Fatalf("player should not be permitted to rename a layer")
	}
}

func TestItemPermSetCanExcludeAnEditor(t *testing.T) {
	p := New()
	editor := scene.Id(7)
	p.setRole(editor, Editor)

	layer := scene.Id(20)
	ps := PermSet{Item: layer, Role: Owner}
	if _, ok := p.ItemPerms(CanonicalUpdater, ps); !ok {
		t.Fatalf("canonical updater should be able to set item perms")
	}

	rename := scene.LayerRename(layer, "old", "new")
	if p.Permitted(editor, rename, layer, true) {
		t.Fatalf("item perm set should deny an editor below the required role")
	}
}

func TestOverrideGrantsSingleAction(t *testing.T) {
	p := New()
	player := scene.Id(8)
	p.setRole(player, Player)

	layer := scene.Id(21)
	if _, ok := p.ItemPerms(CanonicalUpdater, PermSet{Item: layer, Role: Owner}); !ok {
		t.Fatalf("expected item perms to be set")
	}

	rename := scene.LayerRename(layer, "old", "new")
	if p.Permitted(player, rename, layer, true) {
		t.Fatalf("player should still be denied before any override")
	}

	o := NewItemOverride(player, PermNames.LayerUpdate, layer)
	if _, ok := p.NewOverride(CanonicalUpdater, o); !ok {
		t.Fatalf("expected override to be granted")
	}
	if !p.Permitted(player, rename, layer, true) {
		t.Fatalf("override should permit the renamed layer")
	}

	otherLayer := scene.LayerRename(scene.Id(22), "a", "b")
	if p.Permitted(player, otherLayer, 0, false) {
		t.Fatalf("item-scoped override should not leak to an unrelated layer")
	}
}
