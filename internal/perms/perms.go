package perms

import "github.com/owenfeik/vttserver/internal/scene"

// CanonicalUpdater is the user id standing in for the server itself when it
// applies events on its own authority (e.g. replaying history during
// rollback) rather than on behalf of a connected client.
const CanonicalUpdater scene.Id = 0

// EventKind tags a PermsEvent's variant.
type EventKind int

const (
	EventRoleChange EventKind = iota
	EventItemPerms
	EventNewOverride
)

// PermsEvent is the tagged result of a successful permission-model mutation,
// broadcast to clients so every replica's view of roles and overrides stays
// in sync.
type PermsEvent struct {
	Kind     EventKind
	User     scene.Id
	Role     Role
	PermSet  PermSet
	Override Override
}

func roleChangeEvent(user scene.Id, role Role) PermsEvent {
	return PermsEvent{Kind: EventRoleChange, User: user, Role: role}
}

func itemPermsEvent(ps PermSet) PermsEvent {
	return PermsEvent{Kind: EventItemPerms, PermSet: ps}
}

func newOverrideEvent(o Override) PermsEvent {
	return PermsEvent{Kind: EventNewOverride, Override: o}
}

// Perms tracks every user's role, per-item permission sets, and one-off
// overrides for a single scene.
type Perms struct {
	roles     map[scene.Id]Role
	items     map[scene.Id]PermSet
	overrides []Override
}

// New constructs a Perms with no roles assigned (every user defaults to
// Spectator) besides the canonical updater, who is always Owner.
func New() *Perms {
	return &Perms{
		roles: map[scene.Id]Role{CanonicalUpdater: Owner},
		items: make(map[scene.Id]PermSet),
	}
}

// Roles, Items, and Overrides expose Perms's internals for serialization;
// callers must treat the returned map/slice as read-only.
func (p *Perms) Roles() map[scene.Id]Role         { return p.roles }
func (p *Perms) Items() map[scene.Id]PermSet      { return p.items }
func (p *Perms) Overrides() []Override            { return p.overrides }

// FromParts reconstructs a Perms from previously serialized internals.
func FromParts(roles map[scene.Id]Role, items map[scene.Id]PermSet, overrides []Override) *Perms {
	if roles == nil {
		roles = make(map[scene.Id]Role)
	}
	if items == nil {
		items = make(map[scene.Id]PermSet)
	}
	return &Perms{roles: roles, items: items, overrides: overrides}
}

// RoleOf returns user's current role, defaulting to Spectator.
func (p *Perms) RoleOf(user scene.Id) Role {
	return p.getRole(user)
}

func (p *Perms) getRole(user scene.Id) Role {
	if r, ok := p.roles[user]; ok {
		return r
	}
	return lowest()
}

func (p *Perms) setRole(user scene.Id, role Role) {
	p.roles[user] = role
}

// SetOwner grants owner unconditionally; used once, when a scene's creator
// connects for the first time.
func (p *Perms) SetOwner(owner scene.Id) {
	p.roles[owner] = Owner
}

// RoleChange reassigns user's role on updater's authority. The owner's role
// can never be changed, and nobody may grant or be granted ownership this
// way; the updater's own role must equal or exceed both the target role and
// the recipient's current role, preventing a user from elevating someone
// past themselves.
func (p *Perms) RoleChange(updater, user scene.Id, role Role) (PermsEvent, bool) {
	updaterRole := p.getRole(updater)
	userRole := p.getRole(user)

	if userRole == Owner || role == Owner {
		return PermsEvent{}, false
	}
	if updaterRole < role || updaterRole < userRole {
		return PermsEvent{}, false
	}
	p.setRole(user, role)
	return roleChangeEvent(user, role), true
}

// ItemPerms installs a per-item permission set on updater's authority,
// requiring at least Editor.
func (p *Perms) ItemPerms(updater scene.Id, ps PermSet) (PermsEvent, bool) {
	if p.getRole(updater) < Editor {
		return PermsEvent{}, false
	}
	p.items[ps.Item] = ps
	return itemPermsEvent(ps), true
}

// NewOverride grants a one-off permission on updater's authority, requiring
// at least Editor. Duplicate overrides are silently deduplicated.
func (p *Perms) NewOverride(updater scene.Id, o Override) (PermsEvent, bool) {
	if p.getRole(updater) < Editor {
		return PermsEvent{}, false
	}
	for _, existing := range p.overrides {
		if existing.Equal(o) {
			return newOverrideEvent(o), true
		}
	}
	p.overrides = append(p.overrides, o)
	return newOverrideEvent(o), true
}

// HandleEvent applies a PermsEvent on updater's authority, reporting whether
// it was accepted.
func (p *Perms) HandleEvent(updater scene.Id, e PermsEvent) bool {
	switch e.Kind {
	case EventRoleChange:
		_, ok := p.RoleChange(updater, e.User, e.Role)
		return ok
	case EventItemPerms:
		_, ok := p.ItemPerms(updater, e.PermSet)
		return ok
	case EventNewOverride:
		_, ok := p.NewOverride(updater, e.Override)
		return ok
	}
	return false
}

func (p *Perms) allowedByRole(user scene.Id, e scene.SceneEvent, layer scene.Id, hasLayer bool) bool {
	role := p.getRole(user)

	if hasLayer {
		if ps, ok := p.items[layer]; ok && !ps.allows(user, role) {
			return false
		}
	}

	if e.IsSprite() {
		if item, ok := e.Item(); ok {
			if ps, ok := p.items[item]; ok && !ps.allows(user, role) {
				return false
			}
		}
	}

	return role.allows(permOf(e))
}

func (p *Perms) allowedByOverride(user scene.Id, e scene.SceneEvent) bool {
	for _, o := range p.overrides {
		if o.allows(user, e) {
			return true
		}
	}
	return false
}

// Permitted evaluates whether user may apply e, optionally scoped to layer:
//
//  1. Resolve user's role.
//  2. If layer carries a PermSet that denies this user at this role, deny.
//  3. If e is sprite-scoped and its sprite carries a PermSet that denies
//     this user at this role, deny.
//  4. If the role allows e's permission category outright, permit.
//  5. Otherwise permit iff some Override matches (user, category, item).
func (p *Perms) Permitted(user scene.Id, e scene.SceneEvent, layer scene.Id, hasLayer bool) bool {
	return p.allowedByRole(user, e, layer, hasLayer) || p.allowedByOverride(user, e)
}
