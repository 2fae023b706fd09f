package wire

import (
	"fmt"

	"github.com/owenfeik/vttserver/internal/perms"
	"github.com/owenfeik/vttserver/internal/scene"
)

func writePermSet(w *Writer, ps perms.PermSet) {
	w.WriteI64(int64(ps.Item))
	w.WriteU32(uint32(len(ps.Users)))
	for _, u := range ps.Users {
		w.WriteI64(int64(u))
	}
	w.WriteU8(uint8(ps.Role))
}

func readPermSet(r *Reader) (perms.PermSet, error) {
	item, err := r.ReadI64()
	if err != nil {
		return perms.PermSet{}, err
	}
	n, err := r.ReadU32()
	if err != nil {
		return perms.PermSet{}, err
	}
	users := make([]scene.Id, n)
	for i := range users {
		u, err := r.ReadI64()
		if err != nil {
			return perms.PermSet{}, err
		}
		users[i] = scene.Id(u)
	}
	role, err := r.ReadU8()
	if err != nil {
		return perms.PermSet{}, err
	}
	return perms.PermSet{Item: scene.Id(item), Users: users, Role: perms.Role(role)}, nil
}

func writeOverride(w *Writer, o perms.Override) {
	w.WriteI64(int64(o.User))
	w.WriteString(o.Perm)
	w.WriteBool(o.HasItem)
	w.WriteI64(int64(o.Item))
}

func readOverride(r *Reader) (perms.Override, error) {
	user, err := r.ReadI64()
	if err != nil {
		return perms.Override{}, err
	}
	name, err := r.ReadString()
	if err != nil {
		return perms.Override{}, err
	}
	hasItem, err := r.ReadBool()
	if err != nil {
		return perms.Override{}, err
	}
	item, err := r.ReadI64()
	if err != nil {
		return perms.Override{}, err
	}
	return perms.Override{User: scene.Id(user), Perm: name, HasItem: hasItem, Item: scene.Id(item)}, nil
}

func writePermsEvent(w *Writer, e perms.PermsEvent) {
	w.WriteU8(uint8(e.Kind))
	switch e.Kind {
	case perms.EventRoleChange:
		w.WriteI64(int64(e.User))
		w.WriteU8(uint8(e.Role))
	case perms.EventItemPerms:
		writePermSet(w, e.PermSet)
	case perms.EventNewOverride:
		writeOverride(w, e.Override)
	}
}

func readPermsEvent(r *Reader) (perms.PermsEvent, error) {
	kind, err := r.ReadU8()
	if err != nil {
		return perms.PermsEvent{}, err
	}
	switch perms.EventKind(kind) {
	case perms.EventRoleChange:
		user, err := r.ReadI64()
		if err != nil {
			return perms.PermsEvent{}, err
		}
		role, err := r.ReadU8()
		if err != nil {
			return perms.PermsEvent{}, err
		}
		return perms.PermsEvent{Kind: perms.EventRoleChange, User: scene.Id(user), Role: perms.Role(role)}, nil
	case perms.EventItemPerms:
		ps, err := readPermSet(r)
		if err != nil {
			return perms.PermsEvent{}, err
		}
		return perms.PermsEvent{Kind: perms.EventItemPerms, PermSet: ps}, nil
	case perms.EventNewOverride:
		o, err := readOverride(r)
		if err != nil {
			return perms.PermsEvent{}, err
		}
		return perms.PermsEvent{Kind: perms.EventNewOverride, Override: o}, nil
	default:
		return perms.PermsEvent{}, fmt.Errorf("wire: unknown perms event kind %d", kind)
	}
}

func writePerms(w *Writer, p *perms.Perms) {
	roles := p.Roles()
	w.WriteU32(uint32(len(roles)))
	for user, role := range roles {
		w.WriteI64(int64(user))
		w.WriteU8(uint8(role))
	}

	items := p.Items()
	w.WriteU32(uint32(len(items)))
	for _, ps := range items {
		writePermSet(w, ps)
	}

	overrides := p.Overrides()
	w.WriteU32(uint32(len(overrides)))
	for _, o := range overrides {
		writeOverride(w, o)
	}
}

func readPerms(r *Reader) (*perms.Perms, error) {
	nRoles, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	roles := make(map[scene.Id]perms.Role, nRoles)
	for i := uint32(0); i < nRoles; i++ {
		user, err := r.ReadI64()
		if err != nil {
			return nil, err
		}
		role, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		roles[scene.Id(user)] = perms.Role(role)
	}

	nItems, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	items := make(map[scene.Id]perms.PermSet, nItems)
	for i := uint32(0); i < nItems; i++ {
		ps, err := readPermSet(r)
		if err != nil {
			return nil, err
		}
		items[ps.Item] = ps
	}

	nOverrides, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	overrides := make([]perms.Override, nOverrides)
	for i := range overrides {
		o, err := readOverride(r)
		if err != nil {
			return nil, err
		}
		overrides[i] = o
	}

	return perms.FromParts(roles, items, overrides), nil
}
