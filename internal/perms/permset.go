package perms

import "github.com/owenfeik/vttserver/internal/scene"

// PermSet restricts interaction with a single item (layer or sprite) to
// users holding at least Role, or explicitly listed by id regardless of
// role.
type PermSet struct {
	Item  scene.Id
	Users []scene.Id
	Role  Role
}

// NewPermSet defaults to Editor, matching an unrestricted item: anyone who
// could edit the scene at large can still touch it.
func NewPermSet(item scene.Id) PermSet {
	return PermSet{Item: item, Role: Editor}
}

func (ps PermSet) allows(user scene.Id, role Role) bool {
	if role >= ps.Role {
		return true
	}
	for _, u := range ps.Users {
		if u == user {
			return true
		}
	}
	return false
}
