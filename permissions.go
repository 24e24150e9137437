package concord

import (
	"github.com/concordchat/concord.go/pkg/permissions"
)

// Permission resolution. Results are always frozen bitfields so a
// caller can never corrupt cached state through the returned handle,
// and they are recomputed from current state on every call rather than
// cached across mutations.

// BasePermissions computes the member's guild-wide capability set: the
// default role's bits OR'd with every held role's bits. The guild owner
// gets every capability; holding Administrator does not expand the set
// here because there is no per-resource context to bypass.
func (g *Guild) BasePermissions(m *Member) *permissions.Bitfield {
	if m != nil && m.IsOwner() {
		return permissions.New(permissions.All).Freeze()
	}

	var bits uint64
	if everyone := g.EveryoneRole(); everyone != nil {
		bits |= everyone.Permissions
	}
	if m != nil {
		for _, r := range m.Roles() {
			bits |= r.Permissions
		}
	}
	return permissions.New(bits).Freeze()
}

// PermissionsFor computes the member's effective capability set against
// this channel:
//
//  1. guild base permissions,
//  2. owner and Administrator bypass every overwrite,
//  3. otherwise overwrites apply in fixed precedence, deny before
//     allow at each step: the everyone overwrite, then all matching
//     role overwrites with their denies pooled before their allows,
//     then the member-specific overwrite,
//  4. an active suspension finally clears everything outside the
//     always-available subset.
//
// Overwrites the channel does not define fall back to its parent
// category; there is no deeper inheritance.
func (c *Channel) PermissionsFor(m *Member) *permissions.Bitfield {
	if c.guild == nil || m == nil {
		return permissions.New(0).Freeze()
	}

	if m.IsOwner() {
		return permissions.New(permissions.All).Freeze()
	}

	base := c.guild.BasePermissions(m).Bits()
	if base&permissions.Administrator != 0 {
		return permissions.New(permissions.All).Freeze()
	}

	bits := base

	// Everyone overwrite: a role overwrite keyed by the guild id.
	if ow, ok := c.Overwrite(permissions.OverwriteRole, c.guild.ID); ok {
		bits = permissions.Apply(bits, ow.Deny, ow.Allow)
	}

	// Role overwrites: denies pool before allows, so an allow granted
	// through any held role overrides a deny from another held role.
	var allow, deny uint64
	for _, id := range m.RoleIDs {
		if id == c.guild.ID {
			continue
		}
		if ow, ok := c.Overwrite(permissions.OverwriteRole, id); ok {
			deny |= ow.Deny
			allow |= ow.Allow
		}
	}
	bits = permissions.Apply(bits, deny, allow)

	// Member overwrite wins over every role-level overwrite.
	if ow, ok := c.Overwrite(permissions.OverwriteMember, m.EntityID()); ok {
		bits = permissions.Apply(bits, ow.Deny, ow.Allow)
	}

	if m.Suspended() {
		bits &= permissions.Suspended
	}

	return permissions.New(bits).Freeze()
}
