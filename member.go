package concord

import (
	"fmt"
	"time"

	"github.com/concordchat/concord.go/pkg/snowflake"
)

// Member is a user's presence within one guild. The member is keyed by
// the user's ID; the User itself lives in the client-level user cache
// and is shared across guilds.
type Member struct {
	User *User

	// Nick is nil until the service ever reports one; an explicit null
	// in a payload clears it back to nil.
	Nick *string

	RoleIDs  []snowflake.ID
	JoinedAt time.Time

	// CommunicationDisabledUntil carries an active or expired
	// suspension; nil when the member was never restricted.
	CommunicationDisabledUntil *time.Time

	guild *Guild
}

func (m *Member) EntityID() snowflake.ID {
	if m.User == nil {
		return 0
	}
	return m.User.ID
}

func (m *Member) scopeID() snowflake.ID {
	if m.guild == nil {
		return 0
	}
	return m.guild.ID
}

// Guild returns the owning guild. Non-owning back-reference.
func (m *Member) Guild() *Guild { return m.guild }

func (m *Member) Patch(p Payload) error {
	if up, ok := p.Object("user"); ok && up != nil {
		if m.User == nil {
			// Route through the client-level cache when reachable so
			// every member referencing this account shares one User.
			if m.guild != nil && m.guild.client != nil {
				u, err := m.guild.client.Users.Add(up, true)
				if err != nil {
					return err
				}
				m.User = u
			} else {
				u := &User{}
				if err := u.Patch(up); err != nil {
					return err
				}
				m.User = u
			}
		} else if err := m.User.Patch(up); err != nil {
			return err
		}
	}
	if m.User == nil {
		return fmt.Errorf("%w: member without user", ErrMalformedPayload)
	}

	if v, ok := p.String("nick"); ok {
		if v == "" && p["nick"] == nil {
			m.Nick = nil
		} else {
			m.Nick = &v
		}
	}
	if ids, ok := p.Snowflakes("roles"); ok {
		m.RoleIDs = ids
	}
	if v, ok := p.Time("joined_at"); ok {
		m.JoinedAt = v
	}
	if p.Has("communication_disabled_until") {
		if v, ok := p.Time("communication_disabled_until"); ok && !v.IsZero() {
			m.CommunicationDisabledUntil = &v
		} else {
			m.CommunicationDisabledUntil = nil
		}
	}
	return nil
}

// Suspended reports whether the member is under an active, future-dated
// communication restriction.
func (m *Member) Suspended() bool {
	return m.CommunicationDisabledUntil != nil && m.CommunicationDisabledUntil.After(time.Now())
}

// Roles materializes the member's held roles from the guild cache,
// skipping ids whose role is no longer cached.
func (m *Member) Roles() []*Role {
	if m.guild == nil {
		return nil
	}
	roles := make([]*Role, 0, len(m.RoleIDs))
	for _, id := range m.RoleIDs {
		if r, ok := m.guild.Roles.Get(id); ok {
			roles = append(roles, r)
		}
	}
	return roles
}

// HasRole reports whether the member holds the given role id.
func (m *Member) HasRole(id snowflake.ID) bool {
	for _, rid := range m.RoleIDs {
		if rid == id {
			return true
		}
	}
	return false
}

// IsOwner reports whether the member owns the guild.
func (m *Member) IsOwner() bool {
	return m.guild != nil && m.User != nil && m.guild.OwnerID == m.User.ID
}

func (m *Member) String() string {
	if m.Nick != nil {
		return *m.Nick
	}
	if m.User != nil {
		return m.User.String()
	}
	return ""
}
