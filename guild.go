package concord

import (
	"fmt"
	"time"

	"github.com/concordchat/concord.go/pkg/snowflake"
)

// Guild is the owning scope for roles, channels and members. The guild
// object owns its child caches; children keep non-owning back-references
// for navigation only.
type Guild struct {
	ID          snowflake.ID
	Name        string
	Description string
	Icon        string
	OwnerID     snowflake.ID
	MemberCount int

	// Unavailable uses first-write-wins defaulting: it becomes false on
	// first construction unless the payload says otherwise, and later
	// partial payloads lacking the field leave it alone.
	Unavailable *bool

	Roles    *Manager[*Role]
	Channels *Manager[*Channel]
	Members  *Manager[*Member]

	client *Client
}

func newGuild(c *Client) *Guild {
	return &Guild{client: c}
}

func (g *Guild) EntityID() snowflake.ID { return g.ID }

func (g *Guild) scopeID() snowflake.ID { return 0 }

func (g *Guild) CreatedAt() time.Time { return g.ID.Time() }

func (g *Guild) Patch(p Payload) error {
	if g.ID == 0 {
		id, ok := p.Snowflake("id")
		if !ok || id == 0 {
			return fmt.Errorf("%w: guild without id", ErrMalformedPayload)
		}
		g.ID = id
		g.initManagers()
	}

	if v, ok := p.String("name"); ok {
		g.Name = v
	}
	if v, ok := p.String("description"); ok {
		g.Description = v
	}
	if v, ok := p.String("icon"); ok {
		g.Icon = v
	}
	if v, ok := p.Snowflake("owner_id"); ok {
		g.OwnerID = v
	}
	if v, ok := p.Int("member_count"); ok {
		g.MemberCount = v
	}
	if v, ok := p.Bool("unavailable"); ok {
		g.Unavailable = &v
	} else if g.Unavailable == nil {
		f := false
		g.Unavailable = &f
	}

	// Snapshot payloads inline the child collections; each element runs
	// through the same patch path as an incremental event would.
	if l, ok := p.List("roles"); ok {
		for _, raw := range l {
			if obj, ok := raw.(map[string]any); ok {
				if _, err := g.Roles.Add(Payload(obj), true); err != nil {
					return err
				}
			}
		}
	}
	if l, ok := p.List("channels"); ok {
		for _, raw := range l {
			if obj, ok := raw.(map[string]any); ok {
				if _, err := g.Channels.Add(Payload(obj), true); err != nil {
					return err
				}
			}
		}
	}
	if l, ok := p.List("members"); ok {
		for _, raw := range l {
			if obj, ok := raw.(map[string]any); ok {
				if _, err := g.Members.Add(Payload(obj), true); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (g *Guild) initManagers() {
	g.Roles = NewManager(g.ID,
		func() *Role { return &Role{guild: g} },
		WithSecondaryKey[*Role](func(r *Role) string { return r.Name }),
	)
	g.Channels = NewManager(g.ID,
		func() *Channel { return &Channel{guild: g} },
		WithSecondaryKey[*Channel](func(c *Channel) string { return c.Name }),
	)
	g.Members = NewManager(g.ID,
		func() *Member { return &Member{guild: g} },
		WithKeyResolver[*Member](func(p Payload) (snowflake.ID, bool) {
			user, ok := p.Object("user")
			if !ok || user == nil {
				return 0, false
			}
			id, ok := user.Snowflake("id")
			return id, ok && id != 0
		}),
	)
}

// EveryoneRole returns the guild's default role, whose ID equals the
// guild's own ID.
func (g *Guild) EveryoneRole() *Role {
	r, _ := g.Roles.Get(g.ID)
	return r
}

// SortedRoles returns the guild's roles in their observable order,
// recomputed from current raw positions.
func (g *Guild) SortedRoles() []*Role {
	roles := make([]*Role, 0, g.Roles.Len())
	g.Roles.ForEach(func(r *Role) { roles = append(roles, r) })
	sortRoles(roles)
	return roles
}

// SortedChannels returns every channel in the guild ordered by raw
// position with the identity tie-break. Per-group observable positions
// come from Channel.Position, which additionally scopes the sort to the
// channel's ordering group.
func (g *Guild) SortedChannels() []*Channel {
	channels := make([]*Channel, 0, g.Channels.Len())
	g.Channels.ForEach(func(c *Channel) { channels = append(channels, c) })
	sortChannels(channels)
	return channels
}
