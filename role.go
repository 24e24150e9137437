package concord

import (
	"fmt"
	"time"

	"github.com/concordchat/concord.go/pkg/snowflake"
)

// Role is an ordered guild role. Its observable position is derived
// from the ordering engine on demand; only the raw position hint from
// the service is stored.
type Role struct {
	ID          snowflake.ID
	Name        string
	Color       int
	Hoist       bool
	Managed     bool
	Mentionable bool
	Permissions uint64

	// RawPosition is the denormalized ordering hint from the service.
	// Not unique, not gap-free. Use Position for the observable rank.
	RawPosition int

	// Tags is replaced wholesale whenever a payload carries "tags".
	Tags *RoleTags

	guild *Guild
}

// RoleTags carries service-managed role metadata.
type RoleTags struct {
	BotID             snowflake.ID
	IntegrationID     snowflake.ID
	PremiumSubscriber bool
}

func (r *Role) EntityID() snowflake.ID { return r.ID }

func (r *Role) scopeID() snowflake.ID {
	if r.guild == nil {
		return 0
	}
	return r.guild.ID
}

// Guild returns the owning guild. The reference is non-owning; the
// guild's role manager is the sole owner of the role.
func (r *Role) Guild() *Guild { return r.guild }

func (r *Role) CreatedAt() time.Time { return r.ID.Time() }

func (r *Role) Patch(p Payload) error {
	if r.ID == 0 {
		id, ok := p.Snowflake("id")
		if !ok || id == 0 {
			return fmt.Errorf("%w: role without id", ErrMalformedPayload)
		}
		r.ID = id
	}
	if v, ok := p.String("name"); ok {
		r.Name = v
	}
	if v, ok := p.Int("color"); ok {
		r.Color = v
	}
	if v, ok := p.Bool("hoist"); ok {
		r.Hoist = v
	}
	if v, ok := p.Bool("managed"); ok {
		r.Managed = v
	}
	if v, ok := p.Bool("mentionable"); ok {
		r.Mentionable = v
	}
	if v, ok := p.Uint64("permissions"); ok {
		r.Permissions = v
	}
	if v, ok := p.Int("position"); ok {
		r.RawPosition = v
	}
	if tags, ok := p.Object("tags"); ok {
		if tags == nil {
			r.Tags = nil
		} else {
			t := &RoleTags{}
			t.BotID, _ = tags.Snowflake("bot_id")
			t.IntegrationID, _ = tags.Snowflake("integration_id")
			// The service encodes premium_subscriber as a present null.
			t.PremiumSubscriber = tags.Has("premium_subscriber")
			r.Tags = t
		}
	}
	return nil
}

// Position is the 0-based rank of the role among its guild's roles,
// recomputed from current raw positions on every call.
func (r *Role) Position() int {
	if r.guild == nil {
		return 0
	}
	for i, role := range r.guild.SortedRoles() {
		if role.ID == r.ID {
			return i
		}
	}
	return 0
}

// Compare orders two roles for hierarchy checks: raw position first,
// identity ascending as the tie-break. Positive means r ranks after
// other.
func (r *Role) Compare(other *Role) int {
	if r.RawPosition != other.RawPosition {
		return r.RawPosition - other.RawPosition
	}
	return r.ID.Compare(other.ID)
}

// IsEveryone reports whether this is the guild's default role.
func (r *Role) IsEveryone() bool {
	return r.guild != nil && r.ID == r.guild.ID
}

func (r *Role) Mention() string {
	return fmt.Sprintf("<@&%s>", r.ID)
}
