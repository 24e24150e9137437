package concord

import (
	"fmt"
	"time"

	"github.com/concordchat/concord.go/pkg/permissions"
	"github.com/concordchat/concord.go/pkg/snowflake"
)

// ChannelType enumerates the channel kinds the service exposes. All
// kinds share one field set; kind-specific behavior hangs off the type
// tag rather than separate structs.
type ChannelType int

const (
	ChannelText ChannelType = iota
	ChannelVoice
	ChannelCategory
	ChannelAnnouncement
	ChannelStage
)

func (t ChannelType) String() string {
	switch t {
	case ChannelText:
		return "text"
	case ChannelVoice:
		return "voice"
	case ChannelCategory:
		return "category"
	case ChannelAnnouncement:
		return "announcement"
	case ChannelStage:
		return "stage"
	}
	return fmt.Sprintf("ChannelType(%d)", int(t))
}

// Channel is a guild channel of any kind.
type Channel struct {
	ID   snowflake.ID
	Type ChannelType
	Name string

	// RawPosition is the service's ordering hint; see Position.
	RawPosition int

	// ParentID is the owning category, zero for top-level channels and
	// categories themselves.
	ParentID snowflake.ID

	Topic            string
	NSFW             bool
	RateLimitPerUser int

	// Voice-kind fields.
	Bitrate   int
	UserLimit int

	// LastMessageID defaults to nil the first time the channel is
	// constructed and is only ever written when a payload carries the
	// field, so a partial update can never erase a value the channel
	// never received.
	LastMessageID *snowflake.ID

	// Overwrites is replaced wholesale whenever a payload carries
	// "permission_overwrites".
	Overwrites []permissions.Overwrite

	guild *Guild
}

func (c *Channel) EntityID() snowflake.ID { return c.ID }

func (c *Channel) scopeID() snowflake.ID {
	if c.guild == nil {
		return 0
	}
	return c.guild.ID
}

// Guild returns the owning guild. Non-owning back-reference.
func (c *Channel) Guild() *Guild { return c.guild }

func (c *Channel) CreatedAt() time.Time { return c.ID.Time() }

func (c *Channel) Patch(p Payload) error {
	if c.ID == 0 {
		id, ok := p.Snowflake("id")
		if !ok || id == 0 {
			return fmt.Errorf("%w: channel without id", ErrMalformedPayload)
		}
		c.ID = id
	}
	if v, ok := p.Int("type"); ok {
		c.Type = ChannelType(v)
	}
	if v, ok := p.String("name"); ok {
		c.Name = v
	}
	if v, ok := p.Int("position"); ok {
		c.RawPosition = v
	}
	if v, ok := p.Snowflake("parent_id"); ok {
		c.ParentID = v
	}
	if v, ok := p.String("topic"); ok {
		c.Topic = v
	}
	if v, ok := p.Bool("nsfw"); ok {
		c.NSFW = v
	}
	if v, ok := p.Int("rate_limit_per_user"); ok {
		c.RateLimitPerUser = v
	}
	if v, ok := p.Int("bitrate"); ok {
		c.Bitrate = v
	}
	if v, ok := p.Int("user_limit"); ok {
		c.UserLimit = v
	}
	if v, ok := p.Snowflake("last_message_id"); ok {
		if v == 0 {
			c.LastMessageID = nil
		} else {
			c.LastMessageID = &v
		}
	}
	if l, ok := p.List("permission_overwrites"); ok {
		ows := make([]permissions.Overwrite, 0, len(l))
		for _, raw := range l {
			obj, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if ow, ok := overwriteFromPayload(Payload(obj)); ok {
				ows = append(ows, ow)
			}
		}
		c.Overwrites = ows
	}
	return nil
}

func overwriteFromPayload(p Payload) (permissions.Overwrite, bool) {
	id, ok := p.Snowflake("id")
	if !ok || id == 0 {
		return permissions.Overwrite{}, false
	}
	ow := permissions.Overwrite{ID: id}
	if v, ok := p.Int("type"); ok && v == int(permissions.OverwriteMember) {
		ow.Type = permissions.OverwriteMember
	}
	ow.Allow, _ = p.Uint64("allow")
	ow.Deny, _ = p.Uint64("deny")
	return ow.Normalize(), true
}

// Parent returns the owning category channel, if any.
func (c *Channel) Parent() *Channel {
	if c.guild == nil || c.ParentID == 0 {
		return nil
	}
	parent, _ := c.guild.Channels.Get(c.ParentID)
	return parent
}

// IsCategory reports whether the channel is a container for others.
func (c *Channel) IsCategory() bool { return c.Type == ChannelCategory }

// Overwrite returns the channel's own overwrite for the given subject,
// falling back to the parent category's overwrite when the channel
// defines none. There is no inheritance past one category level.
func (c *Channel) Overwrite(typ permissions.OverwriteType, id snowflake.ID) (permissions.Overwrite, bool) {
	for _, ow := range c.Overwrites {
		if ow.Type == typ && ow.ID == id {
			return ow, true
		}
	}
	if parent := c.Parent(); parent != nil {
		for _, ow := range parent.Overwrites {
			if ow.Type == typ && ow.ID == id {
				return ow, true
			}
		}
	}
	return permissions.Overwrite{}, false
}

func (c *Channel) Mention() string {
	return fmt.Sprintf("<#%s>", c.ID)
}
