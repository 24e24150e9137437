package concord

import (
	"fmt"
	"time"

	"github.com/concordchat/concord.go/pkg/snowflake"
)

// User is a Concord account, cached at client level and shared by every
// member referencing it.
type User struct {
	ID            snowflake.ID
	Username      string
	GlobalName    string
	Discriminator string
	Avatar        string
	Bot           bool
}

func (u *User) EntityID() snowflake.ID { return u.ID }

func (u *User) scopeID() snowflake.ID { return 0 }

// CreatedAt derives the account creation time from the ID.
func (u *User) CreatedAt() time.Time { return u.ID.Time() }

func (u *User) Patch(p Payload) error {
	if u.ID == 0 {
		id, ok := p.Snowflake("id")
		if !ok || id == 0 {
			return fmt.Errorf("%w: user without id", ErrMalformedPayload)
		}
		u.ID = id
	}
	if v, ok := p.String("username"); ok {
		u.Username = v
	}
	if v, ok := p.String("global_name"); ok {
		u.GlobalName = v
	}
	if v, ok := p.String("discriminator"); ok {
		u.Discriminator = v
	}
	if v, ok := p.String("avatar"); ok {
		u.Avatar = v
	}
	if v, ok := p.Bool("bot"); ok {
		u.Bot = v
	}
	return nil
}

// Mention renders the chat mention form of the user.
func (u *User) Mention() string {
	return fmt.Sprintf("<@%s>", u.ID)
}

func (u *User) String() string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}
