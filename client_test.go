package concord

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concordchat/concord.go/pkg/gateway"
	"github.com/concordchat/concord.go/pkg/snowflake"
)

func dispatch(t *testing.T, c *Client, typ string, guildID snowflake.ID, data map[string]any) {
	t.Helper()
	require.NoError(t, c.Dispatch(gateway.Event{Type: typ, GuildID: guildID, Data: data}))
}

func TestDispatch_guild_lifecycle(t *testing.T) {
	c := New(Config{Token: "t"})

	dispatch(t, c, "GUILD_CREATE", 500, map[string]any{
		"id":       "500",
		"name":     "concord hq",
		"owner_id": "42",
		"roles": []any{
			map[string]any{"id": "500", "name": "@everyone", "permissions": "1024"},
		},
		"channels": []any{
			map[string]any{"id": "801", "type": float64(0), "name": "general"},
		},
		"members": []any{
			map[string]any{"user": map[string]any{"id": "42", "username": "ana"}},
		},
	})

	g, ok := c.Guilds.Get(500)
	require.True(t, ok)
	assert.Equal(t, "concord hq", g.Name)
	assert.Equal(t, 1, g.Roles.Len())
	assert.Equal(t, 1, g.Channels.Len())
	assert.Equal(t, 1, g.Members.Len())

	// Nested member users land in the client-wide user cache.
	u, ok := c.Users.Get(42)
	require.True(t, ok)
	assert.Equal(t, "ana", u.Username)

	dispatch(t, c, "GUILD_UPDATE", 500, map[string]any{
		"id": "500", "name": "renamed",
	})
	assert.Equal(t, "renamed", g.Name, "update patches the cached instance")

	dispatch(t, c, "GUILD_DELETE", 500, map[string]any{"id": "500"})
	_, ok = c.Guilds.Get(500)
	assert.False(t, ok)
}

func TestDispatch_role_events(t *testing.T) {
	c := New(Config{Token: "t"})
	dispatch(t, c, "GUILD_CREATE", 500, map[string]any{"id": "500"})
	g, _ := c.Guilds.Get(500)

	dispatch(t, c, "GUILD_ROLE_CREATE", 500, map[string]any{
		"guild_id": "500",
		"role":     map[string]any{"id": "601", "name": "mods"},
	})
	role, ok := g.Roles.Get(601)
	require.True(t, ok)
	assert.Equal(t, "mods", role.Name)

	dispatch(t, c, "GUILD_ROLE_UPDATE", 500, map[string]any{
		"guild_id": "500",
		"role":     map[string]any{"id": "601", "name": "moderators"},
	})
	assert.Equal(t, "moderators", role.Name)

	dispatch(t, c, "GUILD_ROLE_DELETE", 500, map[string]any{
		"guild_id": "500", "role_id": "601",
	})
	_, ok = g.Roles.Get(601)
	assert.False(t, ok)

	err := c.Dispatch(gateway.Event{Type: "GUILD_ROLE_CREATE", GuildID: 500, Data: map[string]any{
		"guild_id": "500",
	}})
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestDispatch_channel_events(t *testing.T) {
	c := New(Config{Token: "t"})
	dispatch(t, c, "GUILD_CREATE", 500, map[string]any{"id": "500"})
	g, _ := c.Guilds.Get(500)

	dispatch(t, c, "CHANNEL_CREATE", 500, map[string]any{
		"guild_id": "500", "id": "801", "type": float64(0), "name": "general",
	})
	ch, ok := g.Channels.Get(801)
	require.True(t, ok)

	dispatch(t, c, "CHANNEL_UPDATE", 500, map[string]any{
		"guild_id": "500", "id": "801", "topic": "daily chatter",
	})
	assert.Equal(t, "daily chatter", ch.Topic)
	assert.Equal(t, "general", ch.Name, "absent fields survive the patch")

	dispatch(t, c, "CHANNEL_DELETE", 500, map[string]any{
		"guild_id": "500", "id": "801",
	})
	_, ok = g.Channels.Get(801)
	assert.False(t, ok)
}

func TestDispatch_member_events(t *testing.T) {
	c := New(Config{Token: "t"})
	dispatch(t, c, "GUILD_CREATE", 500, map[string]any{"id": "500"})
	g, _ := c.Guilds.Get(500)

	dispatch(t, c, "GUILD_MEMBER_ADD", 500, map[string]any{
		"guild_id": "500",
		"user":     map[string]any{"id": "42", "username": "ana"},
		"roles":    []any{"601"},
	})
	m, ok := g.Members.Get(42)
	require.True(t, ok)
	assert.True(t, m.HasRole(601))

	dispatch(t, c, "GUILD_MEMBER_UPDATE", 500, map[string]any{
		"guild_id": "500",
		"user":     map[string]any{"id": "42"},
		"nick":     "An",
	})
	require.NotNil(t, m.Nick)
	assert.Equal(t, "An", *m.Nick)

	dispatch(t, c, "GUILD_MEMBER_REMOVE", 500, map[string]any{
		"guild_id": "500",
		"user":     map[string]any{"id": "42"},
	})
	_, ok = g.Members.Get(42)
	assert.False(t, ok)

	// The user object outlives the membership.
	_, ok = c.Users.Get(42)
	assert.True(t, ok)
}

func TestDispatch_message_events(t *testing.T) {
	c := New(Config{Token: "t"})
	dispatch(t, c, "GUILD_CREATE", 500, map[string]any{
		"id": "500",
		"channels": []any{
			map[string]any{"id": "801", "type": float64(0)},
		},
	})
	g, _ := c.Guilds.Get(500)
	ch, _ := g.Channels.Get(801)
	require.Nil(t, ch.LastMessageID)

	dispatch(t, c, "MESSAGE_CREATE", 500, map[string]any{
		"guild_id":   "500",
		"id":         "9001",
		"channel_id": "801",
		"author":     map[string]any{"id": "42", "username": "ana"},
		"content":    "hello",
	})

	msg, ok := c.Messages.Get(9001)
	require.True(t, ok)
	assert.Equal(t, "hello", msg.Content)
	require.NotNil(t, ch.LastMessageID)
	assert.Equal(t, snowflake.ID(9001), *ch.LastMessageID)

	_, ok = c.Users.Get(42)
	assert.True(t, ok, "message authors land in the user cache")

	dispatch(t, c, "MESSAGE_UPDATE", 500, map[string]any{
		"guild_id": "500", "id": "9001", "content": "edited",
	})
	assert.Equal(t, "edited", msg.Content)

	dispatch(t, c, "MESSAGE_DELETE", 500, map[string]any{
		"guild_id": "500", "id": "9001",
	})
	_, ok = c.Messages.Get(9001)
	assert.False(t, ok)
}

func TestDispatch_uncached_guild_is_dropped(t *testing.T) {
	c := New(Config{Token: "t"})

	// Events scoped to a guild the client never saw are logged and
	// dropped, never an error.
	require.NoError(t, c.Dispatch(gateway.Event{
		Type:    "CHANNEL_CREATE",
		GuildID: 999,
		Data:    map[string]any{"guild_id": "999", "id": "801", "type": float64(0)},
	}))
}

func TestHandlers_on_off_and_wildcard(t *testing.T) {
	c := New(Config{Token: "t"})

	var got []string
	id := c.On("GUILD_CREATE", func(_ *Client, ev gateway.Event) {
		got = append(got, "specific:"+ev.Type)
	})
	c.On("*", func(_ *Client, ev gateway.Event) {
		got = append(got, "wildcard:"+ev.Type)
	})

	dispatch(t, c, "GUILD_CREATE", 500, map[string]any{"id": "500"})
	assert.ElementsMatch(t, []string{"specific:GUILD_CREATE", "wildcard:GUILD_CREATE"}, got)

	// Handlers run after the merge: state is already visible.
	c.On("GUILD_UPDATE", func(cl *Client, ev gateway.Event) {
		g, ok := cl.Guilds.Get(ev.GuildID)
		require.True(t, ok)
		got = append(got, "name:"+g.Name)
	})
	got = got[:0]
	dispatch(t, c, "GUILD_UPDATE", 500, map[string]any{"id": "500", "name": "after"})
	assert.Contains(t, got, "name:after")

	c.Off("GUILD_CREATE", id)
	got = got[:0]
	dispatch(t, c, "GUILD_CREATE", 500, map[string]any{"id": "500"})
	assert.Equal(t, []string{"wildcard:GUILD_CREATE"}, got)
}
