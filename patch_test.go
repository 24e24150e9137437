package concord

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concordchat/concord.go/pkg/permissions"
	"github.com/concordchat/concord.go/pkg/snowflake"
)

func TestPatch_idempotence(t *testing.T) {
	g := newTestGuild(t, "500")

	payload := Payload{
		"id":          "601",
		"name":        "mods",
		"color":       float64(0x00ff00),
		"hoist":       true,
		"position":    float64(3),
		"permissions": "3072",
		"tags":        map[string]any{"bot_id": "42"},
	}

	role, err := g.Roles.Add(payload, true)
	require.NoError(t, err)
	once := *role
	onceTags := *role.Tags

	again, err := g.Roles.Add(payload, true)
	require.NoError(t, err)

	assert.Same(t, role, again)
	assert.Equal(t, once, *again)
	assert.Equal(t, onceTags, *again.Tags)
}

func TestPatch_absent_fields_preserved(t *testing.T) {
	g := newTestGuild(t, "500")

	ch, err := g.Channels.Add(Payload{
		"id":    "801",
		"name":  "general",
		"topic": "chatter",
		"nsfw":  true,
	}, true)
	require.NoError(t, err)

	_, err = g.Channels.Add(Payload{"id": "801", "name": "general-2"}, true)
	require.NoError(t, err)

	assert.Equal(t, "general-2", ch.Name)
	assert.Equal(t, "chatter", ch.Topic, "absent field asserts nothing")
	assert.True(t, ch.NSFW)
}

func TestPatch_present_null_clears(t *testing.T) {
	g := newTestGuild(t, "500")

	ch, err := g.Channels.Add(Payload{"id": "801", "topic": "chatter"}, true)
	require.NoError(t, err)

	_, err = g.Channels.Add(Payload{"id": "801", "topic": nil}, true)
	require.NoError(t, err)
	assert.Equal(t, "", ch.Topic, "explicit null is a clear, unlike absence")
}

func TestPatch_first_write_wins_unavailable(t *testing.T) {
	guilds := NewManager(0, func() *Guild { return newGuild(nil) })

	g, err := guilds.Add(Payload{"id": "500", "unavailable": true}, true)
	require.NoError(t, err)
	require.NotNil(t, g.Unavailable)
	assert.True(t, *g.Unavailable)

	// A later partial payload without the field must not reset it.
	_, err = guilds.Add(Payload{"id": "500", "name": "renamed"}, true)
	require.NoError(t, err)
	assert.True(t, *g.Unavailable)

	// First construction without the field defaults it once.
	g2, err := guilds.Add(Payload{"id": "501"}, true)
	require.NoError(t, err)
	require.NotNil(t, g2.Unavailable)
	assert.False(t, *g2.Unavailable)
}

func TestPatch_last_message_id_never_erased(t *testing.T) {
	g := newTestGuild(t, "500")

	ch, err := g.Channels.Add(Payload{"id": "801"}, true)
	require.NoError(t, err)
	assert.Nil(t, ch.LastMessageID, "defaults to null on first construction")

	_, err = g.Channels.Add(Payload{"id": "801", "last_message_id": "9001"}, true)
	require.NoError(t, err)
	require.NotNil(t, ch.LastMessageID)
	assert.Equal(t, snowflake.ID(9001), *ch.LastMessageID)

	_, err = g.Channels.Add(Payload{"id": "801", "name": "general"}, true)
	require.NoError(t, err)
	require.NotNil(t, ch.LastMessageID, "absence never erases a received value")
	assert.Equal(t, snowflake.ID(9001), *ch.LastMessageID)
}

func TestPatch_overwrites_replaced_wholesale(t *testing.T) {
	g := newTestGuild(t, "500")

	ch, err := g.Channels.Add(Payload{
		"id": "801",
		"permission_overwrites": []any{
			map[string]any{"id": "601", "type": float64(0), "allow": "2048", "deny": "0"},
			map[string]any{"id": "602", "type": float64(0), "allow": "0", "deny": "1024"},
		},
	}, true)
	require.NoError(t, err)
	require.Len(t, ch.Overwrites, 2)

	_, err = g.Channels.Add(Payload{
		"id": "801",
		"permission_overwrites": []any{
			map[string]any{"id": "603", "type": float64(1), "allow": "1024", "deny": "0"},
		},
	}, true)
	require.NoError(t, err)

	require.Len(t, ch.Overwrites, 1, "overwrite lists are never merged entry-wise")
	assert.Equal(t, snowflake.ID(603), ch.Overwrites[0].ID)
	assert.Equal(t, permissions.OverwriteMember, ch.Overwrites[0].Type)
}

func TestPatch_overwrite_overlap_normalized(t *testing.T) {
	g := newTestGuild(t, "500")

	ch, err := g.Channels.Add(Payload{
		"id": "801",
		"permission_overwrites": []any{
			map[string]any{"id": "601", "type": float64(0), "allow": "2048", "deny": "2048"},
		},
	}, true)
	require.NoError(t, err)

	require.Len(t, ch.Overwrites, 1)
	assert.Equal(t, uint64(0), ch.Overwrites[0].Allow, "deny wins an overlapping bit")
	assert.Equal(t, permissions.SendMessages, ch.Overwrites[0].Deny)
}

func TestPatch_member(t *testing.T) {
	g := newTestGuild(t, "500")

	until := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	m, err := g.Members.Add(Payload{
		"user":                         map[string]any{"id": "42", "username": "ada"},
		"nick":                         "boss",
		"roles":                        []any{"601", "602"},
		"joined_at":                    "2021-06-12T19:04:05Z",
		"communication_disabled_until": until.Format(time.RFC3339),
	}, true)
	require.NoError(t, err)

	require.NotNil(t, m.User)
	assert.Equal(t, "ada", m.User.Username)
	require.NotNil(t, m.Nick)
	assert.Equal(t, "boss", *m.Nick)
	assert.Equal(t, []snowflake.ID{601, 602}, m.RoleIDs)
	assert.True(t, m.Suspended())

	// Nick cleared by explicit null, restriction cleared the same way.
	_, err = g.Members.Add(Payload{
		"user":                         map[string]any{"id": "42"},
		"nick":                         nil,
		"communication_disabled_until": nil,
	}, true)
	require.NoError(t, err)
	assert.Nil(t, m.Nick)
	assert.False(t, m.Suspended())
	assert.Equal(t, []snowflake.ID{601, 602}, m.RoleIDs, "roles untouched when absent")
}

func TestPatch_member_without_user(t *testing.T) {
	g := newTestGuild(t, "500")
	_, err := g.Members.Add(Payload{"nick": "ghost"}, true)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestPatch_guild_snapshot_children(t *testing.T) {
	guilds := NewManager(0, func() *Guild { return newGuild(nil) })

	g, err := guilds.Add(Payload{
		"id":       "500",
		"name":     "snapshotted",
		"owner_id": "42",
		"roles": []any{
			map[string]any{"id": "500", "name": "@everyone", "permissions": "1024"},
			map[string]any{"id": "601", "name": "mods", "position": float64(1)},
		},
		"channels": []any{
			map[string]any{"id": "801", "name": "general", "type": float64(0)},
		},
		"members": []any{
			map[string]any{"user": map[string]any{"id": "42", "username": "ada"}},
		},
	}, true)
	require.NoError(t, err)

	assert.Equal(t, 2, g.Roles.Len())
	assert.Equal(t, 1, g.Channels.Len())
	assert.Equal(t, 1, g.Members.Len())

	everyone := g.EveryoneRole()
	require.NotNil(t, everyone)
	assert.True(t, everyone.IsEveryone())
}
