package concord

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concordchat/concord.go/pkg/snowflake"
)

func TestMessageCache_patch_in_place(t *testing.T) {
	mc := NewMessageCache(time.Minute, 16, nil)

	msg, err := mc.Add(Payload{
		"id":         "9001",
		"channel_id": "801",
		"author":     map[string]any{"id": "42"},
		"content":    "hello",
		"timestamp":  "2021-06-12T19:04:05Z",
	})
	require.NoError(t, err)
	assert.Nil(t, msg.EditedTimestamp)

	edited, err := mc.Add(Payload{
		"id":               "9001",
		"content":          "hello, edited",
		"edited_timestamp": "2021-06-12T19:05:00Z",
	})
	require.NoError(t, err)

	assert.Same(t, msg, edited, "updates patch the cached instance")
	assert.Equal(t, "hello, edited", msg.Content)
	require.NotNil(t, msg.EditedTimestamp)
	assert.Equal(t, snowflake.ID(801), msg.ChannelID, "absent field preserved")
	assert.Equal(t, snowflake.ID(42), msg.AuthorID)
}

func TestMessageCache_missing_id(t *testing.T) {
	mc := NewMessageCache(time.Minute, 16, nil)
	_, err := mc.Add(Payload{"content": "orphan"})
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestMessageCache_remove(t *testing.T) {
	mc := NewMessageCache(time.Minute, 16, nil)

	msg, err := mc.Add(Payload{"id": "9001", "content": "hello"})
	require.NoError(t, err)

	mc.Remove(9001)
	_, ok := mc.Get(9001)
	assert.False(t, ok)

	// The detached handle keeps its last known state.
	assert.Equal(t, "hello", msg.Content)
}

func TestMessageCache_capacity_bound(t *testing.T) {
	mc := NewMessageCache(time.Hour, 2, nil)

	for _, id := range []string{"1", "2", "3"} {
		_, err := mc.Add(Payload{"id": id})
		require.NoError(t, err)
	}

	assert.Equal(t, 2, mc.Len(), "capacity bound evicts the oldest entry")
	_, ok := mc.Get(3)
	assert.True(t, ok)
}

func TestMessageCache_sweep_expired(t *testing.T) {
	mc := NewMessageCache(time.Millisecond, 16, nil)

	_, err := mc.Add(Payload{"id": "9001"})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	mc.Sweep()
	assert.Equal(t, 0, mc.Len())
}
