package concord

import (
	"context"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/concordchat/concord.go/pkg/logger"
	"github.com/concordchat/concord.go/pkg/snowflake"
)

// Message is a single chat message. Messages churn far faster than the
// other entity kinds, so they live in a TTL- and capacity-bounded cache
// instead of a Manager.
type Message struct {
	ID        snowflake.ID
	ChannelID snowflake.ID
	GuildID   snowflake.ID
	AuthorID  snowflake.ID
	Content   string
	Timestamp time.Time

	// EditedTimestamp stays nil until the first edit.
	EditedTimestamp *time.Time
}

func (m *Message) EntityID() snowflake.ID { return m.ID }

func (m *Message) CreatedAt() time.Time { return m.ID.Time() }

func (m *Message) Patch(p Payload) error {
	if m.ID == 0 {
		id, ok := p.Snowflake("id")
		if !ok || id == 0 {
			return fmt.Errorf("%w: message without id", ErrMalformedPayload)
		}
		m.ID = id
	}
	if v, ok := p.Snowflake("channel_id"); ok {
		m.ChannelID = v
	}
	if v, ok := p.Snowflake("guild_id"); ok {
		m.GuildID = v
	}
	if author, ok := p.Object("author"); ok && author != nil {
		if v, ok := author.Snowflake("id"); ok {
			m.AuthorID = v
		}
	}
	if v, ok := p.String("content"); ok {
		m.Content = v
	}
	if v, ok := p.Time("timestamp"); ok {
		m.Timestamp = v
	}
	if p.Has("edited_timestamp") {
		if v, ok := p.Time("edited_timestamp"); ok && !v.IsZero() {
			m.EditedTimestamp = &v
		} else {
			m.EditedTimestamp = nil
		}
	}
	return nil
}

// MessageCache holds recent messages, evicting by age and capacity.
// Like a Manager it patches a known identity in place, so handles stay
// reference-stable until eviction.
type MessageCache struct {
	cache *ttlcache.Cache[snowflake.ID, *Message]
	log   logger.Logger
}

// NewMessageCache builds a cache keeping at most capacity messages for
// at most ttl each. Evictions are logged at debug level.
func NewMessageCache(ttl time.Duration, capacity uint64, log logger.Logger) *MessageCache {
	if log == nil {
		log = logger.Discard()
	}
	mc := &MessageCache{
		cache: ttlcache.New[snowflake.ID, *Message](
			ttlcache.WithTTL[snowflake.ID, *Message](ttl),
			ttlcache.WithCapacity[snowflake.ID, *Message](capacity),
		),
		log: log,
	}
	mc.cache.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[snowflake.ID, *Message]) {
		mc.log.Debug("message evicted", "id", item.Key().String(), "reason", int(reason))
	})
	return mc
}

// Add merges a message payload, patching the cached instance in place
// when the identity is already known.
func (mc *MessageCache) Add(p Payload) (*Message, error) {
	id, ok := p.Snowflake("id")
	if !ok || id == 0 {
		return nil, fmt.Errorf("%w: missing identity field", ErrMalformedPayload)
	}

	if item := mc.cache.Get(id); item != nil {
		msg := item.Value()
		if err := msg.Patch(p); err != nil {
			return nil, err
		}
		return msg, nil
	}

	msg := &Message{}
	if err := msg.Patch(p); err != nil {
		return nil, err
	}
	mc.cache.Set(id, msg, ttlcache.DefaultTTL)
	return msg, nil
}

// Get returns the cached message, refreshing its TTL.
func (mc *MessageCache) Get(id snowflake.ID) (*Message, bool) {
	item := mc.cache.Get(id)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// Remove drops the message from the cache.
func (mc *MessageCache) Remove(id snowflake.ID) {
	mc.cache.Delete(id)
}

// Sweep evicts every expired entry now. The embedding application
// decides when to trigger it; Start runs the cache's own periodic
// cleanup instead.
func (mc *MessageCache) Sweep() {
	mc.cache.DeleteExpired()
}

// Start runs the periodic cleanup loop until Stop is called.
func (mc *MessageCache) Start() { go mc.cache.Start() }

// Stop halts the periodic cleanup loop.
func (mc *MessageCache) Stop() { mc.cache.Stop() }

// Len reports the number of cached messages.
func (mc *MessageCache) Len() int { return mc.cache.Len() }
