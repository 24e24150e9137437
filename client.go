package concord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid"

	"github.com/concordchat/concord.go/pkg/gateway"
	"github.com/concordchat/concord.go/pkg/logger"
	"github.com/concordchat/concord.go/pkg/snowflake"
)

// Config configures a Client. Zero values fall back to sane defaults.
type Config struct {
	// Token authenticates both the REST API and the gateway.
	Token string
	// APIURL is the REST base URL, e.g. "https://api.concord.chat/v1".
	APIURL string
	// GatewayURL is the push endpoint, e.g. "wss://gateway.concord.chat".
	GatewayURL string
	// Codec selects the gateway wire encoding; JSON when nil.
	Codec gateway.WireCodec
	// Logger defaults to a discard logger.
	Logger logger.Logger

	// MessageTTL bounds how long messages stay cached. Default 10m.
	MessageTTL time.Duration
	// MessageCapacity bounds how many messages stay cached. Default 1024.
	MessageCapacity uint64
}

// Handler observes a dispatched event after the state layer has merged
// it, so entities resolved from the caches already reflect the update.
type Handler func(c *Client, ev gateway.Event)

// Client is the top-level owner of all client-side state. The gateway
// and REST collaborators feed it; Dispatch is the single synchronous
// entry point every update goes through.
type Client struct {
	Guilds   *Manager[*Guild]
	Users    *Manager[*User]
	Messages *MessageCache

	rest    *REST
	gateway *gateway.Conn
	logger  logger.Logger

	handlersLock sync.RWMutex
	handlers     map[string]map[uuid.UUID]Handler
}

// New builds a Client from the config.
func New(cfg Config) *Client {
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}
	ttl := cfg.MessageTTL
	if ttl == 0 {
		ttl = 10 * time.Minute
	}
	capacity := cfg.MessageCapacity
	if capacity == 0 {
		capacity = 1024
	}

	c := &Client{
		Messages: NewMessageCache(ttl, capacity, log),
		rest:     NewREST(cfg.APIURL, cfg.Token, log),
		logger:   log,
		handlers: make(map[string]map[uuid.UUID]Handler),
	}
	c.Guilds = NewManager(0, func() *Guild { return newGuild(c) })
	c.Users = NewManager(0, func() *User { return &User{} })
	c.gateway = gateway.New(gateway.Params{
		URL:    cfg.GatewayURL,
		Token:  cfg.Token,
		Codec:  cfg.Codec,
		Logger: log,
	})
	return c
}

// On registers a handler for an event type ("*" matches everything) and
// returns a handle for Off.
func (c *Client) On(eventType string, h Handler) uuid.UUID {
	id := uuid.Must(uuid.NewV4())

	c.handlersLock.Lock()
	defer c.handlersLock.Unlock()
	if c.handlers[eventType] == nil {
		c.handlers[eventType] = make(map[uuid.UUID]Handler)
	}
	c.handlers[eventType][id] = h
	return id
}

// Off removes a handler registered with On.
func (c *Client) Off(eventType string, id uuid.UUID) {
	c.handlersLock.Lock()
	defer c.handlersLock.Unlock()
	delete(c.handlers[eventType], id)
}

// Run connects the gateway and pumps its events through Dispatch until
// the context ends or the connection dies.
func (c *Client) Run(ctx context.Context) error {
	if err := c.gateway.Connect(ctx); err != nil {
		return err
	}
	defer c.gateway.Close(context.Background())

	for {
		select {
		case ev, ok := <-c.gateway.Events():
			if !ok {
				return c.gateway.Err()
			}
			if err := c.Dispatch(ev); err != nil {
				c.logger.Error("dispatch failed", "type", ev.Type, "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Dispatch merges one event into the caches and then fires handlers.
// It is the synchronous single-writer entry point: callers must not
// invoke it concurrently for the same entity identity.
func (c *Client) Dispatch(ev gateway.Event) error {
	if err := c.apply(ev); err != nil {
		return err
	}
	c.fire(ev)
	return nil
}

func (c *Client) apply(ev gateway.Event) error {
	p := Payload(ev.Data)

	switch ev.Type {
	case "GUILD_CREATE", "GUILD_UPDATE":
		_, err := c.Guilds.Add(p, true)
		return err

	case "GUILD_DELETE":
		// Cascading removal: the guild object owns its child caches, so
		// dropping the guild drops roles, channels and members with it.
		c.Guilds.Remove(ev.GuildID)
		return nil

	case "GUILD_ROLE_CREATE", "GUILD_ROLE_UPDATE":
		g, ok := c.Guilds.Get(ev.GuildID)
		if !ok {
			return c.unknownGuild(ev)
		}
		role, ok := p.Object("role")
		if !ok || role == nil {
			return fmt.Errorf("%w: %s without role object", ErrMalformedPayload, ev.Type)
		}
		_, err := g.Roles.Add(role, true)
		return err

	case "GUILD_ROLE_DELETE":
		g, ok := c.Guilds.Get(ev.GuildID)
		if !ok {
			return c.unknownGuild(ev)
		}
		if id, ok := p.Snowflake("role_id"); ok {
			g.Roles.Remove(id)
		}
		return nil

	case "CHANNEL_CREATE", "CHANNEL_UPDATE":
		g, ok := c.Guilds.Get(ev.GuildID)
		if !ok {
			return c.unknownGuild(ev)
		}
		_, err := g.Channels.Add(p, true)
		return err

	case "CHANNEL_DELETE":
		g, ok := c.Guilds.Get(ev.GuildID)
		if !ok {
			return c.unknownGuild(ev)
		}
		if id, ok := p.Snowflake("id"); ok {
			g.Channels.Remove(id)
		}
		return nil

	case "GUILD_MEMBER_ADD", "GUILD_MEMBER_UPDATE":
		g, ok := c.Guilds.Get(ev.GuildID)
		if !ok {
			return c.unknownGuild(ev)
		}
		_, err := g.Members.Add(p, true)
		return err

	case "GUILD_MEMBER_REMOVE":
		g, ok := c.Guilds.Get(ev.GuildID)
		if !ok {
			return c.unknownGuild(ev)
		}
		if user, ok := p.Object("user"); ok && user != nil {
			if id, ok := user.Snowflake("id"); ok {
				g.Members.Remove(id)
			}
		}
		return nil

	case "MESSAGE_CREATE", "MESSAGE_UPDATE":
		if author, ok := p.Object("author"); ok && author != nil {
			if _, err := c.Users.Add(author, true); err != nil {
				return err
			}
		}
		msg, err := c.Messages.Add(p)
		if err != nil {
			return err
		}
		// Keep the owning channel's last-message pointer current.
		if g, ok := c.Guilds.Get(ev.GuildID); ok && ev.Type == "MESSAGE_CREATE" {
			if ch, ok := g.Channels.Get(msg.ChannelID); ok {
				id := msg.ID
				ch.LastMessageID = &id
			}
		}
		return nil

	case "MESSAGE_DELETE":
		if id, ok := p.Snowflake("id"); ok {
			c.Messages.Remove(id)
		}
		return nil
	}

	c.logger.Debug("unhandled event type", "type", ev.Type)
	return nil
}

func (c *Client) unknownGuild(ev gateway.Event) error {
	c.logger.Warn("event for uncached guild dropped", "type", ev.Type, "guild_id", ev.GuildID.String())
	return nil
}

func (c *Client) fire(ev gateway.Event) {
	c.handlersLock.RLock()
	matched := make([]Handler, 0, 4)
	for _, h := range c.handlers[ev.Type] {
		matched = append(matched, h)
	}
	for _, h := range c.handlers["*"] {
		matched = append(matched, h)
	}
	c.handlersLock.RUnlock()

	for _, h := range matched {
		h(c, ev)
	}
}

// FetchGuild pulls a guild snapshot over REST and merges it into the
// cache through the regular patch path.
func (c *Client) FetchGuild(ctx context.Context, id snowflake.ID) (*Guild, error) {
	p, err := c.rest.Guild(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.Guilds.Add(p, true)
}

// FetchGuildChannels pulls the guild's channel list and merges each
// entry into the guild's channel cache.
func (c *Client) FetchGuildChannels(ctx context.Context, id snowflake.ID) ([]*Channel, error) {
	g, ok := c.Guilds.Get(id)
	if !ok {
		if g, _ = c.FetchGuild(ctx, id); g == nil {
			return nil, fmt.Errorf("fetch channels: unknown guild %s", id)
		}
	}
	payloads, err := c.rest.GuildChannels(ctx, id)
	if err != nil {
		return nil, err
	}
	channels := make([]*Channel, 0, len(payloads))
	for _, p := range payloads {
		ch, err := g.Channels.Add(p, true)
		if err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, nil
}

// FetchMember pulls one member snapshot into the guild's member cache.
func (c *Client) FetchMember(ctx context.Context, guildID, userID snowflake.ID) (*Member, error) {
	g, ok := c.Guilds.Get(guildID)
	if !ok {
		return nil, fmt.Errorf("fetch member: unknown guild %s", guildID)
	}
	p, err := c.rest.GuildMember(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	return g.Members.Add(p, true)
}

// FetchChannelMessages pulls recent messages into the message cache.
func (c *Client) FetchChannelMessages(ctx context.Context, channelID snowflake.ID, limit int) ([]*Message, error) {
	payloads, err := c.rest.ChannelMessages(ctx, channelID, limit)
	if err != nil {
		return nil, err
	}
	messages := make([]*Message, 0, len(payloads))
	for _, p := range payloads {
		msg, err := c.Messages.Add(p)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// REST exposes the underlying fetch collaborator for requests the
// convenience methods do not cover.
func (c *Client) REST() *REST { return c.rest }
