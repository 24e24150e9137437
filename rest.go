package concord

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/concordchat/concord.go/internal/codec"
	"github.com/concordchat/concord.go/internal/rand"
	"github.com/concordchat/concord.go/pkg/logger"
	"github.com/concordchat/concord.go/pkg/snowflake"
)

const requestIDLength = 16

// REST is the fetch collaborator: it pulls full snapshots from the
// Concord HTTP API and hands them to the caller as raw payloads. The
// client merges them through the exact same patch path as gateway
// events, so snapshot and incremental updates share one set of
// invariants.
type REST struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client

	codec  codec.Codec
	logger logger.Logger
}

// NewREST builds a REST client against the given API base URL.
func NewREST(baseURL, token string, log logger.Logger) *REST {
	if log == nil {
		log = logger.Discard()
	}
	return &REST{
		BaseURL:    baseURL,
		Token:      token,
		HTTPClient: &http.Client{},
		codec:      codec.JSON{},
		logger:     log,
	}
}

// Guild fetches one guild snapshot.
func (r *REST) Guild(ctx context.Context, id snowflake.ID) (Payload, error) {
	return r.getObject(ctx, fmt.Sprintf("/guilds/%s", id))
}

// GuildChannels fetches the guild's channel list.
func (r *REST) GuildChannels(ctx context.Context, id snowflake.ID) ([]Payload, error) {
	return r.getList(ctx, fmt.Sprintf("/guilds/%s/channels", id))
}

// GuildMember fetches one member snapshot.
func (r *REST) GuildMember(ctx context.Context, guildID, userID snowflake.ID) (Payload, error) {
	return r.getObject(ctx, fmt.Sprintf("/guilds/%s/members/%s", guildID, userID))
}

// ChannelMessages fetches up to limit recent messages for a channel.
func (r *REST) ChannelMessages(ctx context.Context, channelID snowflake.ID, limit int) ([]Payload, error) {
	return r.getList(ctx, fmt.Sprintf("/channels/%s/messages?limit=%d", channelID, limit))
}

func (r *REST) getObject(ctx context.Context, path string) (Payload, error) {
	body, err := r.get(ctx, path)
	if err != nil {
		return nil, err
	}
	var p Payload
	if err := r.codec.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("rest: decoding %s: %w", path, err)
	}
	return p, nil
}

func (r *REST) getList(ctx context.Context, path string) ([]Payload, error) {
	body, err := r.get(ctx, path)
	if err != nil {
		return nil, err
	}
	var raw []map[string]any
	if err := r.codec.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("rest: decoding %s: %w", path, err)
	}
	payloads := make([]Payload, len(raw))
	for i, obj := range raw {
		payloads[i] = Payload(obj)
	}
	return payloads, nil
}

func (r *REST) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bot "+r.Token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", rand.RequestID(requestIDLength))

	res, err := r.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rest: GET %s: %w", path, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("rest: reading %s: %w", path, err)
	}
	if res.StatusCode != http.StatusOK {
		r.logger.Warn("rest request failed", "path", path, "status", res.StatusCode)
		return nil, fmt.Errorf("rest: GET %s: status %d", path, res.StatusCode)
	}
	return body, nil
}
