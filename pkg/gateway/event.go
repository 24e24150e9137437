package gateway

import (
	"github.com/concordchat/concord.go/pkg/snowflake"
)

// Opcode identifies a gateway frame kind.
type Opcode int

const (
	OpDispatch     Opcode = 0
	OpHeartbeat    Opcode = 1
	OpIdentify     Opcode = 2
	OpHello        Opcode = 10
	OpHeartbeatACK Opcode = 11
)

// frame is the wire envelope every gateway message travels in.
type frame struct {
	Op   Opcode         `json:"op" cbor:"op"`
	Seq  int64          `json:"s,omitempty" cbor:"s,omitempty"`
	Type string         `json:"t,omitempty" cbor:"t,omitempty"`
	Data map[string]any `json:"d,omitempty" cbor:"d,omitempty"`
}

// Event is one dispatched state update: a field-partial payload tagged
// with its entity kind (Type) and owning scope. Events are delivered in
// arrival order, never coalesced.
type Event struct {
	// Seq is the service-assigned dispatch sequence number.
	Seq int64
	// Type names the update, e.g. "GUILD_ROLE_UPDATE".
	Type string
	// GuildID is the owning scope, zero for scope-less events.
	GuildID snowflake.ID
	// Data is the raw partial payload.
	Data map[string]any
}

// eventFromFrame tags the dispatch with its owning scope. Most events
// carry an explicit guild_id; the guild lifecycle events are the guild
// payload itself, so the scope is its id.
func eventFromFrame(f frame) Event {
	ev := Event{Seq: f.Seq, Type: f.Type, Data: f.Data}

	if id, ok := payloadID(f.Data, "guild_id"); ok {
		ev.GuildID = id
		return ev
	}
	switch f.Type {
	case "GUILD_CREATE", "GUILD_UPDATE", "GUILD_DELETE":
		if id, ok := payloadID(f.Data, "id"); ok {
			ev.GuildID = id
		}
	}
	return ev
}

func payloadID(data map[string]any, key string) (snowflake.ID, bool) {
	v, ok := data[key]
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case string:
		id, err := snowflake.Parse(x)
		if err != nil {
			return 0, false
		}
		return id, true
	case uint64:
		return snowflake.ID(x), true
	case int64:
		return snowflake.ID(x), true
	case float64:
		return snowflake.ID(x), true
	}
	return 0, false
}
