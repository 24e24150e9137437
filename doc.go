// The [concord] package is the Go client state layer for the Concord
// chat service: authoritative state lives on the service and is pushed
// to the client as a stream of field-partial update events, which this
// package merges into long-lived, identity-stable entity objects.
//
// # State model
//
// Every entity is keyed by a [pkg/snowflake.ID], a 64-bit unsigned
// identifier embedding its creation timestamp. A [Manager] holds the
// entities of one kind under one owning scope; re-observing a known
// identity patches the cached instance in place, so any handle obtained
// earlier sees the update. Updates are presence-based: a field absent
// from a payload asserts nothing, a field present replaces the prior
// value, and composite fields are replaced wholesale.
//
// Gateway events and REST snapshots flow through the same patch path
// and therefore share one set of invariants.
//
// # Permissions
//
// [Guild.BasePermissions] and [Channel.PermissionsFor] resolve a
// member's effective capability set from role grants and channel
// overwrites. Results are frozen [pkg/permissions.Bitfield] values,
// recomputed from current state on every call.
//
// # Collaborators
//
// [pkg/gateway] maintains the WebSocket push connection and delivers
// raw events in arrival order. [REST] fetches snapshots over HTTP.
// [Client.Dispatch] is the single synchronous entry point both feed;
// the state layer itself performs no I/O and never suspends.
package concord
