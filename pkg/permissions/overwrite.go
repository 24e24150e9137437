package permissions

import (
	"github.com/concordchat/concord.go/pkg/snowflake"
)

// OverwriteType distinguishes the subject of an Overwrite.
type OverwriteType int

const (
	// OverwriteRole targets a role; the guild-wide "everyone" overwrite
	// is a role overwrite whose ID equals the guild ID.
	OverwriteRole OverwriteType = iota
	// OverwriteMember targets a single member.
	OverwriteMember
)

// Overwrite is a per-subject allow/deny pair attached to a channel.
// Overwrite lists are replaced wholesale on patch; individual entries
// are never merged.
type Overwrite struct {
	ID    snowflake.ID
	Type  OverwriteType
	Allow uint64
	Deny  uint64
}

// Normalize enforces the deny-wins rule: a bit set in both Allow and
// Deny is kept only in Deny. The service should never emit overlapping
// pairs, but resolution must not depend on that.
func (o Overwrite) Normalize() Overwrite {
	o.Allow &^= o.Deny
	return o
}
