// Package snowflake implements the Concord identifier format: a 64-bit
// unsigned integer whose high 42 bits embed the creation timestamp in
// milliseconds since the Concord epoch.
//
// IDs travel as decimal strings on the wire because they routinely exceed
// the range a 64-bit float can represent exactly. They must always be
// compared and sorted as full-width unsigned integers.
package snowflake

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Epoch is the Concord epoch, 2015-01-01T00:00:00Z, in milliseconds
// since the Unix epoch.
const Epoch int64 = 1420070400000

const timestampShift = 22

// ID is a Concord snowflake. The zero value means "unset".
type ID uint64

// Parse converts the wire (decimal string) form of an ID.
func Parse(s string) (ID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("snowflake: parse %q: %w", s, err)
	}
	return ID(v), nil
}

// FromTime returns the smallest ID whose embedded timestamp is t.
// Useful as an exclusive lower bound when filtering by creation time.
func FromTime(t time.Time) ID {
	ms := t.UnixMilli() - Epoch
	if ms < 0 {
		ms = 0
	}
	return ID(uint64(ms) << timestampShift)
}

// Time returns the creation timestamp embedded in the ID.
func (id ID) Time() time.Time {
	ms := int64(uint64(id)>>timestampShift) + Epoch
	return time.UnixMilli(ms).UTC()
}

// IsZero reports whether the ID is unset.
func (id ID) IsZero() bool { return id == 0 }

func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// MarshalJSON emits the ID as a decimal string, never as a JSON number.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON accepts either the canonical string form or, for
// tolerance with hand-written fixtures, a bare integer.
func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := Parse(s)
		if err != nil {
			return err
		}
		*id = v
		return nil
	}
	var v uint64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*id = ID(v)
	return nil
}

// Compare orders two IDs as unsigned integers: -1 if id < other,
// 0 if equal, 1 otherwise.
func (id ID) Compare(other ID) int {
	switch {
	case id < other:
		return -1
	case id > other:
		return 1
	default:
		return 0
	}
}
