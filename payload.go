package concord

import (
	"time"

	"github.com/concordchat/concord.go/pkg/snowflake"
)

// Payload is one decoded wire object. Both gateway events and REST
// snapshots arrive in this shape, and both flow through the same patch
// methods.
//
// Field presence is the contract that makes partial updates work: a key
// absent from the map asserts nothing about that field, while a key
// present with a nil value is an explicit clear. Every accessor returns
// (value, ok) where ok means the key was present and decodable; a
// present nil yields the zero value with ok set.
type Payload map[string]any

// Has reports whether the key appeared in the wire object.
func (p Payload) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Snowflake reads an identifier field. The wire form is a decimal
// string; integer forms are accepted for CBOR and test fixtures.
func (p Payload) Snowflake(key string) (snowflake.ID, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	return coerceID(v)
}

func coerceID(v any) (snowflake.ID, bool) {
	switch x := v.(type) {
	case nil:
		return 0, true
	case string:
		id, err := snowflake.Parse(x)
		if err != nil {
			return 0, false
		}
		return id, true
	case uint64:
		return snowflake.ID(x), true
	case int64:
		if x < 0 {
			return 0, false
		}
		return snowflake.ID(x), true
	case int:
		if x < 0 {
			return 0, false
		}
		return snowflake.ID(x), true
	case float64:
		// JSON numbers. Tolerated for small fixture IDs only; real IDs
		// are strings precisely because float64 cannot hold them.
		if x < 0 {
			return 0, false
		}
		return snowflake.ID(x), true
	}
	return 0, false
}

// String reads a string field.
func (p Payload) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	if v == nil {
		return "", true
	}
	s, ok := v.(string)
	return s, ok
}

// Bool reads a boolean field.
func (p Payload) Bool(key string) (bool, bool) {
	v, ok := p[key]
	if !ok {
		return false, false
	}
	if v == nil {
		return false, true
	}
	b, ok := v.(bool)
	return b, ok
}

// Int reads an integer field regardless of which numeric type the codec
// produced.
func (p Payload) Int(key string) (int, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case nil:
		return 0, true
	case int:
		return x, true
	case int64:
		return int(x), true
	case uint64:
		return int(x), true
	case float64:
		return int(x), true
	}
	return 0, false
}

// Uint64 reads a wide unsigned field such as a permission bit set. The
// wire form is a decimal string; integer forms are accepted as well.
func (p Payload) Uint64(key string) (uint64, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case nil:
		return 0, true
	case string:
		id, err := snowflake.Parse(x)
		if err != nil {
			return 0, false
		}
		return uint64(id), true
	case uint64:
		return x, true
	case int64:
		if x < 0 {
			return 0, false
		}
		return uint64(x), true
	case int:
		if x < 0 {
			return 0, false
		}
		return uint64(x), true
	case float64:
		if x < 0 {
			return 0, false
		}
		return uint64(x), true
	}
	return 0, false
}

// Time reads an RFC 3339 timestamp field. A present nil reports
// (zero, true), which patch methods use to clear optional timestamps.
func (p Payload) Time(key string) (time.Time, bool) {
	v, ok := p[key]
	if !ok {
		return time.Time{}, false
	}
	switch x := v.(type) {
	case nil:
		return time.Time{}, true
	case string:
		t, err := time.Parse(time.RFC3339, x)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	case time.Time:
		return x, true
	}
	return time.Time{}, false
}

// List reads an array field.
func (p Payload) List(key string) ([]any, bool) {
	v, ok := p[key]
	if !ok {
		return nil, false
	}
	if v == nil {
		return nil, true
	}
	l, ok := v.([]any)
	return l, ok
}

// Object reads a nested object field.
func (p Payload) Object(key string) (Payload, bool) {
	v, ok := p[key]
	if !ok {
		return nil, false
	}
	switch x := v.(type) {
	case nil:
		return nil, true
	case map[string]any:
		return Payload(x), true
	case Payload:
		return x, true
	}
	return nil, false
}

// Snowflakes reads an array of identifiers, skipping entries that do
// not parse.
func (p Payload) Snowflakes(key string) ([]snowflake.ID, bool) {
	l, ok := p.List(key)
	if !ok {
		return nil, false
	}
	ids := make([]snowflake.ID, 0, len(l))
	for _, v := range l {
		if id, ok := coerceID(v); ok && id != 0 {
			ids = append(ids, id)
		}
	}
	return ids, true
}
