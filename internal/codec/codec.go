// Package codec abstracts the wire encoding used between the client and
// the Concord service. The gateway negotiates either JSON (the default)
// or CBOR; both sides of the abstraction decode objects into
// map[string]any so that field presence stays an explicit map-key check.
package codec

type Marshaler interface {
	Marshal(v any) ([]byte, error)
}

type Unmarshaler interface {
	Unmarshal(data []byte, dst any) error
}

// Codec is the pair most call sites want.
type Codec interface {
	Marshaler
	Unmarshaler
}
