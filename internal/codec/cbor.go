package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// CBOR is the compact wire codec. Maps decode into map[string]any, not
// map[any]any, so payloads look identical to JSON-decoded ones and the
// patch layer's presence checks work unchanged.
type CBOR struct {
	em cbor.EncMode
	dm cbor.DecMode
}

func NewCBOR() (*CBOR, error) {
	em, err := cbor.EncOptions{}.EncMode()
	if err != nil {
		return nil, err
	}
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		return nil, err
	}
	return &CBOR{em: em, dm: dm}, nil
}

func (c *CBOR) Name() string { return "cbor" }

func (c *CBOR) Marshal(v any) ([]byte, error) {
	return c.em.Marshal(v)
}

func (c *CBOR) Unmarshal(data []byte, dst any) error {
	return c.dm.Unmarshal(data, dst)
}
