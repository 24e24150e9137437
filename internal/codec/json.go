package codec

import "encoding/json"

// JSON is the default wire codec.
type JSON struct{}

// Name is the subprotocol identifier announced during the gateway
// handshake.
func (JSON) Name() string { return "json" }

func (JSON) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSON) Unmarshal(data []byte, dst any) error {
	return json.Unmarshal(data, dst)
}
