package session

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// jsonCodec lets connect carry plain Go structs as application/json.
type jsonCodec struct{}

var _ connect.Codec = jsonCodec{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// WithJSONCodec configures a connect client or handler for this service's messages.
func WithJSONCodec() connect.Option {
	return connect.WithCodec(jsonCodec{})
}
