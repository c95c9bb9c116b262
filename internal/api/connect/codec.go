package connect

import (
	"github.com/goccy/go-json"
)

// jsonCodec encodes plain Go messages as JSON.
// It is registered under "json" and replaces the default protobuf JSON codec.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	return json.Unmarshal(data, msg)
}
