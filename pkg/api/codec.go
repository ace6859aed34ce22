// Package api defines the RPC messages of the invitation services and the
// Connect handler and client constructors for them.
//
// Messages are plain Go structs carried as JSON; JSONCodec replaces Connect's
// protobuf-JSON codec under the same "json" name, so any Connect client that
// speaks application/json can call the services.
package api

import "encoding/json"

// JSONCodec marshals messages with encoding/json.
type JSONCodec struct{}

// Name implements connect.Codec.
func (JSONCodec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (JSONCodec) Marshal(message any) ([]byte, error) {
	return json.Marshal(message)
}

// Unmarshal implements connect.Codec.
func (JSONCodec) Unmarshal(data []byte, message any) error {
	return json.Unmarshal(data, message)
}
