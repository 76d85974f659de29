package repository

import (
	"encoding/json"
	"fmt"

	"github.com/MHostile/root-automated-setup/internal/setup"
	"github.com/klauspost/compress/zstd"
)

// Shared coders for EncodeAll/DecodeAll; both are safe for concurrent use.
var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

// Encode serialises state into a storage blob
func Encode(state *setup.State) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return encoder.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

// Decode restores a state from a blob written by Encode
func Decode(blob []byte) (*setup.State, error) {
	data, err := decoder.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress state: %w", err)
	}
	var state setup.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &state, nil
}
