// Package snapshot defines the immutable per-frame view of a round that is
// handed to spectators, renderers and the results store.
package snapshot

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrEmptyFrame is returned when decoding zero bytes.
var ErrEmptyFrame = errors.New("snapshot: empty frame")

// Agent is one agent's visible state.
type Agent struct {
	ID     uint64  `msgpack:"id"`
	Kind   string  `msgpack:"k"`
	X      float64 `msgpack:"x"`
	Y      float64 `msgpack:"y"`
	Radius float64 `msgpack:"r"`
	Marker uint32  `msgpack:"m"` // 0xRRGGBBAA
}

// Wall is one obstacle tile.
type Wall struct {
	Material string  `msgpack:"mat"`
	MinX     float64 `msgpack:"x0"`
	MinY     float64 `msgpack:"y0"`
	MaxX     float64 `msgpack:"x1"`
	MaxY     float64 `msgpack:"y1"`
}

// Frame is the state of a round after one simulation step.
type Frame struct {
	RoundID string  `msgpack:"round"`
	Level   string  `msgpack:"level"`
	Frame   uint64  `msgpack:"frame"`
	Status  string  `msgpack:"status"`
	Outcome string  `msgpack:"outcome"`
	Humans  int     `msgpack:"humans"`
	Zombies int     `msgpack:"zombies"`
	Agents  []Agent `msgpack:"agents"`
	Walls   []Wall  `msgpack:"walls,omitempty"`
	// World is the current root region of the spatial index.
	World [4]float64 `msgpack:"world"`
}

// Encode serialises f with msgpack.
func Encode(f *Frame) ([]byte, error) {
	b, err := msgpack.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode frame %d: %w", f.Frame, err)
	}
	return b, nil
}

// Decode parses a frame produced by Encode.
func Decode(b []byte) (*Frame, error) {
	if len(b) == 0 {
		return nil, ErrEmptyFrame
	}
	var f Frame
	if err := msgpack.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return &f, nil
}

// PackColor packs RGBA components into 0xRRGGBBAA.
func PackColor(r, g, b, a uint8) uint32 {
	return uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | uint32(a)
}

// UnpackColor is the inverse of PackColor.
func UnpackColor(c uint32) (r, g, b, a uint8) {
	return uint8(c >> 24), uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Count returns how many agents of kind the frame holds.
func (f *Frame) Count(kind string) int {
	n := 0
	for _, a := range f.Agents {
		if a.Kind == kind {
			n++
		}
	}
	return n
}
