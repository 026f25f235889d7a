package mplus

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFaderMoved(t *testing.T) {
	tests := []struct {
		name     string
		raw      []byte
		index    int
		position float64
	}{
		{"fader 0 bottom", []byte{0xe0, 0x00, 0x00}, 0, 0},
		{"fader 0 top", []byte{0xe0, 0x7f, 0x7f}, 0, 1},
		{"fader 3 middle", []byte{0xe3, 0x00, 0x40}, 3, 8192.0 / max14Bit},
		{"master fader", []byte{0xe8, 0x01, 0x00}, 8, 1.0 / max14Bit},
	}

	var c codec
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := c.Decode(tt.raw)
			require.True(t, ok)
			moved, ok := ev.(FaderMoved)
			require.True(t, ok)
			assert.Equal(t, tt.index, moved.Index)
			assert.InDelta(t, tt.position, moved.Position, 1e-9)
		})
	}
}

func TestDecodeButtonChanged(t *testing.T) {
	var c codec

	ev, ok := c.Decode([]byte{0x90, 24, 127})
	require.True(t, ok)
	assert.Equal(t, ButtonChanged{Index: 24, Pressed: true}, ev)

	ev, ok = c.Decode([]byte{0x90, 24, 0})
	require.True(t, ok)
	assert.Equal(t, ButtonChanged{Index: 24, Pressed: false}, ev)
}

func TestDecodeEncoderTurned(t *testing.T) {
	var c codec

	ev, ok := c.Decode([]byte{0xb0, 16, 3})
	require.True(t, ok)
	assert.Equal(t, EncoderTurned{Index: 16, Value: 3}, ev)
}

func TestDecodeUnrecognized(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"empty", nil},
		{"short", []byte{0x90, 24}},
		{"long", []byte{0x90, 24, 127, 0}},
		{"note off", []byte{0x80, 24, 0}},
		{"pitch bend past faders", []byte{0xe9, 0x00, 0x00}},
		{"system", []byte{0xf8, 0x00, 0x00}},
	}

	var c codec
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := c.Decode(tt.raw)
			assert.False(t, ok)
		})
	}
}

func TestEncodeFader(t *testing.T) {
	var c codec

	assert.Equal(t, []byte{0xe0, 0x00, 0x00}, c.Encode(SetFaderPosition{Index: 0, Position: 0}))
	assert.Equal(t, []byte{0xe5, 0x7f, 0x7f}, c.Encode(SetFaderPosition{Index: 5, Position: 1}))

	// 0.5 * 16383 = 8191.5: ties round away from zero, to 8192.
	assert.Equal(t, []byte{0xe0, 0x00, 0x40}, c.Encode(SetFaderPosition{Index: 0, Position: 0.5}))
}

func TestEncodeButtonLight(t *testing.T) {
	var c codec

	assert.Equal(t, []byte{0x90, 10, 127}, c.Encode(SetButtonLight{Index: 10, On: true}))
	assert.Equal(t, []byte{0x90, 10, 0}, c.Encode(SetButtonLight{Index: 10, On: false}))
}

func TestFaderRoundTrip(t *testing.T) {
	var c codec
	const step = 1.0 / max14Bit

	for _, p := range []float64{0, 0.1, 0.25, 1.0 / 3, 0.5, 0.7, 0.999, 1} {
		raw := c.Encode(SetFaderPosition{Index: 2, Position: p})
		ev, ok := c.Decode(raw)
		require.True(t, ok, "position %v", p)
		moved := ev.(FaderMoved)
		assert.Equal(t, 2, moved.Index)
		assert.LessOrEqual(t, math.Abs(moved.Position-p), step, "position %v", p)
	}
}

func TestEncoderMapping(t *testing.T) {
	tests := []struct {
		value     uint8
		direction int
		magnitude uint8
	}{
		{1, 1, 1},
		{3, 1, 3},
		{7, 1, 7},
		{65, -1, 1},
		{68, -1, 4},
		{71, -1, 7},
		{0, 0, 0},
		{64, 0, 0},
		{127, 0, 0},
	}

	for _, tt := range tests {
		e := EncoderTurned{Index: 16, Value: tt.value}
		assert.Equal(t, tt.direction, e.Direction(), "value %d", tt.value)
		assert.Equal(t, tt.magnitude, e.Magnitude(), "value %d", tt.value)
	}
}
