package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInt16Frames(t *testing.T) {
	stereo := int16Frames([]int16{16384, -16384, 0, 32767}, 2)
	assert.Equal(t, [][2]float64{{0.5, -0.5}, {0, 32767.0 / 32768.0}}, stereo)

	mono := int16Frames([]int16{-32768, 16384}, 1)
	assert.Equal(t, [][2]float64{{-1, -1}, {0.5, 0.5}}, mono)

	// A trailing partial frame is dropped; extra channels are ignored.
	assert.Len(t, int16Frames([]int16{1, 2, 3, 4, 5}, 3), 1)
	assert.Nil(t, int16Frames([]int16{1}, 0))
}

func TestPCM16Frames(t *testing.T) {
	// 0x4000 = 16384, 0xC000 = -16384, little-endian.
	frames := pcm16Frames([]byte{0x00, 0x40, 0x00, 0xC0}, 2)
	assert.Equal(t, [][2]float64{{0.5, -0.5}}, frames)

	mono := pcm16Frames([]byte{0x00, 0xC0, 0x00, 0x40}, 1)
	assert.Equal(t, [][2]float64{{-0.5, -0.5}, {0.5, 0.5}}, mono)
}

func TestPCM24Frames(t *testing.T) {
	// 0x400000 = 2^22 (0.5), 0xC00000 sign-extends to -2^22.
	frames := pcm24Frames([]byte{0x00, 0x00, 0x40, 0x00, 0x00, 0xC0}, 2)
	assert.Equal(t, [][2]float64{{0.5, -0.5}}, frames)

	mono := pcm24Frames([]byte{0xFF, 0xFF, 0xFF}, 1)
	assert.Equal(t, [][2]float64{{-1.0 / 8388608.0, -1.0 / 8388608.0}}, mono)
}
