// ABOUTME: Tests for audio types
// ABOUTME: Tests sample conversion and PCM offset arithmetic
package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSampleFromInt16(t *testing.T) {
	tests := []struct {
		name     string
		input    int16
		expected int32
	}{
		{"zero", 0, 0},
		{"positive", 100, 100 << 8},
		{"negative", -100, -100 << 8},
		{"max", 32767, 32767 << 8},
		{"min", -32768, -32768 << 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SampleFromInt16(tt.input))
		})
	}
}

func TestSampleToInt16(t *testing.T) {
	tests := []struct {
		name     string
		input    int32
		expected int16
	}{
		{"zero", 0, 0},
		{"positive", 100 << 8, 100},
		{"negative", -100 << 8, -100},
		{"24bit positive", 1000000, 3906},
		{"24bit negative", -1000000, -3907},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SampleToInt16(tt.input))
		})
	}
}

func TestClamp24(t *testing.T) {
	assert.Equal(t, int32(Max24Bit), Clamp24(Max24Bit+10))
	assert.Equal(t, int32(Min24Bit), Clamp24(Min24Bit-10))
	assert.Equal(t, int32(42), Clamp24(42))
}

func TestFormatOffsets(t *testing.T) {
	f := Format{SampleRate: 44100, Channels: 2, BitDepth: 16}

	assert.Equal(t, 4, f.FrameSize())
	assert.Equal(t, int64(44100*4), f.MillisToBytes(1000))
	assert.Equal(t, int64(1000), f.BytesToMillis(44100*4))
	assert.Equal(t, int64(0), f.MillisToBytes(-50))

	// Offsets are always frame aligned
	assert.Zero(t, f.MillisToBytes(15000)%int64(f.FrameSize()))
}

func TestFormatZeroValue(t *testing.T) {
	var f Format
	assert.Equal(t, int64(0), f.BytesToMillis(1234))
}
