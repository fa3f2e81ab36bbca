// ABOUTME: Audio type definitions
// ABOUTME: Defines PCM formats, sample conversion and byte/millisecond arithmetic
package audio

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23

	// Memory clips are always rendered as 16-bit PCM
	BytesPerSample = 2
)

// Format describes a PCM stream format
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
}

// FrameSize returns the number of bytes in one interleaved 16-bit frame
func (f Format) FrameSize() int {
	return f.Channels * BytesPerSample
}

// BytesToMillis converts a PCM byte offset to milliseconds
func (f Format) BytesToMillis(n int64) int64 {
	frameSize := int64(f.FrameSize())
	if frameSize == 0 || f.SampleRate == 0 {
		return 0
	}
	frames := n / frameSize
	return frames * 1000 / int64(f.SampleRate)
}

// MillisToBytes converts milliseconds to a frame-aligned PCM byte offset
func (f Format) MillisToBytes(ms int64) int64 {
	if ms <= 0 {
		return 0
	}
	frames := ms * int64(f.SampleRate) / 1000
	return frames * int64(f.FrameSize())
}

// SampleToInt16 converts int32 sample to int16 (for 16-bit playback)
func SampleToInt16(sample int32) int16 {
	// Right-shift to convert 24-bit (or 16-bit) to 16-bit range
	return int16(sample >> 8)
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	// Left-shift to position 16-bit value in upper bits
	return int32(sample) << 8
}

// Clamp24 limits a sample to the signed 24-bit range
func Clamp24(v int64) int32 {
	if v > Max24Bit {
		return Max24Bit
	}
	if v < Min24Bit {
		return Min24Bit
	}
	return int32(v)
}
