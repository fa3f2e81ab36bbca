// ABOUTME: Decoded clip type
// ABOUTME: Seekable 16-bit PCM buffer with format conversion
package decode

import (
	"bytes"
	"encoding/binary"

	"github.com/memorylane/memorylane-go/pkg/audio"
	"github.com/memorylane/memorylane-go/pkg/audio/resample"
)

// Clip is a decoded memory clip held as interleaved 16-bit little-endian PCM
type Clip struct {
	*bytes.Reader
	pcm    []byte
	format audio.Format
}

// NewClip wraps raw PCM bytes. Trailing bytes that do not form a whole frame are dropped.
func NewClip(pcm []byte, format audio.Format) *Clip {
	format.BitDepth = 16
	if fs := format.FrameSize(); fs > 0 {
		pcm = pcm[:len(pcm)-len(pcm)%fs]
	}
	return &Clip{
		Reader: bytes.NewReader(pcm),
		pcm:    pcm,
		format: format,
	}
}

// Format returns the PCM format of the clip
func (c *Clip) Format() audio.Format {
	return c.format
}

// DurationMillis returns the clip length in milliseconds
func (c *Clip) DurationMillis() int64 {
	return c.format.BytesToMillis(int64(len(c.pcm)))
}

// Bytes returns the raw PCM data
func (c *Clip) Bytes() []byte {
	return c.pcm
}

// Close satisfies io.Closer for players that close their source
func (c *Clip) Close() error {
	return nil
}

// Convert returns the clip rendered at the given sample rate and channel count
func (c *Clip) Convert(sampleRate, channels int) *Clip {
	if c.format.SampleRate == sampleRate && c.format.Channels == channels {
		return c
	}

	samples := make([]int32, len(c.pcm)/audio.BytesPerSample)
	for i := range samples {
		samples[i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(c.pcm[i*2:])))
	}

	samples = remix(samples, c.format.Channels, channels)
	samples = resample.New(c.format.SampleRate, sampleRate, channels).Convert(samples)

	out := make([]byte, len(samples)*audio.BytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(audio.SampleToInt16(s)))
	}

	format := c.format
	format.SampleRate = sampleRate
	format.Channels = channels
	return NewClip(out, format)
}

// remix converts interleaved samples between channel counts.
// Downmixing averages all input channels; upmixing repeats the mix.
func remix(samples []int32, from, to int) []int32 {
	if from == to || from == 0 || to == 0 {
		return samples
	}

	frames := len(samples) / from
	out := make([]int32, frames*to)
	for f := 0; f < frames; f++ {
		var sum int64
		for ch := 0; ch < from; ch++ {
			sum += int64(samples[f*from+ch])
		}
		mixed := audio.Clamp24(sum / int64(from))

		for ch := 0; ch < to; ch++ {
			if from > 1 && ch < from && to > from {
				out[f*to+ch] = samples[f*from+ch]
				continue
			}
			out[f*to+ch] = mixed
		}
	}
	return out
}

// pcmFromInt16 encodes interleaved int16 samples as little-endian bytes
func pcmFromInt16(samples []int16) []byte {
	out := make([]byte, len(samples)*audio.BytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}
