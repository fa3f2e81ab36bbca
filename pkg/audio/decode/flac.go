// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes FLAC clips frame by frame using mewkiz/flac
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/memorylane/memorylane-go/pkg/audio"
	"github.com/mewkiz/flac"
)

// FLACDecoder decodes FLAC clips
type FLACDecoder struct{}

// NewFLAC creates a new FLAC decoder
func NewFLAC() Decoder {
	return &FLACDecoder{}
}

// Decode converts a FLAC stream to 16-bit PCM
func (d *FLACDecoder) Decode(r io.Reader) (*Clip, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create flac decoder: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	bps := int(info.BitsPerSample)

	samples := make([]int16, 0, int(info.NSamples)*channels)
	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("flac decode failed: %w", err)
		}

		n := len(frame.Subframes[0].Samples)
		for i := 0; i < n; i++ {
			for ch := 0; ch < channels; ch++ {
				samples = append(samples, toInt16(frame.Subframes[ch].Samples[i], bps))
			}
		}
	}

	return NewClip(pcmFromInt16(samples), audio.Format{
		Codec:      "flac",
		SampleRate: int(info.SampleRate),
		Channels:   channels,
		BitDepth:   16,
	}), nil
}

// toInt16 scales a sample of the given bit depth to 16 bits
func toInt16(sample int32, bitDepth int) int16 {
	switch {
	case bitDepth > 16:
		return int16(sample >> (bitDepth - 16))
	case bitDepth < 16:
		return int16(sample << (16 - bitDepth))
	default:
		return int16(sample)
	}
}
