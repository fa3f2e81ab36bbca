// ABOUTME: WAV audio decoder
// ABOUTME: Decodes RIFF/WAVE clips to 16-bit PCM using beep's wav package
package decode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/memorylane/memorylane-go/pkg/audio"
)

// WAVDecoder decodes uncompressed WAV clips
type WAVDecoder struct{}

// NewWAV creates a new WAV decoder
func NewWAV() Decoder {
	return &WAVDecoder{}
}

// Decode drains a WAV stream into 16-bit PCM at the file's rate and channel count
func (d *WAVDecoder) Decode(r io.Reader) (*Clip, error) {
	stream, format, err := wav.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	defer stream.Close()

	out := beep.Format{SampleRate: format.SampleRate, NumChannels: format.NumChannels, Precision: 2}
	frame := make([]byte, out.Width())
	samples := make([][2]float64, 512)

	var pcm bytes.Buffer
	for {
		n, ok := stream.Stream(samples)
		for _, s := range samples[:n] {
			out.EncodeSigned(frame, s)
			pcm.Write(frame)
		}
		if !ok {
			break
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("wav decode error: %w", err)
	}

	return NewClip(pcm.Bytes(), audio.Format{
		Codec:      "wav",
		SampleRate: int(format.SampleRate),
		Channels:   format.NumChannels,
		BitDepth:   16,
	}), nil
}
