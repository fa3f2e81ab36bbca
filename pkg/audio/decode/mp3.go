// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes MP3 clips to 16-bit stereo PCM using go-mp3
package decode

import (
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/memorylane/memorylane-go/pkg/audio"
)

// MP3Decoder decodes MP3 clips
type MP3Decoder struct{}

// NewMP3 creates a new MP3 decoder
func NewMP3() Decoder {
	return &MP3Decoder{}
}

// Decode converts an MP3 stream to PCM. go-mp3 always emits 16-bit stereo.
func (d *MP3Decoder) Decode(r io.Reader) (*Clip, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode error: %w", err)
	}

	return NewClip(pcm, audio.Format{
		Codec:      "mp3",
		SampleRate: dec.SampleRate(),
		Channels:   2,
		BitDepth:   16,
	}), nil
}
