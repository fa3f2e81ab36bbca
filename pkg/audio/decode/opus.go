// ABOUTME: Opus audio decoder
// ABOUTME: Decodes Ogg Opus voice memos to 16-bit PCM
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/memorylane/memorylane-go/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

// Opus always decodes at 48kHz
const opusSampleRate = 48000

// OpusDecoder decodes Ogg Opus clips
type OpusDecoder struct{}

// NewOpus creates a new Opus decoder
func NewOpus() Decoder {
	return &OpusDecoder{}
}

// Decode converts an Ogg Opus stream to PCM
func (d *OpusDecoder) Decode(r io.Reader) (*Clip, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read opus data: %w", err)
	}

	channels, err := opusChannels(data)
	if err != nil {
		return nil, err
	}

	stream, err := opus.NewStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create opus stream: %w", err)
	}
	defer stream.Close()

	// 120ms at 48kHz is the largest Opus frame
	buf := make([]int16, 5760*channels)
	var samples []int16
	for {
		n, err := stream.Read(buf)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("opus decode failed: %w", err)
		}
		samples = append(samples, buf[:n*channels]...)
	}

	return NewClip(pcmFromInt16(samples), audio.Format{
		Codec:      "opus",
		SampleRate: opusSampleRate,
		Channels:   channels,
		BitDepth:   16,
	}), nil
}

// opusChannels reads the channel count from the OpusHead identification header
func opusChannels(data []byte) (int, error) {
	idx := bytes.Index(data, []byte("OpusHead"))
	if idx < 0 || idx+10 > len(data) {
		return 0, fmt.Errorf("%w: missing OpusHead", ErrUnsupportedFormat)
	}

	channels := int(data[idx+9])
	if channels != 1 && channels != 2 {
		return 0, fmt.Errorf("%w: %d opus channels", ErrUnsupportedFormat, channels)
	}
	return channels, nil
}
