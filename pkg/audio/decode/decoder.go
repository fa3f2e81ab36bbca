// ABOUTME: Decoder interface definition
// ABOUTME: Extension-based decoder selection and file opening
package decode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for files no decoder understands
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Decoder decodes an encoded clip into 16-bit PCM
type Decoder interface {
	// Decode reads the whole encoded stream and returns the decoded clip
	Decode(r io.Reader) (*Clip, error)
}

// Extensions lists the file extensions ForExtension accepts
var Extensions = []string{".mp3", ".opus", ".ogg", ".flac", ".wav"}

// Supported reports whether path has an extension a decoder exists for
func Supported(path string) bool {
	_, err := ForExtension(filepath.Ext(path))
	return err == nil
}

// ForExtension returns the decoder for a file extension such as ".mp3"
func ForExtension(ext string) (Decoder, error) {
	switch strings.ToLower(ext) {
	case ".mp3":
		return NewMP3(), nil
	case ".opus", ".ogg":
		return NewOpus(), nil
	case ".flac":
		return NewFLAC(), nil
	case ".wav":
		return NewWAV(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Open decodes the clip stored at path
func Open(path string) (*Clip, error) {
	dec, err := ForExtension(filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open clip: %w", err)
	}
	defer f.Close()

	clip, err := dec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return clip, nil
}
