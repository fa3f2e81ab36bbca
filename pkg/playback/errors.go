// ABOUTME: Playback session error types
// ABOUTME: Load failures are typed; everything else is absorbed by the session
package playback

import (
	"errors"
	"fmt"
)

var (
	// ErrLoadFailed matches every *LoadError
	ErrLoadFailed = errors.New("failed to play audio")

	// ErrNoResource is returned when Toggle is called without an id or locator
	ErrNoResource = errors.New("no audio available")

	// ErrClosed is returned by Toggle after Close
	ErrClosed = errors.New("session closed")
)

// LoadError reports that the engine could not open an item's clip
type LoadError struct {
	ItemID  string
	Locator string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to play audio for %s: %v", e.ItemID, e.Err)
}

// Unwrap exposes both ErrLoadFailed and the engine error
func (e *LoadError) Unwrap() []error {
	return []error{ErrLoadFailed, e.Err}
}
