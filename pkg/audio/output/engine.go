// ABOUTME: Audio engine interface definition
// ABOUTME: Single-resource load/play/pause/seek/release contract plus status subscription
package output

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// DefaultProgressInterval is how often engines publish status for a loaded clip
const DefaultProgressInterval = 500 * time.Millisecond

var (
	// ErrUnknownHandle is returned for a handle that is not the loaded one
	ErrUnknownHandle = errors.New("unknown or released handle")

	// ErrBusy is returned when loading while another handle is still live
	ErrBusy = errors.New("engine already has a loaded resource")

	// ErrEngineClosed is returned after Close
	ErrEngineClosed = errors.New("engine closed")
)

// Handle identifies a loaded clip
type Handle struct {
	ID      string
	Locator string

	// DurationMillis is the clip length known at load time, 0 if unknown
	DurationMillis int64
}

// IsZero reports whether h refers to nothing
func (h Handle) IsZero() bool {
	return h.ID == ""
}

// Status is a periodic report about a loaded clip
type Status struct {
	PositionMillis int64
	DurationMillis int64
	IsPlaying      bool
	DidFinish      bool
}

// Engine plays one audio resource at a time.
//
// Status callbacks for a handle are delivered in order from a single
// goroutine, never while the engine holds its own locks. Release does not
// wait for an in-flight callback, so callbacks may call back into the engine.
type Engine interface {
	// Load opens and decodes the resource. It fails with ErrBusy if a handle is live.
	Load(ctx context.Context, locator string) (Handle, error)

	// Play starts or resumes output
	Play(h Handle) error

	// Pause suspends output, keeping the position
	Pause(h Handle) error

	// Seek moves the playhead to positionMillis
	Seek(h Handle, positionMillis int64) error

	// Position reports the current playhead
	Position(h Handle) (int64, error)

	// Release unloads the resource and cancels its subscriptions
	Release(h Handle) error

	// Subscribe registers fn for status updates of h until cancel is called
	// or h is released. Subscribing to a stale handle is a no-op.
	Subscribe(h Handle, fn func(Status)) (cancel func())

	// Close releases everything; the engine is unusable afterwards
	Close() error
}

// Resolver turns a resource locator into a local file path
type Resolver interface {
	Resolve(ctx context.Context, locator string) (string, error)
}

// FileResolver accepts locators that are existing local files
type FileResolver struct{}

// Resolve returns locator unchanged when it names a regular file
func (FileResolver) Resolve(_ context.Context, locator string) (string, error) {
	info, err := os.Stat(locator)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", locator, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("failed to resolve %q: is a directory", locator)
	}
	return locator, nil
}

// clampMillis keeps a seek target inside [0, duration]
func clampMillis(ms, duration int64) int64 {
	if ms < 0 {
		return 0
	}
	if duration > 0 && ms > duration {
		return duration
	}
	return ms
}
