// ABOUTME: Published playback state and item types
// ABOUTME: Defines session phases, the state snapshot and position clamping
package playback

import "fmt"

// Phase is the session state machine position
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhasePlaying
	PhasePaused
)

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// MarshalText encodes the phase by name
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name
func (p *Phase) UnmarshalText(text []byte) error {
	for _, candidate := range []Phase{PhaseIdle, PhaseLoading, PhasePlaying, PhasePaused} {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// Item is one playable memory clip shown in a list
type Item struct {
	ID      string
	Locator string // local path or http(s) URL; empty when the memory has no audio
	Title   string

	// DurationMillis is 0 until known
	DurationMillis int64
}

// HasAudio reports whether the item can be toggled
func (i Item) HasAudio() bool {
	return i.Locator != ""
}

// State is the session's published snapshot
type State struct {
	ActiveItemID   string `json:"active_item_id"`
	PositionMillis int64  `json:"position_ms"`
	DurationMillis int64  `json:"duration_ms"`
	IsPlaying      bool   `json:"is_playing"`

	Phase         Phase  `json:"phase"`
	PendingItemID string `json:"pending_item_id,omitempty"`
}

// IsActive reports whether an item is loaded
func (s State) IsActive() bool {
	return s.ActiveItemID != ""
}

// Clamp limits a position to [0, duration]. An unknown (zero) duration only clamps below.
func Clamp(positionMillis, durationMillis int64) int64 {
	if positionMillis < 0 {
		return 0
	}
	if durationMillis > 0 && positionMillis > durationMillis {
		return durationMillis
	}
	return positionMillis
}
