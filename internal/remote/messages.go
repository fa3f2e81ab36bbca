// ABOUTME: Remote control message types
// ABOUTME: JSON envelopes exchanged with companion apps over the websocket
package remote

import "github.com/memorylane/memorylane-go/pkg/playback"

// Message types sent by the server
const (
	TypeHello = "hello"
	TypeState = "state"
	TypeItems = "items"
	TypeError = "error"
)

// Command types accepted from clients
const (
	CommandToggle = "toggle"
	CommandStop   = "stop"
	CommandSkip   = "skip"
	CommandSeek   = "seek"
)

// Message is the server-to-client envelope
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Command is a client request. Only the fields its type needs are set.
type Command struct {
	Type           string `json:"type"`
	ItemID         string `json:"item_id,omitempty"`
	DeltaMillis    int64  `json:"delta_ms,omitempty"`
	PositionMillis int64  `json:"position_ms,omitempty"`
}

// Hello identifies the server to a new client
type Hello struct {
	ServerID string `json:"server_id"`
	Name     string `json:"name"`
	Version  string `json:"version"`
}

// ItemInfo is an item as clients see it; locators stay on the server
type ItemInfo struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	HasAudio       bool   `json:"has_audio"`
	DurationMillis int64  `json:"duration_ms,omitempty"`
}

// ErrorPayload describes a failed command
type ErrorPayload struct {
	Command string `json:"command,omitempty"`
	ItemID  string `json:"item_id,omitempty"`
	Message string `json:"message"`
}

func itemInfos(items []playback.Item) []ItemInfo {
	infos := make([]ItemInfo, len(items))
	for i, it := range items {
		infos[i] = ItemInfo{
			ID:             it.ID,
			Title:          it.Title,
			HasAudio:       it.HasAudio(),
			DurationMillis: it.DurationMillis,
		}
	}
	return infos
}
