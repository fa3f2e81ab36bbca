// ABOUTME: Integration tests for the remote control server
// ABOUTME: Drives the websocket endpoint with a real client against fakes
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/memorylane/memorylane-go/pkg/playback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	mu        sync.Mutex
	calls     []string
	toggleErr error
	state     playback.State
}

func (c *fakeController) record(call string) {
	c.mu.Lock()
	c.calls = append(c.calls, call)
	c.mu.Unlock()
}

func (c *fakeController) history() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func (c *fakeController) Toggle(_ context.Context, itemID, locator string) error {
	c.record("toggle:" + itemID + ":" + locator)
	return c.toggleErr
}

func (c *fakeController) Stop() { c.record("stop") }

func (c *fakeController) SkipBy(_ context.Context, delta int64) {
	c.record("skip:" + itoa(delta))
}

func (c *fakeController) SeekTo(_ context.Context, pos int64) {
	c.record("seek:" + itoa(pos))
}

func (c *fakeController) State() playback.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func itoa(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}

type fakeCatalog []playback.Item

func (f fakeCatalog) Items() []playback.Item { return f }

func (f fakeCatalog) Lookup(id string) (playback.Item, bool) {
	for _, it := range f {
		if it.ID == id {
			return it, true
		}
	}
	return playback.Item{}, false
}

var catalog = fakeCatalog{
	{ID: "a", Title: "Wedding toast", Locator: "/m/wedding.mp3"},
	{ID: "b", Title: "Garden photo"},
}

type received struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func startServer(t *testing.T, ctrl *fakeController) (*Server, *websocket.Conn) {
	t.Helper()
	s, err := New(Config{Controller: ctrl, Catalog: catalog, Name: "Test Room"})
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + Path
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// greeting, state, items
	for _, want := range []string{TypeHello, TypeState, TypeItems} {
		msg := read(t, conn)
		require.Equal(t, want, msg.Type)
	}

	require.Eventually(t, func() bool { return s.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	return s, conn
}

func read(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg received
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestNewServer(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		expectErr bool
	}{
		{"valid config", Config{Controller: &fakeController{}, Catalog: catalog}, false},
		{"missing controller", Config{Catalog: catalog}, true},
		{"missing catalog", Config{Controller: &fakeController{}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.config)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DefaultPort, s.config.Port)
			assert.NotEmpty(t, s.config.Name)
			assert.NotEmpty(t, s.serverID)
		})
	}
}

func TestGreetingCarriesStateAndItems(t *testing.T) {
	ctrl := &fakeController{state: playback.State{ActiveItemID: "a", Phase: playback.PhasePlaying, IsPlaying: true}}
	s, err := New(Config{Controller: ctrl, Catalog: catalog, Name: "Test Room"})
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+Path, nil)
	require.NoError(t, err)
	defer conn.Close()

	var hello Hello
	msg := read(t, conn)
	require.Equal(t, TypeHello, msg.Type)
	require.NoError(t, json.Unmarshal(msg.Payload, &hello))
	assert.Equal(t, "Test Room", hello.Name)

	var st playback.State
	msg = read(t, conn)
	require.NoError(t, json.Unmarshal(msg.Payload, &st))
	assert.Equal(t, "a", st.ActiveItemID)
	assert.True(t, st.IsPlaying)

	var items []ItemInfo
	msg = read(t, conn)
	require.NoError(t, json.Unmarshal(msg.Payload, &items))
	require.Len(t, items, 2)
	assert.True(t, items[0].HasAudio)
	assert.False(t, items[1].HasAudio)
	assert.NotContains(t, string(msg.Payload), "wedding.mp3")
}

func TestToggleResolvesLocatorFromCatalog(t *testing.T) {
	ctrl := &fakeController{}
	_, conn := startServer(t, ctrl)

	require.NoError(t, conn.WriteJSON(Command{Type: CommandToggle, ItemID: "a"}))
	require.Eventually(t, func() bool {
		return len(ctrl.history()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"toggle:a:/m/wedding.mp3"}, ctrl.history())
}

func TestControlCommands(t *testing.T) {
	ctrl := &fakeController{}
	_, conn := startServer(t, ctrl)

	require.NoError(t, conn.WriteJSON(Command{Type: CommandSkip, DeltaMillis: -15000}))
	require.NoError(t, conn.WriteJSON(Command{Type: CommandSeek, PositionMillis: 42000}))
	require.NoError(t, conn.WriteJSON(Command{Type: CommandStop}))

	require.Eventually(t, func() bool {
		return len(ctrl.history()) == 3
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"skip:-15000", "seek:42000", "stop"}, ctrl.history())
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name    string
		cmd     string
		message string
	}{
		{"unknown item", `{"type":"toggle","item_id":"zzz"}`, "unknown item"},
		{"no audio", `{"type":"toggle","item_id":"b"}`, "No audio available"},
		{"unknown command", `{"type":"volume"}`, `unknown command "volume"`},
		{"malformed", `{"type":`, "malformed command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := &fakeController{}
			_, conn := startServer(t, ctrl)

			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tt.cmd)))
			msg := read(t, conn)
			require.Equal(t, TypeError, msg.Type)

			var payload ErrorPayload
			require.NoError(t, json.Unmarshal(msg.Payload, &payload))
			assert.Equal(t, tt.message, payload.Message)
			assert.Empty(t, ctrl.history())
		})
	}
}

func TestToggleLoadFailureReportsError(t *testing.T) {
	ctrl := &fakeController{toggleErr: &playback.LoadError{ItemID: "a", Err: errors.New("corrupt")}}
	_, conn := startServer(t, ctrl)

	require.NoError(t, conn.WriteJSON(Command{Type: CommandToggle, ItemID: "a"}))
	msg := read(t, conn)
	require.Equal(t, TypeError, msg.Type)

	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, "Failed to play audio", payload.Message)
	assert.Equal(t, "a", payload.ItemID)
}

func TestPublishReachesClients(t *testing.T) {
	s, conn := startServer(t, &fakeController{})

	s.PublishState(playback.State{ActiveItemID: "a", PositionMillis: 45000, DurationMillis: 120000})
	msg := read(t, conn)
	require.Equal(t, TypeState, msg.Type)
	var st playback.State
	require.NoError(t, json.Unmarshal(msg.Payload, &st))
	assert.Equal(t, int64(45000), st.PositionMillis)

	s.PublishItems(catalog[:1])
	msg = read(t, conn)
	require.Equal(t, TypeItems, msg.Type)
	var items []ItemInfo
	require.NoError(t, json.Unmarshal(msg.Payload, &items))
	assert.Len(t, items, 1)
}

func TestClientDisconnectUnregisters(t *testing.T) {
	s, conn := startServer(t, &fakeController{})
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool { return s.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}
