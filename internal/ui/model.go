// ABOUTME: Bubbletea model for the memory list
// ABOUTME: One row per memory with tap-to-play, skip controls and a progress line
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/memorylane/memorylane-go/pkg/playback"
)

const (
	NoticeNoAudio    = "No audio available"
	NoticeLoadFailed = "Failed to play audio"
)

// Controller is the subset of the playback session the list drives
type Controller interface {
	Toggle(ctx context.Context, itemID, locator string) error
	Stop()
	SkipBackward(ctx context.Context)
	SkipForward(ctx context.Context)
	SkipIncrement() time.Duration
}

// Model represents the TUI state
type Model struct {
	ctx      context.Context
	ctrl     Controller
	onNotice func(string)

	items  []playback.Item
	cursor int
	state  playback.State
	notice string

	// Dimensions
	width  int
	height int
}

// StatusMsg carries a new playback state snapshot
type StatusMsg struct {
	State playback.State
}

// ItemsMsg replaces the list after a library rescan
type ItemsMsg struct {
	Items []playback.Item
}

// toggledMsg reports the outcome of a toggle command
type toggledMsg struct {
	itemID string
	err    error
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.state = msg.State
	case ItemsMsg:
		m.applyItems(msg.Items)
	case toggledMsg:
		if msg.err != nil {
			m.setNotice(NoticeLoadFailed)
		}
	}

	return m, nil
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "enter", " ":
		return m.toggleSelected()
	case "left", "h":
		if m.state.IsActive() {
			return m, m.command(func(ctx context.Context) { m.ctrl.SkipBackward(ctx) })
		}
	case "right", "l":
		if m.state.IsActive() {
			return m, m.command(func(ctx context.Context) { m.ctrl.SkipForward(ctx) })
		}
	case "s":
		m.notice = ""
		return m, m.command(func(context.Context) { m.ctrl.Stop() })
	}

	return m, nil
}

func (m Model) toggleSelected() (tea.Model, tea.Cmd) {
	item, ok := m.selected()
	if !ok {
		return m, nil
	}
	if !item.HasAudio() {
		m.setNotice(NoticeNoAudio)
		return m, nil
	}

	m.notice = ""
	ctx, ctrl := m.ctx, m.ctrl
	return m, func() tea.Msg {
		return toggledMsg{itemID: item.ID, err: ctrl.Toggle(ctx, item.ID, item.Locator)}
	}
}

// command runs fn off the update loop
func (m Model) command(fn func(ctx context.Context)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		fn(ctx)
		return nil
	}
}

func (m *Model) setNotice(notice string) {
	m.notice = notice
	if m.onNotice != nil {
		m.onNotice(notice)
	}
}

func (m Model) selected() (playback.Item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return playback.Item{}, false
	}
	return m.items[m.cursor], true
}

// applyItems replaces the list, keeping the cursor on the same memory
func (m *Model) applyItems(items []playback.Item) {
	current, ok := m.selected()
	m.items = items
	m.cursor = 0
	if !ok {
		return
	}
	for i, it := range items {
		if it.ID == current.ID {
			m.cursor = i
			return
		}
	}
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Memory Lane"))
	b.WriteString("\n\n")
	b.WriteString(m.renderItems())
	b.WriteString("\n")
	b.WriteString(m.renderProgress())
	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render(m.notice))
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("↑/↓ choose  enter play/pause  ←/→ %s  s stop  q quit", m.ctrl.SkipIncrement())))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderItems() string {
	if len(m.items) == 0 {
		return rowStyle.Render("No memories yet") + "\n"
	}

	var b strings.Builder
	for i, it := range m.items {
		line := fmt.Sprintf("%s %s", m.glyph(it), truncate(it.Title, m.titleWidth()))
		switch {
		case !it.HasAudio():
			line += dimStyle.Render("  (no audio)")
		case it.DurationMillis > 0:
			line += dimStyle.Render("  " + formatMillis(it.DurationMillis))
		}
		style := rowStyle
		if i == m.cursor {
			style = selectedStyle
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) glyph(it playback.Item) string {
	switch {
	case m.state.Phase == playback.PhaseLoading && m.state.PendingItemID == it.ID:
		return "…"
	case m.state.ActiveItemID != it.ID:
		return " "
	case m.state.Phase == playback.PhasePlaying:
		return "▶"
	default:
		return "⏸"
	}
}

func (m Model) renderProgress() string {
	if !m.state.IsActive() {
		return dimStyle.Render("Nothing playing")
	}

	width := m.width - 20
	if width < 10 {
		width = 10
	}
	return progressStyle.Render(fmt.Sprintf("%s %s / %s",
		renderBar(m.state.PositionMillis, m.state.DurationMillis, width),
		formatMillis(m.state.PositionMillis),
		formatMillis(m.state.DurationMillis)))
}

func (m Model) titleWidth() int {
	if m.width <= 8 {
		return 40
	}
	return m.width - 8
}

// Utility functions
func renderBar(value, max int64, width int) string {
	filled := 0
	if max > 0 {
		filled = int(value * int64(width) / max)
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, length int) string {
	r := []rune(s)
	if len(r) <= length {
		return s
	}
	if length <= 3 {
		return string(r[:length])
	}
	return string(r[:length-3]) + "..."
}

func formatMillis(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	secs := ms / 1000
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
