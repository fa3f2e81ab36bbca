// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the memory list
package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/memorylane/memorylane-go/pkg/playback"
)

// Config holds TUI configuration
type Config struct {
	Controller Controller
	Items      []playback.Item

	// OnNotice is called when a notice is shown, e.g. to post a desktop notification
	OnNotice func(string)
}

// NewModel creates a new TUI model
func NewModel(ctx context.Context, config Config) Model {
	return Model{
		ctx:      ctx,
		ctrl:     config.Controller,
		onNotice: config.OnNotice,
		items:    config.Items,
	}
}

// Run creates the TUI program; the caller runs it
func Run(ctx context.Context, config Config) *tea.Program {
	return tea.NewProgram(NewModel(ctx, config), tea.WithAltScreen(), tea.WithContext(ctx))
}
