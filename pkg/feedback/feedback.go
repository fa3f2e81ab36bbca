// ABOUTME: Audible and desktop feedback for playback taps
// ABOUTME: Implements playback.Feedback with beeep bells and notifications
package feedback

import (
	"errors"
	"fmt"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/memorylane/memorylane-go/pkg/playback"
)

const (
	// DefaultToggleFreq is the bell pitch for taps, in Hz
	DefaultToggleFreq = 660.0

	// DefaultSkipFreq is the bell pitch for skips, in Hz
	DefaultSkipFreq = 440.0

	// DefaultBellDuration is short enough not to mask the clip
	DefaultBellDuration = 40 * time.Millisecond
)

// Bell plays a short system tone on every tap
type Bell struct {
	ToggleFreq float64
	SkipFreq   float64
	Duration   time.Duration

	beep func(freq float64, durationMillis int) error
}

// NewBell creates a bell with default pitches
func NewBell() *Bell {
	return &Bell{
		ToggleFreq: DefaultToggleFreq,
		SkipFreq:   DefaultSkipFreq,
		Duration:   DefaultBellDuration,
		beep:       beeep.Beep,
	}
}

// Toggled rings the tap tone
func (b *Bell) Toggled(string) error {
	return b.ring(b.ToggleFreq)
}

// Skipped rings the skip tone
func (b *Bell) Skipped(int64) error {
	return b.ring(b.SkipFreq)
}

func (b *Bell) ring(freq float64) error {
	if err := b.beep(freq, int(b.Duration.Milliseconds())); err != nil {
		return fmt.Errorf("failed to ring bell: %w", err)
	}
	return nil
}

// TitleFunc maps an item id to something readable
type TitleFunc func(itemID string) string

// Notifier posts a desktop notification when an item is tapped
type Notifier struct {
	AppName string
	Title   TitleFunc

	notify func(title, message string, icon any) error
}

// NewNotifier creates a notifier; title may be nil
func NewNotifier(appName string, title TitleFunc) *Notifier {
	if title == nil {
		title = func(id string) string { return id }
	}
	beeep.AppName = appName
	return &Notifier{
		AppName: appName,
		Title:   title,
		notify:  beeep.Notify,
	}
}

// Toggled announces the tapped memory
func (n *Notifier) Toggled(itemID string) error {
	if err := n.notify(n.AppName, n.Title(itemID), ""); err != nil {
		return fmt.Errorf("failed to notify: %w", err)
	}
	return nil
}

// Notice posts a user-visible message such as a playback failure
func (n *Notifier) Notice(message string) error {
	if err := n.notify(n.AppName, message, ""); err != nil {
		return fmt.Errorf("failed to notify: %w", err)
	}
	return nil
}

// Skipped stays quiet; a notification per skip is noise
func (n *Notifier) Skipped(int64) error {
	return nil
}

// Multi fans out to several feedback sinks
type Multi []playback.Feedback

// Toggled calls every sink and joins their errors
func (m Multi) Toggled(itemID string) error {
	var errs []error
	for _, f := range m {
		errs = append(errs, f.Toggled(itemID))
	}
	return errors.Join(errs...)
}

// Skipped calls every sink and joins their errors
func (m Multi) Skipped(deltaMillis int64) error {
	var errs []error
	for _, f := range m {
		errs = append(errs, f.Skipped(deltaMillis))
	}
	return errors.Join(errs...)
}

// Nop ignores everything
type Nop struct{}

func (Nop) Toggled(string) error { return nil }
func (Nop) Skipped(int64) error  { return nil }

var (
	_ playback.Feedback = (*Bell)(nil)
	_ playback.Feedback = (*Notifier)(nil)
	_ playback.Feedback = Multi(nil)
	_ playback.Feedback = Nop{}
)
