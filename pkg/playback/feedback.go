// ABOUTME: Feedback hook interface
// ABOUTME: Fire-and-forget notifications for taps and skips
package playback

// Feedback receives presentation side effects. Errors and panics are
// swallowed and never affect the session.
type Feedback interface {
	Toggled(itemID string) error
	Skipped(deltaMillis int64) error
}
