// ABOUTME: Feedback sinks package
// ABOUTME: Bells and desktop notifications fired on taps and skips
// Package feedback provides presentation side effects for playback taps.
//
// Sinks are best effort. The playback session calls them on a separate
// goroutine and discards their errors.
package feedback
