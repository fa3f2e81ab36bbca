// ABOUTME: Playback session package
// ABOUTME: Owns which memory clip is loaded and playing across a list of items
// Package playback coordinates one shared audio engine across many playable items.
//
// A Session is the single authority over what is loaded. Items are toggled
// by id: tapping an idle item loads and plays it, tapping the active item
// pauses or resumes it, and tapping another item releases the current clip
// before loading the new one. Skips and seeks are clamped to the clip.
//
// Load failures are the only errors returned to callers. Control failures
// are logged, and status for released handles is dropped.
//
// Example:
//
//	session, err := playback.New(playback.Config{
//	    Engine:        engine,
//	    OnStateChange: func(st playback.State) { render(st) },
//	})
//	err = session.Toggle(ctx, item.ID, item.Locator)
//	session.SkipBackward()
//	session.Stop()
package playback
