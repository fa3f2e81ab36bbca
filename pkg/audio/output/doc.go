// ABOUTME: Audio engine package for playing memory clips
// ABOUTME: Provides the Engine interface with oto and beep implementations
// Package output provides the audio engines a playback session drives.
//
// An Engine holds at most one loaded clip. Loading while a handle is live
// fails with ErrBusy, so callers release before they load. Each handle
// publishes Status on a ticker until it is released or reaches the end.
//
// Two implementations exist:
//   - Oto: decodes with package decode and plays through an oto context
//   - Beep: plays through the beep speaker (mp3, wav and flac)
//
// Both keep process-wide audio device state, so construct only one.
//
// Example:
//
//	engine, err := output.NewOto(output.OtoConfig{SampleRate: 44100})
//	h, err := engine.Load(ctx, "/recordings/first-dance.mp3")
//	cancel := engine.Subscribe(h, func(st output.Status) { ... })
//	err = engine.Play(h)
package output
