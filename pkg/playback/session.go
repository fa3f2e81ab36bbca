// ABOUTME: Playback session state machine
// ABOUTME: Serialises engine commands and applies status for the current handle only
package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/memorylane/memorylane-go/pkg/audio/output"
	"go.uber.org/zap"
)

// DefaultSkipIncrement is how far SkipBackward and SkipForward move
const DefaultSkipIncrement = 15 * time.Second

// Config holds session configuration
type Config struct {
	// Engine plays the clips. Required.
	Engine output.Engine

	// SkipIncrement defaults to DefaultSkipIncrement
	SkipIncrement time.Duration

	// Feedback is optional
	Feedback Feedback

	// Logger defaults to a no-op logger
	Logger *zap.Logger

	// OnStateChange is called with a fresh snapshot after every change.
	// Calls are serialised and never made while the session holds a lock.
	OnStateChange func(State)
}

// Session owns the single shared engine on behalf of a list of items
type Session struct {
	config Config
	engine output.Engine
	log    *zap.Logger

	// opMu serialises engine commands; lock before mu
	opMu sync.Mutex

	mu          sync.Mutex
	state       State
	handle      output.Handle
	unsubscribe func()
	generation  uint64
	cancelLoad  context.CancelFunc
	closed      bool

	// detached handle waiting for release under opMu
	stale      output.Handle
	staleUnsub func()

	publishMu sync.Mutex
}

// New creates an idle session
func New(config Config) (*Session, error) {
	if config.Engine == nil {
		return nil, errors.New("playback: engine is required")
	}
	if config.SkipIncrement <= 0 {
		config.SkipIncrement = DefaultSkipIncrement
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	return &Session{
		config: config,
		engine: config.Engine,
		log:    config.Logger.Named("playback"),
	}, nil
}

// State returns a snapshot of the published state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SkipIncrement returns the configured skip distance
func (s *Session) SkipIncrement() time.Duration {
	return s.config.SkipIncrement
}

// Toggle plays, pauses or resumes itemID. Toggling an item other than the
// active one releases the active clip before loading locator.
func (s *Session) Toggle(ctx context.Context, itemID, locator string) error {
	s.notify(func(f Feedback) error { return f.Toggled(itemID) })

	if itemID == "" || locator == "" {
		return ErrNoResource
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.state.Phase == PhaseLoading && s.state.PendingItemID == itemID {
		s.mu.Unlock()
		s.log.Debug("ignoring toggle for item already loading", zap.String("item", itemID))
		return nil
	}
	if s.state.ActiveItemID == itemID && !s.handle.IsZero() {
		s.mu.Unlock()

		s.opMu.Lock()
		defer s.opMu.Unlock()
		s.pauseOrResume(itemID)
		return nil
	}

	gen := s.retireLocked()
	s.state.Phase = PhaseLoading
	s.state.PendingItemID = itemID
	s.mu.Unlock()
	s.publish()

	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.load(ctx, gen, itemID, locator)
}

// load runs with opMu held
func (s *Session) load(ctx context.Context, gen uint64, itemID, locator string) error {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.releaseStale()
		return nil
	}
	loadCtx, cancel := context.WithCancel(ctx)
	s.cancelLoad = cancel
	s.mu.Unlock()
	defer cancel()

	s.releaseStale()

	h, err := s.engine.Load(loadCtx, locator)

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.log.Debug("discarding superseded load", zap.String("item", itemID))
		if err == nil {
			s.release(h, nil)
		}
		return nil
	}
	s.cancelLoad = nil

	if err != nil {
		s.state = State{}
		s.mu.Unlock()
		s.publish()
		s.log.Warn("failed to load clip",
			zap.String("item", itemID),
			zap.String("locator", locator),
			zap.Error(err))
		return &LoadError{ItemID: itemID, Locator: locator, Err: err}
	}

	s.handle = h
	s.state = State{
		ActiveItemID:   itemID,
		DurationMillis: h.DurationMillis,
		Phase:          PhasePlaying,
		IsPlaying:      true,
	}
	s.mu.Unlock()

	unsub := s.engine.Subscribe(h, func(st output.Status) {
		s.handleStatus(h, st)
	})
	s.mu.Lock()
	if s.handle.ID == h.ID {
		s.unsubscribe = unsub
		unsub = nil
	}
	s.mu.Unlock()
	if unsub != nil {
		// h was retired before the subscription was recorded
		unsub()
	}

	next := PhasePlaying
	if err := s.engine.Play(h); err != nil {
		s.log.Warn("failed to start playback", zap.String("item", itemID), zap.Error(err))
		next = PhasePaused
	}
	// a status tick may have arrived between Subscribe and Play
	s.mu.Lock()
	if s.handle.ID == h.ID {
		s.state.Phase = next
		s.state.IsPlaying = next == PhasePlaying
	}
	s.mu.Unlock()

	s.log.Info("playing", zap.String("item", itemID), zap.String("handle", h.ID))
	s.publish()
	return nil
}

// pauseOrResume runs with opMu held
func (s *Session) pauseOrResume(itemID string) {
	s.mu.Lock()
	if s.state.ActiveItemID != itemID || s.handle.IsZero() {
		// a newer command got here first
		s.mu.Unlock()
		return
	}
	h := s.handle
	playing := s.state.IsPlaying
	s.mu.Unlock()

	next := PhasePlaying
	cmd := s.engine.Play
	if playing {
		next = PhasePaused
		cmd = s.engine.Pause
	}
	if err := cmd(h); err != nil {
		s.log.Warn("playback control failed",
			zap.String("item", itemID),
			zap.Stringer("target", next),
			zap.Error(err))
		return
	}

	s.mu.Lock()
	if s.handle.ID == h.ID {
		s.state.Phase = next
		s.state.IsPlaying = next == PhasePlaying
	}
	s.mu.Unlock()
	s.publish()
}

// Stop releases whatever is loaded and discards any in-flight load
func (s *Session) Stop() {
	s.mu.Lock()
	if s.state.Phase == PhaseIdle && s.handle.IsZero() && s.cancelLoad == nil {
		s.mu.Unlock()
		return
	}
	s.retireLocked()
	s.mu.Unlock()
	s.publish()

	s.opMu.Lock()
	s.releaseStale()
	s.opMu.Unlock()
}

// SkipBackward moves back by the skip increment
func (s *Session) SkipBackward(ctx context.Context) {
	s.SkipBy(ctx, -s.config.SkipIncrement.Milliseconds())
}

// SkipForward moves ahead by the skip increment
func (s *Session) SkipForward(ctx context.Context) {
	s.SkipBy(ctx, s.config.SkipIncrement.Milliseconds())
}

// SkipBy moves the playhead relative to the engine's current position
func (s *Session) SkipBy(ctx context.Context, deltaMillis int64) {
	s.notify(func(f Feedback) error { return f.Skipped(deltaMillis) })
	if ctx.Err() != nil {
		return
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	h, pos, ok := s.current()
	if !ok {
		return
	}
	if p, err := s.engine.Position(h); err != nil {
		s.log.Warn("failed to read position", zap.String("handle", h.ID), zap.Error(err))
	} else {
		pos = p
	}
	s.seek(h, pos+deltaMillis)
}

// SeekTo moves the playhead to an absolute position
func (s *Session) SeekTo(ctx context.Context, positionMillis int64) {
	if ctx.Err() != nil {
		return
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	h, _, ok := s.current()
	if !ok {
		return
	}
	s.seek(h, positionMillis)
}

func (s *Session) current() (output.Handle, int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.ActiveItemID == "" || s.handle.IsZero() {
		return output.Handle{}, 0, false
	}
	return s.handle, s.state.PositionMillis, true
}

// seek runs with opMu held
func (s *Session) seek(h output.Handle, target int64) {
	s.mu.Lock()
	target = Clamp(target, s.state.DurationMillis)
	s.mu.Unlock()

	if err := s.engine.Seek(h, target); err != nil {
		s.log.Warn("failed to seek", zap.String("handle", h.ID), zap.Int64("target_ms", target), zap.Error(err))
		return
	}

	s.mu.Lock()
	if s.handle.ID == h.ID {
		s.state.PositionMillis = target
	}
	s.mu.Unlock()
	s.publish()
}

// Close stops playback; later toggles fail with ErrClosed
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.retireLocked()
	s.closed = true
	s.mu.Unlock()
	s.publish()

	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.releaseStale()
	return nil
}

func (s *Session) handleStatus(h output.Handle, st output.Status) {
	s.mu.Lock()
	if h.IsZero() || s.handle.ID != h.ID {
		s.mu.Unlock()
		s.log.Debug("dropping status for stale handle", zap.String("handle", h.ID))
		return
	}

	if st.DidFinish {
		s.retireLocked()
		s.mu.Unlock()
		s.log.Debug("clip finished", zap.String("handle", h.ID))
		s.publish()

		s.opMu.Lock()
		s.releaseStale()
		s.opMu.Unlock()
		return
	}

	if st.DurationMillis > 0 {
		s.state.DurationMillis = st.DurationMillis
	}
	s.state.PositionMillis = Clamp(st.PositionMillis, s.state.DurationMillis)
	s.state.IsPlaying = st.IsPlaying
	s.state.Phase = PhasePaused
	if st.IsPlaying {
		s.state.Phase = PhasePlaying
	}
	s.mu.Unlock()
	s.publish()
}

// retireLocked bumps the generation, cancels any in-flight load, detaches
// the current handle for release and resets state. Caller holds mu.
func (s *Session) retireLocked() uint64 {
	s.generation++
	if s.cancelLoad != nil {
		s.cancelLoad()
		s.cancelLoad = nil
	}
	if !s.handle.IsZero() {
		s.stale = s.handle
		s.staleUnsub = s.unsubscribe
	}
	s.handle = output.Handle{}
	s.unsubscribe = nil
	s.state = State{}
	return s.generation
}

// releaseStale runs with opMu held
func (s *Session) releaseStale() {
	s.mu.Lock()
	h, unsub := s.stale, s.staleUnsub
	s.stale, s.staleUnsub = output.Handle{}, nil
	s.mu.Unlock()

	if !h.IsZero() {
		s.release(h, unsub)
	}
}

func (s *Session) release(h output.Handle, unsub func()) {
	if unsub != nil {
		unsub()
	}
	if err := s.engine.Release(h); err != nil && !errors.Is(err, output.ErrUnknownHandle) {
		s.log.Warn("failed to release clip", zap.String("handle", h.ID), zap.Error(err))
	}
}

func (s *Session) publish() {
	if s.config.OnStateChange == nil {
		return
	}
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	s.config.OnStateChange(s.State())
}

func (s *Session) notify(fn func(Feedback) error) {
	if s.config.Feedback == nil {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Debug("feedback panicked", zap.String("panic", fmt.Sprint(r)))
			}
		}()
		if err := fn(s.config.Feedback); err != nil {
			s.log.Debug("feedback failed", zap.Error(err))
		}
	}()
}
