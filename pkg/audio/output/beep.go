// ABOUTME: Beep-based audio engine implementation
// ABOUTME: Plays memory clips through the beep speaker with pause and seek control
package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"github.com/memorylane/memorylane-go/pkg/audio/decode"
	"go.uber.org/zap"
)

// BeepConfig holds beep engine configuration
type BeepConfig struct {
	// SampleRate is the speaker rate (default: 44100)
	SampleRate int

	// ProgressInterval is the status publishing period (default: 500ms)
	ProgressInterval time.Duration

	// Resolver turns locators into local paths (default: FileResolver)
	Resolver Resolver

	Logger *zap.Logger
}

// Beep engine implementation using the beep speaker
type Beep struct {
	config     BeepConfig
	sampleRate beep.SampleRate
	log        *zap.Logger

	mu      sync.Mutex
	current *beepTrack
	closed  bool
}

// beepTrack bundles the decoded stream and its pause control
type beepTrack struct {
	handle   Handle
	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	mon      *monitor
}

// NewBeep initializes the speaker
func NewBeep(config BeepConfig) (*Beep, error) {
	if config.SampleRate == 0 {
		config.SampleRate = 44100
	}
	if config.ProgressInterval == 0 {
		config.ProgressInterval = DefaultProgressInterval
	}
	if config.Resolver == nil {
		config.Resolver = FileResolver{}
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	sr := beep.SampleRate(config.SampleRate)
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("failed to initialize speaker: %w", err)
	}

	config.Logger.Info("speaker initialized", zap.Int("sample_rate", config.SampleRate))

	return &Beep{
		config:     config,
		sampleRate: sr,
		log:        config.Logger,
	}, nil
}

// decodeFile picks the beep decoder for the file extension
func decodeFile(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(filepath.Ext(f.Name())) {
	case ".mp3":
		return mp3.Decode(f)
	case ".wav":
		return wav.Decode(f)
	case ".flac":
		return flac.Decode(f)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s", decode.ErrUnsupportedFormat, filepath.Ext(f.Name()))
	}
}

// Load resolves and decodes the clip and queues it paused on the speaker
func (b *Beep) Load(ctx context.Context, locator string) (Handle, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return Handle{}, ErrEngineClosed
	}
	if b.current != nil {
		b.mu.Unlock()
		return Handle{}, ErrBusy
	}
	b.mu.Unlock()

	path, err := b.config.Resolver.Resolve(ctx, locator)
	if err != nil {
		return Handle{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return Handle{}, fmt.Errorf("failed to open clip: %w", err)
	}

	streamer, format, err := decodeFile(f)
	if err != nil {
		f.Close()
		return Handle{}, err
	}

	if err := ctx.Err(); err != nil {
		streamer.Close()
		f.Close()
		return Handle{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || b.current != nil {
		streamer.Close()
		f.Close()
		if b.closed {
			return Handle{}, ErrEngineClosed
		}
		return Handle{}, ErrBusy
	}

	h := Handle{
		ID:             uuid.NewString(),
		Locator:        locator,
		DurationMillis: format.SampleRate.D(streamer.Len()).Milliseconds(),
	}
	t := &beepTrack{
		handle:   h,
		file:     f,
		streamer: streamer,
		format:   format,
	}

	resampled := beep.Resample(4, format.SampleRate, b.sampleRate, streamer)
	t.ctrl = &beep.Ctrl{Streamer: resampled, Paused: true}
	t.mon = newMonitor(h, b.config.ProgressInterval, func() Status { return b.status(t) })

	speaker.Play(beep.Seq(t.ctrl, beep.Callback(t.mon.finish)))
	b.current = t
	go t.mon.run()

	b.log.Debug("clip loaded",
		zap.String("handle", h.ID),
		zap.String("locator", locator),
		zap.Duration("duration", format.SampleRate.D(streamer.Len())))

	return h, nil
}

// track returns the live track for h. Caller holds b.mu.
func (b *Beep) track(h Handle) (*beepTrack, error) {
	if b.closed {
		return nil, ErrEngineClosed
	}
	if b.current == nil || b.current.handle.ID != h.ID {
		return nil, ErrUnknownHandle
	}
	return b.current, nil
}

func (b *Beep) setPaused(h Handle, paused bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, err := b.track(h)
	if err != nil {
		return err
	}
	speaker.Lock()
	t.ctrl.Paused = paused
	speaker.Unlock()
	return nil
}

// Play starts or resumes output
func (b *Beep) Play(h Handle) error {
	return b.setPaused(h, false)
}

// Pause suspends output
func (b *Beep) Pause(h Handle) error {
	return b.setPaused(h, true)
}

// Seek moves the playhead
func (b *Beep) Seek(h Handle, positionMillis int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, err := b.track(h)
	if err != nil {
		return err
	}

	speaker.Lock()
	defer speaker.Unlock()

	samples := t.format.SampleRate.N(time.Duration(positionMillis) * time.Millisecond)
	if samples > t.streamer.Len() {
		samples = t.streamer.Len()
	}
	if samples < 0 {
		samples = 0
	}
	if err := t.streamer.Seek(samples); err != nil {
		return fmt.Errorf("seek failed: %w", err)
	}
	return nil
}

// Position reports the playhead
func (b *Beep) Position(h Handle) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, err := b.track(h)
	if err != nil {
		return 0, err
	}

	speaker.Lock()
	pos := t.streamer.Position()
	speaker.Unlock()
	return t.format.SampleRate.D(pos).Milliseconds(), nil
}

// status is polled by the monitor goroutine
func (b *Beep) status(t *beepTrack) Status {
	speaker.Lock()
	pos := t.streamer.Position()
	length := t.streamer.Len()
	paused := t.ctrl.Paused
	speaker.Unlock()

	duration := t.format.SampleRate.D(length).Milliseconds()
	return Status{
		PositionMillis: clampMillis(t.format.SampleRate.D(pos).Milliseconds(), duration),
		DurationMillis: duration,
		IsPlaying:      !paused && pos < length,
	}
}

// Release detaches the clip from the speaker and closes it
func (b *Beep) Release(h Handle) error {
	b.mu.Lock()
	t, err := b.track(h)
	if err != nil {
		b.mu.Unlock()
		return err
	}
	b.current = nil
	b.mu.Unlock()

	// Stop the monitor first so the drained Seq callback is not reported as completion
	t.mon.stop()

	speaker.Lock()
	t.ctrl.Paused = true
	t.ctrl.Streamer = nil
	speaker.Unlock()

	err = t.streamer.Close()
	t.file.Close()
	if err != nil {
		return fmt.Errorf("failed to close stream: %w", err)
	}

	b.log.Debug("clip released", zap.String("handle", h.ID))
	return nil
}

// Subscribe registers fn for status updates of h
func (b *Beep) Subscribe(h Handle, fn func(Status)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, err := b.track(h)
	if err != nil {
		return func() {}
	}
	return t.mon.subscribe(fn)
}

// Close releases the loaded clip and clears the speaker
func (b *Beep) Close() error {
	b.mu.Lock()
	t := b.current
	b.mu.Unlock()

	if t != nil {
		if err := b.Release(t.handle); err != nil {
			b.log.Warn("release on close failed", zap.Error(err))
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	speaker.Clear()
	return nil
}
