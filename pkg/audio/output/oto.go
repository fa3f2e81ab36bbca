// ABOUTME: Oto-based audio engine implementation
// ABOUTME: Plays decoded memory clips through a single oto context and player
package output

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/google/uuid"
	"github.com/memorylane/memorylane-go/pkg/audio"
	"github.com/memorylane/memorylane-go/pkg/audio/decode"
	"go.uber.org/zap"
)

// OtoConfig holds oto engine configuration
type OtoConfig struct {
	// SampleRate is the device output rate; clips are resampled to it (default: 44100)
	SampleRate int

	// Channels is the device channel count (default: 2)
	Channels int

	// ProgressInterval is the status publishing period (default: 500ms)
	ProgressInterval time.Duration

	// Resolver turns locators into local paths (default: FileResolver)
	Resolver Resolver

	Logger *zap.Logger
}

// Oto engine implementation using the oto library
type Oto struct {
	config OtoConfig
	format audio.Format
	otoCtx *oto.Context
	log    *zap.Logger

	mu      sync.Mutex
	current *otoTrack
	closed  bool
}

// otoTrack bundles everything owned by one loaded handle
type otoTrack struct {
	handle  Handle
	src     *lockedClip
	player  *oto.Player
	mon     *monitor
	started bool
	paused  bool
}

// NewOto creates the oto context. oto allows one context per process.
func NewOto(config OtoConfig) (*Oto, error) {
	if config.SampleRate == 0 {
		config.SampleRate = 44100
	}
	if config.Channels == 0 {
		config.Channels = 2
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

	op := &oto.NewContextOptions{
		SampleRate:   config.SampleRate,
		ChannelCount: config.Channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	config.Logger.Info("audio output initialized",
		zap.Int("sample_rate", config.SampleRate),
		zap.Int("channels", config.Channels))

	return &Oto{
		config: config,
		format: audio.Format{SampleRate: config.SampleRate, Channels: config.Channels, BitDepth: 16},
		otoCtx: ctx,
		log:    config.Logger,
	}, nil
}

// Load resolves, decodes and converts the clip, then parks it paused
func (o *Oto) Load(ctx context.Context, locator string) (Handle, error) {
	if err := o.checkIdle(); err != nil {
		return Handle{}, err
	}

	path, err := o.config.Resolver.Resolve(ctx, locator)
	if err != nil {
		return Handle{}, err
	}

	clip, err := decode.Open(path)
	if err != nil {
		return Handle{}, err
	}
	clip = clip.Convert(o.format.SampleRate, o.format.Channels)

	if err := ctx.Err(); err != nil {
		return Handle{}, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return Handle{}, ErrEngineClosed
	}
	if o.current != nil {
		return Handle{}, ErrBusy
	}

	h := Handle{ID: uuid.NewString(), Locator: locator, DurationMillis: clip.DurationMillis()}
	t := &otoTrack{
		handle: h,
		src:    &lockedClip{clip: clip},
	}
	t.player = o.otoCtx.NewPlayer(t.src)
	t.mon = newMonitor(h, o.config.ProgressInterval, func() Status { return o.status(t) })
	o.current = t
	go t.mon.run()

	o.log.Debug("clip loaded",
		zap.String("handle", h.ID),
		zap.String("locator", locator),
		zap.Int64("duration_ms", clip.DurationMillis()))

	return h, nil
}

func (o *Oto) checkIdle() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrEngineClosed
	}
	if o.current != nil {
		return ErrBusy
	}
	return nil
}

// track returns the live track for h. Caller holds o.mu.
func (o *Oto) track(h Handle) (*otoTrack, error) {
	if o.closed {
		return nil, ErrEngineClosed
	}
	if o.current == nil || o.current.handle.ID != h.ID {
		return nil, ErrUnknownHandle
	}
	return o.current, nil
}

// Play starts or resumes output
func (o *Oto) Play(h Handle) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	t, err := o.track(h)
	if err != nil {
		return err
	}
	t.player.Play()
	t.started = true
	t.paused = false
	return nil
}

// Pause suspends output
func (o *Oto) Pause(h Handle) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	t, err := o.track(h)
	if err != nil {
		return err
	}
	t.player.Pause()
	t.paused = true
	return nil
}

// Seek moves the playhead, discarding buffered audio
func (o *Oto) Seek(h Handle, positionMillis int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	t, err := o.track(h)
	if err != nil {
		return err
	}

	target := clampMillis(positionMillis, t.src.durationMillis())
	if _, err := t.player.Seek(o.format.MillisToBytes(target), io.SeekStart); err != nil {
		return fmt.Errorf("seek failed: %w", err)
	}
	return nil
}

// Position reports the audible playhead
func (o *Oto) Position(h Handle) (int64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	t, err := o.track(h)
	if err != nil {
		return 0, err
	}
	return o.position(t), nil
}

// position subtracts what oto has buffered but not yet played from what it consumed
func (o *Oto) position(t *otoTrack) int64 {
	played := t.src.offset() - int64(t.player.BufferedSize())
	if played < 0 {
		played = 0
	}
	return o.format.BytesToMillis(played)
}

// status is polled by the monitor goroutine
func (o *Oto) status(t *otoTrack) Status {
	o.mu.Lock()
	defer o.mu.Unlock()

	duration := t.src.durationMillis()
	playing := t.player.IsPlaying()
	finished := t.started && !t.paused && !playing && t.src.offset() >= t.src.size()

	return Status{
		PositionMillis: clampMillis(o.position(t), duration),
		DurationMillis: duration,
		IsPlaying:      playing,
		DidFinish:      finished,
	}
}

// Release stops and unloads the clip
func (o *Oto) Release(h Handle) error {
	o.mu.Lock()
	t, err := o.track(h)
	if err != nil {
		o.mu.Unlock()
		return err
	}
	o.current = nil
	o.mu.Unlock()

	t.mon.stop()
	t.player.Pause()
	if err := t.player.Close(); err != nil {
		return fmt.Errorf("failed to close player: %w", err)
	}

	o.log.Debug("clip released", zap.String("handle", h.ID))
	return nil
}

// Subscribe registers fn for status updates of h
func (o *Oto) Subscribe(h Handle, fn func(Status)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	t, err := o.track(h)
	if err != nil {
		return func() {}
	}
	return t.mon.subscribe(fn)
}

// Close releases the loaded clip and suspends the device
func (o *Oto) Close() error {
	o.mu.Lock()
	t := o.current
	o.mu.Unlock()

	if t != nil {
		if err := o.Release(t.handle); err != nil {
			o.log.Warn("release on close failed", zap.Error(err))
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true
	return o.otoCtx.Suspend()
}

// lockedClip guards a clip so oto's reader goroutine and position queries do not race
type lockedClip struct {
	mu   sync.Mutex
	clip *decode.Clip
}

func (c *lockedClip) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clip.Read(p)
}

func (c *lockedClip) Seek(offset int64, whence int) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clip.Seek(offset, whence)
}

func (c *lockedClip) offset() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clip.Size() - int64(c.clip.Len())
}

func (c *lockedClip) size() int64 {
	return c.clip.Size()
}

func (c *lockedClip) durationMillis() int64 {
	return c.clip.DurationMillis()
}
