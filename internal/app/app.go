// ABOUTME: Main application orchestration
// ABOUTME: Wires library, fetcher, engine, session, TUI and remote control together
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/memorylane/memorylane-go/internal/config"
	"github.com/memorylane/memorylane-go/internal/fetch"
	"github.com/memorylane/memorylane-go/internal/library"
	"github.com/memorylane/memorylane-go/internal/remote"
	"github.com/memorylane/memorylane-go/internal/ui"
	"github.com/memorylane/memorylane-go/internal/version"
	"github.com/memorylane/memorylane-go/pkg/audio/output"
	"github.com/memorylane/memorylane-go/pkg/feedback"
	"github.com/memorylane/memorylane-go/pkg/playback"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EngineFactory builds the audio engine around a resolver
type EngineFactory func(settings *config.Config, resolver output.Resolver, logger *zap.Logger) (output.Engine, error)

// Config holds application configuration
type Config struct {
	Settings *config.Config
	UseTUI   bool
	Logger   *zap.Logger

	// NewEngine defaults to DefaultEngine
	NewEngine EngineFactory
}

// App owns every long-lived component
type App struct {
	config   Config
	settings *config.Config
	log      *zap.Logger

	fetcher  *fetch.Fetcher
	engine   output.Engine
	session  *playback.Session
	library  *library.Library
	notifier *feedback.Notifier
	remote   *remote.Server

	mu      sync.RWMutex
	tuiProg *tea.Program
	onState func(playback.State)
}

// DefaultEngine builds the engine named by audio.engine
func DefaultEngine(settings *config.Config, resolver output.Resolver, logger *zap.Logger) (output.Engine, error) {
	switch settings.Audio.Engine {
	case config.EngineBeep:
		return output.NewBeep(output.BeepConfig{
			SampleRate:       settings.Audio.SampleRate,
			ProgressInterval: settings.Playback.ProgressInterval,
			Resolver:         resolver,
			Logger:           logger,
		})
	default:
		return output.NewOto(output.OtoConfig{
			SampleRate:       settings.Audio.SampleRate,
			Channels:         settings.Audio.Channels,
			ProgressInterval: settings.Playback.ProgressInterval,
			Resolver:         resolver,
			Logger:           logger,
		})
	}
}

// New builds the application; nothing runs until Run or Play
func New(cfg Config) (*App, error) {
	if cfg.Settings == nil {
		cfg.Settings = config.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.NewEngine == nil {
		cfg.NewEngine = DefaultEngine
	}
	settings := cfg.Settings

	a := &App{
		config:   cfg,
		settings: settings,
		log:      cfg.Logger,
		library:  library.New(settings.Library.Dir, cfg.Logger),
	}

	fetcher, err := fetch.New(fetch.Config{
		CacheDir: settings.Cache.Dir,
		Timeout:  settings.Fetch.Timeout,
		Logger:   cfg.Logger,
	})
	if err != nil {
		return nil, err
	}
	a.fetcher = fetcher

	engine, err := cfg.NewEngine(settings, fetcher, cfg.Logger.Named("engine"))
	if err != nil {
		return nil, fmt.Errorf("failed to create audio engine: %w", err)
	}
	a.engine = engine

	session, err := playback.New(playback.Config{
		Engine:        engine,
		SkipIncrement: settings.Playback.SkipIncrement,
		Feedback:      a.buildFeedback(),
		Logger:        cfg.Logger,
		OnStateChange: a.publishState,
	})
	if err != nil {
		engine.Close()
		return nil, err
	}
	a.session = session

	if settings.Remote.Enabled {
		a.remote, err = remote.New(remote.Config{
			Port:       settings.Remote.Port,
			Name:       version.Product,
			Controller: session,
			Catalog:    a.library,
			EnableMDNS: settings.Remote.MDNS,
			Logger:     cfg.Logger,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	return a, nil
}

func (a *App) buildFeedback() playback.Feedback {
	var sinks feedback.Multi
	if a.settings.Feedback.Bell {
		sinks = append(sinks, feedback.NewBell())
	}
	if a.settings.Feedback.Notify {
		a.notifier = feedback.NewNotifier(version.Product, a.title)
		sinks = append(sinks, a.notifier)
	}
	if len(sinks) == 0 {
		return nil
	}
	return sinks
}

// title maps an item id to its display title
func (a *App) title(itemID string) string {
	if it, ok := a.library.Lookup(itemID); ok {
		return it.Title
	}
	return itemID
}

// Session exposes the playback session
func (a *App) Session() *playback.Session {
	return a.session
}

// Library exposes the memory library
func (a *App) Library() *library.Library {
	return a.library
}

// publishState fans a session snapshot out to the UI and remote clients
func (a *App) publishState(st playback.State) {
	a.mu.RLock()
	prog, hook := a.tuiProg, a.onState
	a.mu.RUnlock()

	if prog != nil {
		prog.Send(ui.StatusMsg{State: st})
	}
	if a.remote != nil {
		a.remote.PublishState(st)
	}
	if st.ActiveItemID != "" && a.library.SetDuration(st.ActiveItemID, st.DurationMillis) {
		a.publishItems(a.library.Items())
	}
	if hook != nil {
		hook(st)
	}
}

func (a *App) publishItems(items []playback.Item) {
	a.mu.RLock()
	prog := a.tuiProg
	a.mu.RUnlock()

	if prog != nil {
		prog.Send(ui.ItemsMsg{Items: items})
	}
	if a.remote != nil {
		a.remote.PublishItems(items)
	}
}

func (a *App) notice(message string) {
	if a.notifier == nil {
		return
	}
	if err := a.notifier.Notice(message); err != nil {
		a.log.Debug("notice failed", zap.Error(err))
	}
}

// Run scans the library and serves the UI and remote control until ctx is
// done or the user quits
func (a *App) Run(ctx context.Context) error {
	items, err := a.library.Refresh()
	if err != nil {
		return err
	}
	a.log.Info("library loaded", zap.String("dir", a.library.Dir()), zap.Int("items", len(items)))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.library.Watch(gctx, a.publishItems)
	})

	if a.remote != nil {
		g.Go(func() error {
			return a.remote.Run(gctx)
		})
	}

	if a.config.UseTUI {
		prog := ui.Run(gctx, ui.Config{
			Controller: a.session,
			Items:      items,
			OnNotice:   a.notice,
		})
		a.mu.Lock()
		a.tuiProg = prog
		a.mu.Unlock()

		g.Go(func() error {
			defer cancel()
			_, err := prog.Run()
			a.mu.Lock()
			a.tuiProg = nil
			a.mu.Unlock()
			if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("TUI error: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		a.session.Stop()
		return nil
	})

	return g.Wait()
}

// Play plays one locator to completion, or until ctx is done
func (a *App) Play(ctx context.Context, locator string) error {
	finished := make(chan struct{})
	var once sync.Once
	a.mu.Lock()
	a.onState = func(st playback.State) {
		if st.Phase == playback.PhaseIdle {
			once.Do(func() { close(finished) })
		}
	}
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.onState = nil
		a.mu.Unlock()
	}()

	if err := a.session.Toggle(ctx, library.ItemID(locator), locator); err != nil {
		return err
	}
	a.log.Info("playing", zap.String("locator", locator))

	select {
	case <-finished:
	case <-ctx.Done():
		a.session.Stop()
	}
	return nil
}

// Close tears down the session and then the engine
func (a *App) Close() error {
	var errs []error
	if a.session != nil {
		errs = append(errs, a.session.Close())
	}
	if a.engine != nil {
		errs = append(errs, a.engine.Close())
	}
	return errors.Join(errs...)
}
