// ABOUTME: Memory library backed by a directory of recordings
// ABOUTME: Scans audio files and .url links into playback items and watches for changes
package library

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/memorylane/memorylane-go/internal/fetch"
	"github.com/memorylane/memorylane-go/pkg/audio/decode"
	"github.com/memorylane/memorylane-go/pkg/playback"
	"go.uber.org/zap"
)

// LinkExt marks a file holding the URL of a remote recording. An empty
// link file is a memory without audio.
const LinkExt = ".url"

// DefaultDebounce coalesces bursts of filesystem events into one rescan
const DefaultDebounce = 250 * time.Millisecond

// ItemID derives a stable id from a path
func ItemID(path string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(path)).String()
}

type entry struct {
	item    playback.Item
	modTime time.Time
}

// Scan lists the memories in dir, newest first
func Scan(dir string) ([]playback.Item, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve library dir: %w", err)
	}

	dirEntries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read library dir: %w", err)
	}

	var entries []entry
	for _, de := range dirEntries {
		if de.IsDir() || strings.HasPrefix(de.Name(), ".") || !relevant(de.Name()) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(abs, de.Name())
		item := playback.Item{
			ID:      ItemID(path),
			Title:   strings.TrimSuffix(de.Name(), filepath.Ext(de.Name())),
			Locator: path,
		}
		if strings.EqualFold(filepath.Ext(path), LinkExt) {
			if item.Locator, err = readLink(path); err != nil {
				return nil, err
			}
		}
		entries = append(entries, entry{item: item, modTime: info.ModTime()})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].modTime.Equal(entries[j].modTime) {
			return entries[i].item.Title < entries[j].item.Title
		}
		return entries[i].modTime.After(entries[j].modTime)
	})

	items := make([]playback.Item, len(entries))
	for i, e := range entries {
		items[i] = e.item
	}
	return items, nil
}

func relevant(name string) bool {
	return decode.Supported(name) || strings.EqualFold(filepath.Ext(name), LinkExt)
}

// readLink returns the first remote URL in a link file, or "" if none
func readLink(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open link: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if fetch.IsRemote(line) {
			return line, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read link: %w", err)
	}
	return "", nil
}

// Library keeps the latest scan of a directory
type Library struct {
	dir      string
	debounce time.Duration
	log      *zap.Logger

	mu    sync.RWMutex
	items []playback.Item
	byID  map[string]playback.Item

	// clip lengths learned from playback, keyed by item id
	durations map[string]int64
}

// New creates a library for dir; call Refresh to populate it
func New(dir string, logger *zap.Logger) *Library {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Library{
		dir:      dir,
		debounce: DefaultDebounce,
		log:      logger.Named("library"),
		byID:     make(map[string]playback.Item),

		durations: make(map[string]int64),
	}
}

// Dir returns the watched directory
func (l *Library) Dir() string {
	return l.dir
}

// Refresh rescans the directory
func (l *Library) Refresh() ([]playback.Item, error) {
	items, err := Scan(l.dir)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	byID := make(map[string]playback.Item, len(items))
	for i := range items {
		items[i].DurationMillis = l.durations[items[i].ID]
		byID[items[i].ID] = items[i]
	}
	for id := range l.durations {
		if _, ok := byID[id]; !ok {
			delete(l.durations, id)
		}
	}
	l.items = items
	l.byID = byID
	l.mu.Unlock()

	l.log.Debug("library scanned", zap.Int("items", len(items)))
	return items, nil
}

// Items returns the latest scan
func (l *Library) Items() []playback.Item {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]playback.Item(nil), l.items...)
}

// Lookup finds an item by id
func (l *Library) Lookup(id string) (playback.Item, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	it, ok := l.byID[id]
	return it, ok
}

// SetDuration records the length of a listed item once playback has measured it.
// It reports whether the listing changed.
func (l *Library) SetDuration(id string, durationMillis int64) bool {
	if durationMillis <= 0 {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	it, ok := l.byID[id]
	if !ok || it.DurationMillis == durationMillis {
		return false
	}
	it.DurationMillis = durationMillis
	l.byID[id] = it
	l.durations[id] = durationMillis

	items := append([]playback.Item(nil), l.items...)
	for i := range items {
		if items[i].ID == id {
			items[i] = it
		}
	}
	l.items = items
	return true
}

// Watch rescans after filesystem changes and hands each new listing to fn.
// It returns nil when ctx is done.
func (l *Library) Watch(ctx context.Context, fn func([]playback.Item)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating library watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(l.dir); err != nil {
		return fmt.Errorf("watching library dir: %w", err)
	}

	var fire <-chan time.Time
	timer := time.NewTimer(l.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(l.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			items, err := l.Refresh()
			if err != nil {
				l.log.Warn("library rescan failed", zap.Error(err))
				continue
			}
			fn(items)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("library watcher error: %w", err)
		}
	}
}
