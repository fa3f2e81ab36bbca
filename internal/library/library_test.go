// ABOUTME: Tests for the memory library
// ABOUTME: Covers scanning order, link files, lookups and the watcher
package library

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/memorylane/memorylane-go/pkg/playback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name, content string, mod time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	require.NoError(t, os.Chtimes(path, mod, mod))
	return path
}

func TestScanNewestFirst(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	touch(t, dir, "wedding.mp3", "", now.Add(-2*time.Hour))
	touch(t, dir, "grandkids.opus", "", now)
	touch(t, dir, "garden.wav", "", now.Add(-time.Hour))
	touch(t, dir, "notes.txt", "", now)
	touch(t, dir, ".hidden.mp3", "", now)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "album.mp3"), 0755))

	items, err := Scan(dir)
	require.NoError(t, err)

	var titles []string
	for _, it := range items {
		titles = append(titles, it.Title)
		assert.True(t, it.HasAudio())
	}
	assert.Equal(t, []string{"grandkids", "garden", "wedding"}, titles)
}

func TestScanIDsAreStable(t *testing.T) {
	dir := t.TempDir()
	path := touch(t, dir, "song.flac", "", time.Now())

	first, err := Scan(dir)
	require.NoError(t, err)
	second, err := Scan(dir)
	require.NoError(t, err)

	require.Len(t, first, 1)
	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	assert.Equal(t, ItemID(abs), first[0].ID)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestScanLinkFiles(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	touch(t, dir, "voicemail.url", "# from the family app\nhttps://example.com/vm.opus\n", now)
	touch(t, dir, "photo-only.url", "", now.Add(-time.Minute))

	items, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "voicemail", items[0].Title)
	assert.Equal(t, "https://example.com/vm.opus", items[0].Locator)
	assert.Equal(t, "photo-only", items[1].Title)
	assert.False(t, items[1].HasAudio())
}

func TestScanMissingDir(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestRefreshAndLookup(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.mp3", "", time.Now())

	lib := New(dir, nil)
	assert.Empty(t, lib.Items())

	items, err := lib.Refresh()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, items, lib.Items())

	got, ok := lib.Lookup(items[0].ID)
	assert.True(t, ok)
	assert.Equal(t, items[0], got)

	_, ok = lib.Lookup("nope")
	assert.False(t, ok)
}

func TestSetDurationSurvivesRefresh(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.mp3", "", time.Now())

	lib := New(dir, nil)
	items, err := lib.Refresh()
	require.NoError(t, err)
	require.Len(t, items, 1)
	id := items[0].ID
	assert.Zero(t, items[0].DurationMillis)

	assert.True(t, lib.SetDuration(id, 42000))
	assert.False(t, lib.SetDuration(id, 42000))
	assert.False(t, lib.SetDuration(id, 0))
	assert.False(t, lib.SetDuration("nope", 1000))

	got, ok := lib.Lookup(id)
	require.True(t, ok)
	assert.Equal(t, int64(42000), got.DurationMillis)
	assert.Equal(t, int64(42000), lib.Items()[0].DurationMillis)

	// the earlier listing is a copy
	assert.Zero(t, items[0].DurationMillis)

	items, err = lib.Refresh()
	require.NoError(t, err)
	assert.Equal(t, int64(42000), items[0].DurationMillis)
}

func TestWatchRescansOnChange(t *testing.T) {
	dir := t.TempDir()
	lib := New(dir, nil)
	lib.debounce = 20 * time.Millisecond

	var mu sync.Mutex
	var latest []playback.Item
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- lib.Watch(ctx, func(items []playback.Item) {
			mu.Lock()
			latest = items
			mu.Unlock()
		})
	}()

	// give the watcher a moment to register
	time.Sleep(50 * time.Millisecond)
	touch(t, dir, "new.mp3", "", time.Now())

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(latest) == 1 && latest[0].Title == "new"
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
