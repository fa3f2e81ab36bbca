// ABOUTME: Tests for logger construction
// ABOUTME: Checks level filtering, fan-out and log file handling
package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(false, &buf)
	l.Info("hello", zap.String("key", "value"))

	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "value")
}

func TestNewFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	New(false, &buf).Debug("hidden")
	assert.Empty(t, buf.String())

	New(true, &buf).Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewFansOut(t *testing.T) {
	var a, b bytes.Buffer
	New(false, &a, &b).Warn("both")

	assert.Contains(t, a.String(), "both")
	assert.Contains(t, b.String(), "both")
}

func TestOpenFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memorylane.log")

	for _, msg := range []string{"first", "second"} {
		f, err := OpenFile(path)
		require.NoError(t, err)
		l := New(false, f)
		l.Info(msg)
		_ = l.Sync()
		require.NoError(t, f.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first")
	assert.Contains(t, string(data), "second")
}

func TestOpenFileMissingDir(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "missing", "x.log"))
	assert.Error(t, err)
}

func TestForModeTUILogsToFileOnly(t *testing.T) {
	var buf bytes.Buffer
	ForMode(false, true, &buf).Info("quiet")
	assert.Contains(t, buf.String(), "quiet")
}
