// ABOUTME: Tests for configuration loading
// ABOUTME: Covers defaults, config.toml, env overrides and validation
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, dir string) (*Config, error) {
	t.Helper()
	v, err := InitViper(dir)
	require.NoError(t, err)
	return Load(v)
}

func TestDefaultsWithoutConfigFile(t *testing.T) {
	cfg, err := load(t, t.TempDir())
	require.NoError(t, err)

	d := Default()
	assert.Equal(t, d.Playback.SkipIncrement, cfg.Playback.SkipIncrement)
	assert.Equal(t, 15*time.Second, cfg.Playback.SkipIncrement)
	assert.Equal(t, 500*time.Millisecond, cfg.Playback.ProgressInterval)
	assert.Equal(t, EngineOto, cfg.Audio.Engine)
	assert.Equal(t, 44100, cfg.Audio.SampleRate)
	assert.Equal(t, 2, cfg.Audio.Channels)
	assert.Equal(t, 8928, cfg.Remote.Port)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.True(t, cfg.Feedback.Bell)
	assert.False(t, cfg.Remote.Enabled)
}

func TestLoadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	data := `
[library]
dir = "/srv/memories"

[playback]
skip_increment = "10s"

[audio]
engine = "beep"
channels = 1

[remote]
enabled = true
port = 9000
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(data), 0644))

	cfg, err := load(t, dir)
	require.NoError(t, err)
	assert.Equal(t, "/srv/memories", cfg.Library.Dir)
	assert.Equal(t, 10*time.Second, cfg.Playback.SkipIncrement)
	assert.Equal(t, EngineBeep, cfg.Audio.Engine)
	assert.Equal(t, 1, cfg.Audio.Channels)
	assert.True(t, cfg.Remote.Enabled)
	assert.Equal(t, 9000, cfg.Remote.Port)

	// untouched keys keep their defaults
	assert.Equal(t, 44100, cfg.Audio.SampleRate)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[audio]\nengine = \"beep\"\n"), 0644))
	t.Setenv("MEMORYLANE_AUDIO_ENGINE", "oto")
	t.Setenv("MEMORYLANE_PLAYBACK_SKIP_INCREMENT", "5s")

	cfg, err := load(t, dir)
	require.NoError(t, err)
	assert.Equal(t, EngineOto, cfg.Audio.Engine)
	assert.Equal(t, 5*time.Second, cfg.Playback.SkipIncrement)
}

func TestMalformedConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[audio\nengine ="), 0644))

	_, err := InitViper(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"engine", func(c *Config) { c.Audio.Engine = "alsa" }},
		{"sample rate", func(c *Config) { c.Audio.SampleRate = 0 }},
		{"channels", func(c *Config) { c.Audio.Channels = 6 }},
		{"skip increment", func(c *Config) { c.Playback.SkipIncrement = 0 }},
		{"progress interval", func(c *Config) { c.Playback.ProgressInterval = -time.Second }},
		{"remote port", func(c *Config) { c.Remote.Enabled = true; c.Remote.Port = 70000 }},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
