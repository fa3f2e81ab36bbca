// ABOUTME: Application configuration
// ABOUTME: Defaults, config.toml discovery and MEMORYLANE_ environment overrides via viper
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to every environment override, e.g. MEMORYLANE_AUDIO_ENGINE
	EnvPrefix = "MEMORYLANE"

	// DirName is the default config directory under the user's home
	DirName = ".memorylane"

	EngineOto  = "oto"
	EngineBeep = "beep"
)

// Config is the full application configuration
type Config struct {
	Library  LibraryConfig  `mapstructure:"library"`
	Playback PlaybackConfig `mapstructure:"playback"`
	Audio    AudioConfig    `mapstructure:"audio"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Remote   RemoteConfig   `mapstructure:"remote"`
	Feedback FeedbackConfig `mapstructure:"feedback"`
	Log      LogConfig      `mapstructure:"log"`
}

type LibraryConfig struct {
	Dir string `mapstructure:"dir"`
}

type PlaybackConfig struct {
	SkipIncrement    time.Duration `mapstructure:"skip_increment"`
	ProgressInterval time.Duration `mapstructure:"progress_interval"`
}

type AudioConfig struct {
	Engine     string `mapstructure:"engine"`
	SampleRate int    `mapstructure:"sample_rate"`
	Channels   int    `mapstructure:"channels"`
}

type CacheConfig struct {
	Dir string `mapstructure:"dir"`
}

type FetchConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type RemoteConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
	MDNS    bool `mapstructure:"mdns"`
}

type FeedbackConfig struct {
	Bell   bool `mapstructure:"bell"`
	Notify bool `mapstructure:"notify"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Debug bool   `mapstructure:"debug"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Library: LibraryConfig{Dir: "."},
		Playback: PlaybackConfig{
			SkipIncrement:    15 * time.Second,
			ProgressInterval: 500 * time.Millisecond,
		},
		Audio: AudioConfig{
			Engine:     EngineOto,
			SampleRate: 44100,
			Channels:   2,
		},
		Cache:    CacheConfig{Dir: filepath.Join(os.TempDir(), "memorylane-cache")},
		Fetch:    FetchConfig{Timeout: 30 * time.Second},
		Remote:   RemoteConfig{Port: 8928, MDNS: true},
		Feedback: FeedbackConfig{Bell: true},
		Log:      LogConfig{File: "memorylane.log"},
	}
}

// InitViper returns a viper instance with defaults, the optional
// config.toml from configDir (or ~/.memorylane) and env overrides.
//
// Precedence, highest first: bound flags, MEMORYLANE_* env, config.toml, defaults.
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	dir, err := resolveDir(configDir)
	if err != nil {
		return nil, err
	}
	if dir != "" {
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

func resolveDir(configDir string) (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("library.dir", d.Library.Dir)

	v.SetDefault("playback.skip_increment", d.Playback.SkipIncrement)
	v.SetDefault("playback.progress_interval", d.Playback.ProgressInterval)

	v.SetDefault("audio.engine", d.Audio.Engine)
	v.SetDefault("audio.sample_rate", d.Audio.SampleRate)
	v.SetDefault("audio.channels", d.Audio.Channels)

	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("fetch.timeout", d.Fetch.Timeout)

	v.SetDefault("remote.enabled", d.Remote.Enabled)
	v.SetDefault("remote.port", d.Remote.Port)
	v.SetDefault("remote.mdns", d.Remote.MDNS)

	v.SetDefault("feedback.bell", d.Feedback.Bell)
	v.SetDefault("feedback.notify", d.Feedback.Notify)

	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.debug", d.Log.Debug)
}

// Load decodes and validates the configuration held by v
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	switch c.Audio.Engine {
	case EngineOto, EngineBeep:
	default:
		return fmt.Errorf("invalid audio.engine %q: want %s or %s", c.Audio.Engine, EngineOto, EngineBeep)
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("invalid audio.sample_rate %d", c.Audio.SampleRate)
	}
	if c.Audio.Channels != 1 && c.Audio.Channels != 2 {
		return fmt.Errorf("invalid audio.channels %d: want 1 or 2", c.Audio.Channels)
	}
	if c.Playback.SkipIncrement <= 0 {
		return fmt.Errorf("invalid playback.skip_increment %s", c.Playback.SkipIncrement)
	}
	if c.Playback.ProgressInterval <= 0 {
		return fmt.Errorf("invalid playback.progress_interval %s", c.Playback.ProgressInterval)
	}
	if c.Remote.Enabled && (c.Remote.Port <= 0 || c.Remote.Port > 65535) {
		return fmt.Errorf("invalid remote.port %d", c.Remote.Port)
	}
	return nil
}
