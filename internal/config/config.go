package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	appName        = "starlight"
	configFileName = "config.toml"

	DefaultProgressInterval = 250 * time.Millisecond
	DefaultRemoteTimeout    = 30 * time.Second
	DefaultRemoteMaxBytes   = 256 << 20
	DefaultListenAddr       = "127.0.0.1:7655"

	minProgressInterval = 50 * time.Millisecond
	maxProgressInterval = 10 * time.Second
)

type Config struct {
	Playback      PlaybackConfig      `koanf:"playback"`
	Remote        RemoteConfig        `koanf:"remote"`
	Bridge        BridgeConfig        `koanf:"bridge"`
	State         StateConfig         `koanf:"state"`
	MPRIS         MPRISConfig         `koanf:"mpris"`
	Notifications NotificationsConfig `koanf:"notifications"`
	Monitor       MonitorConfig       `koanf:"monitor"`
	LogLevel      string              `koanf:"log_level"` // "debug", "info", "warn" or "error"
}

// PlaybackConfig holds the initial player settings.
type PlaybackConfig struct {
	ProgressInterval time.Duration `koanf:"progress_interval"` // default: 250ms
	Volume           *float64      `koanf:"volume"`            // 0.0-1.0 (default: 1.0)
	Rate             float64       `koanf:"rate"`              // 0.5-2.0 (default: 1.0)
}

// RemoteConfig holds settings for http(s) sources.
type RemoteConfig struct {
	Timeout  time.Duration `koanf:"timeout"`   // default: 30s
	MaxBytes int64         `koanf:"max_bytes"` // download size limit (default: 256MiB)
	TempDir  string        `koanf:"temp_dir"`  // empty means the system temp dir
}

// BridgeConfig holds the websocket bridge settings.
type BridgeConfig struct {
	Listen string `koanf:"listen"`
}

// StateConfig controls persistence of volume, rate and the last session.
type StateConfig struct {
	Disabled bool `koanf:"disabled"`
}

// MPRISConfig controls the desktop media-keys integration.
type MPRISConfig struct {
	Enabled *bool `koanf:"enabled"` // default: true
}

// NotificationsConfig controls desktop notifications for loaded tracks and
// playback errors.
type NotificationsConfig struct {
	Enabled bool `koanf:"enabled"` // default: false
}

// MonitorConfig holds terminal monitor settings.
type MonitorConfig struct {
	Icons string `koanf:"icons"` // "nerd", "unicode" or "none" (default: unicode)
}

func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom loads the given files in order; later files win. Missing files
// are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.Remote.TempDir != "" {
		cfg.Remote.TempDir = expandPath(cfg.Remote.TempDir)
	}
	cfg.Bridge.Listen = strings.TrimSpace(cfg.Bridge.Listen)

	return cfg, nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/starlight/config.toml
		filepath.Join(xdg.ConfigHome, appName, configFileName),
		// 2. ./config.toml (pwd, highest priority)
		configFileName,
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetPlaybackConfig returns the playback configuration with defaults applied.
func (c *Config) GetPlaybackConfig() PlaybackConfig {
	cfg := c.Playback

	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = DefaultProgressInterval
	}
	cfg.ProgressInterval = min(max(cfg.ProgressInterval, minProgressInterval), maxProgressInterval)

	volume := 1.0
	if cfg.Volume != nil && *cfg.Volume >= 0 && *cfg.Volume <= 1 {
		volume = *cfg.Volume
	}
	cfg.Volume = &volume

	if cfg.Rate < 0.5 || cfg.Rate > 2 {
		cfg.Rate = 1
	}

	return cfg
}

// GetRemoteConfig returns the remote source configuration with defaults
// applied.
func (c *Config) GetRemoteConfig() RemoteConfig {
	cfg := c.Remote
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultRemoteTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultRemoteMaxBytes
	}
	return cfg
}

// ListenAddr returns the websocket bridge address.
func (c *Config) ListenAddr() string {
	if c.Bridge.Listen == "" {
		return DefaultListenAddr
	}
	return c.Bridge.Listen
}

// MPRISEnabled returns true unless MPRIS was explicitly disabled.
func (c *Config) MPRISEnabled() bool {
	return c.MPRIS.Enabled == nil || *c.MPRIS.Enabled
}

// SlogLevel parses log_level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}
