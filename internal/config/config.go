// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/toastd/internal/model"
)

// Default configuration values.
const (
	DefaultCapacity      = 6
	DefaultSweepInterval = 100 * time.Millisecond
	DefaultHideAfter     = model.DefaultHideAfter
	DefaultWidth         = 40
	DefaultLogLevel      = "info"
	DefaultTheme         = "default"

	MaxCapacity      = 1000
	MinSweepInterval = 10 * time.Millisecond
	MinWidth         = 10
	MaxWidth         = 200
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "6s", "100ms", "1m30s", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))

	// Bare integers are milliseconds
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '6s', '100ms', '1m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config is the toastd configuration.
// Loaded from ~/.config/toastd/toastd.toml
type Config struct {
	Manager  ManagerConfig  `toml:"manager"`
	Defaults DefaultsConfig `toml:"defaults"`
	Render   RenderConfig   `toml:"render"`
	DBus     DBusConfig     `toml:"dbus"`
	Log      LogConfig      `toml:"log"`
}

// ManagerConfig bounds the live toast set.
type ManagerConfig struct {
	Capacity      int      `toml:"capacity"`       // Oldest toasts are evicted past this
	SweepInterval Duration `toml:"sweep_interval"` // How often expired toasts are collected
}

// DefaultsConfig applies to toasts that don't say otherwise.
type DefaultsConfig struct {
	HideAfter Duration `toml:"hide_after"` // "0" hides on the next sweep
	Permanent bool     `toml:"permanent"`  // Ignore hide_after, keep until closed
	Position  string   `toml:"position"`   // "bottom-left", "top-right", etc.
	Closable  bool     `toml:"closable"`
}

// RenderConfig contains terminal rendering settings.
type RenderConfig struct {
	Width   int    `toml:"width"` // Column width in cells
	ShowIDs bool   `toml:"show_ids"`
	Theme   string `toml:"theme"` // Bundled or ~/.config/toastd/themes/<name>.toml
}

// DBusConfig contains notification server settings.
type DBusConfig struct {
	Enabled         bool `toml:"enabled"`
	ReplaceExisting bool `toml:"replace_existing"` // Take the bus name from another daemon
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Manager: ManagerConfig{
			Capacity:      DefaultCapacity,
			SweepInterval: Duration(DefaultSweepInterval),
		},
		Defaults: DefaultsConfig{
			HideAfter: Duration(DefaultHideAfter),
			Position:  model.PositionBottomLeft.String(),
			Closable:  true,
		},
		Render: RenderConfig{
			Width: DefaultWidth,
			Theme: DefaultTheme,
		},
		DBus: DBusConfig{
			Enabled:         true,
			ReplaceExisting: true,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "toastd", "toastd.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig overlays TOML data on the defaults and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Manager.Capacity < 0 || c.Manager.Capacity > MaxCapacity {
		return fmt.Errorf("%w: manager.capacity must be between 0 and %d, got %d",
			ErrInvalidConfig, MaxCapacity, c.Manager.Capacity)
	}
	if c.Manager.SweepInterval.Duration() < MinSweepInterval {
		return fmt.Errorf("%w: manager.sweep_interval must be at least %s, got %s",
			ErrInvalidConfig, MinSweepInterval, c.Manager.SweepInterval.Duration())
	}
	if c.Defaults.HideAfter < 0 {
		return fmt.Errorf("%w: defaults.hide_after must not be negative, got %s",
			ErrInvalidConfig, c.Defaults.HideAfter.Duration())
	}
	if _, err := model.ParsePosition(c.Defaults.Position); err != nil {
		return fmt.Errorf("%w: defaults.position: %v", ErrInvalidConfig, err)
	}
	if c.Render.Width < MinWidth || c.Render.Width > MaxWidth {
		return fmt.Errorf("%w: render.width must be between %d and %d, got %d",
			ErrInvalidConfig, MinWidth, MaxWidth, c.Render.Width)
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
	}
	return nil
}

// DefaultPosition returns the parsed default position.
func (d DefaultsConfig) DefaultPosition() model.Position {
	p, err := model.ParsePosition(d.Position)
	if err != nil {
		return model.PositionBottomLeft
	}
	return p
}

// TTL returns the default time-to-live, or nil when toasts are permanent by default.
func (d DefaultsConfig) TTL() *time.Duration {
	if d.Permanent {
		return nil
	}
	return model.Duration(d.HideAfter.Duration())
}

// Content builds toast content carrying these defaults.
func (d DefaultsConfig) Content(body, heading string, icon model.Icon) model.Content {
	return model.Content{
		Heading:   heading,
		Body:      body,
		Closable:  d.Closable,
		Position:  d.DefaultPosition(),
		Icon:      icon,
		HideAfter: d.TTL(),
	}
}

// ParseLogLevel converts a config level name to a slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
