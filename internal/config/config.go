package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"

	"ext2view/internal/app"
)

const (
	CurrentVersion = 1
	EnvPrefix      = "EXT2VIEW"

	DefaultBackendURL    = "http://127.0.0.1:8080"
	DefaultCapacity      = 100
	DefaultDoubleClickMS = 400
)

type Config struct {
	Version  int            `json:"version"`
	Backend  BackendConfig  `json:"backend"`
	Terminal TerminalConfig `json:"terminal"`
	Theme    ThemeConfig    `json:"theme"`
	Log      LogConfig      `json:"log"`
}

type BackendConfig struct {
	URL            string `json:"url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type TerminalConfig struct {
	Capacity      int `json:"capacity"`
	DoubleClickMS int `json:"double_click_ms"`
}

type ThemeConfig struct {
	Active string `json:"active"`
}

type LogConfig struct {
	Level string `json:"level"`
	Path  string `json:"path"`
}

// envOverrides mirrors the fields that may be set from EXT2VIEW_* variables.
// Zero values mean "not set".
type envOverrides struct {
	BackendURL     string `envconfig:"BACKEND_URL"`
	BackendTimeout int    `envconfig:"BACKEND_TIMEOUT_SECONDS"`
	Capacity       int    `envconfig:"TERMINAL_CAPACITY"`
	Theme          string `envconfig:"THEME"`
	LogLevel       string `envconfig:"LOG_LEVEL"`
	LogPath        string `envconfig:"LOG_PATH"`
}

func Default() Config {
	return Config{
		Version: CurrentVersion,
		Backend: BackendConfig{
			URL: DefaultBackendURL,
		},
		Terminal: TerminalConfig{
			Capacity:      DefaultCapacity,
			DoubleClickMS: DefaultDoubleClickMS,
		},
		Theme: ThemeConfig{
			Active: "default",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func EnsureDefaults(cfg *Config) {
	if cfg.Version <= 0 {
		cfg.Version = CurrentVersion
	}
	if cfg.Backend.URL == "" {
		cfg.Backend.URL = DefaultBackendURL
	}
	if cfg.Backend.TimeoutSeconds < 0 {
		cfg.Backend.TimeoutSeconds = 0
	}
	if cfg.Terminal.Capacity <= 0 {
		cfg.Terminal.Capacity = DefaultCapacity
	}
	if cfg.Terminal.DoubleClickMS <= 0 {
		cfg.Terminal.DoubleClickMS = DefaultDoubleClickMS
	}
	if cfg.Theme.Active == "" {
		cfg.Theme.Active = "default"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// ApplyEnv overlays EXT2VIEW_* environment variables on cfg.
func ApplyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("read %s_* environment: %w", EnvPrefix, err)
	}
	if env.BackendURL != "" {
		cfg.Backend.URL = env.BackendURL
	}
	if env.BackendTimeout > 0 {
		cfg.Backend.TimeoutSeconds = env.BackendTimeout
	}
	if env.Capacity > 0 {
		cfg.Terminal.Capacity = env.Capacity
	}
	if env.Theme != "" {
		cfg.Theme.Active = env.Theme
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogPath != "" {
		cfg.Log.Path = env.LogPath
	}
	return nil
}

func (c Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

func (c Config) DoubleClickWindow() time.Duration {
	return time.Duration(c.Terminal.DoubleClickMS) * time.Millisecond
}

// LogPath is the configured log file, or the default one under the config
// directory.
func (c Config) LogPath() (string, error) {
	if c.Log.Path != "" {
		return c.Log.Path, nil
	}
	return app.DefaultLogPath()
}

func Dir() (string, error) {
	return app.ConfigDir()
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func ThemesDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "themes"), nil
}

func Load() (Config, error) {
	cfgPath, err := Path()
	if err != nil {
		return Config{}, err
	}
	if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		if err := Save(cfg); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}
	b, err := os.ReadFile(cfgPath)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", cfgPath, err)
	}
	EnsureDefaults(&cfg)
	return cfg, nil
}

// LoadWithEnv is Load followed by ApplyEnv. Environment values are not
// written back to the file.
func LoadWithEnv() (Config, error) {
	cfg, err := Load()
	if err != nil {
		return Config{}, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	EnsureDefaults(&cfg)
	return cfg, nil
}

func Save(cfg Config) error {
	EnsureDefaults(&cfg)
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	themesDir := filepath.Join(dir, "themes")
	if err := os.MkdirAll(themesDir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	tmp := filepath.Join(dir, "config.json.tmp")
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(dir, "config.json"))
}
