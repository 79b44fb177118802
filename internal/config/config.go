// Package config handles configuration loading and management for
// grammarsmith. It supports XDG config paths, project-level overrides,
// and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

// maxDefaultPoolSize caps the automatic pool size on large machines.
const maxDefaultPoolSize = 8

// Config holds all configuration for grammarsmith.
type Config struct {
	Engine EngineConfig `mapstructure:"engine"`
	Output OutputConfig `mapstructure:"output"`
	TUI    TUIConfig    `mapstructure:"tui"`
	Watch  WatchConfig  `mapstructure:"watch"`
}

// EngineConfig holds execution engine settings.
type EngineConfig struct {
	// PoolSize is the worker pool size. Zero means auto (CPU count,
	// capped).
	PoolSize int `mapstructure:"pool_size"`
	// DefaultTimeout bounds tasks that carry no timeout of their own.
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
	// GCBetweenWaves forces a garbage collection between waves.
	GCBetweenWaves bool `mapstructure:"gc_between_waves"`
}

// OutputConfig holds artifact output settings.
type OutputConfig struct {
	// Dir is the directory generated extensions are written to.
	Dir string `mapstructure:"dir"`
}

// TUIConfig holds TUI display settings.
type TUIConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	RefreshRate time.Duration `mapstructure:"refresh_rate"`
}

// WatchConfig holds watch-mode settings.
type WatchConfig struct {
	// Debounce is how long to wait after a change before regenerating.
	Debounce time.Duration `mapstructure:"debounce"`
}

// EffectivePoolSize resolves the configured pool size, falling back to
// the CPU count capped at maxDefaultPoolSize.
func (ec EngineConfig) EffectivePoolSize() int {
	if ec.PoolSize > 0 {
		return ec.PoolSize
	}
	n := runtime.NumCPU()
	if n > maxDefaultPoolSize {
		n = maxDefaultPoolSize
	}
	return n
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (GRAMMARSMITH_*)
// 2. Project config (.grammarsmith.yaml in current directory or parent)
// 3. User config (~/.config/grammarsmith/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Project config takes precedence over the user config.
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("GRAMMARSMITH")
	v.AutomaticEnv()
	v.BindEnv("engine.pool_size", "GRAMMARSMITH_POOL_SIZE")
	v.BindEnv("engine.default_timeout", "GRAMMARSMITH_DEFAULT_TIMEOUT")
	v.BindEnv("output.dir", "GRAMMARSMITH_OUTPUT_DIR")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Output.Dir = os.ExpandEnv(cfg.Output.Dir)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Output.Dir = os.ExpandEnv(cfg.Output.Dir)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("engine.pool_size", cfg.Engine.PoolSize)
	v.Set("engine.default_timeout", cfg.Engine.DefaultTimeout.String())
	v.Set("engine.gc_between_waves", cfg.Engine.GCBetweenWaves)
	v.Set("output.dir", cfg.Output.Dir)
	v.Set("tui.enabled", cfg.TUI.Enabled)
	v.Set("tui.refresh_rate", cfg.TUI.RefreshRate.String())
	v.Set("watch.debounce", cfg.Watch.Debounce.String())

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.pool_size", 0)
	v.SetDefault("engine.default_timeout", "30s")
	v.SetDefault("engine.gc_between_waves", false)

	v.SetDefault("output.dir", "extension")

	v.SetDefault("tui.enabled", true)
	v.SetDefault("tui.refresh_rate", "100ms")

	v.SetDefault("watch.debounce", "300ms")
}

// getUserConfigDir returns the XDG config directory for grammarsmith.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "grammarsmith")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "grammarsmith")
	}
	return filepath.Join(home, ".config", "grammarsmith")
}

// findProjectConfig searches for .grammarsmith.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".grammarsmith.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			PoolSize:       0,
			DefaultTimeout: 30 * time.Second,
			GCBetweenWaves: false,
		},
		Output: OutputConfig{
			Dir: "extension",
		},
		TUI: TUIConfig{
			Enabled:     true,
			RefreshRate: 100 * time.Millisecond,
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
	}
}
