package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tbeckett/grammarsmith/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify grammarsmith configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/grammarsmith/config.yaml
Project-specific overrides can be placed in .grammarsmith.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	poolDisplay := "auto"
	if cfg.Engine.PoolSize > 0 {
		poolDisplay = strconv.Itoa(cfg.Engine.PoolSize)
	}

	fmt.Printf("engine.pool_size: %s\n", poolDisplay)
	fmt.Printf("engine.default_timeout: %s\n", cfg.Engine.DefaultTimeout)
	fmt.Printf("engine.gc_between_waves: %t\n", cfg.Engine.GCBetweenWaves)
	fmt.Printf("output.dir: %s\n", cfg.Output.Dir)
	fmt.Printf("tui.enabled: %t\n", cfg.TUI.Enabled)
	fmt.Printf("tui.refresh_rate: %s\n", cfg.TUI.RefreshRate)
	fmt.Printf("watch.debounce: %s\n", cfg.Watch.Debounce)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "engine.pool_size":
		if cfg.Engine.PoolSize == 0 {
			return "auto", nil
		}
		return strconv.Itoa(cfg.Engine.PoolSize), nil
	case "engine.default_timeout":
		return cfg.Engine.DefaultTimeout.String(), nil
	case "engine.gc_between_waves":
		return strconv.FormatBool(cfg.Engine.GCBetweenWaves), nil
	case "output.dir":
		return cfg.Output.Dir, nil
	case "tui.enabled":
		return strconv.FormatBool(cfg.TUI.Enabled), nil
	case "tui.refresh_rate":
		return cfg.TUI.RefreshRate.String(), nil
	case "watch.debounce":
		return cfg.Watch.Debounce.String(), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "engine.pool_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for pool_size: %w", err)
		}
		cfg.Engine.PoolSize = n
	case "engine.default_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for default_timeout: %w", err)
		}
		cfg.Engine.DefaultTimeout = d
	case "engine.gc_between_waves":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for gc_between_waves: %w", err)
		}
		cfg.Engine.GCBetweenWaves = b
	case "output.dir":
		cfg.Output.Dir = value
	case "tui.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for tui.enabled: %w", err)
		}
		cfg.TUI.Enabled = b
	case "tui.refresh_rate":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for refresh_rate: %w", err)
		}
		cfg.TUI.RefreshRate = d
	case "watch.debounce":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for debounce: %w", err)
		}
		cfg.Watch.Debounce = d
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
