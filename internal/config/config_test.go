package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Engine.PoolSize != 0 {
		t.Errorf("expected auto pool size (0), got %d", cfg.Engine.PoolSize)
	}

	if cfg.Engine.DefaultTimeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", cfg.Engine.DefaultTimeout)
	}

	if cfg.Engine.GCBetweenWaves {
		t.Error("expected gc_between_waves to default off")
	}

	if cfg.Output.Dir != "extension" {
		t.Errorf("expected output dir 'extension', got %q", cfg.Output.Dir)
	}

	if cfg.TUI.RefreshRate != 100*time.Millisecond {
		t.Errorf("expected refresh rate 100ms, got %v", cfg.TUI.RefreshRate)
	}

	if cfg.Watch.Debounce != 300*time.Millisecond {
		t.Errorf("expected watch debounce 300ms, got %v", cfg.Watch.Debounce)
	}
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
engine:
  pool_size: 4
  default_timeout: 10s
  gc_between_waves: true
output:
  dir: build/ext
tui:
  enabled: false
  refresh_rate: 200ms
watch:
  debounce: 1s
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Engine.PoolSize != 4 {
		t.Errorf("expected pool size 4, got %d", cfg.Engine.PoolSize)
	}

	if cfg.Engine.DefaultTimeout != 10*time.Second {
		t.Errorf("expected default timeout 10s, got %v", cfg.Engine.DefaultTimeout)
	}

	if !cfg.Engine.GCBetweenWaves {
		t.Error("expected gc_between_waves to be true")
	}

	if cfg.Output.Dir != "build/ext" {
		t.Errorf("expected output dir 'build/ext', got %q", cfg.Output.Dir)
	}

	if cfg.TUI.Enabled {
		t.Error("expected tui.enabled to be false")
	}

	if cfg.TUI.RefreshRate != 200*time.Millisecond {
		t.Errorf("expected refresh rate 200ms, got %v", cfg.TUI.RefreshRate)
	}

	if cfg.Watch.Debounce != time.Second {
		t.Errorf("expected watch debounce 1s, got %v", cfg.Watch.Debounce)
	}
}

func TestLoadFromPath_PartialFileKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("engine:\n  pool_size: 2\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Engine.PoolSize != 2 {
		t.Errorf("expected pool size 2, got %d", cfg.Engine.PoolSize)
	}
	if cfg.Engine.DefaultTimeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", cfg.Engine.DefaultTimeout)
	}
	if cfg.Output.Dir != "extension" {
		t.Errorf("expected output dir 'extension', got %q", cfg.Output.Dir)
	}
}

func TestEffectivePoolSize(t *testing.T) {
	explicit := EngineConfig{PoolSize: 3}
	if got := explicit.EffectivePoolSize(); got != 3 {
		t.Errorf("expected explicit pool size 3, got %d", got)
	}

	auto := EngineConfig{}
	got := auto.EffectivePoolSize()
	if got < 1 {
		t.Errorf("auto pool size must be at least 1, got %d", got)
	}
	if got > maxDefaultPoolSize {
		t.Errorf("auto pool size %d exceeds cap %d", got, maxDefaultPoolSize)
	}
	if runtime.NumCPU() < maxDefaultPoolSize && got != runtime.NumCPU() {
		t.Errorf("auto pool size = %d, want CPU count %d", got, runtime.NumCPU())
	}
}

func TestGetUserConfigDir(t *testing.T) {
	os.Setenv("XDG_CONFIG_HOME", "/custom/config")
	defer os.Unsetenv("XDG_CONFIG_HOME")

	dir := getUserConfigDir()
	expected := "/custom/config/grammarsmith"
	if dir != expected {
		t.Errorf("expected %q, got %q", expected, dir)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	os.Setenv("XDG_CONFIG_HOME", tmpDir)
	defer os.Unsetenv("XDG_CONFIG_HOME")

	cfg := Default()
	cfg.Engine.PoolSize = 6
	cfg.Output.Dir = "out"

	if err := Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFromPath(GetUserConfigPath())
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if loaded.Engine.PoolSize != 6 {
		t.Errorf("expected pool size 6, got %d", loaded.Engine.PoolSize)
	}
	if loaded.Output.Dir != "out" {
		t.Errorf("expected output dir 'out', got %q", loaded.Output.Dir)
	}
}
