package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", filepath.Join(tmpDir, "home"))

	cfg, path, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if path != "" {
		t.Errorf("expected empty path, got %q", path)
	}
	if cfg.Server.Addr != ":8090" {
		t.Errorf("expected default addr :8090, got %q", cfg.Server.Addr)
	}
	if cfg.Database.Path != "./cosmograph.db" {
		t.Errorf("expected default database path, got %q", cfg.Database.Path)
	}
	if !cfg.Seed.Watch {
		t.Error("expected seed watching enabled by default")
	}
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cosmograph.yaml")
	content := `version: 1
server:
  addr: ":9000"
database:
  path: /tmp/test.db
seed:
  path: ./universe.yaml
  watch: true
discovery:
  active_interval: 10s
  idle_interval: 30s
  idle_threshold: 5m
evolution:
  tick_throttle: 2s
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, loadedPath, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if loadedPath != path {
		t.Errorf("expected path %q, got %q", path, loadedPath)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("expected addr :9000, got %q", cfg.Server.Addr)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("expected database path /tmp/test.db, got %q", cfg.Database.Path)
	}
	if cfg.Seed.Path != "./universe.yaml" {
		t.Errorf("expected seed path ./universe.yaml, got %q", cfg.Seed.Path)
	}
	if cfg.Discovery.ActiveInterval.Duration() != 10*time.Second {
		t.Errorf("expected active interval 10s, got %v", cfg.Discovery.ActiveInterval.Duration())
	}
	if cfg.Discovery.IdleThreshold.Duration() != 5*time.Minute {
		t.Errorf("expected idle threshold 5m, got %v", cfg.Discovery.IdleThreshold.Duration())
	}
	if cfg.Evolution.TickThrottle.Duration() != 2*time.Second {
		t.Errorf("expected tick throttle 2s, got %v", cfg.Evolution.TickThrottle.Duration())
	}
}

func TestLoadFromPathFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cosmograph.yaml")
	if err := os.WriteFile(path, []byte("version: 1\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Server.Addr != ":8090" {
		t.Errorf("expected default addr filled in, got %q", cfg.Server.Addr)
	}
	if cfg.Database.Path != "./cosmograph.db" {
		t.Errorf("expected default database path filled in, got %q", cfg.Database.Path)
	}
}

func TestLoadFromPathBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cosmograph.yaml")
	if err := os.WriteFile(path, []byte("{{{not yaml"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, err := LoadFromPath(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadFromPathBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cosmograph.yaml")
	content := "discovery:\n  active_interval: banana\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, err := LoadFromPath(path); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestFindConfigPathEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("version: 1\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(EnvConfigPath, path)

	if found := FindConfigPath(); found != path {
		t.Errorf("expected env override path %q, got %q", path, found)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cosmograph.yaml")

	cfg := DefaultConfig()
	cfg.Server.Addr = ":7777"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, _, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if loaded.Server.Addr != ":7777" {
		t.Errorf("expected addr :7777 after round trip, got %q", loaded.Server.Addr)
	}
}
