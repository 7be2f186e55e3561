package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Record.CountdownSteps != 3 {
		t.Errorf("Expected 3 countdown steps, got %d", cfg.Record.CountdownSteps)
	}
	if time.Duration(cfg.Record.CountdownInterval) != time.Second {
		t.Errorf("Expected 1s countdown interval, got %v", time.Duration(cfg.Record.CountdownInterval))
	}
	if cfg.Playback.DeviceName != "Macro Playback" {
		t.Errorf("Expected device name 'Macro Playback', got '%s'", cfg.Playback.DeviceName)
	}
	if cfg.Playback.Speed != 1 {
		t.Errorf("Expected speed 1, got %v", cfg.Playback.Speed)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"negative countdown", func(c *Config) { c.Record.CountdownSteps = -1 }, "countdown_steps"},
		{"negative interval", func(c *Config) { c.Record.CountdownInterval = Duration(-time.Second) }, "countdown_interval"},
		{"zero speed", func(c *Config) { c.Playback.Speed = 0 }, "playback.speed"},
		{"abs range", func(c *Config) { c.Playback.AbsMin = 10; c.Playback.AbsMax = 5 }, "abs_min"},
		{"empty name", func(c *Config) { c.Playback.DeviceName = " " }, "device_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Load(); err != nil {
		t.Fatalf("Expected missing file to be ignored, got %v", err)
	}
	if m.Get().Playback.DeviceName != "Macro Playback" {
		t.Error("Expected defaults after loading missing file")
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"record": {"device": "/dev/input/event3", "countdown_interval": "250ms"}, "playback": {"speed": 2}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	m, _ := NewManager(path)
	if err := m.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg := m.Get()

	if cfg.Record.Device != "/dev/input/event3" {
		t.Errorf("Expected device '/dev/input/event3', got '%s'", cfg.Record.Device)
	}
	if time.Duration(cfg.Record.CountdownInterval) != 250*time.Millisecond {
		t.Errorf("Expected 250ms interval, got %v", time.Duration(cfg.Record.CountdownInterval))
	}
	if cfg.Record.CountdownSteps != 3 {
		t.Errorf("Expected unset countdown steps to keep default 3, got %d", cfg.Record.CountdownSteps)
	}
	if cfg.Playback.Speed != 2 {
		t.Errorf("Expected speed 2, got %v", cfg.Playback.Speed)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evmacro.yaml")
	data := `
record:
  countdown_steps: 5
  countdown_interval: 2s
playback:
  device_name: Replay Pad
  abs_max: 4095
logging:
  verbose: true
metrics:
  textfile: /var/lib/node_exporter/evmacro.prom
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	m, _ := NewManager(path)
	if err := m.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg := m.Get()

	if cfg.Record.CountdownSteps != 5 {
		t.Errorf("Expected 5 countdown steps, got %d", cfg.Record.CountdownSteps)
	}
	if time.Duration(cfg.Record.CountdownInterval) != 2*time.Second {
		t.Errorf("Expected 2s interval, got %v", time.Duration(cfg.Record.CountdownInterval))
	}
	if cfg.Playback.DeviceName != "Replay Pad" || cfg.Playback.AbsMax != 4095 {
		t.Errorf("Expected playback overrides, got %+v", cfg.Playback)
	}
	if !cfg.Logging.Verbose {
		t.Error("Expected verbose logging")
	}
	if cfg.Metrics.Textfile != "/var/lib/node_exporter/evmacro.prom" {
		t.Errorf("Expected metrics textfile, got '%s'", cfg.Metrics.Textfile)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`{"playback": {"speed": -1}}`), 0644)
	m, _ := NewManager(bad)
	if err := m.Load(); err == nil {
		t.Error("Expected validation error for negative speed")
	}
	if m.Get().Playback.Speed != 1 {
		t.Error("Expected config to stay unchanged after failed load")
	}

	broken := filepath.Join(dir, "broken.yml")
	os.WriteFile(broken, []byte("record: [unterminated"), 0644)
	m, _ = NewManager(broken)
	if err := m.Load(); err == nil {
		t.Error("Expected parse error for malformed YAML")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"sub/config.json", "sub/config.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			m, _ := NewManager(path)
			cfg := DefaultConfig()
			cfg.Playback.Speed = 1.5
			cfg.Record.CountdownInterval = Duration(500 * time.Millisecond)
			m.Set(cfg)

			if err := m.Save(); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			loaded, _ := NewManager(path)
			if err := loaded.Load(); err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if loaded.Get().Playback.Speed != 1.5 {
				t.Errorf("Expected speed 1.5, got %v", loaded.Get().Playback.Speed)
			}
			if time.Duration(loaded.Get().Record.CountdownInterval) != 500*time.Millisecond {
				t.Errorf("Expected 500ms interval, got %v", time.Duration(loaded.Get().Record.CountdownInterval))
			}
		})
	}
}

func TestNewManagerDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	m, err := NewManager("")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(m.Path()) != "config.json" || filepath.Base(filepath.Dir(m.Path())) != "evmacro" {
		t.Errorf("Expected .../evmacro/config.json, got %s", m.Path())
	}
}
