// Package config provides configuration management for evmacro.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Record   RecordConfig   `json:"record" yaml:"record"`
	Playback PlaybackConfig `json:"playback" yaml:"playback"`
	Logging  LoggingConfig  `json:"logging" yaml:"logging"`
	Metrics  MetricsConfig  `json:"metrics" yaml:"metrics"`
}

// RecordConfig controls capture
type RecordConfig struct {
	// Device is the evdev node to record from; empty prompts for one
	Device string `json:"device,omitempty" yaml:"device,omitempty"`

	// DeviceDir is scanned for event nodes when prompting
	DeviceDir string `json:"device_dir" yaml:"device_dir"`

	// CountdownSteps is the number of ticks before recording starts
	CountdownSteps int `json:"countdown_steps" yaml:"countdown_steps"`

	// CountdownInterval is the time between ticks
	CountdownInterval Duration `json:"countdown_interval" yaml:"countdown_interval"`
}

// PlaybackConfig controls the virtual device and replay speed
type PlaybackConfig struct {
	// DeviceName is the name the virtual device registers with
	DeviceName string `json:"device_name" yaml:"device_name"`

	// Speed multiplies playback speed (1 = recorded timing)
	Speed float64 `json:"speed" yaml:"speed"`

	// AbsMin and AbsMax bound the absolute axes of the virtual device
	AbsMin int32 `json:"abs_min" yaml:"abs_min"`
	AbsMax int32 `json:"abs_max" yaml:"abs_max"`
}

// LoggingConfig controls log output
type LoggingConfig struct {
	// File, if set, receives a copy of the log
	File string `json:"file,omitempty" yaml:"file,omitempty"`

	// Verbose echoes every recorded event
	Verbose bool `json:"verbose" yaml:"verbose"`
}

// MetricsConfig controls metrics export
type MetricsConfig struct {
	// Textfile is written in Prometheus text format after each command
	Textfile string `json:"textfile,omitempty" yaml:"textfile,omitempty"`
}

// Duration is a time.Duration written as "1s" in config files
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	v, err := time.ParseDuration(value.Value)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// DefaultConfig returns a new Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Record: RecordConfig{
			DeviceDir:         "/dev/input",
			CountdownSteps:    3,
			CountdownInterval: Duration(time.Second),
		},
		Playback: PlaybackConfig{
			DeviceName: "Macro Playback",
			Speed:      1,
			AbsMin:     0,
			AbsMax:     65535,
		},
	}
}

// Validate rejects settings the recorder or player cannot use
func (c *Config) Validate() error {
	var errs []error
	if c.Record.CountdownSteps < 0 {
		errs = append(errs, fmt.Errorf("record.countdown_steps must not be negative, got %d", c.Record.CountdownSteps))
	}
	if c.Record.CountdownInterval < 0 {
		errs = append(errs, fmt.Errorf("record.countdown_interval must not be negative, got %v", time.Duration(c.Record.CountdownInterval)))
	}
	if !(c.Playback.Speed > 0) {
		errs = append(errs, fmt.Errorf("playback.speed must be positive, got %v", c.Playback.Speed))
	}
	if c.Playback.AbsMin > c.Playback.AbsMax {
		errs = append(errs, fmt.Errorf("playback.abs_min %d exceeds abs_max %d", c.Playback.AbsMin, c.Playback.AbsMax))
	}
	if strings.TrimSpace(c.Playback.DeviceName) == "" {
		errs = append(errs, errors.New("playback.device_name must not be empty"))
	}
	return errors.Join(errs...)
}

// Manager handles loading and saving configuration
type Manager struct {
	mu         sync.Mutex
	configPath string
	config     *Config
}

// NewManager creates a configuration manager for path. An empty path uses
// the per-user default location.
func NewManager(path string) (*Manager, error) {
	if path == "" {
		p, err := defaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	return &Manager{
		configPath: path,
		config:     DefaultConfig(),
	}, nil
}

// defaultConfigPath returns ~/.config/evmacro/config.json
func defaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "evmacro", "config.json"), nil
}

// Path returns the file the manager reads and writes
func (m *Manager) Path() string {
	return m.configPath
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads the configuration from disk. A missing file keeps defaults.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.configPath)
	if os.IsNotExist(err) {
		// No config file, use defaults
		return nil
	}
	if err != nil {
		return err
	}

	cfg := DefaultConfig()
	if isYAML(m.configPath) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", m.configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", m.configPath, err)
	}

	m.config = cfg
	return nil
}

// Save writes the configuration to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var data []byte
	var err error
	if isYAML(m.configPath) {
		data, err = yaml.Marshal(m.config)
	} else {
		data, err = json.MarshalIndent(m.config, "", "  ")
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return err
	}
	log.Printf("Config: Saving configuration to %s (%d bytes)", m.configPath, len(data))
	return os.WriteFile(m.configPath, data, 0644)
}

// Get returns the current configuration
func (m *Manager) Get() *Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// Set replaces the configuration
func (m *Manager) Set(config *Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config = config
}
