// Package config implements Neptune's TOML runtime configuration, grounded
// on the Default/Load/LoadFrom/Save shape used elsewhere in the example
// pack for emulator configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds every runtime knob that affects how a Neptune program is
// built and run: memory layout overrides, the timer's tick resolution and
// diagnostic trace toggles.
type Config struct {
	Memory struct {
		RAMSize uint32 `toml:"ram_size"`
	} `toml:"memory"`

	Timer struct {
		TickMicros uint32 `toml:"tick_micros"`
	} `toml:"timer"`

	Trace struct {
		EnableStep   bool `toml:"enable_step"`
		EnableFaults bool `toml:"enable_faults"`
	} `toml:"trace"`
}

// Default returns a Config with Neptune's canonical region sizes and a
// 1kHz timer tick.
func Default() *Config {
	cfg := &Config{}
	cfg.Memory.RAMSize = 128 * 1024
	cfg.Timer.TickMicros = 1000
	cfg.Trace.EnableStep = false
	cfg.Trace.EnableFaults = true
	return cfg
}

// TimerTick returns the configured timer tick as a time.Duration.
func (c *Config) TimerTick() time.Duration {
	return time.Duration(c.Timer.TickMicros) * time.Microsecond
}

// Path returns the platform-specific config file location.
func Path() string {
	var dir string
	switch runtime.GOOS {
	case "windows":
		dir = os.Getenv("APPDATA")
		if dir == "" {
			dir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		dir = filepath.Join(dir, "neptune")
	case "darwin", "linux":
		home, err := os.UserHomeDir()
		if err != nil {
			return "neptune.toml"
		}
		dir = filepath.Join(home, ".config", "neptune")
	default:
		return "neptune.toml"
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "neptune.toml"
	}
	return filepath.Join(dir, "neptune.toml")
}

// Load reads the default config file location, falling back to Default()
// if it doesn't exist.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads config from path, falling back to Default() if it
// doesn't exist.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// Save writes c to the default config file location.
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

// SaveTo writes c to path as TOML.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
