package config

import (
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultHasCanonicalSizes verifies Default returns Neptune's
// documented region size and timer tick.
func TestDefaultHasCanonicalSizes(t *testing.T) {
	cfg := Default()
	if cfg.Memory.RAMSize != 128*1024 {
		t.Fatalf("RAMSize = %d, want 131072", cfg.Memory.RAMSize)
	}
	if cfg.TimerTick() != time.Millisecond {
		t.Fatalf("TimerTick = %v, want 1ms", cfg.TimerTick())
	}
}

// TestLoadFromMissingFileFallsBackToDefault verifies LoadFrom on a
// nonexistent path returns Default() rather than erroring.
func TestLoadFromMissingFileFallsBackToDefault(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFrom(missing): %v", err)
	}
	if cfg.Memory.RAMSize != Default().Memory.RAMSize {
		t.Fatalf("LoadFrom(missing) RAMSize = %d, want default", cfg.Memory.RAMSize)
	}
}

// TestSaveToThenLoadFromRoundTrips verifies a saved config file reloads
// with the same field values.
func TestSaveToThenLoadFromRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "neptune.toml")
	cfg := Default()
	cfg.Memory.RAMSize = 4096
	cfg.Trace.EnableStep = true

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.Memory.RAMSize != 4096 {
		t.Fatalf("loaded RAMSize = %d, want 4096", loaded.Memory.RAMSize)
	}
	if !loaded.Trace.EnableStep {
		t.Fatal("loaded EnableStep = false, want true")
	}
}
