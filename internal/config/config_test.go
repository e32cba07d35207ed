package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Device.Channels != 2 || cfg.Device.SampleRate != 48000 {
		t.Fatalf("default device = %+v, want 2ch/48000Hz", cfg.Device)
	}
	if cfg.Run.PeriodMs <= 0 || cfg.Run.DurationMs <= 0 {
		t.Fatalf("default run config = %+v, want positive timings", cfg.Run)
	}
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"device": {"channels": 4, "sample_rate": 44100}, "log_level": "debug"}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Device.Channels != 4 || cfg.Device.SampleRate != 44100 {
		t.Fatalf("device = %+v, want 4ch/44100Hz", cfg.Device)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level = %q, want debug", cfg.LogLevel)
	}
	// Untouched sections keep their defaults.
	if cfg.Tone.FrequencyHz != 440 {
		t.Fatalf("tone frequency = %v, want default 440", cfg.Tone.FrequencyHz)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.json")
	cfg := Default()
	cfg.Output.WavPath = "elsewhere.wav"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Output.WavPath != "elsewhere.wav" {
		t.Fatalf("wav path = %q, want elsewhere.wav", loaded.Output.WavPath)
	}
}
