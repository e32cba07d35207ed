package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config drives the nullcable host simulator: the virtual device's format,
// the test signal fed into its playback side, how the capture side is
// polled, and where the captured audio lands. The loopback engine itself
// takes all of its parameters through the controller API; nothing here
// leaks into it implicitly.
type Config struct {
	LogLevel string       `json:"log_level"`
	Device   DeviceConfig `json:"device"`
	Tone     ToneConfig   `json:"tone"`
	Run      RunConfig    `json:"run"`
	Output   OutputConfig `json:"output"`
}

type DeviceConfig struct {
	Channels   int `json:"channels"`
	SampleRate int `json:"sample_rate"`
}

type ToneConfig struct {
	FrequencyHz float64 `json:"frequency_hz"`
	Amplitude   float64 `json:"amplitude"`
}

type RunConfig struct {
	DurationMs int `json:"duration_ms"` // total simulated capture length
	PeriodMs   int `json:"period_ms"`   // callback interval for both sides
}

type OutputConfig struct {
	WavPath string `json:"wav_path"` // empty disables the capture file
}

// Default returns the simulator defaults: a stereo 48 kHz device fed a
// 440 Hz tone for two seconds with 10 ms callbacks.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Device: DeviceConfig{
			Channels:   2,
			SampleRate: 48000,
		},
		Tone: ToneConfig{
			FrequencyHz: 440,
			Amplitude:   0.5,
		},
		Run: RunConfig{
			DurationMs: 2000,
			PeriodMs:   10,
		},
		Output: OutputConfig{
			WavPath: "loopback.wav",
		},
	}
}

// Load reads a JSON config from path, layering it over the defaults. An
// empty path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the config as indented JSON, for generating a starter file.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
