package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/nullcable/nullcable/internal/config"
	"github.com/nullcable/nullcable/internal/device"
	"github.com/nullcable/nullcable/internal/logging"
	"github.com/nullcable/nullcable/internal/sim"
	"github.com/nullcable/nullcable/internal/tone"
	"github.com/nullcable/nullcable/internal/wavio"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
	// Commit is set via ldflags at build time
	Commit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to JSON config (defaults apply when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log := logging.New()
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	log := logging.NewWithLevel(cfg.LogLevel)
	log.Info().Str("version", Version).Str("commit", Commit).Msg("nullcable starting")

	ctrl := device.NewController(log)
	id, err := ctrl.Create(cfg.Device.Channels, cfg.Device.SampleRate, device.EncodingFloat32)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create loopback device")
	}
	defer ctrl.Destroy(id)

	if err := ctrl.Start(id); err != nil {
		log.Fatal().Err(err).Msg("Failed to start device")
	}

	source := tone.NewSine(cfg.Device.Channels, cfg.Device.SampleRate, cfg.Tone.FrequencyHz, cfg.Tone.Amplitude)
	simulator := sim.New(sim.Config{
		Controller: ctrl,
		DeviceID:   id,
		Source:     source,
		Period:     time.Duration(cfg.Run.PeriodMs) * time.Millisecond,
		Logger:     log,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Run.DurationMs)*time.Millisecond)
	defer cancel()

	// Ctrl-C ends the capture early but still writes the output file.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("Shutting down...")
		cancel()
	}()

	if err := simulator.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Simulation error")
	}

	if err := ctrl.Stop(id); err != nil {
		log.Error().Err(err).Msg("Stop error")
	}

	counters, err := ctrl.Counters(id)
	if err != nil {
		log.Fatal().Err(err).Msg("Counters error")
	}
	log.Info().
		Uint64("dropped_frames", counters.DroppedFrames).
		Uint64("padded_frames", counters.PaddedFrames).
		Stringer("state", counters.State).
		Msg("capture finished")

	if cfg.Output.WavPath != "" {
		captured := simulator.Captured()
		fs := afero.NewOsFs()
		if err := wavio.WriteFile(fs, cfg.Output.WavPath, captured, cfg.Device.SampleRate, cfg.Device.Channels); err != nil {
			log.Fatal().Err(err).Msg("Failed to write capture file")
		}
		log.Info().Str("path", cfg.Output.WavPath).Int("frames", len(captured)/cfg.Device.Channels).Msg("capture written")
	}
}
