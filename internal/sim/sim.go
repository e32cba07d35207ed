// Package sim stands in for the host audio stack: it drives a loopback
// device's playback side with a generated signal and polls its capture
// side, both paced off the device clock the way real-time host callbacks
// would be. It exists so the engine can be exercised end to end without
// any OS audio framework.
package sim

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nullcable/nullcable/internal/device"
	"github.com/nullcable/nullcable/internal/tone"
)

// Config wires a Simulator together. All fields are required except
// Logger, which defaults to a disabled logger.
type Config struct {
	Controller *device.Controller
	DeviceID   string
	Source     tone.Generator
	Period     time.Duration // callback interval for both sides
	Logger     zerolog.Logger
}

// Simulator pumps audio through one loopback device and accumulates
// whatever the capture side delivers.
type Simulator struct {
	ctrl   *device.Controller
	id     string
	source tone.Generator
	period time.Duration
	log    zerolog.Logger

	mu       sync.Mutex
	captured []float32
	lastRMS  float64
}

func New(cfg Config) *Simulator {
	return &Simulator{
		ctrl:   cfg.Controller,
		id:     cfg.DeviceID,
		source: cfg.Source,
		period: cfg.Period,
		log:    cfg.Logger,
	}
}

// Run opens one output and one input stream and pumps both until ctx is
// done or the device stops. Each tick, a side catches up to the device
// clock: the writer submits however many frames should exist by now, the
// reader retrieves the same. Returns the first unexpected stream error.
func (s *Simulator) Run(ctx context.Context) error {
	dev, err := s.ctrl.Device(s.id)
	if err != nil {
		return err
	}
	out, err := s.ctrl.OpenOutput(s.id)
	if err != nil {
		return err
	}
	in, err := s.ctrl.OpenInput(s.id)
	if err != nil {
		return err
	}

	format := dev.Format()
	// Room for two periods of catch-up per tick; longer backlogs drain
	// over several chunk submits.
	chunkFrames := 2 * format.SampleRate * int(s.period.Milliseconds()) / 1000
	if chunkFrames < 64 {
		chunkFrames = 64
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		errCh <- s.pumpPlayback(ctx, dev, out, chunkFrames, format.Channels)
	}()
	go func() {
		defer wg.Done()
		errCh <- s.pumpCapture(ctx, dev, in, chunkFrames, format.Channels)
	}()
	wg.Wait()

	close(errCh)
	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

// pumpPlayback renders the source into the device, one clock catch-up per
// tick, like a host playback engine calling the output endpoint.
func (s *Simulator) pumpPlayback(ctx context.Context, dev *device.Device, out *device.OutputStream, chunkFrames, channels int) error {
	buf := make([]float32, chunkFrames*channels)
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	var written uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if dev.State() != device.StateRunning {
				return nil
			}
			target := dev.ClockPosition()
			for written < target {
				n := int(target - written)
				if n > chunkFrames {
					n = chunkFrames
				}
				s.source.Fill(n, buf[:n*channels])
				if _, err := out.Submit(n, buf[:n*channels]); err != nil {
					if errors.Is(err, device.ErrDeviceNotRunning) {
						return nil
					}
					return err
				}
				written += uint64(n)
			}
		}
	}
}

// pumpCapture drains the device into the capture accumulator, one clock
// catch-up per tick, like a host capture engine calling the input
// endpoint.
func (s *Simulator) pumpCapture(ctx context.Context, dev *device.Device, in *device.InputStream, chunkFrames, channels int) error {
	buf := make([]float32, chunkFrames*channels)
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	var read uint64
	lastReport := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if dev.State() != device.StateRunning {
				return nil
			}
			target := dev.ClockPosition()
			for read < target {
				n := int(target - read)
				if n > chunkFrames {
					n = chunkFrames
				}
				if _, err := in.Retrieve(n, buf[:n*channels]); err != nil {
					if errors.Is(err, device.ErrDeviceNotRunning) {
						return nil
					}
					return err
				}
				s.consume(buf[:n*channels])
				read += uint64(n)
			}
			if time.Since(lastReport) >= time.Second {
				lastReport = time.Now()
				s.report(dev, read)
			}
		}
	}
}

func (s *Simulator) consume(samples []float32) {
	var sum float64
	for _, v := range samples {
		sum += float64(v) * float64(v)
	}
	s.mu.Lock()
	s.captured = append(s.captured, samples...)
	if len(samples) > 0 {
		s.lastRMS = math.Sqrt(sum / float64(len(samples)))
	}
	s.mu.Unlock()
}

func (s *Simulator) report(dev *device.Device, read uint64) {
	counters := dev.Counters()
	s.log.Info().
		Uint64("frames_read", read).
		Uint64("dropped", counters.DroppedFrames).
		Uint64("padded", counters.PaddedFrames).
		Float64("rms", s.RMS()).
		Bool("signal", s.RMS() > 0.001).
		Msg("capture level")
}

// Captured returns a copy of everything the capture side has delivered.
func (s *Simulator) Captured() []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]float32, len(s.captured))
	copy(out, s.captured)
	return out
}

// RMS returns the signal level of the most recent capture chunk.
func (s *Simulator) RMS() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRMS
}
