package sim

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nullcable/nullcable/internal/device"
	"github.com/nullcable/nullcable/internal/tone"
)

func TestRunCapturesSignal(t *testing.T) {
	ctrl := device.NewController(zerolog.Nop())
	id, err := ctrl.Create(2, 8000, device.EncodingFloat32)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := ctrl.Start(id); err != nil {
		t.Fatalf("Start: %v", err)
	}

	s := New(Config{
		Controller: ctrl,
		DeviceID:   id,
		Source:     tone.NewSine(2, 8000, 440, 0.5),
		Period:     5 * time.Millisecond,
		Logger:     zerolog.Nop(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	captured := s.Captured()
	if len(captured) == 0 {
		t.Fatal("no frames captured")
	}
	if len(captured)%2 != 0 {
		t.Fatalf("captured %d samples, not whole stereo frames", len(captured))
	}
	// The sine should register as signal somewhere in the capture; with
	// padding possible at the very start, check overall energy instead of
	// the last-chunk meter.
	var energy float64
	for _, v := range captured {
		energy += float64(v) * float64(v)
	}
	if energy == 0 {
		t.Fatal("captured audio is all silence, expected the tone")
	}

	counters, err := ctrl.Counters(id)
	if err != nil {
		t.Fatalf("Counters: %v", err)
	}
	if counters.DroppedFrames > 0 {
		t.Fatalf("dropped %d frames during a paced run", counters.DroppedFrames)
	}
}

func TestRunStopsWhenDeviceStops(t *testing.T) {
	ctrl := device.NewController(zerolog.Nop())
	id, err := ctrl.Create(1, 8000, device.EncodingFloat32)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := ctrl.Start(id); err != nil {
		t.Fatalf("Start: %v", err)
	}

	s := New(Config{
		Controller: ctrl,
		DeviceID:   id,
		Source:     tone.NewSine(1, 8000, 440, 0.5),
		Period:     5 * time.Millisecond,
		Logger:     zerolog.Nop(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	go func() {
		time.Sleep(30 * time.Millisecond)
		ctrl.Stop(id)
	}()

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Run did not return after the device stopped")
	}
}

func TestRunUnknownDevice(t *testing.T) {
	ctrl := device.NewController(zerolog.Nop())
	s := New(Config{
		Controller: ctrl,
		DeviceID:   "missing",
		Source:     tone.NewSine(1, 8000, 440, 0.5),
		Period:     5 * time.Millisecond,
		Logger:     zerolog.Nop(),
	})
	if err := s.Run(context.Background()); err == nil {
		t.Fatal("expected error for unknown device")
	}
}
