// Package device implements the loopback device instances and the
// controller that mediates their lifecycle for the host audio stack.
//
// A device owns exactly one ring buffer and one sample clock. Any number of
// output (playback-side) and input (capture-side) streams may be open
// against it; the host drives both from its own real-time callback
// contexts, so Submit and Retrieve never block unboundedly, never allocate,
// and never log.
package device

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/nullcable/nullcable/internal/clock"
	"github.com/nullcable/nullcable/internal/ring"
)

// State is the operational state of a device instance.
type State int32

const (
	StateStopped State = iota
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// bufferSecondsNum/Den size the ring at half a second of audio, rounded up
// to a power of two by the ring itself. Half a second absorbs the worst
// host scheduling gaps seen in practice while keeping loopback latency
// bounded.
const (
	bufferSecondsNum = 1
	bufferSecondsDen = 2
)

// Counters is a point-in-time snapshot of a device's observability
// counters. Reading it never blocks.
type Counters struct {
	DroppedFrames uint64 // overruns: unread frames overwritten
	PaddedFrames  uint64 // underruns: frames delivered as silence
	State         State
}

// Device is one virtual loopback instance: samples submitted on the output
// side become readable on the input side.
type Device struct {
	id  string
	log zerolog.Logger

	// lifecycleMu serializes start/stop/setFormat/destroy.
	lifecycleMu sync.Mutex

	// writeMu serializes writer streams (and coalesces concurrent writers
	// by mixing); readMu serializes reader streams. Both are held only
	// for a bounded copy, never across a wait.
	writeMu sync.Mutex
	readMu  sync.Mutex

	// format, buf and clk are replaced only by setFormat, which runs
	// while stopped and holds writeMu+readMu against in-flight stragglers.
	format Format
	buf    *ring.Buffer
	clk    *clock.Clock

	state     atomic.Int32
	destroyed atomic.Bool
	startGen  atomic.Uint64
}

func newDevice(id string, f Format, log zerolog.Logger) *Device {
	return &Device{
		id:     id,
		log:    log,
		format: f,
		buf:    ring.New(f.Channels, bufferFrames(f.SampleRate)),
		clk:    clock.New(f.SampleRate),
	}
}

func bufferFrames(rate int) int {
	frames := rate * bufferSecondsNum / bufferSecondsDen
	if frames < 1024 {
		frames = 1024
	}
	return frames
}

// ID returns the controller-issued device identifier.
func (d *Device) ID() string { return d.id }

// Format returns the negotiated format.
func (d *Device) Format() Format {
	d.lifecycleMu.Lock()
	defer d.lifecycleMu.Unlock()
	return d.format
}

// State returns the current operational state.
func (d *Device) State() State {
	if d.destroyed.Load() {
		return StateStopped
	}
	return State(d.state.Load())
}

// Counters returns a snapshot of the drop/pad counters and state.
// lifecycleMu pins the buffer pointer against a concurrent setFormat; it is
// never held across a wait, so the snapshot stays effectively non-blocking.
func (d *Device) Counters() Counters {
	d.lifecycleMu.Lock()
	buf := d.buf
	d.lifecycleMu.Unlock()
	return Counters{
		DroppedFrames: buf.Dropped(),
		PaddedFrames:  buf.Padded(),
		State:         d.State(),
	}
}

// ClockPosition returns the clock's current frame position: how many
// frames should have passed through the device since it started.
func (d *Device) ClockPosition() uint64 {
	d.lifecycleMu.Lock()
	clk := d.clk
	d.lifecycleMu.Unlock()
	return clk.CurrentFramePosition()
}

// start transitions Stopped -> Running, discarding any buffered audio and
// re-anchoring the clock. No-op if already running.
func (d *Device) start() {
	d.lifecycleMu.Lock()
	defer d.lifecycleMu.Unlock()
	if State(d.state.Load()) == StateRunning {
		return
	}
	// Exclude endpoint stragglers from a previous running period while
	// the buffer is wiped.
	d.writeMu.Lock()
	d.readMu.Lock()
	d.buf.Reset()
	d.clk.Reset()
	d.startGen.Add(1)
	d.state.Store(int32(StateRunning))
	d.readMu.Unlock()
	d.writeMu.Unlock()
	d.log.Info().Str("device", d.id).Msg("device started")
}

// stop transitions Running -> Stopped and freezes the clock. Endpoint
// calls entered after stop returns fail with ErrDeviceNotRunning;
// operations already in flight complete. No-op if already stopped.
func (d *Device) stop() {
	d.lifecycleMu.Lock()
	defer d.lifecycleMu.Unlock()
	if State(d.state.Load()) == StateStopped {
		return
	}
	d.state.Store(int32(StateStopped))
	d.clk.Freeze()
	d.log.Info().Str("device", d.id).Msg("device stopped")
}

// setFormat renegotiates the device format, recreating the ring buffer and
// clock. Permitted only while stopped; buffered audio and counters are
// discarded with the old buffer.
func (d *Device) setFormat(f Format) error {
	if err := f.Validate(); err != nil {
		return err
	}
	d.lifecycleMu.Lock()
	defer d.lifecycleMu.Unlock()
	if State(d.state.Load()) == StateRunning {
		return ErrInvalidStateForReformat
	}
	d.writeMu.Lock()
	d.readMu.Lock()
	d.format = f
	d.buf = ring.New(f.Channels, bufferFrames(f.SampleRate))
	d.clk = clock.New(f.SampleRate)
	d.readMu.Unlock()
	d.writeMu.Unlock()
	d.log.Info().Str("device", d.id).Stringer("format", f).Msg("device reformatted")
	return nil
}

// destroy marks the instance unusable. Outstanding stream handles fail
// with ErrDeviceNotFound from then on. Permitted from any state.
func (d *Device) destroy() {
	d.lifecycleMu.Lock()
	defer d.lifecycleMu.Unlock()
	d.state.Store(int32(StateStopped))
	d.clk.Freeze()
	d.destroyed.Store(true)
	d.log.Info().Str("device", d.id).Msg("device destroyed")
}
