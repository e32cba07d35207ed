// Package clock provides the timing model of a loopback device: a virtual
// sample position derived from elapsed wall-clock time at a nominal sample
// rate.
//
// Hosts poll audio devices at irregular intervals, so the position is
// anchored to the wall clock rather than counted per call. That keeps the
// device's apparent timing consistent with real hardware, which host audio
// stacks rely on (for example to detect stalled devices).
package clock

import (
	"sync"
	"time"
)

// Clock converts elapsed wall-clock time into a monotonic frame position.
type Clock struct {
	rate int
	now  func() time.Time

	mu      sync.Mutex
	anchor  time.Time
	frozen  uint64
	running bool
}

// New creates a stopped clock at the given sample rate in Hz. rate must be
// positive.
func New(rate int) *Clock {
	return NewWithNow(rate, time.Now)
}

// NewWithNow is like New but with an injectable time source, for tests.
func NewWithNow(rate int, now func() time.Time) *Clock {
	if rate <= 0 {
		panic("clock: sample rate must be positive")
	}
	return &Clock{rate: rate, now: now}
}

// Rate returns the nominal sample rate in Hz.
func (c *Clock) Rate() int { return c.rate }

// Reset re-anchors the clock to the current instant and zeroes the frame
// position. Called on device start.
func (c *Clock) Reset() {
	c.mu.Lock()
	c.anchor = c.now()
	c.frozen = 0
	c.running = true
	c.mu.Unlock()
}

// Freeze stops the clock, pinning CurrentFramePosition at its value as of
// this instant. Called on device stop. No-op if already frozen.
func (c *Clock) Freeze() {
	c.mu.Lock()
	if c.running {
		c.frozen = c.positionLocked()
		c.running = false
	}
	c.mu.Unlock()
}

// CurrentFramePosition returns the number of frames that should have
// elapsed since the last Reset: floor(elapsed seconds x sample rate).
// Monotonic; returns the frozen position while stopped.
func (c *Clock) CurrentFramePosition() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return c.frozen
	}
	return c.positionLocked()
}

// positionLocked computes floor(elapsed x rate) without overflowing: whole
// seconds contribute exactly rate frames each, the sub-second remainder is
// scaled separately.
func (c *Clock) positionLocked() uint64 {
	elapsed := c.now().Sub(c.anchor)
	if elapsed <= 0 {
		return 0
	}
	ns := uint64(elapsed.Nanoseconds())
	whole := ns / uint64(time.Second)
	rem := ns % uint64(time.Second)
	return whole*uint64(c.rate) + rem*uint64(c.rate)/uint64(time.Second)
}
