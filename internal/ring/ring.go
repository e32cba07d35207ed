// Package ring implements the shared sample store of a loopback device: a
// fixed-capacity circular buffer of interleaved float32 frames with
// lock-free single-producer/single-consumer synchronization.
//
// Positions are monotonic frames-since-start counters mapped to storage by
// a power-of-two mask. The producer publishes writePos only after the
// sample data is in place; the consumer loads writePos before copying out.
// Overrun (writer laps the reader) silently overwrites the oldest unread
// frames and counts them; underrun (reader ahead of writer) pads with
// silence and counts the padding. Neither is an error and neither side
// ever blocks or allocates.
package ring

import "sync/atomic"

// Buffer is a multi-channel circular sample buffer. Safe for one concurrent
// writer plus one concurrent reader; additional writers or readers must be
// serialized by the caller.
type Buffer struct {
	// Producer and consumer counters sit on separate cache lines so the
	// two sides don't false-share.
	writePos atomic.Uint64
	_        [56]byte
	readPos  atomic.Uint64
	_        [56]byte

	dropped atomic.Uint64 // frames overwritten or never stored (overrun)
	padded  atomic.Uint64 // frames delivered as silence (underrun)

	data     []float32
	mask     uint64
	capacity uint64 // frames, power of two
	channels int
}

// New creates a buffer holding at least minFrames frames of channels
// samples each. Capacity is rounded up to the next power of two.
// channels and minFrames must be positive.
func New(channels, minFrames int) *Buffer {
	if channels <= 0 || minFrames <= 0 {
		panic("ring: channels and minFrames must be positive")
	}
	capacity := uint64(1)
	for capacity < uint64(minFrames) {
		capacity <<= 1
	}
	return &Buffer{
		data:     make([]float32, capacity*uint64(channels)),
		mask:     capacity - 1,
		capacity: capacity,
		channels: channels,
	}
}

// Write copies frames of interleaved samples at the current write position
// and advances it by frames. src must hold frames*Channels() samples. If
// the unread backlog would exceed capacity, the oldest unread frames are
// reclaimed and counted as dropped; a block larger than the whole buffer
// keeps only its newest capacity frames. Producer side only.
func (b *Buffer) Write(frames int, src []float32) {
	n := uint64(frames)
	if n == 0 {
		return
	}
	w := b.writePos.Load()

	start := w
	if n > b.capacity {
		// Only the newest capacity frames can survive; the skipped head
		// is accounted for by the reclaim below.
		skip := n - b.capacity
		src = src[skip*uint64(b.channels):]
		start = w + skip
	}
	b.copyIn(start, src)
	b.writePos.Store(w + n)

	// Reclaim the oldest unread frames if the reader has fallen more than
	// a full buffer behind. CAS because the reader advances readPos too.
	for {
		r := b.readPos.Load()
		if w+n-r <= b.capacity {
			return
		}
		over := w + n - b.capacity - r
		if b.readPos.CompareAndSwap(r, r+over) {
			b.dropped.Add(over)
			return
		}
	}
}

// Read copies frames of interleaved samples from the current read position
// into dst and advances the position by the frames actually consumed. If
// fewer frames are available the shortfall is zero-filled and counted as
// padded; the read position never passes the write position. dst must hold
// frames*Channels() samples. Consumer side only.
func (b *Buffer) Read(frames int, dst []float32) {
	n := uint64(frames)
	if n == 0 {
		return
	}
	want := frames * b.channels
	for {
		r := b.readPos.Load()
		w := b.writePos.Load()

		take := w - r
		if take > n {
			take = n
		}
		b.copyOut(r, dst[:int(take)*b.channels])
		for i := int(take) * b.channels; i < want; i++ {
			dst[i] = 0
		}

		if take == 0 {
			b.padded.Add(n)
			return
		}
		if b.readPos.CompareAndSwap(r, r+take) {
			b.padded.Add(n - take)
			return
		}
		// The writer reclaimed this region mid-copy; retry at the new
		// read position.
	}
}

// MixAt sums frames of interleaved samples into the already-published
// region starting at absolute frame start, clipping each sample to
// [-1, 1]. Positions do not move; frames falling outside the unread window
// are counted as dropped. Returns the number of frames mixed. The caller
// must hold the write side (the publishing writer must not advance
// concurrently).
func (b *Buffer) MixAt(start uint64, frames int, src []float32) int {
	n := uint64(frames)
	if n == 0 {
		return 0
	}
	w := b.writePos.Load()
	r := b.readPos.Load()

	lo := start
	if lo < r {
		lo = r
	}
	hi := start + n
	if hi > w {
		hi = w
	}
	if hi <= lo {
		b.dropped.Add(n)
		return 0
	}
	b.dropped.Add(n - (hi - lo))

	ch := uint64(b.channels)
	srcOff := (lo - start) * ch
	for f := lo; f < hi; f++ {
		base := (f & b.mask) * ch
		for c := uint64(0); c < ch; c++ {
			v := b.data[base+c] + src[srcOff]
			if v > 1 {
				v = 1
			} else if v < -1 {
				v = -1
			}
			b.data[base+c] = v
			srcOff++
		}
	}
	return int(hi - lo)
}

// Reset zeroes both positions and the backing storage. Counters are
// cumulative and survive. Only call while no reader or writer is active.
func (b *Buffer) Reset() {
	b.writePos.Store(0)
	b.readPos.Store(0)
	for i := range b.data {
		b.data[i] = 0
	}
}

// WriteFrames returns the total frames written since creation or Reset.
func (b *Buffer) WriteFrames() uint64 { return b.writePos.Load() }

// ReadFrames returns the total frames consumed since creation or Reset.
func (b *Buffer) ReadFrames() uint64 { return b.readPos.Load() }

// Dropped returns the cumulative count of overrun frames.
func (b *Buffer) Dropped() uint64 { return b.dropped.Load() }

// Padded returns the cumulative count of silence-padded frames.
func (b *Buffer) Padded() uint64 { return b.padded.Load() }

// Capacity returns the buffer capacity in frames.
func (b *Buffer) Capacity() int { return int(b.capacity) }

// Channels returns the number of samples per frame.
func (b *Buffer) Channels() int { return b.channels }

// copyIn stores interleaved samples beginning at absolute frame start,
// wrapping at most once.
func (b *Buffer) copyIn(start uint64, src []float32) {
	ch := uint64(b.channels)
	pos := (start & b.mask) * ch
	first := uint64(len(b.data)) - pos
	if first >= uint64(len(src)) {
		copy(b.data[pos:], src)
		return
	}
	copy(b.data[pos:], src[:first])
	copy(b.data, src[first:])
}

// copyOut loads interleaved samples beginning at absolute frame start,
// wrapping at most once.
func (b *Buffer) copyOut(start uint64, dst []float32) {
	ch := uint64(b.channels)
	pos := (start & b.mask) * ch
	first := uint64(len(b.data)) - pos
	if first >= uint64(len(dst)) {
		copy(dst, b.data[pos:])
		return
	}
	copy(dst, b.data[pos:pos+first])
	copy(dst[first:], b.data[:uint64(len(dst))-first])
}
