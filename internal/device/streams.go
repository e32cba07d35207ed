package device

// OutputStream is a playback-side endpoint handle: the host's playback
// engine submits rendered sample buffers through it. Multiple output
// streams may be open on one device; their contributions are coalesced by
// sum-and-clip mixing, never interleaved, so multi-channel frames stay
// intact. A single Submit must not be called concurrently on the same
// handle.
type OutputStream struct {
	dev *Device

	// cursor is this writer's frames-since-start position; gen detects a
	// device restart so the cursor can re-anchor. All three fields are
	// touched only under dev.writeMu.
	cursor   uint64
	gen      uint64
	anchored bool
}

// Submit copies frames of interleaved samples into the device. samples
// must hold exactly frames x channels values in the negotiated encoding;
// otherwise ErrFormatMismatch. Returns the number of frames accepted,
// which is frames when the device is running and 0 with
// ErrDeviceNotRunning when it is stopped, or 0 with ErrDeviceNotFound
// after the device is destroyed. Never blocks on the reader and performs
// no allocation.
func (s *OutputStream) Submit(frames int, samples []float32) (int, error) {
	d := s.dev
	if d.destroyed.Load() {
		return 0, ErrDeviceNotFound
	}
	if State(d.state.Load()) != StateRunning {
		return 0, ErrDeviceNotRunning
	}

	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	buf := d.buf
	if frames < 0 || len(samples) != frames*buf.Channels() {
		return 0, ErrFormatMismatch
	}
	if frames == 0 {
		return 0, nil
	}

	// A writer's first submit after open or device restart anchors at the
	// read position, so its audio mixes into the frames the reader is
	// about to consume rather than queueing behind another writer's
	// backlog.
	if gen := d.startGen.Load(); gen != s.gen || !s.anchored {
		s.gen = gen
		s.anchored = true
		s.cursor = buf.ReadFrames()
	}

	// Frames another writer has already published get mixed in place;
	// the remainder is a plain write that advances the shared position.
	accepted := frames
	if w := buf.WriteFrames(); s.cursor < w {
		overlap := w - s.cursor
		if uint64(frames) < overlap {
			overlap = uint64(frames)
		}
		n := int(overlap) * buf.Channels()
		buf.MixAt(s.cursor, int(overlap), samples[:n])
		samples = samples[n:]
		s.cursor += overlap
		frames -= int(overlap)
	}
	if frames > 0 {
		buf.Write(frames, samples)
		s.cursor += uint64(frames)
	}
	return accepted, nil
}

// InputStream is a capture-side endpoint handle: the host's capture engine
// pulls sample buffers through it. Multiple input streams share the
// device's read position; concurrent Retrieve calls are serialized
// internally by a bounded lock.
type InputStream struct {
	dev *Device
}

// Retrieve fills dst with frames of interleaved samples from the device,
// padding with silence where the writers have not produced data yet. dst
// must hold exactly frames x channels values; otherwise ErrFormatMismatch.
// Always delivers the full frames count when the device is running; fails
// with ErrDeviceNotRunning when stopped or ErrDeviceNotFound after
// destroy, leaving the buffer untouched. Never blocks on the writer and
// performs no allocation.
func (s *InputStream) Retrieve(frames int, dst []float32) (int, error) {
	d := s.dev
	if d.destroyed.Load() {
		return 0, ErrDeviceNotFound
	}
	if State(d.state.Load()) != StateRunning {
		return 0, ErrDeviceNotRunning
	}

	d.readMu.Lock()
	defer d.readMu.Unlock()

	buf := d.buf
	if frames < 0 || len(dst) != frames*buf.Channels() {
		return 0, ErrFormatMismatch
	}
	buf.Read(frames, dst)
	return frames, nil
}

// Device returns the device this stream is attached to.
func (s *OutputStream) Device() *Device { return s.dev }

// Device returns the device this stream is attached to.
func (s *InputStream) Device() *Device { return s.dev }
