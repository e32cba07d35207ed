// Package tone generates deterministic multi-channel test signals. The
// simulation binary uses it as the stand-in for a host playback engine,
// and the engine tests use it for known sample patterns. Generators keep
// their phase across calls and never allocate in Fill.
package tone

import "math"

// Generator produces interleaved float32 frames of a fixed waveform.
type Generator interface {
	// Fill writes frames of interleaved samples into dst, which must
	// hold frames x Channels() values, and advances the generator's
	// position.
	Fill(frames int, dst []float32)
	Channels() int
}

// Sine generates a sine wave at a fixed frequency, identical on every
// channel.
type Sine struct {
	channels int
	step     float64 // phase increment per frame, in radians
	amp      float64
	phase    float64
}

// NewSine creates a sine generator at freq Hz for the given sample rate
// and channel count, with amplitude amp in (0, 1].
func NewSine(channels, sampleRate int, freq, amp float64) *Sine {
	return &Sine{
		channels: channels,
		step:     2 * math.Pi * freq / float64(sampleRate),
		amp:      amp,
	}
}

func (s *Sine) Channels() int { return s.channels }

func (s *Sine) Fill(frames int, dst []float32) {
	i := 0
	for f := 0; f < frames; f++ {
		v := float32(s.amp * math.Sin(s.phase))
		for c := 0; c < s.channels; c++ {
			dst[i] = v
			i++
		}
		s.phase += s.step
		if s.phase >= 2*math.Pi {
			s.phase -= 2 * math.Pi
		}
	}
}

// Ramp generates a sample-indexed ramp: sample k of channel c carries a
// value derived from the running frame counter, so tests can verify
// ordering and channel integrity sample-for-sample.
type Ramp struct {
	channels int
	scale    float32
	frame    uint64
}

// NewRamp creates a ramp generator. scale maps the frame counter into the
// float range, e.g. 1/48000 keeps one second of frames inside [0, 1).
func NewRamp(channels int, scale float32) *Ramp {
	return &Ramp{channels: channels, scale: scale}
}

func (r *Ramp) Channels() int { return r.channels }

func (r *Ramp) Fill(frames int, dst []float32) {
	i := 0
	for f := 0; f < frames; f++ {
		base := float32(r.frame) * r.scale
		for c := 0; c < r.channels; c++ {
			dst[i] = base + float32(c)*r.scale/2
			i++
		}
		r.frame++
	}
}
