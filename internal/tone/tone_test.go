package tone

import (
	"math"
	"testing"
)

func TestSineValuesAndPhaseContinuity(t *testing.T) {
	const (
		rate = 8000
		freq = 1000.0
		amp  = 0.5
	)
	g := NewSine(1, rate, freq, amp)

	// Two calls must produce the same stream as one.
	split := make([]float32, 64)
	g.Fill(32, split[:32])
	g.Fill(32, split[32:])

	whole := make([]float32, 64)
	NewSine(1, rate, freq, amp).Fill(64, whole)

	for i := range whole {
		if split[i] != whole[i] {
			t.Fatalf("sample %d differs across calls: %v vs %v", i, split[i], whole[i])
		}
		want := amp * math.Sin(2*math.Pi*freq*float64(i)/rate)
		if math.Abs(float64(whole[i])-want) > 1e-4 {
			t.Fatalf("sample %d = %v, want %v", i, whole[i], want)
		}
	}
}

func TestSineDuplicatesAcrossChannels(t *testing.T) {
	g := NewSine(2, 48000, 440, 0.8)
	buf := make([]float32, 10*2)
	g.Fill(10, buf)
	for f := 0; f < 10; f++ {
		if buf[f*2] != buf[f*2+1] {
			t.Fatalf("frame %d channels differ: %v vs %v", f, buf[f*2], buf[f*2+1])
		}
	}
}

func TestRampIsMonotonicPerChannel(t *testing.T) {
	g := NewRamp(2, 1.0/1000)
	buf := make([]float32, 8*2)
	g.Fill(4, buf[:8])
	g.Fill(4, buf[8:])

	for f := 1; f < 8; f++ {
		for c := 0; c < 2; c++ {
			prev, cur := buf[(f-1)*2+c], buf[f*2+c]
			if cur <= prev {
				t.Fatalf("channel %d frame %d = %v not above previous %v", c, f, cur, prev)
			}
		}
	}
	// Channel offset keeps stereo frames distinguishable.
	if buf[0] == buf[1] {
		t.Fatal("ramp channels are identical, want per-channel offset")
	}
}
