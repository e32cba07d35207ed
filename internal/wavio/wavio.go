// Package wavio exports captured loopback audio as 16-bit PCM WAV files.
// It sits outside the real-time path: a recorder drains the device into
// memory and writes the result once at the end of a capture.
package wavio

import (
	"fmt"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/afero"
)

const outputBitDepth = 16

// WriteFile encodes interleaved float32 samples in [-1, 1] as a PCM WAV
// file at path. The filesystem is abstracted so callers can target disk or
// memory.
func WriteFile(fs afero.Fs, path string, samples []float32, sampleRate, channels int) error {
	if sampleRate <= 0 || channels <= 0 {
		return fmt.Errorf("wavio: invalid format %dch/%dHz", channels, sampleRate)
	}
	if len(samples)%channels != 0 {
		return fmt.Errorf("wavio: %d samples do not divide into %d channels", len(samples), channels)
	}

	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("wavio: create %s: %w", path, err)
	}
	defer f.Close()

	buf := &audio.IntBuffer{
		Data: float32sToPCM16(samples),
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		SourceBitDepth: outputBitDepth,
	}

	enc := wav.NewEncoder(f, sampleRate, outputBitDepth, channels, 1)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavio: encode: %w", err)
	}
	// Close finalizes the RIFF headers; without it the file is unreadable.
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavio: finalize: %w", err)
	}
	return nil
}

// float32sToPCM16 converts normalized float samples to 16-bit PCM values,
// clipping anything outside [-1, 1].
func float32sToPCM16(samples []float32) []int {
	out := make([]int, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		out[i] = int(s * 32767)
	}
	return out
}
