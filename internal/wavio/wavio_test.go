package wavio

import (
	"testing"

	"github.com/go-audio/wav"
	"github.com/spf13/afero"
)

func TestWriteFileRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()

	samples := []float32{0, 0.5, -0.5, 1, -1, 0.25, -0.25, 0.125}
	if err := WriteFile(fs, "out.wav", samples, 48000, 2); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f, err := fs.Open("out.wav")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if dec.SampleRate != 48000 {
		t.Fatalf("sample rate = %d, want 48000", dec.SampleRate)
	}
	if dec.NumChans != 2 {
		t.Fatalf("channels = %d, want 2", dec.NumChans)
	}
	if len(buf.Data) != len(samples) {
		t.Fatalf("decoded %d samples, want %d", len(buf.Data), len(samples))
	}
	for i, s := range samples {
		want := int(s * 32767)
		if buf.Data[i] != want {
			t.Fatalf("sample %d = %d, want %d", i, buf.Data[i], want)
		}
	}
}

func TestWriteFileClipsOutOfRange(t *testing.T) {
	fs := afero.NewMemMapFs()

	if err := WriteFile(fs, "clip.wav", []float32{2, -2}, 8000, 1); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f, _ := fs.Open("clip.wav")
	defer f.Close()
	buf, err := wav.NewDecoder(f).FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if buf.Data[0] != 32767 || buf.Data[1] != -32767 {
		t.Fatalf("clipped samples = %v, want [32767 -32767]", buf.Data)
	}
}

func TestWriteFileValidation(t *testing.T) {
	fs := afero.NewMemMapFs()

	if err := WriteFile(fs, "x.wav", []float32{0, 0, 0}, 8000, 2); err == nil {
		t.Fatal("expected error for samples not divisible by channel count")
	}
	if err := WriteFile(fs, "x.wav", []float32{0}, 0, 1); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}
