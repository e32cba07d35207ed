package device

import "fmt"

// Encoding identifies the per-sample wire layout of a device.
type Encoding int

const (
	// EncodingFloat32 is interleaved 32-bit float samples in [-1, 1].
	// It is the engine's native encoding; fixed-point hosts convert at
	// the plugin shim before samples reach the engine.
	EncodingFloat32 Encoding = iota + 1
)

func (e Encoding) String() string {
	switch e {
	case EncodingFloat32:
		return "float32"
	default:
		return fmt.Sprintf("encoding(%d)", int(e))
	}
}

// Format is the negotiated stream format shared by every endpoint of a
// device instance. It is fixed while the device exists; changing it goes
// through Controller.SetFormat, which recreates the buffer and clock.
type Format struct {
	Channels   int
	SampleRate int
	Encoding   Encoding
}

// Validate reports ErrInvalidFormat for non-positive channel count or
// sample rate, or an unsupported encoding.
func (f Format) Validate() error {
	if f.Channels <= 0 {
		return fmt.Errorf("%w: channel count %d", ErrInvalidFormat, f.Channels)
	}
	if f.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidFormat, f.SampleRate)
	}
	if f.Encoding != EncodingFloat32 {
		return fmt.Errorf("%w: unsupported encoding %s", ErrInvalidFormat, f.Encoding)
	}
	return nil
}

func (f Format) String() string {
	return fmt.Sprintf("%dch/%dHz/%s", f.Channels, f.SampleRate, f.Encoding)
}
