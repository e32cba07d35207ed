package device

import "errors"

// Error kinds reported synchronously to callers. All reflect caller misuse
// rather than transient conditions, so none are retried internally. Overrun
// and underrun are deliberately absent: they are expected real-time
// conditions exposed only through counters.
var (
	// ErrInvalidFormat is returned by Create and SetFormat for a
	// non-positive channel count or sample rate, or an unsupported
	// sample encoding.
	ErrInvalidFormat = errors.New("invalid device format")

	// ErrInvalidStateForReformat is returned by SetFormat while the
	// device is running.
	ErrInvalidStateForReformat = errors.New("device must be stopped to change format")

	// ErrDeviceNotRunning is returned by Submit and Retrieve while the
	// device is stopped.
	ErrDeviceNotRunning = errors.New("device is not running")

	// ErrDeviceNotFound is returned for operations addressing a device
	// that was never created or has been destroyed.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrFormatMismatch is returned by Submit and Retrieve when the
	// sample data layout does not match the negotiated format.
	ErrFormatMismatch = errors.New("sample data does not match negotiated format")
)
