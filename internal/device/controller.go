package device

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Controller owns the process-wide registry of device instances and
// mediates their lifecycle on behalf of the host audio stack. Instances
// are addressed by the identifier Create returns; there are no ambient
// singletons, so tests can build and tear down controllers in isolation.
type Controller struct {
	log zerolog.Logger

	mu      sync.RWMutex
	devices map[string]*Device
}

// Info describes one registered device, for discovery surfaces.
type Info struct {
	ID     string
	Format Format
	State  State
}

// NewController creates an empty device registry.
func NewController(log zerolog.Logger) *Controller {
	return &Controller{
		log:     log,
		devices: make(map[string]*Device),
	}
}

// Create allocates a new stopped device with a fresh ring buffer and clock
// sized for the requested format and returns its identifier. Fails with
// ErrInvalidFormat for a non-positive channel count or sample rate, or an
// unsupported encoding.
func (c *Controller) Create(channels, sampleRate int, enc Encoding) (string, error) {
	f := Format{Channels: channels, SampleRate: sampleRate, Encoding: enc}
	if err := f.Validate(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	d := newDevice(id, f, c.log)

	c.mu.Lock()
	c.devices[id] = d
	c.mu.Unlock()

	c.log.Info().Str("device", id).Stringer("format", f).Msg("device created")
	return id, nil
}

// Start transitions the device to Running, resetting its clock and
// discarding buffered audio. No-op if already running.
func (c *Controller) Start(id string) error {
	d, err := c.get(id)
	if err != nil {
		return err
	}
	d.start()
	return nil
}

// Stop transitions the device to Stopped. Subsequent Submit and Retrieve
// calls fail with ErrDeviceNotRunning. No-op if already stopped.
func (c *Controller) Stop(id string) error {
	d, err := c.get(id)
	if err != nil {
		return err
	}
	d.stop()
	return nil
}

// SetFormat renegotiates a stopped device's format, recreating its ring
// buffer and clock and discarding all buffered audio. Fails with
// ErrInvalidStateForReformat while running, leaving the existing buffer
// and clock untouched.
func (c *Controller) SetFormat(id string, channels, sampleRate int, enc Encoding) error {
	d, err := c.get(id)
	if err != nil {
		return err
	}
	return d.setFormat(Format{Channels: channels, SampleRate: sampleRate, Encoding: enc})
}

// Destroy releases the device from any state. Outstanding stream handles
// fail with ErrDeviceNotFound afterwards.
func (c *Controller) Destroy(id string) error {
	c.mu.Lock()
	d, ok := c.devices[id]
	if ok {
		delete(c.devices, id)
	}
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	d.destroy()
	return nil
}

// OpenOutput registers a playback-side stream handle on the device.
func (c *Controller) OpenOutput(id string) (*OutputStream, error) {
	d, err := c.get(id)
	if err != nil {
		return nil, err
	}
	return &OutputStream{dev: d}, nil
}

// OpenInput registers a capture-side stream handle on the device.
func (c *Controller) OpenInput(id string) (*InputStream, error) {
	d, err := c.get(id)
	if err != nil {
		return nil, err
	}
	return &InputStream{dev: d}, nil
}

// Counters returns the device's observability counters without blocking.
func (c *Controller) Counters(id string) (Counters, error) {
	d, err := c.get(id)
	if err != nil {
		return Counters{}, err
	}
	return d.Counters(), nil
}

// Device returns the device instance itself, for callers that pace I/O
// off its clock.
func (c *Controller) Device(id string) (*Device, error) {
	return c.get(id)
}

// Devices lists every registered device.
func (c *Controller) Devices() []Info {
	c.mu.RLock()
	defer c.mu.RUnlock()
	infos := make([]Info, 0, len(c.devices))
	for _, d := range c.devices {
		infos = append(infos, Info{ID: d.ID(), Format: d.Format(), State: d.State()})
	}
	return infos
}

func (c *Controller) get(id string) (*Device, error) {
	c.mu.RLock()
	d, ok := c.devices[id]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	return d, nil
}
