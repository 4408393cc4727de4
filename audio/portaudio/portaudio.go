// Package portaudio implements audio capture and playback on top of the
// PortAudio blocking stream API.
package portaudio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	pa "github.com/gordonklaus/portaudio"

	"github.com/RyanBlaney/pitch-perfect/audio"
	"github.com/RyanBlaney/pitch-perfect/logging"
)

// Device opens PortAudio streams. Every opened handle holds its own
// Initialize/Terminate pair, so handles can be released independently.
type Device struct {
	cfg    audio.Config
	logger logging.Logger
}

// New returns a PortAudio device for cfg
func New(cfg audio.Config, logger logging.Logger) *Device {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	if cfg.FramesPerBuffer <= 0 {
		cfg.FramesPerBuffer = 1024
	}
	return &Device{
		cfg:    cfg,
		logger: logger.WithFields(logging.Fields{"component": "portaudio"}),
	}
}

// lookup resolves a device by name, falling back to the default device when
// name is empty
func lookup(name string, input bool) (*pa.DeviceInfo, error) {
	if name == "" {
		info, err := defaultDevice(input)
		if err != nil {
			return nil, fmt.Errorf("%w: no default %s device: %v", audio.ErrDeviceNotFound, direction(input), err)
		}
		return info, nil
	}

	devices, err := pa.Devices()
	if err != nil {
		return nil, err
	}
	for _, d := range devices {
		if !strings.EqualFold(d.Name, name) {
			continue
		}
		if input && d.MaxInputChannels > 0 || !input && d.MaxOutputChannels > 0 {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", audio.ErrDeviceNotFound, name)
}

func defaultDevice(input bool) (*pa.DeviceInfo, error) {
	if input {
		return pa.DefaultInputDevice()
	}
	return pa.DefaultOutputDevice()
}

func direction(input bool) string {
	if input {
		return "input"
	}
	return "output"
}

// Devices lists the names of all devices PortAudio can see
func Devices() ([]string, error) {
	if err := pa.Initialize(); err != nil {
		return nil, err
	}
	defer pa.Terminate()

	infos, err := pa.Devices()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, d := range infos {
		names = append(names, d.Name)
	}
	return names, nil
}

func (d *Device) open(input bool) (*pa.Stream, []float32, error) {
	if err := pa.Initialize(); err != nil {
		return nil, nil, fmt.Errorf("portaudio: initialize: %w", err)
	}

	name := d.cfg.OutputDevice
	if input {
		name = d.cfg.InputDevice
	}
	info, err := lookup(name, input)
	if err != nil {
		pa.Terminate()
		return nil, nil, err
	}

	var params pa.StreamParameters
	if input {
		params = pa.HighLatencyParameters(info, nil)
		params.Input.Channels = 1
	} else {
		params = pa.HighLatencyParameters(nil, info)
		params.Output.Channels = 1
	}
	params.SampleRate = float64(d.cfg.SampleRate)
	params.FramesPerBuffer = d.cfg.FramesPerBuffer

	buf := make([]float32, d.cfg.FramesPerBuffer)
	stream, err := pa.OpenStream(params, buf)
	if err != nil {
		pa.Terminate()
		return nil, nil, fmt.Errorf("portaudio: open %q: %w", info.Name, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		pa.Terminate()
		return nil, nil, fmt.Errorf("portaudio: start %q: %w", info.Name, err)
	}

	d.logger.Debug("stream opened", logging.Fields{
		"device":      info.Name,
		"input":       input,
		"sample_rate": d.cfg.SampleRate,
	})
	return stream, buf, nil
}

// OpenCapture implements audio.Device
func (d *Device) OpenCapture(ctx context.Context) (audio.Capture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stream, buf, err := d.open(true)
	if err != nil {
		return nil, err
	}
	c := &capture{handle: handle{stream: stream}, logger: d.logger}
	c.frames = frameReader{buf: buf, fill: c.read}
	return c, nil
}

// OpenPlayback implements audio.Device
func (d *Device) OpenPlayback(ctx context.Context) (audio.Playback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stream, buf, err := d.open(false)
	if err != nil {
		return nil, err
	}
	return &playback{handle: handle{stream: stream}, buf: buf}, nil
}

type handle struct {
	mu     sync.Mutex
	stream *pa.Stream
	closed bool
}

func (h *handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	err := errors.Join(h.stream.Stop(), h.stream.Close())
	return errors.Join(err, pa.Terminate())
}

type capture struct {
	handle
	frames frameReader
	logger logging.Logger
}

// read fills the stream buffer. Input overflow is logged and the data kept.
func (c *capture) read() error {
	if err := c.stream.Read(); err != nil {
		if !errors.Is(err, pa.InputOverflowed) {
			return fmt.Errorf("portaudio: read: %w", err)
		}
		c.logger.Debug("input overflowed")
	}
	return nil
}

// Record returns the next n samples of the stream
func (c *capture) Record(ctx context.Context, n int) ([]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, audio.ErrClosed
	}
	return c.frames.next(ctx, n)
}

type playback struct {
	handle
	buf []float32
}

// Play writes samples buffer by buffer, padding the last one with silence
func (p *playback) Play(ctx context.Context, samples []float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return audio.ErrClosed
	}

	for start := 0; start < len(samples); start += len(p.buf) {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk := samples[start:min(start+len(p.buf), len(samples))]
		for i := range p.buf {
			p.buf[i] = 0
			if i < len(chunk) {
				p.buf[i] = float32(chunk[i])
			}
		}
		if err := p.stream.Write(); err != nil && !errors.Is(err, pa.OutputUnderflowed) {
			return fmt.Errorf("portaudio: write: %w", err)
		}
	}
	return nil
}
