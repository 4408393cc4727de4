// Package file provides a capture device that decodes an audio file with
// ffmpeg and hands it out frame by frame, as if it came from a microphone.
package file

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/RyanBlaney/pitch-perfect/audio"
	"github.com/RyanBlaney/pitch-perfect/logging"
)

// Config holds the decoder settings
type Config struct {
	Path       string
	SampleRate int
	FFmpegPath string        // Default: "ffmpeg" from PATH
	Timeout    time.Duration // Zero means no limit
	Realtime   bool          // Sleep one frame duration per Record
}

// Device decodes Config.Path once, on the first OpenCapture. Later captures
// resume where the previous one was closed, so a transfer session that
// reopens its devices between rounds walks through the file once.
type Device struct {
	cfg    Config
	logger logging.Logger

	mu      sync.Mutex
	samples []float64
	decoded bool
	pos     int
}

// New creates a file device
func New(cfg Config, logger logging.Logger) *Device {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Device{
		cfg: cfg,
		logger: logger.WithFields(logging.Fields{
			"component": "file_source",
			"path":      cfg.Path,
		}),
	}
}

// NewFromSamples creates a device over already decoded mono samples
func NewFromSamples(samples []float64, sampleRate int, realtime bool) *Device {
	return &Device{
		cfg:     Config{SampleRate: sampleRate, Realtime: realtime},
		logger:  &logging.NoOpLogger{},
		samples: samples,
		decoded: true,
	}
}

// Args returns the ffmpeg arguments decoding the file to mono float64
// little-endian PCM on stdout
func (d *Device) Args() []string {
	return []string{
		"-v", "error",
		"-i", d.cfg.Path,
		"-vn",
		"-f", "f64le",
		"-ac", "1",
		"-ar", strconv.Itoa(d.cfg.SampleRate),
		"pipe:1",
	}
}

// Decode runs ffmpeg over the file
func (d *Device) Decode(ctx context.Context) ([]float64, error) {
	if _, err := os.Stat(d.cfg.Path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", audio.ErrDeviceNotFound, d.cfg.Path, err)
	}

	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	args := d.Args()
	d.logger.Debug("running ffmpeg", logging.Fields{"args": strings.Join(args, " ")})

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, d.cfg.FFmpegPath, args...)
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	output, err := cmd.Output()
	if err != nil {
		d.logger.Error(err, "ffmpeg decode failed", logging.Fields{"stderr": stderr.String()})
		return nil, fmt.Errorf("file: ffmpeg decode failed: %w", err)
	}

	samples, err := DecodePCM(output)
	if err != nil {
		return nil, err
	}

	d.logger.Info("decoded audio file", logging.Fields{
		"samples":  len(samples),
		"duration": time.Duration(float64(len(samples)) / float64(d.cfg.SampleRate) * float64(time.Second)).String(),
	})
	return samples, nil
}

// DecodePCM converts float64 little-endian bytes into samples
func DecodePCM(data []byte) ([]float64, error) {
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("file: PCM length %d is not a multiple of 8", len(data))
	}

	samples := make([]float64, len(data)/8)
	for i := range samples {
		samples[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return samples, nil
}

// OpenCapture implements audio.Device
func (d *Device) OpenCapture(ctx context.Context) (audio.Capture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.decoded {
		samples, err := d.Decode(ctx)
		if err != nil {
			return nil, err
		}
		d.samples = samples
		d.decoded = true
	}
	return &capture{device: d}, nil
}

// OpenPlayback implements audio.Device. Files are input only.
func (d *Device) OpenPlayback(context.Context) (audio.Playback, error) {
	return nil, fmt.Errorf("%w: file source has no output", audio.ErrDeviceNotFound)
}

// Remaining returns the number of samples not yet recorded
func (d *Device) Remaining() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.samples) - d.pos
}

type capture struct {
	device *Device
	closed bool
}

// Record returns the next n samples. The last frame is zero padded; after it
// Record returns io.EOF.
func (c *capture) Record(ctx context.Context, n int) ([]float64, error) {
	if c.closed {
		return nil, audio.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d := c.device
	d.mu.Lock()
	if d.pos >= len(d.samples) {
		d.mu.Unlock()
		return nil, io.EOF
	}
	frame := make([]float64, n)
	copied := copy(frame, d.samples[d.pos:])
	d.pos += copied
	d.mu.Unlock()

	if d.cfg.Realtime && d.cfg.SampleRate > 0 {
		wait := time.Duration(float64(n) / float64(d.cfg.SampleRate) * float64(time.Second))
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return frame, nil
}

func (c *capture) Close() error {
	c.closed = true
	return nil
}

// IsEOF reports whether err marks the end of a file source
func IsEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
