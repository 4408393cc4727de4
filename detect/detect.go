// Package detect runs live note detection: capture a frame, gate it on
// loudness, estimate its pitch, snap it to a note and report it.
package detect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RyanBlaney/pitch-perfect/algorithms/filters"
	"github.com/RyanBlaney/pitch-perfect/algorithms/temporal"
	"github.com/RyanBlaney/pitch-perfect/algorithms/tonal"
	"github.com/RyanBlaney/pitch-perfect/audio"
	"github.com/RyanBlaney/pitch-perfect/display"
	"github.com/RyanBlaney/pitch-perfect/internal/observe"
	"github.com/RyanBlaney/pitch-perfect/logging"
)

// Config holds the loop geometry and loudness gate
type Config struct {
	SampleRate int
	FrameSize  int     // Samples per frame; zero means a quarter second
	Threshold  float64 // dB SPL below which frames are idle
	DCCutoff   float64 // High-pass corner in Hz applied before estimation; zero disables
}

// DefaultConfig returns the standard detection settings at sampleRate
func DefaultConfig(sampleRate int) Config {
	return Config{
		SampleRate: sampleRate,
		FrameSize:  sampleRate / 4,
		Threshold:  temporal.DetectionThreshold,
		DCCutoff:   filters.DefaultDCCutoff,
	}
}

// Loop is the detection pipeline. Process is safe to call without a device;
// Run owns the capture handle.
type Loop struct {
	cfg       Config
	device    audio.Device
	estimator tonal.Estimator
	notes     *tonal.NoteTable
	dc        *filters.DCBlocker
	display   display.Display
	metrics   *observe.Metrics
	logger    logging.Logger
}

// Option configures a Loop
type Option func(*Loop)

// WithMetrics records frame and estimate metrics
func WithMetrics(m *observe.Metrics) Option {
	return func(l *Loop) { l.metrics = m }
}

// WithLogger sets the logger; the global logger is used otherwise
func WithLogger(logger logging.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

// WithNoteTable replaces the default note table
func WithNoteTable(t *tonal.NoteTable) Option {
	return func(l *Loop) { l.notes = t }
}

// New builds a detection loop
func New(cfg Config, device audio.Device, estimator tonal.Estimator, disp display.Display, opts ...Option) (*Loop, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("detect: sample rate must be positive, got %d", cfg.SampleRate)
	}
	if cfg.FrameSize == 0 {
		cfg.FrameSize = cfg.SampleRate / 4
	}
	if cfg.FrameSize < 2 {
		return nil, fmt.Errorf("detect: frame size must be at least 2, got %d", cfg.FrameSize)
	}
	if estimator == nil || disp == nil {
		return nil, errors.New("detect: estimator and display are required")
	}

	l := &Loop{
		cfg:       cfg,
		device:    device,
		estimator: estimator,
		notes:     tonal.DefaultNoteTable(),
		display:   disp,
	}
	if cfg.DCCutoff > 0 {
		l.dc = filters.NewDCBlocker(cfg.SampleRate, cfg.DCCutoff)
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logging.GetGlobalLogger()
	}
	l.logger = l.logger.WithFields(logging.Fields{
		"component": "detect",
		"method":    estimator.Method().String(),
	})
	return l, nil
}

// Process analyses one frame. Frames below the threshold report idle;
// louder frames report listening, with a note when estimation succeeds.
func (l *Loop) Process(frame []float64) display.Status {
	spl := temporal.SoundPressureLevel(frame)
	if temporal.IsQuiet(spl, l.cfg.Threshold) {
		// The next onset starts a new stream
		if l.dc != nil {
			l.dc.Reset()
		}
		return display.Status{State: display.StateIdle, SPL: spl}
	}

	status := display.Status{State: display.StateListening, SPL: spl}

	if l.dc != nil {
		frame = l.dc.Filter(frame)
	}

	start := time.Now()
	est := l.estimator.Estimate(frame, l.cfg.SampleRate)
	l.metrics.RecordEstimate(context.Background(), l.estimator.Method().String(), est.OK(), time.Since(start))
	if !est.OK() {
		return status
	}

	note, err := l.notes.Quantize(est.Frequency)
	if err != nil {
		l.logger.Debug("estimate could not be quantized", logging.Fields{"hz": est.Frequency})
		return status
	}

	status.Note = note
	status.Frequency = est.Frequency
	return status
}

// Run captures and reports frames until ctx is cancelled or capture fails.
// Cancellation is checked once per frame and returns nil. Display errors are
// logged and never stop the loop.
func (l *Loop) Run(ctx context.Context) error {
	if l.device == nil {
		return errors.New("detect: no capture device")
	}

	capture, err := l.device.OpenCapture(ctx)
	if err != nil {
		return fmt.Errorf("detect: open capture: %w", err)
	}
	defer func() {
		if err := capture.Close(); err != nil {
			l.logger.Error(err, "close capture")
		}
	}()

	fields := logging.Fields{
		"sample_rate": l.cfg.SampleRate,
		"frame_size":  l.cfg.FrameSize,
		"threshold":   l.cfg.Threshold,
	}
	if l.dc != nil {
		fields["dc_cutoff_hz"] = l.dc.Cutoff(l.cfg.SampleRate)
	}
	l.logger.Info("listening", fields)

	// The first report clears the display before any audio arrives
	l.report(display.Status{State: display.StateIdle})

	for {
		if ctx.Err() != nil {
			return nil
		}

		frame, err := capture.Record(ctx, l.cfg.FrameSize)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("detect: record: %w", err)
		}

		status := l.Process(frame)
		l.metrics.RecordFrame(ctx, status.State.String())
		l.report(status)
	}
}

func (l *Loop) report(s display.Status) {
	if err := l.display.Report(s); err != nil {
		l.logger.Warn("display update failed", logging.Fields{"error": err.Error()})
	}
}
