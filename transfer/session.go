// Package transfer records a played melody and plays it back as cosine
// tones once the player pauses.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RyanBlaney/pitch-perfect/algorithms/synthesis"
	"github.com/RyanBlaney/pitch-perfect/algorithms/temporal"
	"github.com/RyanBlaney/pitch-perfect/algorithms/tonal"
	"github.com/RyanBlaney/pitch-perfect/audio"
	"github.com/RyanBlaney/pitch-perfect/display"
	"github.com/RyanBlaney/pitch-perfect/internal/observe"
	"github.com/RyanBlaney/pitch-perfect/logging"
)

// State is the session state after the most recent frame
type State int

const (
	// StateBuffering accumulates pitches while the user plays
	StateBuffering State = iota

	// StateIdleWait is silence inside the gate's grace window
	StateIdleWait

	// StateTransferring means the buffered melody is being played back
	StateTransferring
)

func (s State) String() string {
	switch s {
	case StateBuffering:
		return "buffering"
	case StateIdleWait:
		return "idle_wait"
	case StateTransferring:
		return "transferring"
	default:
		return "unknown"
	}
}

// Config holds the session geometry and thresholds
type Config struct {
	SampleRate        int
	FrameSize         int     // Samples per frame; zero means a sixteenth of a second
	AmbienceThreshold float64 // dB SPL of the smoothed window
	EchoGuard         time.Duration
	Amplitude         float64 // Zero selects synthesis.DefaultAmplitude
	Fade              float64 // Tukey fade fraction per tone
}

// DefaultConfig returns the standard transfer settings at sampleRate
func DefaultConfig(sampleRate int) Config {
	return Config{
		SampleRate:        sampleRate,
		FrameSize:         sampleRate / 16,
		AmbienceThreshold: temporal.AmbienceThreshold,
		EchoGuard:         time.Second,
		Amplitude:         synthesis.DefaultAmplitude,
	}
}

// Outcome is the result of one Step
type Outcome struct {
	Status display.Status

	// Transfer holds the melody to play when the trigger fired, nil otherwise
	Transfer []float64
}

// Session is the transfer state machine. Step holds the per-frame logic;
// Run drives it from real devices. A Session is not safe for concurrent
// use.
type Session struct {
	cfg       Config
	device    audio.Device
	estimator tonal.Estimator
	notes     *tonal.NoteTable
	display   display.Display
	gate      IdleGate
	synth     *synthesis.Synthesizer
	metrics   *observe.Metrics
	logger    logging.Logger

	now   func() time.Time
	sleep func(context.Context, time.Duration) error

	loudness  *temporal.SmoothedLoudness
	buffer    []float64
	lastInput time.Time
	state     State
}

// Option configures a Session
type Option func(*Session)

// WithGate replaces the default DurationGate
func WithGate(g IdleGate) Option {
	return func(s *Session) { s.gate = g }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithSleep replaces the echo guard wait
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(s *Session) { s.sleep = sleep }
}

// WithMetrics records frame, estimate and transfer metrics
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithLogger sets the logger; the global logger is used otherwise
func WithLogger(logger logging.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithNoteTable replaces the default note table
func WithNoteTable(t *tonal.NoteTable) Option {
	return func(s *Session) { s.notes = t }
}

// DefaultGrace is the silence accepted after input before a transfer
const DefaultGrace = 900 * time.Millisecond

// New builds a session
func New(cfg Config, device audio.Device, estimator tonal.Estimator, disp display.Display, opts ...Option) (*Session, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("transfer: sample rate must be positive, got %d", cfg.SampleRate)
	}
	if cfg.FrameSize == 0 {
		cfg.FrameSize = cfg.SampleRate / 16
	}
	if cfg.FrameSize < 2 {
		return nil, fmt.Errorf("transfer: frame size must be at least 2, got %d", cfg.FrameSize)
	}
	if cfg.Amplitude <= 0 {
		cfg.Amplitude = synthesis.DefaultAmplitude
	}
	if estimator == nil || disp == nil {
		return nil, errors.New("transfer: estimator and display are required")
	}

	s := &Session{
		cfg:       cfg,
		device:    device,
		estimator: estimator,
		notes:     tonal.DefaultNoteTable(),
		display:   disp,
		gate:      DurationGate{Grace: DefaultGrace},
		now:       time.Now,
		sleep:     sleepContext,
		loudness:  temporal.NewSmoothedLoudness(cfg.SampleRate),
	}
	s.synth = &synthesis.Synthesizer{
		SampleRate: cfg.SampleRate,
		Amplitude:  cfg.Amplitude,
		Fade:       cfg.Fade,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.GetGlobalLogger()
	}
	s.logger = s.logger.WithFields(logging.Fields{"component": "transfer"})
	return s, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// State returns the state after the most recent Step
func (s *Session) State() State {
	return s.state
}

// Buffered returns a copy of the recorded frequencies
func (s *Session) Buffered() []float64 {
	return append([]float64(nil), s.buffer...)
}

// Reset clears the melody, the input timestamp and the loudness window
func (s *Session) Reset() {
	s.buffer = s.buffer[:0]
	s.lastInput = time.Time{}
	s.loudness.Reset()
	s.state = StateBuffering
}

// Step feeds one frame captured at now through the state machine.
//
// A quiet window past the gate with a non-empty melody triggers a transfer.
// Other quiet frames are reported and dropped. Loud frames refresh the
// input timestamp and append their pitch when one is found.
func (s *Session) Step(frame []float64, now time.Time) Outcome {
	spl := s.loudness.Update(frame)
	quiet := temporal.IsQuiet(spl, s.cfg.AmbienceThreshold)

	if quiet {
		waiting := s.gate.ShouldWait(now, s.lastInput)
		if !waiting && len(s.buffer) > 0 {
			s.state = StateTransferring
			return Outcome{
				Status: display.Status{
					State:    display.StateTransferring,
					SPL:      spl,
					Buffered: len(s.buffer),
					Transfer: true,
				},
				Transfer: s.Buffered(),
			}
		}

		s.state = StateBuffering
		if waiting {
			s.state = StateIdleWait
		}
		return Outcome{Status: display.Status{
			State:    display.StateQuiet,
			SPL:      spl,
			Buffered: len(s.buffer),
			Transfer: true,
		}}
	}

	s.lastInput = now
	s.state = StateBuffering
	status := display.Status{State: display.StateListening, SPL: spl, Transfer: true}

	start := time.Now()
	est := s.estimator.Estimate(frame, s.cfg.SampleRate)
	s.metrics.RecordEstimate(context.Background(), s.estimator.Method().String(), est.OK(), time.Since(start))

	if est.OK() {
		if note, err := s.notes.Quantize(est.Frequency); err == nil {
			s.buffer = append(s.buffer, est.Frequency)
			status.Note = note
			status.Frequency = est.Frequency
		}
	}
	status.Buffered = len(s.buffer)
	return Outcome{Status: status}
}

// Run listens, plays back and restarts until ctx is cancelled or a device
// fails. Every restart releases and reacquires both devices so audio
// captured during playback is discarded. Cancellation returns nil.
func (s *Session) Run(ctx context.Context) error {
	if s.device == nil {
		return errors.New("transfer: no audio device")
	}

	for round := 1; ; round++ {
		if ctx.Err() != nil {
			return nil
		}

		s.Reset()
		s.logger.Debug("listening session started", logging.Fields{"round": round})
		restart, err := s.listen(ctx)
		if err != nil {
			return err
		}
		if !restart {
			return nil
		}
	}
}

// listen runs one device session. restart is true after a playback.
func (s *Session) listen(ctx context.Context) (restart bool, err error) {
	capture, playback, err := audio.Open(ctx, s.device)
	if err != nil {
		if ctx.Err() != nil {
			return false, nil
		}
		return false, fmt.Errorf("transfer: %w", err)
	}
	defer func() {
		if cerr := errors.Join(capture.Close(), playback.Close()); cerr != nil {
			s.logger.Error(cerr, "release audio devices")
		}
	}()

	for {
		if ctx.Err() != nil {
			return false, nil
		}

		frame, err := capture.Record(ctx, s.cfg.FrameSize)
		if err != nil {
			if ctx.Err() != nil {
				return false, nil
			}
			return false, fmt.Errorf("transfer: record: %w", err)
		}

		out := s.Step(frame, s.now())
		s.metrics.RecordFrame(ctx, s.state.String())
		s.report(out.Status)

		if out.Transfer != nil {
			return s.play(ctx, playback, out.Transfer), nil
		}
	}
}

// play renders and plays the melody, then waits out the echo guard.
// It reports whether the session should restart.
func (s *Session) play(ctx context.Context, playback audio.Playback, freqs []float64) bool {
	samples := s.synth.Sequence(freqs, s.cfg.FrameSize)
	s.logger.Info("transferring melody", logging.Fields{
		"tones":    len(freqs),
		"duration": s.synth.Duration(len(freqs), s.cfg.FrameSize),
	})

	if err := playback.Play(ctx, samples); err != nil {
		if ctx.Err() != nil {
			return false
		}
		s.logger.Error(err, "playback failed")
	} else {
		s.metrics.RecordTransfer(ctx, len(freqs))
	}

	if err := s.sleep(ctx, s.cfg.EchoGuard); err != nil {
		return false
	}
	return true
}

func (s *Session) report(st display.Status) {
	if err := s.display.Report(st); err != nil {
		s.logger.Warn("display update failed", logging.Fields{"error": err.Error()})
	}
}
