package transfer

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/RyanBlaney/pitch-perfect/algorithms/synthesis"
	"github.com/RyanBlaney/pitch-perfect/algorithms/tonal"
	"github.com/RyanBlaney/pitch-perfect/audio/mock"
	"github.com/RyanBlaney/pitch-perfect/display"
	"github.com/RyanBlaney/pitch-perfect/logging"
)

const (
	rate      = 44100
	frameSize = rate / 16
	frameStep = time.Second / 16
)

var melody = []float64{220, 440, 880}

func sine(freq float64, n int, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/rate)
	}
	return out
}

// performance is the melody followed by silent frames
func performance(silent int) [][]float64 {
	var frames [][]float64
	for _, f := range melody {
		frames = append(frames, sine(f, frameSize, 0.5))
	}
	for range silent {
		frames = append(frames, make([]float64, frameSize))
	}
	return frames
}

type recorder struct {
	mu       sync.Mutex
	statuses []display.Status
}

func (r *recorder) Report(s display.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, s)
	return nil
}

// clock advances one frame per call
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(frameStep)
	return t
}

type fixed struct{ est tonal.PitchEstimate }

func (f fixed) Estimate([]float64, int) tonal.PitchEstimate { return f.est }
func (f fixed) Method() tonal.Method                          { return tonal.MethodYIN }

func newSession(t *testing.T, dev *mock.Device, est tonal.Estimator, opts ...Option) *Session {
	t.Helper()
	if est == nil {
		est = tonal.NewYIN(0)
	}
	opts = append([]Option{WithLogger(&logging.NoOpLogger{})}, opts...)
	s, err := New(DefaultConfig(rate), dev, est, &recorder{}, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func within(got, want, tolerance float64) bool {
	return math.Abs(got-want) <= want*tolerance
}

func TestStep_TransfersAfterPause(t *testing.T) {
	t.Parallel()
	s := newSession(t, nil, nil)
	c := &clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}

	var (
		transfer    []float64
		triggeredAt time.Time
		lastLoud    time.Time
		sawIdleWait bool
	)
	for _, frame := range performance(24) {
		now := c.Now()
		out := s.Step(frame, now)

		switch out.Status.State {
		case display.StateListening:
			lastLoud = now
		case display.StateQuiet:
			if s.State() == StateIdleWait {
				sawIdleWait = true
			}
		}
		if out.Transfer != nil {
			transfer = out.Transfer
			triggeredAt = now
			break
		}
	}

	if transfer == nil {
		t.Fatal("session never transferred")
	}
	if len(transfer) != len(melody) {
		t.Fatalf("transfer has %d tones, want %d", len(transfer), len(melody))
	}
	for i, f := range melody {
		if !within(transfer[i], f, 0.02) {
			t.Errorf("tone %d = %v Hz, want %v", i, transfer[i], f)
		}
	}
	if !sawIdleWait {
		t.Error("expected an idle-wait frame before the transfer")
	}
	if gap := triggeredAt.Sub(lastLoud); gap < DefaultGrace {
		t.Errorf("transferred %v after the last input, inside the %v grace", gap, DefaultGrace)
	}
	if s.State() != StateTransferring {
		t.Errorf("State = %v, want transferring", s.State())
	}

	s.Reset()
	if len(s.Buffered()) != 0 || s.State() != StateBuffering {
		t.Errorf("Reset left %v in state %v", s.Buffered(), s.State())
	}
}

func TestStep_QuietFramesAreNotBuffered(t *testing.T) {
	t.Parallel()
	s := newSession(t, nil, nil)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	for range 5 {
		out := s.Step(make([]float64, frameSize), now)
		if out.Status.State != display.StateQuiet || out.Transfer != nil {
			t.Fatalf("silent frame reported %+v", out)
		}
		now = now.Add(frameStep)
	}
	if len(s.Buffered()) != 0 {
		t.Errorf("silence buffered %v", s.Buffered())
	}
}

func TestStep_FailedEstimatesAreSkipped(t *testing.T) {
	t.Parallel()
	s := newSession(t, nil, fixed{tonal.NoPitch})
	c := &clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}

	for _, frame := range performance(30) {
		out := s.Step(frame, c.Now())
		if out.Transfer != nil {
			t.Fatal("nothing was detected, so nothing should transfer")
		}
		if out.Status.State == display.StateListening && out.Status.HasNote() {
			t.Fatal("listening status should carry no note")
		}
	}
	if len(s.Buffered()) != 0 {
		t.Errorf("buffered %v from failed estimates", s.Buffered())
	}
}

func TestRun_PlaysMelodyAndRestarts(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := &mock.Capture{Frames: performance(24)}
	second := &mock.Capture{OnRecord: func(int) { cancel() }}
	playback := &mock.Playback{}
	dev := &mock.Device{Captures: []*mock.Capture{first, second}, Playback: playback}

	var slept []time.Duration
	c := &clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := newSession(t, dev, nil,
		WithClock(c.Now),
		WithSleep(func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		}),
	)

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run error = %v", err)
	}

	played := playback.Calls()
	if len(played) != 1 {
		t.Fatalf("played %d times, want 1", len(played))
	}
	if len(played[0]) != len(melody)*frameSize {
		t.Fatalf("played %d samples, want %d", len(played[0]), len(melody)*frameSize)
	}
	yin := tonal.NewYIN(0)
	for i, f := range melody {
		segment := played[0][i*frameSize : (i+1)*frameSize]
		if segment[0] != synthesis.DefaultAmplitude {
			t.Errorf("segment %d starts at %v, want a cosine at %v", i, segment[0], synthesis.DefaultAmplitude)
		}
		if got := yin.Estimate(segment, rate); !within(got.Frequency, f, 0.02) {
			t.Errorf("segment %d plays %v Hz, want %v", i, got.Frequency, f)
		}
	}

	if len(slept) != 1 || slept[0] != time.Second {
		t.Errorf("echo guard sleeps = %v, want [1s]", slept)
	}
	if dev.CaptureOpens != 2 || dev.PlaybackOpens != 2 {
		t.Errorf("opens = %d capture, %d playback, want 2 each", dev.CaptureOpens, dev.PlaybackOpens)
	}
	if first.CloseCount != 1 || second.CloseCount != 1 || playback.CloseCount != 2 {
		t.Errorf("closes = %d, %d, %d playback, want 1, 1, 2", first.CloseCount, second.CloseCount, playback.CloseCount)
	}
	if len(s.Buffered()) != 0 {
		t.Errorf("buffer not cleared after restart: %v", s.Buffered())
	}
}

func TestRun_DeviceFailure(t *testing.T) {
	t.Parallel()
	dev := &mock.Device{CaptureError: errors.New("no microphone")}
	s := newSession(t, dev, nil)
	if err := s.Run(context.Background()); err == nil {
		t.Fatal("expected device error")
	}
}

func TestRun_CancelDuringEchoGuard(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dev := &mock.Device{Captures: []*mock.Capture{{Frames: performance(24)}}}
	c := &clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := newSession(t, dev, nil,
		WithClock(c.Now),
		WithSleep(func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		}),
	)

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run error = %v, want nil", err)
	}
	if dev.CaptureOpens != 1 {
		t.Errorf("CaptureOpens = %d, want 1", dev.CaptureOpens)
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()
	s, err := New(Config{SampleRate: rate}, nil, tonal.NewYIN(0), &recorder{})
	if err != nil {
		t.Fatal(err)
	}
	if s.cfg.FrameSize != rate/16 {
		t.Errorf("FrameSize = %d, want %d", s.cfg.FrameSize, rate/16)
	}
	if s.loudness.WindowSize() != rate/2 {
		t.Errorf("loudness window = %d, want %d", s.loudness.WindowSize(), rate/2)
	}
	if _, ok := s.gate.(DurationGate); !ok {
		t.Errorf("default gate = %T, want DurationGate", s.gate)
	}
}

func TestStep_OutOfRangeEstimateSnapsToTableEdge(t *testing.T) {
	t.Parallel()
	s := newSession(t, nil, fixed{tonal.PitchEstimate{Frequency: 9000, Voiced: true, Method: tonal.MethodYIN}})

	out := s.Step(sine(440, frameSize, 0.5), time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	if out.Status.Note.Name != "b8" {
		t.Errorf("note = %q, want b8", out.Status.Note.Name)
	}
	if got := s.Buffered(); len(got) != 1 || got[0] != 9000 {
		t.Errorf("Buffered = %v, want [9000]", got)
	}
}
