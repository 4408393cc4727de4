// Package display renders pipeline status for the user.
package display

import (
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/RyanBlaney/pitch-perfect/algorithms/tonal"
	"github.com/RyanBlaney/pitch-perfect/logging"
)

// State is the pipeline state shown to the user
type State int

const (
	// StateIdle means the detector heard nothing above its threshold
	StateIdle State = iota

	// StateQuiet means a transfer session is waiting in silence
	StateQuiet

	// StateListening means input is loud enough to analyse
	StateListening

	// StateTransferring means a recorded melody is being played back
	StateTransferring
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateQuiet:
		return "quiet"
	case StateListening:
		return "listening"
	case StateTransferring:
		return "transferring"
	default:
		return "unknown"
	}
}

// Status is one update for the display
type Status struct {
	State     State
	SPL       float64    // dB SPL of the frame or window
	Note      tonal.Note // Zero when nothing was detected
	Frequency float64    // Estimated frequency, 0 when unvoiced
	Buffered  int        // Frequencies recorded in a transfer session
	Transfer  bool       // Status comes from a transfer session
}

// HasNote reports whether the status carries a detected note
func (s Status) HasNote() bool {
	return s.Note.Name != "" && s.Frequency > 0
}

// Cents returns the deviation of the detected frequency from its note
func (s Status) Cents() float64 {
	if !s.HasNote() {
		return 0
	}
	return tonal.Cents(s.Frequency, s.Note)
}

// Placeholder is shown when there is nothing to report
const Placeholder = "-----"

// Text renders the one-line form of the status
func (s Status) Text() string {
	switch s.State {
	case StateTransferring:
		return "Transferring"
	case StateQuiet:
		return fmt.Sprintf("Quiet %s", formatSPL(s.SPL))
	case StateListening:
		if s.Transfer {
			pitch := Placeholder
			if s.HasNote() {
				pitch = s.Note.Name
			}
			return fmt.Sprintf("Listening! %s,  Pitch: %s", formatSPL(s.SPL), pitch)
		}
		if !s.HasNote() {
			return Placeholder
		}
		return fmt.Sprintf("%s: %.2fHZ", s.Note.Name, s.Frequency)
	default:
		return Placeholder
	}
}

func formatSPL(spl float64) string {
	if math.IsInf(spl, -1) {
		return "-inf dB"
	}
	return fmt.Sprintf("%.2f dB", spl)
}

// Display receives status updates. Implementations must tolerate being
// called once per audio frame.
type Display interface {
	Report(Status) error
}

// Line writes each status line to w when it differs from the previous one
type Line struct {
	mu   sync.Mutex
	w    io.Writer
	last string
}

// NewLine returns a plain-text display on w
func NewLine(w io.Writer) *Line {
	return &Line{w: w}
}

// Report implements Display
func (l *Line) Report(s Status) error {
	text := s.Text()

	l.mu.Lock()
	defer l.mu.Unlock()
	if text == l.last {
		return nil
	}
	l.last = text
	_, err := fmt.Fprintln(l.w, text)
	return err
}

// Log reports status changes through a logger
type Log struct {
	mu     sync.Mutex
	logger logging.Logger
	last   string
}

// NewLog returns a display backed by logger
func NewLog(logger logging.Logger) *Log {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Log{logger: logger}
}

// Report implements Display. Unchanged lines are logged at debug level.
func (l *Log) Report(s Status) error {
	text := s.Text()
	fields := logging.Fields{"state": s.State.String()}
	if !math.IsInf(s.SPL, 0) && !math.IsNaN(s.SPL) {
		fields["spl"] = math.Round(s.SPL*100) / 100
	}
	if s.HasNote() {
		fields["note"] = s.Note.Name
		fields["hz"] = math.Round(s.Frequency*100) / 100
		fields["cents"] = math.Round(s.Cents())
	}

	l.mu.Lock()
	changed := text != l.last
	l.last = text
	l.mu.Unlock()

	if changed {
		l.logger.Info(text, fields)
	} else {
		l.logger.Debug(text, fields)
	}
	return nil
}

// Multi fans a status out to several displays, returning the first error
type Multi []Display

// Report implements Display
func (m Multi) Report(s Status) error {
	var first error
	for _, d := range m {
		if err := d.Report(s); err != nil && first == nil {
			first = err
		}
	}
	return first
}
