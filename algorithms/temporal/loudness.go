package temporal

import (
	"math"

	"github.com/RyanBlaney/pitch-perfect/algorithms/common"
)

const (
	// ReferencePressure is the 20 µPa reference used for sound pressure level.
	ReferencePressure = 2e-6

	// DetectionThreshold gates live note detection (dB SPL).
	DetectionThreshold = 60.0

	// AmbienceThreshold separates background noise from deliberate input
	// in transfer mode (dB SPL).
	AmbienceThreshold = 70.0
)

// SoundPressureLevel returns 20*log10(rms/p0) of a frame using the 20 µPa
// reference. Silent or empty frames return negative infinity.
func SoundPressureLevel(frame []float64) float64 {
	return SoundPressureLevelRef(frame, ReferencePressure)
}

// SoundPressureLevelRef is SoundPressureLevel with an explicit reference
// pressure.
func SoundPressureLevelRef(frame []float64, p0 float64) float64 {
	rms := common.RMS(frame)
	if rms <= 0 || p0 <= 0 {
		return math.Inf(-1)
	}
	return 20.0 * math.Log10(rms/p0)
}

// IsQuiet reports whether spl falls below threshold. NaN counts as quiet.
func IsQuiet(spl, threshold float64) bool {
	if math.IsNaN(spl) {
		return true
	}
	return spl < threshold
}

// SmoothedLoudness measures SPL over a trailing window of samples rather
// than a single frame, so short dips between notes do not read as silence.
type SmoothedLoudness struct {
	history *common.CircularBuffer
	scratch []float64
	p0      float64
}

// NewSmoothedLoudness creates a tracker holding half a second of samples at
// sampleRate. The window starts silent.
func NewSmoothedLoudness(sampleRate int) *SmoothedLoudness {
	return NewSmoothedLoudnessWindow(sampleRate / 2)
}

// NewSmoothedLoudnessWindow creates a tracker with an explicit window length
// in samples.
func NewSmoothedLoudnessWindow(windowSize int) *SmoothedLoudness {
	windowSize = max(windowSize, 1)
	return &SmoothedLoudness{
		history: common.NewSilentBuffer(windowSize),
		scratch: make([]float64, 0, windowSize),
		p0:      ReferencePressure,
	}
}

// Update drops the oldest len(frame) samples from the window, appends frame
// and returns the SPL of the whole window.
func (sl *SmoothedLoudness) Update(frame []float64) float64 {
	sl.history.Write(frame)
	sl.scratch = sl.history.Snapshot(sl.scratch)
	return SoundPressureLevelRef(sl.scratch, sl.p0)
}

// Reset refills the window with silence
func (sl *SmoothedLoudness) Reset() {
	sl.history.Fill(0)
}

// WindowSize returns the window length in samples
func (sl *SmoothedLoudness) WindowSize() int {
	return sl.history.Capacity()
}
