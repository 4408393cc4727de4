// Package filters holds streaming filters applied to captured frames.
package filters

import (
	"math"
)

// DefaultDCCutoff is the -3dB corner of the DC blocker in Hz. It sits well
// below c0 so no note in the table is attenuated.
const DefaultDCCutoff = 10.0

// DCBlocker is a one-pole high-pass filter removing the DC offset some
// microphones add:
//
//	y[n] = x[n] - x[n-1] + R*y[n-1]
//
// State carries over between calls so consecutive frames filter as one
// stream. A DCBlocker is not safe for concurrent use.
//
// Reference: J. O. Smith III, "Introduction to Digital Filters",
// https://ccrma.stanford.edu/~jos/filters/DC_Blocker.html
type DCBlocker struct {
	pole float64
	x1   float64
	y1   float64
}

// NewDCBlocker creates a blocker with the given cutoff at sampleRate.
// The pole is R = 1 - 2*pi*fc/fs, clamped into (0, 1).
func NewDCBlocker(sampleRate int, cutoff float64) *DCBlocker {
	pole := 0.995
	if sampleRate > 0 && cutoff > 0 {
		pole = 1.0 - 2.0*math.Pi*cutoff/float64(sampleRate)
	}
	switch {
	case pole >= 1.0:
		pole = 0.999
	case pole <= 0.0:
		pole = 0.001
	}
	return &DCBlocker{pole: pole}
}

// Pole returns R
func (dc *DCBlocker) Pole() float64 {
	return dc.pole
}

// Cutoff returns the approximate -3dB frequency at sampleRate
func (dc *DCBlocker) Cutoff(sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return (1.0 - dc.pole) * float64(sampleRate) / (2.0 * math.Pi)
}

// Process filters a single sample
func (dc *DCBlocker) Process(x float64) float64 {
	y := x - dc.x1 + dc.pole*dc.y1
	dc.x1 = x
	dc.y1 = y
	return y
}

// Filter returns a filtered copy of frame
func (dc *DCBlocker) Filter(frame []float64) []float64 {
	out := make([]float64, len(frame))
	for i, x := range frame {
		out[i] = dc.Process(x)
	}
	return out
}

// Reset clears the filter state. Call it between unrelated streams.
func (dc *DCBlocker) Reset() {
	dc.x1 = 0
	dc.y1 = 0
}
