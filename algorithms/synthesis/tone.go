// Package synthesis renders detected pitches back into audio.
package synthesis

import (
	"math"

	"github.com/RyanBlaney/pitch-perfect/algorithms/windowing"
)

// DefaultAmplitude keeps replayed tones well under full scale
const DefaultAmplitude = 0.08

// CosineTone returns n samples of amplitude*cos(2*pi*freq*t) at sampleRate,
// starting at phase zero.
func CosineTone(freq, amplitude float64, n, sampleRate int) []float64 {
	if n <= 0 || sampleRate <= 0 {
		return []float64{}
	}

	out := make([]float64, n)
	step := 2 * math.Pi * freq / float64(sampleRate)
	for i := range out {
		out[i] = amplitude * math.Cos(step*float64(i))
	}
	return out
}

// Synthesizer renders frequency sequences as back-to-back cosine tones
type Synthesizer struct {
	SampleRate int
	Amplitude  float64

	// Fade is the fraction of every tone spent in Tukey ramps. Zero keeps
	// the tones unshaped.
	Fade float64
}

// NewSynthesizer returns a synthesizer with the default amplitude and no fade
func NewSynthesizer(sampleRate int) *Synthesizer {
	return &Synthesizer{
		SampleRate: sampleRate,
		Amplitude:  DefaultAmplitude,
	}
}

// Sequence renders one tone of samplesPerTone samples per frequency, in
// order. Frequencies that are not finite and positive render as silence so
// every entry keeps its slot.
func (s *Synthesizer) Sequence(freqs []float64, samplesPerTone int) []float64 {
	if len(freqs) == 0 || samplesPerTone <= 0 {
		return []float64{}
	}

	var taper *windowing.Tukey
	if s.Fade > 0 {
		taper = windowing.NewTukey(samplesPerTone, s.Fade)
	}

	out := make([]float64, 0, len(freqs)*samplesPerTone)
	for _, f := range freqs {
		if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			out = append(out, make([]float64, samplesPerTone)...)
			continue
		}

		tone := CosineTone(f, s.Amplitude, samplesPerTone, s.SampleRate)
		if taper != nil {
			// sizes always match
			_ = taper.ApplyInPlace(tone)
		}
		out = append(out, tone...)
	}
	return out
}

// Duration returns the playback length in seconds of a sequence of count
// tones.
func (s *Synthesizer) Duration(count, samplesPerTone int) float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(count*samplesPerTone) / float64(s.SampleRate)
}
