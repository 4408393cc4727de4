package tonal

import (
	"github.com/RyanBlaney/pitch-perfect/algorithms/common"
	"github.com/RyanBlaney/pitch-perfect/algorithms/spectral"
)

// DefaultAutocorrThreshold is the level at which lobes of the normalized
// autocorrelation curve are separated.
const DefaultAutocorrThreshold = 0.7

// Autocorrelation estimates pitch from the first periodic lobe of the
// overlap-compensated, lag-0 normalized autocorrelation.
//
// Reference: Rabiner, L.R. (1977). "On the use of autocorrelation analysis
// for pitch detection"
type Autocorrelation struct {
	threshold   float64
	interpolate bool
	fft         *spectral.FFT
}

// NewAutocorrelation creates an autocorrelation estimator. A non-positive
// threshold selects DefaultAutocorrThreshold.
func NewAutocorrelation(threshold float64) *Autocorrelation {
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultAutocorrThreshold
	}
	return &Autocorrelation{
		threshold: threshold,
		fft:       spectral.NewFFT(),
	}
}

// Method implements Estimator
func (ac *Autocorrelation) Method() Method {
	return MethodAutocorrelation
}

// Curve returns the normalized autocorrelation for lags 0..n-n/2-1. Each lag
// is divided by its overlap length n-lag and the curve is scaled so lag 0 is
// 1. Frames without energy return nil.
func (ac *Autocorrelation) Curve(frame []float64) []float64 {
	n := len(frame)
	lags := n - n/2
	if n < 2 {
		return nil
	}

	corr := ac.fft.Autocorrelate(frame, lags)
	for k := range corr {
		corr[k] /= float64(n - k)
	}

	if corr[0] <= 0 || !common.IsFinite(corr[0]) {
		return nil
	}

	zero := corr[0]
	for k := range corr {
		corr[k] /= zero
	}

	return corr
}

// PeakRange isolates the first periodic lobe of curve: the lobe starts at
// the first upward crossing of the threshold after the zero-lag peak has
// decayed and ends at the next downward crossing. ok is false when any of
// the three crossings is missing.
func PeakRange(curve []float64, threshold float64) (start, end int, ok bool) {
	a := common.FirstBelow(curve, 0, threshold)
	if a < 0 {
		return 0, 0, false
	}

	start = common.FirstAbove(curve, a, threshold)
	if start < 0 {
		return 0, 0, false
	}

	end = common.FirstBelow(curve, start, threshold)
	if end < 0 {
		return 0, 0, false
	}

	return start, end, true
}

// Estimate implements Estimator
func (ac *Autocorrelation) Estimate(frame []float64, sampleRate int) PitchEstimate {
	if sampleRate <= 0 {
		return NoPitch
	}

	curve := ac.Curve(frame)
	if curve == nil {
		return NoPitch
	}

	start, end, ok := PeakRange(curve, ac.threshold)
	if !ok {
		return NoPitch
	}

	lag := start + common.ArgMax(curve[start:end])
	if lag <= 0 {
		return NoPitch
	}

	period := float64(lag)
	if ac.interpolate {
		period = common.ParabolicPeak(curve, lag)
	}

	return estimateFromPeriod(MethodAutocorrelation, period, sampleRate, common.Clamp(curve[lag], 0, 1))
}
