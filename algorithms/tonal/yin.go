package tonal

import (
	"github.com/RyanBlaney/pitch-perfect/algorithms/common"
	"github.com/RyanBlaney/pitch-perfect/algorithms/spectral"
)

// DefaultYinThreshold is the absolute threshold of the YIN dip search
const DefaultYinThreshold = 0.1

// YIN implements the YIN fundamental frequency estimator.
//
// Reference: de Cheveigné, A., Kawahara, H. (2002). "YIN, a fundamental
// frequency estimator for speech and music"
type YIN struct {
	threshold   float64
	interpolate bool
	fft         *spectral.FFT
}

// NewYIN creates a YIN estimator. A non-positive threshold selects
// DefaultYinThreshold.
func NewYIN(threshold float64) *YIN {
	if threshold <= 0 {
		threshold = DefaultYinThreshold
	}
	return &YIN{
		threshold: threshold,
		fft:       spectral.NewFFT(),
	}
}

// Method implements Estimator
func (y *YIN) Method() Method {
	return MethodYIN
}

// Difference computes d(tau) = sum_{i<n-tau} (x[i+tau]-x[i])^2 for tau in
// 0..n/2-1.
//
// Expanding the square gives two energy terms taken from prefix sums and a
// cross term taken from the FFT autocorrelation, which keeps the cost at
// O(n log n) for 0.1 s frames.
func (y *YIN) Difference(frame []float64) []float64 {
	n := len(frame)
	lags := n / 2
	if lags == 0 {
		return nil
	}

	prefix := make([]float64, n+1)
	for i, v := range frame {
		prefix[i+1] = prefix[i] + v*v
	}

	corr := y.fft.Autocorrelate(frame, lags)

	diff := make([]float64, lags)
	for tau := 1; tau < lags; tau++ {
		head := prefix[n-tau]
		tail := prefix[n] - prefix[tau]
		// Rounding in the FFT can leave tiny negatives
		diff[tau] = max(head+tail-2*corr[tau], 0)
	}

	return diff
}

// CumulativeMeanNormalized turns a difference function into the cumulative
// mean normalized difference: cmn[0] = 1 and cmn[tau] = d(tau) divided by
// the mean of d(1..tau). A zero running sum maps to 1.
func CumulativeMeanNormalized(diff []float64) []float64 {
	if len(diff) == 0 {
		return nil
	}

	cmn := make([]float64, len(diff))
	cmn[0] = 1.0

	runningSum := 0.0
	for tau := 1; tau < len(diff); tau++ {
		runningSum += diff[tau]
		if runningSum <= 0 {
			cmn[tau] = 1.0
			continue
		}
		cmn[tau] = diff[tau] * float64(tau) / runningSum
	}

	return cmn
}

// AbsoluteThreshold picks the period from a CMND curve: the minimum of the
// first dip below threshold. When the curve never dips below threshold the
// global minimum over tau >= 1 is used and fallback is true. tau is -1 only
// when the curve has no lag >= 1.
func AbsoluteThreshold(cmn []float64, threshold float64) (tau int, fallback bool) {
	if len(cmn) < 2 {
		return -1, false
	}

	start := common.FirstBelow(cmn, 1, threshold)
	if start < 0 {
		return 1 + common.ArgMin(cmn[1:]), true
	}

	end := common.FirstAtOrAbove(cmn, start, threshold)
	if end < 0 {
		end = len(cmn)
	}

	return start + common.ArgMin(cmn[start:end]), false
}

// Estimate implements Estimator
func (y *YIN) Estimate(frame []float64, sampleRate int) PitchEstimate {
	if sampleRate <= 0 || common.SumSquares(frame) == 0 {
		return NoPitch
	}

	cmn := CumulativeMeanNormalized(y.Difference(frame))
	tau, fallback := AbsoluteThreshold(cmn, y.threshold)
	if tau <= 0 {
		return NoPitch
	}

	period := float64(tau)
	if y.interpolate {
		period = common.ParabolicPeak(cmn, tau)
	}

	estimate := estimateFromPeriod(MethodYIN, period, sampleRate, common.Clamp(1-cmn[tau], 0, 1))
	estimate.Fallback = fallback
	return estimate
}
