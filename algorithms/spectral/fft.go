package spectral

import (
	"github.com/mjibson/go-dsp/fft"
)

// FFT provides Fast Fourier Transform functionality
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes Fast Fourier Transform using mjibson/go-dsp
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	return fft.FFTReal(x)
}

// ComputeInverseReal computes inverse FFT and returns real part only
func (f *FFT) ComputeInverseReal(x []complex128) []float64 {
	if len(x) == 0 {
		return []float64{}
	}

	result := fft.IFFT(x)
	realResult := make([]float64, len(result))

	for i, val := range result {
		realResult[i] = real(val)
	}

	return realResult
}

// Autocorrelate returns the raw linear autocorrelation of x for lags
// 0..maxLag-1, r[k] = sum_{i<n-k} x[i]*x[i+k].
//
// The signal is zero padded to a power of two of at least 2n-1 samples so
// the circular correlation computed through the FFT does not wrap.
func (f *FFT) Autocorrelate(x []float64, maxLag int) []float64 {
	n := len(x)
	maxLag = min(maxLag, n)
	if n == 0 || maxLag <= 0 {
		return []float64{}
	}

	padded := make([]float64, NextPowerOfTwo(2*n-1))
	copy(padded, x)

	spectrum := f.Compute(padded)
	for i, c := range spectrum {
		re, im := real(c), imag(c)
		spectrum[i] = complex(re*re+im*im, 0)
	}

	corr := f.ComputeInverseReal(spectrum)
	return corr[:maxLag]
}

// NextPowerOfTwo finds the next power of 2 >= n
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}

	power := 1
	for power < n {
		power <<= 1
	}
	return power
}
