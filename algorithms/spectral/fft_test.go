package spectral

import (
	"math"
	"testing"
)

func TestAutocorrelate_MatchesDirect(t *testing.T) {
	t.Parallel()
	x := []float64{0.3, -0.1, 0.7, 0.2, -0.5, 0.05, 0.4}
	got := NewFFT().Autocorrelate(x, len(x))

	for k := range x {
		want := 0.0
		for i := 0; i < len(x)-k; i++ {
			want += x[i] * x[i+k]
		}
		if math.Abs(got[k]-want) > 1e-12 {
			t.Errorf("r[%d] = %v, want %v", k, got[k], want)
		}
	}
}

func TestAutocorrelate_ClampsLag(t *testing.T) {
	t.Parallel()
	f := NewFFT()
	if got := f.Autocorrelate([]float64{1, 2}, 10); len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
	if got := f.Autocorrelate(nil, 4); len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	t.Parallel()
	for n, want := range map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 8819: 16384} {
		if got := NextPowerOfTwo(n); got != want {
			t.Errorf("NextPowerOfTwo(%d) = %d, want %d", n, got, want)
		}
	}
}
