package windowing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Tukey is a tapered cosine window: flat in the middle with raised-cosine
// ramps covering alpha of the window, split between both ends. alpha = 0
// is rectangular and alpha = 1 is a Hann window.
type Tukey struct {
	size         int
	alpha        float64
	coefficients []float64
}

// NewTukey creates a Tukey window. alpha is clamped to [0, 1].
func NewTukey(size int, alpha float64) *Tukey {
	t := &Tukey{
		size:  max(size, 0),
		alpha: math.Max(0, math.Min(1, alpha)),
	}
	t.generate()
	return t
}

func (t *Tukey) generate() {
	t.coefficients = make([]float64, t.size)

	ramp := int(t.alpha * float64(t.size) / 2.0)
	for i := range t.size {
		switch {
		case i < ramp:
			t.coefficients[i] = 0.5 * (1 - math.Cos(math.Pi*float64(i)/float64(ramp)))
		case i >= t.size-ramp:
			t.coefficients[i] = 0.5 * (1 + math.Cos(math.Pi*float64(i-(t.size-ramp))/float64(ramp)))
		default:
			t.coefficients[i] = 1.0
		}
	}
}

// ApplyInPlace scales signal by the window
func (t *Tukey) ApplyInPlace(signal []float64) error {
	if len(signal) != t.size {
		return fmt.Errorf("windowing: signal length %d does not match window size %d", len(signal), t.size)
	}

	floats.Mul(signal, t.coefficients)
	return nil
}

// Coefficients returns a copy of the window
func (t *Tukey) Coefficients() []float64 {
	out := make([]float64, len(t.coefficients))
	copy(out, t.coefficients)
	return out
}

// Size returns the window length
func (t *Tukey) Size() int {
	return t.size
}
