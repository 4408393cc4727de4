package filters

import (
	"math"
	"testing"

	"github.com/RyanBlaney/pitch-perfect/algorithms/common"
)

func TestDCBlockerRemovesOffset(t *testing.T) {
	dc := NewDCBlocker(44100, DefaultDCCutoff)

	frame := make([]float64, 44100)
	for i := range frame {
		frame[i] = 0.5
	}
	out := dc.Filter(frame)

	tail := out[len(out)-1000:]
	if m := math.Abs(common.Mean(tail)); m > 1e-3 {
		t.Errorf("residual offset %v after one second", m)
	}
}

func TestDCBlockerPassesTone(t *testing.T) {
	const rate = 44100
	dc := NewDCBlocker(rate, DefaultDCCutoff)

	frame := make([]float64, rate/2)
	for i := range frame {
		frame[i] = 0.2 + 0.1*math.Sin(2*math.Pi*440*float64(i)/rate)
	}
	out := dc.Filter(frame)

	tail := out[len(out)-rate/10:]
	want := 0.1 / math.Sqrt2
	if got := common.RMS(tail); math.Abs(got-want)/want > 0.02 {
		t.Errorf("RMS of filtered tone = %v, want about %v", got, want)
	}
}

func TestDCBlockerStateCarriesOver(t *testing.T) {
	frame := make([]float64, 512)
	for i := range frame {
		frame[i] = math.Sin(float64(i) / 7)
	}

	whole := NewDCBlocker(44100, DefaultDCCutoff).Filter(append(append([]float64{}, frame...), frame...))

	split := NewDCBlocker(44100, DefaultDCCutoff)
	got := append(split.Filter(frame), split.Filter(frame)...)

	for i := range whole {
		if math.Abs(whole[i]-got[i]) > 1e-12 {
			t.Fatalf("sample %d: split %v, whole %v", i, got[i], whole[i])
		}
	}

	split.Reset()
	if first := split.Process(1); first != 1 {
		t.Errorf("first sample after Reset = %v, want 1", first)
	}
}

func TestNewDCBlockerClampsPole(t *testing.T) {
	tests := []struct {
		name   string
		rate   int
		cutoff float64
		want   float64
	}{
		{"default", 0, 0, 0.995},
		{"cutoff above rate", 100, 1000, 0.001},
		{"standard", 44100, DefaultDCCutoff, 1 - 2*math.Pi*DefaultDCCutoff/44100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dc := NewDCBlocker(tt.rate, tt.cutoff)
			if math.Abs(dc.Pole()-tt.want) > 1e-12 {
				t.Errorf("pole = %v, want %v", dc.Pole(), tt.want)
			}
		})
	}

	dc := NewDCBlocker(44100, DefaultDCCutoff)
	if c := dc.Cutoff(44100); math.Abs(c-DefaultDCCutoff) > 1e-9 {
		t.Errorf("Cutoff = %v, want %v", c, DefaultDCCutoff)
	}
}
