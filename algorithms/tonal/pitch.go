package tonal

import (
	"errors"
	"fmt"
	"strings"
)

// Method identifies a pitch estimation algorithm
type Method int

const (
	// MethodYIN is the cumulative-mean-normalized difference estimator.
	// Preferred for live input; copes with plucked and other non-sinusoidal
	// timbres better than plain autocorrelation.
	MethodYIN Method = iota

	// MethodAutocorrelation is the overlap-normalized autocorrelation
	// estimator with a fixed-threshold lobe search.
	MethodAutocorrelation
)

var (
	// ErrUnknownMethod is returned when a method name or value is not recognised
	ErrUnknownMethod = errors.New("tonal: unknown pitch estimation method")

	// ErrInvalidFrequency is returned when quantizing a frequency that is not
	// a finite positive number
	ErrInvalidFrequency = errors.New("tonal: frequency must be finite and positive")
)

// String returns the configuration name of the method
func (m Method) String() string {
	switch m {
	case MethodYIN:
		return "yin"
	case MethodAutocorrelation:
		return "autocorrelation"
	default:
		return "unknown"
	}
}

// ParseMethod maps a configuration name to a Method
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "yin", "":
		return MethodYIN, nil
	case "autocorrelation", "acf", "autocorr":
		return MethodAutocorrelation, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
	}
}

// PitchEstimate is the outcome of analysing one frame. A frame without a
// detectable period yields NoPitch; that is a normal result, not an error.
type PitchEstimate struct {
	Frequency  float64 `json:"frequency"`  // Estimated fundamental (Hz)
	Period     float64 `json:"period"`     // Period in samples
	Confidence float64 `json:"confidence"` // 0-1, method specific
	Voiced     bool    `json:"voiced"`     // False when no pitch was found
	Fallback   bool    `json:"fallback"`   // YIN used the global-minimum path
	Method     Method  `json:"method"`
}

// NoPitch is the estimate returned when no periodicity was found
var NoPitch = PitchEstimate{}

// OK reports whether the estimate carries a usable frequency
func (p PitchEstimate) OK() bool {
	return p.Voiced && p.Frequency > 0
}

// Estimator turns one audio frame into a pitch estimate. Implementations
// are stateless between calls and safe to reuse across frames.
type Estimator interface {
	Estimate(frame []float64, sampleRate int) PitchEstimate
	Method() Method
}

// Params holds the tunables shared by the estimators
type Params struct {
	// YinThreshold is the absolute CMND threshold for the YIN dip search
	YinThreshold float64 `json:"yin_threshold" yaml:"yin_threshold"`

	// AutocorrThreshold delimits autocorrelation lobes
	AutocorrThreshold float64 `json:"autocorr_threshold" yaml:"autocorr_threshold"`

	// Interpolate refines the integer period with a parabolic fit
	Interpolate bool `json:"interpolate" yaml:"interpolate"`
}

// DefaultParams returns the standard thresholds
func DefaultParams() Params {
	return Params{
		YinThreshold:      DefaultYinThreshold,
		AutocorrThreshold: DefaultAutocorrThreshold,
		Interpolate:       false,
	}
}

// NewEstimator builds the estimator for method. Zero thresholds fall back to
// the defaults.
func NewEstimator(method Method, params Params) (Estimator, error) {
	switch method {
	case MethodYIN:
		y := NewYIN(params.YinThreshold)
		y.interpolate = params.Interpolate
		return y, nil
	case MethodAutocorrelation:
		ac := NewAutocorrelation(params.AutocorrThreshold)
		ac.interpolate = params.Interpolate
		return ac, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, int(method))
	}
}

// estimateFromPeriod converts a period in samples into an estimate
func estimateFromPeriod(method Method, period float64, sampleRate int, confidence float64) PitchEstimate {
	if period <= 0 || sampleRate <= 0 {
		return NoPitch
	}
	return PitchEstimate{
		Frequency:  float64(sampleRate) / period,
		Period:     period,
		Confidence: confidence,
		Voiced:     true,
		Method:     method,
	}
}
