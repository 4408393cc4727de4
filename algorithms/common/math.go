package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Small numeric helpers shared by the loudness and pitch algorithms.

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// SumSquares returns the sum of squared samples
func SumSquares(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Dot(data, data)
}

// RMS calculates root mean square
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return math.Sqrt(SumSquares(data) / float64(len(data)))
}

// ArgMax returns the index of the largest value, or -1 for empty data.
// Ties resolve to the lowest index.
func ArgMax(data []float64) int {
	if len(data) == 0 {
		return -1
	}
	return floats.MaxIdx(data)
}

// ArgMin returns the index of the smallest value, or -1 for empty data.
// Ties resolve to the lowest index.
func ArgMin(data []float64) int {
	if len(data) == 0 {
		return -1
	}
	return floats.MinIdx(data)
}

// FirstBelow returns the first index i >= from with data[i] < threshold,
// or -1 when no such index exists.
func FirstBelow(data []float64, from int, threshold float64) int {
	for i := max(from, 0); i < len(data); i++ {
		if data[i] < threshold {
			return i
		}
	}
	return -1
}

// FirstAbove returns the first index i >= from with data[i] > threshold,
// or -1 when no such index exists.
func FirstAbove(data []float64, from int, threshold float64) int {
	for i := max(from, 0); i < len(data); i++ {
		if data[i] > threshold {
			return i
		}
	}
	return -1
}

// FirstAtOrAbove returns the first index i >= from with data[i] >= threshold,
// or -1 when no such index exists.
func FirstAtOrAbove(data []float64, from int, threshold float64) int {
	for i := max(from, 0); i < len(data); i++ {
		if data[i] >= threshold {
			return i
		}
	}
	return -1
}

// ParabolicPeak refines an extremum at idx by fitting a parabola through
// its neighbours. Edges and flat neighbourhoods return idx unchanged.
func ParabolicPeak(data []float64, idx int) float64 {
	if idx <= 0 || idx >= len(data)-1 {
		return float64(idx)
	}

	y1 := data[idx-1]
	y2 := data[idx]
	y3 := data[idx+1]

	a := (y1 - 2*y2 + y3) / 2
	b := (y3 - y1) / 2

	if a == 0 {
		return float64(idx)
	}

	return float64(idx) - b/(2*a)
}

// Clamp constrains a value to a range
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// IsFinite reports whether v is neither NaN nor infinite
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
