package series

import "math"

// Last returns the final value of a series, or NaN when it is empty
func Last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}

// Tail returns the trailing n values (the whole series when shorter)
func Tail(values []float64, n int) []float64 {
	if n >= len(values) {
		return values
	}
	return values[len(values)-n:]
}

// DropNaN returns the values with NaN entries removed, order preserved
func DropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// IsUsable reports whether v is a finite number
func IsUsable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
