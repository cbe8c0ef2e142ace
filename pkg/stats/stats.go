package stats

import "math"

// Mean computes the average of a slice, ignoring NaNs.
func Mean(x []float64) float64 {
	n := 0
	sum := 0.0
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Variance computes the population variance of a slice, ignoring NaNs.
func Variance(x []float64) float64 {
	m := Mean(x)
	n := 0
	s := 0.0
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		d := v - m
		s += d * d
		n++
	}
	if n == 0 {
		return 0
	}
	return s / float64(n)
}

// Std computes the standard deviation of a slice.
func Std(x []float64) float64 {
	return math.Sqrt(Variance(x))
}

// MinMax returns the minimum and maximum non-NaN values in the slice.
func MinMax(x []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}

// CountNaN returns how many entries are NaN.
func CountNaN(x []float64) int {
	c := 0
	for _, v := range x {
		if math.IsNaN(v) {
			c++
		}
	}
	return c
}
