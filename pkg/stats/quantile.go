package stats

import (
	"math"
	"sort"
)

// Summary describes a numeric column.
type Summary struct {
	Count   int // non-NaN values
	Missing int
	Mean    float64
	Std     float64
	Min     float64
	P25     float64
	Median  float64
	P75     float64
	Max     float64
}

// Summarize computes the column summary, ignoring NaNs.
func Summarize(x []float64) Summary {
	sorted := finiteSorted(x)
	s := Summary{
		Count:   len(sorted),
		Missing: len(x) - len(sorted),
		Mean:    Mean(x),
		Std:     Std(x),
	}
	s.Min, s.Max = MinMax(x)
	s.P25 = percentileSorted(sorted, 25)
	s.Median = percentileSorted(sorted, 50)
	s.P75 = percentileSorted(sorted, 75)
	return s
}

// Median returns the median of the non-NaN values (allocates a copy).
func Median(x []float64) float64 {
	return percentileSorted(finiteSorted(x), 50)
}

// Percentile returns the p-th percentile (0 <= p <= 100) of the non-NaN
// values, interpolating linearly between ranks.
func Percentile(x []float64, p float64) float64 {
	return percentileSorted(finiteSorted(x), p)
}

func finiteSorted(x []float64) []float64 {
	cp := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			cp = append(cp, v)
		}
	}
	sort.Float64s(cp)
	return cp
}

func percentileSorted(cp []float64, p float64) float64 {
	n := len(cp)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return cp[0]
	}
	if p >= 100 {
		return cp[n-1]
	}
	rank := p / 100 * float64(n-1)
	lower := int(rank)
	upper := lower + 1
	weight := rank - float64(lower)
	if upper >= n {
		return cp[lower]
	}
	return cp[lower]*(1-weight) + cp[upper]*weight
}
