package series

import (
	"math"
	"sort"
)

// Sum returns the sum of values
func Sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// Mean returns the arithmetic mean, or 0 for an empty slice
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return Sum(values) / float64(len(values))
}

// Median returns the median, averaging the two middle values for even lengths
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// StdDev returns the population standard deviation
func StdDev(values []float64) float64 {
	return StdDevAround(values, Mean(values))
}

// StdDevAround returns the population standard deviation measured around center
func StdDevAround(values []float64, center float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var acc float64
	for _, v := range values {
		d := v - center
		acc += d * d
	}
	return math.Sqrt(acc / float64(len(values)))
}

// Pearson returns the Pearson correlation of two equally long series.
// It returns 0 for fewer than 2 pairs or a zero denominator.
func Pearson(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := 0; i < n; i++ {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
		sumY2 += y[i] * y[i]
	}

	fn := float64(n)
	numerator := fn*sumXY - sumX*sumY
	denominator := math.Sqrt((fn*sumX2 - sumX*sumX) * (fn*sumY2 - sumY*sumY))
	if denominator == 0 || math.IsNaN(denominator) {
		return 0
	}
	return numerator / denominator
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Sign returns -1, 0 or 1
func Sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// AbsMax returns the largest absolute value
func AbsMax(values []float64) float64 {
	var m float64
	for _, v := range values {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

// OrOne returns v, or 1 when v is zero. It guards denominators the way the
// scoring formulas expect.
func OrOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// Ratio returns num/den, or 0 when den is zero
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
