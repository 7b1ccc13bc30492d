// Package algo holds the pure statistical and scoring math for trendwatch.
package algo

import "math"

// BaselineStats summarizes a trailing window of hourly mention counts.
type BaselineStats struct {
	Mean           float64
	StdDev         float64 // Sample standard deviation
	RelativeStdDev float64 // StdDev / Mean, 0 when mean is 0
	Min            float64
	Max            float64
	Samples        int
}

// Mean computes the arithmetic mean of values. Empty input yields 0.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SampleStdDev computes the sample standard deviation (n-1 denominator).
// Fewer than two values yield 0.
func SampleStdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	mean := Mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// ComputeBaseline derives baseline statistics from a trailing window of
// per-hour counts. All degenerate inputs (empty, all-zero) produce zeroed
// stats rather than NaN or Inf.
func ComputeBaseline(hourly []float64) BaselineStats {
	stats := BaselineStats{Samples: len(hourly)}
	if len(hourly) == 0 {
		return stats
	}

	stats.Mean = Mean(hourly)
	stats.StdDev = SampleStdDev(hourly)
	if stats.Mean > 0 {
		stats.RelativeStdDev = stats.StdDev / stats.Mean
	}

	stats.Min = hourly[0]
	stats.Max = hourly[0]
	for _, v := range hourly[1:] {
		stats.Min = math.Min(stats.Min, v)
		stats.Max = math.Max(stats.Max, v)
	}
	return stats
}

// TrueZScore standardizes the current count against the baseline. When the
// baseline has no variance the score degrades to the sentinel for any
// positive deviation and 0 otherwise, never a division fault.
func TrueZScore(current, mean, stdDev, sentinel float64) float64 {
	if stdDev > 0 {
		return (current - mean) / stdDev
	}
	if current > mean {
		return sentinel
	}
	return 0
}

// PoissonSurprise computes -ln(P(X >= current)) under a Poisson model with
// rate lambda. A zero-rate baseline with positive observations returns the
// sentinel instead of infinity; the result is capped at maxSurprise so deep
// tail underflow stays finite.
func PoissonSurprise(current int, lambda, sentinel, maxSurprise float64) float64 {
	if current <= 0 {
		return 0
	}
	if lambda <= 0 {
		return sentinel
	}

	// P(X >= c) = 1 - CDF(c-1). Accumulate the pmf in log space to survive
	// large lambda without overflow.
	logPmf := -lambda // ln pmf(0)
	cdf := math.Exp(logPmf)
	for k := 1; k < current; k++ {
		logPmf += math.Log(lambda) - math.Log(float64(k))
		cdf += math.Exp(logPmf)
	}

	tail := 1 - cdf
	if tail <= 0 {
		return maxSurprise
	}
	return math.Min(-math.Log(tail), maxSurprise)
}
