package algo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestMean tests the arithmetic mean calculation.
func TestMean(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{
			name:     "empty slice",
			values:   []float64{},
			expected: 0.0,
		},
		{
			name:     "single value",
			values:   []float64{4},
			expected: 4.0,
		},
		{
			name:     "mixed values",
			values:   []float64{1, 2, 3, 4},
			expected: 2.5,
		},
		{
			name:     "all zeros",
			values:   []float64{0, 0, 0},
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Mean(tt.values), 0.001)
		})
	}
}

// TestSampleStdDev tests the sample standard deviation calculation.
func TestSampleStdDev(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{
			name:     "empty slice",
			values:   []float64{},
			expected: 0.0,
		},
		{
			name:     "single value",
			values:   []float64{7},
			expected: 0.0,
		},
		{
			name:     "identical values",
			values:   []float64{3, 3, 3, 3},
			expected: 0.0,
		},
		{
			name:     "known spread",
			values:   []float64{2, 4, 4, 4, 5, 5, 7, 9},
			expected: 2.138,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, SampleStdDev(tt.values), 0.001)
		})
	}
}

// TestComputeBaseline tests baseline statistics derivation including the
// degenerate inputs that must never produce NaN or Inf.
func TestComputeBaseline(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		stats := ComputeBaseline(nil)
		assert.Zero(t, stats.Mean)
		assert.Zero(t, stats.StdDev)
		assert.Zero(t, stats.RelativeStdDev)
		assert.Zero(t, stats.Samples)
	})

	t.Run("all zero hours", func(t *testing.T) {
		stats := ComputeBaseline([]float64{0, 0, 0, 0})
		assert.Zero(t, stats.Mean)
		assert.Zero(t, stats.RelativeStdDev)
		assert.False(t, math.IsNaN(stats.RelativeStdDev))
		assert.Equal(t, 4, stats.Samples)
	})

	t.Run("steady activity is low variance", func(t *testing.T) {
		stats := ComputeBaseline([]float64{10, 11, 10, 9, 10, 10})
		assert.InDelta(t, 10.0, stats.Mean, 0.001)
		assert.Less(t, stats.RelativeStdDev, 0.4)
		assert.InDelta(t, 9.0, stats.Min, 0.001)
		assert.InDelta(t, 11.0, stats.Max, 0.001)
	})

	t.Run("bursty activity is high variance", func(t *testing.T) {
		stats := ComputeBaseline([]float64{0, 0, 0, 0, 0, 30})
		assert.Greater(t, stats.RelativeStdDev, 0.4)
	})
}

// TestTrueZScore tests z-score standardization and its zero-variance sentinel.
func TestTrueZScore(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		mean     float64
		stdDev   float64
		expected float64
	}{
		{
			name:     "normal deviation",
			current:  20,
			mean:     10,
			stdDev:   5,
			expected: 2.0,
		},
		{
			name:     "below mean",
			current:  5,
			mean:     10,
			stdDev:   5,
			expected: -1.0,
		},
		{
			name:     "zero variance with positive deviation",
			current:  3,
			mean:     0,
			stdDev:   0,
			expected: 10.0, // sentinel
		},
		{
			name:     "zero variance without deviation",
			current:  0,
			mean:     0,
			stdDev:   0,
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, TrueZScore(tt.current, tt.mean, tt.stdDev, 10.0), 0.001)
		})
	}
}

// TestPoissonSurprise tests the tail surprisal including sentinel and cap.
func TestPoissonSurprise(t *testing.T) {
	t.Run("no activity is no surprise", func(t *testing.T) {
		assert.Zero(t, PoissonSurprise(0, 5.0, 10.0, 50.0))
	})

	t.Run("zero rate with activity returns sentinel", func(t *testing.T) {
		assert.InDelta(t, 10.0, PoissonSurprise(3, 0, 10.0, 50.0), 0.001)
	})

	t.Run("expected count is unsurprising", func(t *testing.T) {
		// P(X >= 5 | lambda=5) is roughly 0.56, surprise well under 1.
		got := PoissonSurprise(5, 5.0, 10.0, 50.0)
		assert.Greater(t, got, 0.0)
		assert.Less(t, got, 1.0)
	})

	t.Run("large excess is very surprising", func(t *testing.T) {
		low := PoissonSurprise(6, 2.0, 10.0, 50.0)
		high := PoissonSurprise(15, 2.0, 10.0, 50.0)
		assert.Greater(t, high, low)
	})

	t.Run("deep tail is capped", func(t *testing.T) {
		got := PoissonSurprise(500, 0.1, 10.0, 50.0)
		assert.InDelta(t, 50.0, got, 0.001)
		assert.False(t, math.IsInf(got, 1))
	})
}
