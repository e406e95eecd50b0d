// Package metrics pkg/metrics/stats.go
package metrics

import (
	"math"
	"sort"
)

// Percentile computes the p-th percentile of values using sorted-array
// linear interpolation. An empty input yields +Inf so that loss-dominated
// endpoints sort as worst-possible latency rather than erroring.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.Inf(1)
	}

	if len(values) == 1 {
		return values[0]
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return interpolate(sorted, p)
}

// Percentiles computes several percentiles with a single sort.
func Percentiles(values []float64, ps []float64) []float64 {
	out := make([]float64, len(ps))

	if len(values) == 0 {
		for i := range out {
			out[i] = math.Inf(1)
		}

		return out
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	for i, p := range ps {
		out[i] = interpolate(sorted, p)
	}

	return out
}

func interpolate(sorted []float64, p float64) float64 {
	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))

	if lower == upper || upper >= len(sorted) {
		if lower >= len(sorted) {
			lower = len(sorted) - 1
		}

		return sorted[lower]
	}

	weight := index - float64(lower)

	return sorted[lower]*(1.0-weight) + sorted[upper]*weight
}

// EWMA is an exponentially weighted moving average. The first update seeds
// the value directly.
type EWMA struct {
	alpha float64
	value float64
	seen  bool
}

// NewEWMA creates an EWMA with the given smoothing factor, clamped to [0,1].
func NewEWMA(alpha float64) *EWMA {
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}

	return &EWMA{alpha: alpha}
}

// Update folds a new sample into the average.
func (e *EWMA) Update(sample float64) {
	if !e.seen {
		e.value = sample
		e.seen = true

		return
	}

	e.value += e.alpha * (sample - e.value)
}

// Value returns the current average, if any sample has been seen.
func (e *EWMA) Value() (float64, bool) {
	return e.value, e.seen
}

// Reset returns the EWMA to its unseeded state.
func (e *EWMA) Reset() {
	e.value = 0
	e.seen = false
}

// BasicStats summarizes a sample set.
type BasicStats struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	Median float64
	StdDev float64
}

// BasicStatsFrom computes summary statistics. Empty input yields NaN fields.
func BasicStatsFrom(values []float64) BasicStats {
	if len(values) == 0 {
		nan := math.NaN()
		return BasicStats{Min: nan, Max: nan, Mean: nan, Median: nan, StdDev: nan}
	}

	minV := math.Inf(1)
	maxV := math.Inf(-1)
	sum := 0.0

	for _, v := range values {
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
		sum += v
	}

	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}

	stdDev := 0.0
	if len(values) > 1 {
		stdDev = math.Sqrt(sq / float64(len(values)-1))
	}

	return BasicStats{
		Count:  len(values),
		Min:    minV,
		Max:    maxV,
		Mean:   mean,
		Median: Percentile(values, 50),
		StdDev: stdDev,
	}
}
