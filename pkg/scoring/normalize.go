// Package scoring pkg/scoring/normalize.go
package scoring

import "math"

// The normalization curves are monotonic piecewise-linear maps from a raw
// metric to a 0-100 score, higher is better. Breakpoints follow common
// interactive-traffic quality bands.

// NormalizeLatencyMs maps median latency to a score. +Inf (no successful
// probes in the window) scores zero.
func NormalizeLatencyMs(latencyMs float64) float64 {
	switch {
	case math.IsInf(latencyMs, 1):
		return 0
	case latencyMs <= 0:
		return 100
	case latencyMs < 20:
		return 100 - (latencyMs/20)*10 // 90-100
	case latencyMs < 50:
		return 90 - ((latencyMs-20)/30)*20 // 70-90
	case latencyMs < 100:
		return 70 - ((latencyMs-50)/50)*20 // 50-70
	case latencyMs < 200:
		return 50 - ((latencyMs-100)/100)*30 // 20-50
	default:
		return math.Min(200/latencyMs, 20) // 0-20
	}
}

// NormalizeJitterMs maps smoothed jitter to a score.
func NormalizeJitterMs(jitterMs float64) float64 {
	switch {
	case jitterMs <= 0:
		return 100
	case jitterMs < 5:
		return 100 - (jitterMs/5)*10 // 90-100
	case jitterMs < 15:
		return 90 - ((jitterMs-5)/10)*20 // 70-90
	case jitterMs < 30:
		return 70 - ((jitterMs-15)/15)*20 // 50-70
	case jitterMs < 50:
		return 50 - ((jitterMs-30)/20)*30 // 20-50
	default:
		return math.Min(50/jitterMs, 20) // 0-20
	}
}

// NormalizeLossPercent maps packet loss percentage to a score.
func NormalizeLossPercent(lossPercent float64) float64 {
	switch {
	case lossPercent <= 0:
		return 100
	case lossPercent < 0.1:
		return 100 - (lossPercent/0.1)*10 // 90-100
	case lossPercent < 0.5:
		return 90 - ((lossPercent-0.1)/0.4)*20 // 70-90
	case lossPercent < 2:
		return 70 - ((lossPercent-0.5)/1.5)*20 // 50-70
	case lossPercent < 5:
		return 50 - ((lossPercent-2)/3)*30 // 20-50
	default:
		return math.Min(5/lossPercent, 20) // 0-20
	}
}

// NormalizeConsistency clamps an already 0-100 consistency score.
func NormalizeConsistency(consistency float64) float64 {
	return clamp(consistency, 0, 100)
}

// NormalizeAvailabilityPercent clamps an already 0-100 availability
// percentage.
func NormalizeAvailabilityPercent(availability float64) float64 {
	return clamp(availability, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
