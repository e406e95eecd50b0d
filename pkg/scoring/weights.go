// Package scoring pkg/scoring/weights.go
package scoring

import (
	"errors"
	"math"
)

const weightSumTolerance = 1e-6

var errAllZeroWeights = errors.New("algorithm weights are all zero")

// AlgorithmWeights weight the five score components. Valid weights are
// non-negative and sum to 1.0 within tolerance; Normalize repairs any
// non-degenerate set.
type AlgorithmWeights struct {
	Latency      float64 `json:"latency"`
	Jitter       float64 `json:"jitter"`
	PacketLoss   float64 `json:"packet_loss"`
	Consistency  float64 `json:"consistency"`
	Availability float64 `json:"availability"`
}

// DefaultWeights returns the stock weighting.
func DefaultWeights() AlgorithmWeights {
	return AlgorithmWeights{
		Latency:      0.3,
		Jitter:       0.2,
		PacketLoss:   0.25,
		Consistency:  0.15,
		Availability: 0.1,
	}
}

func (w *AlgorithmWeights) sum() float64 {
	return w.Latency + w.Jitter + w.PacketLoss + w.Consistency + w.Availability
}

// IsValid reports whether all weights are non-negative and sum to 1.0
// within tolerance.
func (w *AlgorithmWeights) IsValid() bool {
	return math.Abs(w.sum()-1.0) < weightSumTolerance &&
		w.Latency >= 0 &&
		w.Jitter >= 0 &&
		w.PacketLoss >= 0 &&
		w.Consistency >= 0 &&
		w.Availability >= 0
}

// Normalize scales the weights to sum to 1.0, preserving ratios. This is an
// explicit, documented repair for invalid weight sets, not a silent default.
// An all-zero set cannot be repaired and is reported as an error.
func (w *AlgorithmWeights) Normalize() error {
	sum := w.sum()
	if sum <= 0 {
		return errAllZeroWeights
	}

	w.Latency /= sum
	w.Jitter /= sum
	w.PacketLoss /= sum
	w.Consistency /= sum
	w.Availability /= sum

	return nil
}
