/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package scoring pkg/scoring/score.go
package scoring

import (
	"fmt"
	"math"

	"github.com/cloudpulse/cloudpulse/pkg/metrics"
)

// ScoreComponents are the normalized 0-100 component scores.
type ScoreComponents struct {
	Latency      float64 `json:"latency_score"`
	Jitter       float64 `json:"jitter_score"`
	PacketLoss   float64 `json:"packet_loss_score"`
	Consistency  float64 `json:"consistency_score"`
	Availability float64 `json:"availability_score"`
}

// SuitabilityScores estimate fitness for specific traffic profiles. The
// blends are fixed constants independent of the caller's weights.
type SuitabilityScores struct {
	Gaming       float64 `json:"gaming"`
	Streaming    float64 `json:"streaming"`
	WebBrowsing  float64 `json:"web_browsing"`
	FileTransfer float64 `json:"file_transfer"`
	VoIP         float64 `json:"voip"`
}

// ComprehensiveScoreResult is a derived, stateless snapshot. It is computed
// on demand and never stored as a source of truth.
type ComprehensiveScoreResult struct {
	Score       float64           `json:"score"`
	Grade       byte              `json:"grade"`
	Components  ScoreComponents   `json:"components"`
	Suitability SuitabilityScores `json:"suitability"`
}

func (r ComprehensiveScoreResult) String() string {
	return fmt.Sprintf("Score: %.1f (%c)", r.Score, r.Grade)
}

// ComputeScore derives the composite quality score for an endpoint's
// current state. Pure and side-effect-free: safe to call concurrently and
// repeatedly against the same state, which is only read.
func ComputeScore(state *metrics.AggregatorState, weights AlgorithmWeights) ComprehensiveScoreResult {
	components := ScoreComponents{
		Latency:      NormalizeLatencyMs(state.CachedP50Short),
		Jitter:       NormalizeJitterMs(state.EWMAJitterMs),
		PacketLoss:   NormalizeLossPercent(state.CachedLossShort),
		Consistency:  consistencyScore(state),
		Availability: NormalizeAvailabilityPercent(state.CachedAvailShort),
	}

	score := weights.Latency*components.Latency +
		weights.Jitter*components.Jitter +
		weights.PacketLoss*components.PacketLoss +
		weights.Consistency*components.Consistency +
		weights.Availability*components.Availability

	// Weights sum to 1 by construction; clamp anyway against float drift.
	score = clamp(score, 0, 100)

	return ComprehensiveScoreResult{
		Score:       score,
		Grade:       ScoreToGrade(score),
		Components:  components,
		Suitability: suitabilityScores(components),
	}
}

// consistencyScore rates latency stability from the p90/p50 spread. A tight
// spread implies stable latency. Windows with no successful probes score
// zero.
func consistencyScore(state *metrics.AggregatorState) float64 {
	spread := state.CachedP90Short - state.CachedP50Short
	if math.IsNaN(spread) || math.IsInf(spread, 0) {
		return 0
	}

	return clamp(100-math.Min(spread, 100), 0, 100)
}

// ScoreToGrade buckets a 0-100 score into a letter grade.
func ScoreToGrade(score float64) byte {
	switch {
	case score >= 90:
		return 'A'
	case score >= 80:
		return 'B'
	case score >= 70:
		return 'C'
	case score >= 60:
		return 'D'
	default:
		return 'F'
	}
}

func suitabilityScores(c ScoreComponents) SuitabilityScores {
	return SuitabilityScores{
		// Gaming prioritizes low latency and jitter.
		Gaming: c.Latency*0.5 + c.Jitter*0.3 + c.PacketLoss*0.2,

		// Streaming prioritizes consistency and availability.
		Streaming: c.Consistency*0.4 + c.Availability*0.3 + c.PacketLoss*0.3,

		// Web browsing is balanced.
		WebBrowsing: c.Latency*0.3 + c.Availability*0.3 + c.Consistency*0.4,

		// File transfer prioritizes availability and packet loss.
		FileTransfer: c.Availability*0.5 + c.PacketLoss*0.3 + c.Consistency*0.2,

		// VoIP prioritizes low latency, jitter, and packet loss.
		VoIP: c.Latency*0.4 + c.Jitter*0.3 + c.PacketLoss*0.3,
	}
}
