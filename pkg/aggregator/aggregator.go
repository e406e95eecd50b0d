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

// Package aggregator pkg/aggregator/aggregator.go
package aggregator

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/cloudpulse/cloudpulse/pkg/metrics"
	"github.com/cloudpulse/cloudpulse/pkg/models"
	"github.com/cloudpulse/cloudpulse/pkg/scoring"
)

const (
	// alertBuffer sizes the outgoing alert channel. A full channel drops
	// alerts rather than stalling record ingestion.
	alertBuffer = 256

	warnLatencyMs = 200.0
	warnJitterMs  = 50.0
)

type alertKey struct {
	endpointID string
	kind       models.AlertKind
}

// Aggregator consumes probe records and maintains per-endpoint sliding
// window state. Its event loop is the single writer of every state; all
// other goroutines read through the mutex-guarded accessors, which hand
// out deep copies.
type Aggregator struct {
	config Config

	mu     sync.RWMutex
	states map[string]*metrics.AggregatorState

	lastAlert map[alertKey]time.Time
	alerts    chan models.Alert
}

// NewAggregator creates an aggregator from a validated config.
func NewAggregator(cfg Config) *Aggregator {
	return &Aggregator{
		config:    cfg,
		states:    make(map[string]*metrics.AggregatorState),
		lastAlert: make(map[alertKey]time.Time),
		alerts:    make(chan models.Alert, alertBuffer),
	}
}

// Alerts returns the stream of threshold-triggered alerts.
func (a *Aggregator) Alerts() <-chan models.Alert {
	return a.alerts
}

// Run drives the event loop until ctx is canceled: records are folded into
// state as they arrive, and long-window aggregates are refreshed on a timer.
func (a *Aggregator) Run(ctx context.Context, records <-chan models.ProbeRecord) {
	log.Printf("Starting aggregator (short=%d long=%d)", a.config.ShortWindow, a.config.LongWindow)

	ticker := time.NewTicker(time.Duration(a.config.LongRecomputeInterval))
	defer ticker.Stop()

	for {
		select {
		case record, open := <-records:
			if !open {
				log.Printf("Record channel closed, stopping aggregator")
				return
			}

			a.handleRecord(record)
		case <-ticker.C:
			a.recomputeLongAggregates()
		case <-ctx.Done():
			log.Printf("Aggregator stopped: %v", ctx.Err())
			return
		}
	}
}

func (a *Aggregator) handleRecord(record models.ProbeRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()

	state, ok := a.states[record.EndpointID]
	if !ok {
		state = metrics.NewAggregatorState(record.EndpointID, a.config.ShortWindow, a.config.LongWindow)
		a.states[record.EndpointID] = state

		log.Printf("Tracking new endpoint %s", record.EndpointID)
	}

	var prevScore *float64
	if state.LastScore != nil {
		prev := *state.LastScore
		prevScore = &prev
	}

	state.AddRecord(record, a.config.EwmaAlpha)

	result := scoring.ComputeScore(state, a.config.Weights)
	score := result.Score
	state.LastScore = &score

	a.checkThresholds(state, prevScore, score)
}

// checkThresholds raises alerts for the state just updated. Caller holds
// the write lock.
func (a *Aggregator) checkThresholds(state *metrics.AggregatorState, prevScore *float64, score float64) {
	if !state.HasSufficientData() {
		return
	}

	if prevScore != nil && *prevScore-score >= a.config.ScoreDropThreshold {
		a.raise(state.EndpointID, models.ScoreDrop(*prevScore, score))
	}

	if state.CachedLossShort >= a.config.SustainedLossPercent {
		a.raise(state.EndpointID, models.SustainedLoss(state.CachedLossShort))
	}

	// Availability comes straight from the long-window counters, which are
	// current on every record. The cached long aggregates refresh on the
	// ticker and are for readers, not for alerting.
	if state.TotalSentLong > 0 {
		avail := 100.0 * float64(state.TotalRecvLong) / float64(state.TotalSentLong)
		if avail < a.config.AvailabilityThreshold {
			a.raise(state.EndpointID, models.AvailabilityLow(avail))
		}
	}

	if state.CachedP50Short > warnLatencyMs {
		a.raise(state.EndpointID, models.HighLatency(state.CachedP50Short))
	}

	if state.EWMAJitterMs > warnJitterMs {
		a.raise(state.EndpointID, models.HighJitter(state.EWMAJitterMs))
	}
}

// raise emits an alert unless the same endpoint and kind fired within the
// cooldown. Caller holds the write lock.
func (a *Aggregator) raise(endpointID string, alertType models.AlertType) {
	key := alertKey{endpointID: endpointID, kind: alertType.Kind}

	if last, ok := a.lastAlert[key]; ok && time.Since(last) < time.Duration(a.config.AlertCooldown) {
		return
	}

	alert := models.NewAlert(endpointID, alertType)

	select {
	case a.alerts <- alert:
		// The cooldown starts only on delivery; a dropped alert stays
		// eligible to fire on the next record.
		a.lastAlert[key] = time.Now()

		log.Printf("Alert [%s] for %s: %s", alert.Severity(), endpointID, alert.Description())
	default:
		log.Printf("Alert channel full, dropping alert for %s: %s", endpointID, alert.Description())
	}
}

func (a *Aggregator) recomputeLongAggregates() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, state := range a.states {
		state.RecomputeLongAggregates()
	}
}

// IngestRecord folds a single record synchronously. Exposed for callers
// that do not run the event loop, primarily tests and batch replays.
func (a *Aggregator) IngestRecord(record models.ProbeRecord) {
	a.handleRecord(record)
}

// GetEndpointState returns a deep copy of the endpoint's state.
func (a *Aggregator) GetEndpointState(endpointID string) (*metrics.AggregatorState, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	state, ok := a.states[endpointID]
	if !ok {
		return nil, false
	}

	return state.Clone(), true
}

// GetEndpointScore computes a fresh score snapshot for one endpoint.
func (a *Aggregator) GetEndpointScore(endpointID string) (scoring.ComprehensiveScoreResult, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	state, ok := a.states[endpointID]
	if !ok {
		return scoring.ComprehensiveScoreResult{}, false
	}

	return scoring.ComputeScore(state, a.config.Weights), true
}

// GetAllScores computes score snapshots for every tracked endpoint.
func (a *Aggregator) GetAllScores() map[string]scoring.ComprehensiveScoreResult {
	a.mu.RLock()
	defer a.mu.RUnlock()

	scores := make(map[string]scoring.ComprehensiveScoreResult, len(a.states))
	for id, state := range a.states {
		scores[id] = scoring.ComputeScore(state, a.config.Weights)
	}

	return scores
}

// EndpointIDs lists the endpoints the aggregator has seen records for.
func (a *Aggregator) EndpointIDs() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	ids := make([]string, 0, len(a.states))
	for id := range a.states {
		ids = append(ids, id)
	}

	return ids
}

// SummaryStats is a fleet-level rollup of current grades.
type SummaryStats struct {
	TotalEndpoints int     `json:"total_endpoints"`
	Healthy        int     `json:"healthy"`
	Degraded       int     `json:"degraded"`
	Failed         int     `json:"failed"`
	AverageScore   float64 `json:"average_score"`
}

// GetSummaryStats buckets every endpoint by grade: A and B are healthy,
// C and D degraded, F failed.
func (a *Aggregator) GetSummaryStats() SummaryStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := SummaryStats{TotalEndpoints: len(a.states)}

	total := 0.0

	for _, state := range a.states {
		result := scoring.ComputeScore(state, a.config.Weights)
		total += result.Score

		switch result.Grade {
		case 'A', 'B':
			stats.Healthy++
		case 'C', 'D':
			stats.Degraded++
		default:
			stats.Failed++
		}
	}

	if stats.TotalEndpoints > 0 {
		stats.AverageScore = total / float64(stats.TotalEndpoints)
	}

	return stats
}
