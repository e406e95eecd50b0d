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

// Package metrics pkg/metrics/state.go
package metrics

import (
	"math"

	"github.com/cloudpulse/cloudpulse/pkg/models"
)

const (
	// DefaultShortWindow is roughly five minutes at 5s probe intervals.
	DefaultShortWindow = 60

	// DefaultLongWindow is roughly one hour at 5s probe intervals.
	DefaultLongWindow = 720

	// maxJitterPenaltyMs is folded into the EWMA when a probe times out,
	// at half the normal smoothing rate, so timeouts dominate the jitter
	// signal without a synthetic RTT.
	maxJitterPenaltyMs = 100.0

	// minSamplesForHealth gates health classification on the short window.
	minSamplesForHealth = 5
)

// HealthStatus buckets an endpoint's current condition.
type HealthStatus string

const (
	HealthUnknown   HealthStatus = "unknown"
	HealthExcellent HealthStatus = "excellent"
	HealthGood      HealthStatus = "good"
	HealthFair      HealthStatus = "fair"
	HealthPoor      HealthStatus = "poor"
	HealthCritical  HealthStatus = "critical"
)

// AggregatorState holds per-endpoint sliding-window metrics. Cached fields
// are valid reads only while the matching dirty flag is clear: AddRecord
// recomputes short-window aggregates inline on every record, long-window
// aggregates are recomputed on a timer via RecomputeLongAggregates.
//
// The struct is not safe for concurrent mutation; the aggregator's event
// loop is its single writer. Readers get deep copies via Clone.
type AggregatorState struct {
	EndpointID string

	shortWindow *RingBuffer[models.ProbeRecord]
	longWindow  *RingBuffer[models.ProbeRecord]

	EWMAJitterMs float64
	LastRTTMs    *float64

	TotalSentShort int
	TotalRecvShort int
	TotalSentLong  int
	TotalRecvLong  int

	CachedP50Short   float64
	CachedP90Short   float64
	CachedP99Short   float64
	CachedLossShort  float64
	CachedLossLong   float64
	CachedAvailShort float64
	CachedAvailLong  float64

	LastScore *float64

	dirtyShort bool
	dirtyLong  bool
}

// NewAggregatorState creates a fresh state with empty windows and both
// dirty flags set. Non-positive window sizes fall back to the defaults.
func NewAggregatorState(endpointID string, wShort, wLong int) *AggregatorState {
	if wShort <= 0 {
		wShort = DefaultShortWindow
	}

	if wLong <= 0 {
		wLong = DefaultLongWindow
	}

	inf := math.Inf(1)

	return &AggregatorState{
		EndpointID:  endpointID,
		shortWindow: NewRingBuffer[models.ProbeRecord](wShort),
		longWindow:  NewRingBuffer[models.ProbeRecord](wLong),
		// Empty windows have no successful RTTs; percentiles read as
		// worst-possible latency until the first record lands.
		CachedP50Short: inf,
		CachedP90Short: inf,
		CachedP99Short: inf,
		dirtyShort:     true,
		dirtyLong:      true,
	}
}

// AddRecord ingests one probe record: pushes it into both windows, refreshes
// counters and EWMA jitter, and recomputes the short-window aggregates
// inline. The long window is only marked dirty.
func (s *AggregatorState) AddRecord(record models.ProbeRecord, ewmaAlpha float64) {
	s.shortWindow.Push(record)
	s.longWindow.Push(record)

	s.dirtyShort = true
	s.dirtyLong = true

	s.updateCounts()
	s.updateEWMAJitter(&record, ewmaAlpha)
	s.recomputeShortAggregates()
}

// updateCounts rescans both windows. O(window size), bounded, once per record.
func (s *AggregatorState) updateCounts() {
	s.TotalSentShort = s.shortWindow.Len()
	s.TotalRecvShort = countSuccesses(s.shortWindow)
	s.TotalSentLong = s.longWindow.Len()
	s.TotalRecvLong = countSuccesses(s.longWindow)
}

func countSuccesses(window *RingBuffer[models.ProbeRecord]) int {
	n := 0

	for r := range window.All() {
		if r.Success {
			n++
		}
	}

	return n
}

func (s *AggregatorState) updateEWMAJitter(record *models.ProbeRecord, ewmaAlpha float64) {
	switch {
	case s.LastRTTMs != nil && record.RTTMs != nil:
		delta := math.Abs(*record.RTTMs - *s.LastRTTMs)
		s.EWMAJitterMs += (delta - s.EWMAJitterMs) * ewmaAlpha
	case record.RTTMs == nil:
		s.EWMAJitterMs += (maxJitterPenaltyMs - s.EWMAJitterMs) * (ewmaAlpha / 2.0)
	}

	if record.RTTMs != nil {
		rtt := *record.RTTMs
		s.LastRTTMs = &rtt
	}
}

func (s *AggregatorState) recomputeShortAggregates() {
	if !s.dirtyShort {
		return
	}

	rtts := s.successfulRTTsShort()

	ps := Percentiles(rtts, []float64{50, 90, 99})
	s.CachedP50Short = ps[0]
	s.CachedP90Short = ps[1]
	s.CachedP99Short = ps[2]

	if s.TotalSentShort > 0 {
		s.CachedLossShort = 100.0 * float64(s.TotalSentShort-s.TotalRecvShort) / float64(s.TotalSentShort)
		s.CachedAvailShort = 100.0 * float64(s.TotalRecvShort) / float64(s.TotalSentShort)
	} else {
		s.CachedLossShort = 0
		s.CachedAvailShort = 0
	}

	s.dirtyShort = false
}

// RecomputeLongAggregates refreshes the long-window loss and availability
// caches. Idempotent: a no-op while the long window is clean. Called on a
// timer rather than per record to keep the hot path bounded.
func (s *AggregatorState) RecomputeLongAggregates() {
	if !s.dirtyLong {
		return
	}

	if s.TotalSentLong > 0 {
		s.CachedLossLong = 100.0 * float64(s.TotalSentLong-s.TotalRecvLong) / float64(s.TotalSentLong)
		s.CachedAvailLong = 100.0 * float64(s.TotalRecvLong) / float64(s.TotalSentLong)
	} else {
		s.CachedLossLong = 0
		s.CachedAvailLong = 0
	}

	s.dirtyLong = false
}

func (s *AggregatorState) successfulRTTsShort() []float64 {
	rtts := make([]float64, 0, s.shortWindow.Len())

	for r := range s.shortWindow.All() {
		if r.RTTMs != nil {
			rtts = append(rtts, *r.RTTMs)
		}
	}

	return rtts
}

// RecentFailureCount counts failures among the most recent n short-window
// records.
func (s *AggregatorState) RecentFailureCount(n int) int {
	recent := s.shortWindow.AsSlice()
	if n < len(recent) {
		recent = recent[:n]
	}

	failures := 0

	for i := range recent {
		if !recent[i].Success {
			failures++
		}
	}

	return failures
}

// AvgRTTShort returns the mean RTT over the short window's successful
// probes, or zero when none succeeded.
func (s *AggregatorState) AvgRTTShort() float64 {
	rtts := s.successfulRTTsShort()
	if len(rtts) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range rtts {
		sum += v
	}

	return sum / float64(len(rtts))
}

// HasSufficientData reports whether enough short-window samples exist for
// reliable classification.
func (s *AggregatorState) HasSufficientData() bool {
	return s.TotalSentShort >= minSamplesForHealth
}

// Health classifies the endpoint from short-window loss, average RTT and
// jitter. Loss at or above 10% always forces critical.
func (s *AggregatorState) Health() HealthStatus {
	if !s.HasSufficientData() {
		return HealthUnknown
	}

	loss := s.CachedLossShort
	avgRTT := s.AvgRTTShort()
	jitter := s.EWMAJitterMs

	switch {
	case loss <= 1.0 && avgRTT <= 50.0 && jitter <= 10.0:
		return HealthExcellent
	case loss <= 3.0 && avgRTT <= 100.0 && jitter <= 25.0:
		return HealthGood
	case loss <= 5.0 && avgRTT <= 200.0 && jitter <= 50.0:
		return HealthFair
	case loss >= 10.0:
		return HealthCritical
	default:
		return HealthPoor
	}
}

// Clone returns a deep copy safe to hand to readers outside the aggregator's
// event loop.
func (s *AggregatorState) Clone() *AggregatorState {
	out := *s
	out.shortWindow = s.shortWindow.Clone()
	out.longWindow = s.longWindow.Clone()

	if s.LastRTTMs != nil {
		rtt := *s.LastRTTMs
		out.LastRTTMs = &rtt
	}

	if s.LastScore != nil {
		score := *s.LastScore
		out.LastScore = &score
	}

	return &out
}
