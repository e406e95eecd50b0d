/*
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

// Package monitoring pkg/monitoring/monitor.go
package monitoring

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/cloudpulse/cloudpulse/pkg/aggregator"
	"github.com/cloudpulse/cloudpulse/pkg/metrics"
	"github.com/cloudpulse/cloudpulse/pkg/models"
	"github.com/cloudpulse/cloudpulse/pkg/probe"
	"github.com/cloudpulse/cloudpulse/pkg/scoring"
)

var (
	errInvalidEndpoint   = errors.New("invalid endpoint")
	errDuplicateEndpoint = errors.New("endpoint already registered")
	errAlreadyStarted    = errors.New("monitor already started")
)

type endpointEntry struct {
	endpoint models.Endpoint
	cancel   context.CancelFunc
}

// AlertHandler is invoked for every alert the aggregator raises. Handlers
// run on the monitor's alert pump goroutine; a slow handler delays delivery
// to the ones after it.
type AlertHandler func(context.Context, models.Alert)

// Monitor wires the probe runner to the aggregator and fans alerts and
// periodic score snapshots out to subscribers. Endpoints can be added and
// removed while it runs.
type Monitor struct {
	config Config
	runner *probe.Runner
	agg    *aggregator.Aggregator
	events *hub

	mu        sync.RWMutex
	endpoints map[string]*endpointEntry
	handlers  []AlertHandler
	runCtx    context.Context
	cancel    context.CancelFunc
	started   bool
}

// NewMonitor creates a monitor from a validated config.
func NewMonitor(cfg Config) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Monitor{
		config:    cfg,
		runner:    probe.NewRunner(cfg.Probe),
		agg:       aggregator.NewAggregator(cfg.Aggregator),
		events:    newHub(),
		endpoints: make(map[string]*endpointEntry),
	}, nil
}

// AddEndpoint registers an endpoint. If the monitor is running, its probe
// loop starts immediately.
func (m *Monitor) AddEndpoint(endpoint models.Endpoint) error {
	if !endpoint.IsValid() {
		return errInvalidEndpoint
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.endpoints[endpoint.ID]; ok {
		return errDuplicateEndpoint
	}

	entry := &endpointEntry{endpoint: endpoint}
	m.endpoints[endpoint.ID] = entry

	if m.started {
		m.startEntry(entry)
	}

	return nil
}

// RemoveEndpoint stops probing an endpoint and reports whether it was
// registered. Accumulated window state is kept for historical queries.
func (m *Monitor) RemoveEndpoint(endpointID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.endpoints[endpointID]
	if !ok {
		return false
	}

	if entry.cancel != nil {
		entry.cancel()
	}

	delete(m.endpoints, endpointID)

	return true
}

// AddAlertHandler registers a handler for every raised alert. Must be
// called before Start.
func (m *Monitor) AddAlertHandler(handler AlertHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.handlers = append(m.handlers, handler)
}

// Start launches the probe loops, the aggregator event loop, the alert
// pump and the snapshot broadcaster. It does not block.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return errAlreadyStarted
	}

	m.runCtx, m.cancel = context.WithCancel(ctx)
	m.started = true

	log.Printf("Starting monitor with %d endpoints", len(m.endpoints))

	for _, entry := range m.endpoints {
		m.startEntry(entry)
	}

	go m.agg.Run(m.runCtx, m.runner.Records())
	go m.pumpAlerts(m.runCtx)
	go m.snapshotLoop(m.runCtx)

	return nil
}

// startEntry spawns the probe loop for one endpoint under its own cancel.
// Caller holds the write lock.
func (m *Monitor) startEntry(entry *endpointEntry) {
	ctx, cancel := context.WithCancel(m.runCtx)
	entry.cancel = cancel

	m.runner.StartEndpoint(ctx, entry.endpoint)
}

// Stop cancels all monitor goroutines.
func (m *Monitor) Stop(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		m.cancel()
	}

	m.started = false

	log.Printf("Monitor stopped")

	return nil
}

func (m *Monitor) pumpAlerts(ctx context.Context) {
	for {
		select {
		case alert := <-m.agg.Alerts():
			m.dispatchAlert(ctx, alert)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) dispatchAlert(ctx context.Context, alert models.Alert) {
	m.events.broadcast(Event{
		Kind:      EventAlert,
		Timestamp: time.Now(),
		Alert:     &alert,
	})

	m.mu.RLock()
	handlers := m.handlers
	m.mu.RUnlock()

	for _, handler := range handlers {
		handler(ctx, alert)
	}
}

func (m *Monitor) snapshotLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(m.config.SnapshotInterval))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			summary := m.agg.GetSummaryStats()

			m.events.broadcast(Event{
				Kind:      EventScores,
				Timestamp: time.Now(),
				Scores:    m.agg.GetAllScores(),
				Summary:   &summary,
			})
		case <-ctx.Done():
			return
		}
	}
}

// Subscribe returns a channel of live events. Slow consumers lose events
// rather than stalling the monitor.
func (m *Monitor) Subscribe() chan Event {
	return m.events.subscribe()
}

// Unsubscribe removes and closes a subscriber channel.
func (m *Monitor) Unsubscribe(ch chan Event) {
	m.events.unsubscribe(ch)
}

// EndpointCount returns the number of registered endpoints.
func (m *Monitor) EndpointCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.endpoints)
}

// EndpointIDs lists registered endpoint IDs in sorted order.
func (m *Monitor) EndpointIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.endpoints))
	for id := range m.endpoints {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// GetEndpoint returns a registered endpoint by ID.
func (m *Monitor) GetEndpoint(endpointID string) (models.Endpoint, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.endpoints[endpointID]
	if !ok {
		return models.Endpoint{}, false
	}

	return entry.endpoint, true
}

// Endpoints returns the registered endpoints sorted by ID.
func (m *Monitor) Endpoints() []models.Endpoint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	endpoints := make([]models.Endpoint, 0, len(m.endpoints))
	for _, entry := range m.endpoints {
		endpoints = append(endpoints, entry.endpoint)
	}

	sort.Slice(endpoints, func(i, j int) bool { return endpoints[i].ID < endpoints[j].ID })

	return endpoints
}

// EndpointState returns a deep copy of the endpoint's aggregator state.
func (m *Monitor) EndpointState(endpointID string) (*metrics.AggregatorState, bool) {
	return m.agg.GetEndpointState(endpointID)
}

// EndpointScore computes a fresh score snapshot for one endpoint.
func (m *Monitor) EndpointScore(endpointID string) (scoring.ComprehensiveScoreResult, bool) {
	return m.agg.GetEndpointScore(endpointID)
}

// Scores computes score snapshots for every endpoint with probe data.
func (m *Monitor) Scores() map[string]scoring.ComprehensiveScoreResult {
	return m.agg.GetAllScores()
}

// Summary returns the fleet-level grade rollup.
func (m *Monitor) Summary() aggregator.SummaryStats {
	return m.agg.GetSummaryStats()
}
