// Package monitoring pkg/monitoring/events.go
package monitoring

import (
	"sync"
	"time"

	"github.com/cloudpulse/cloudpulse/pkg/aggregator"
	"github.com/cloudpulse/cloudpulse/pkg/models"
	"github.com/cloudpulse/cloudpulse/pkg/scoring"
)

// EventKind tags the payload carried by an Event.
type EventKind string

const (
	EventAlert  EventKind = "alert"
	EventScores EventKind = "scores"
)

// Event is a broadcast message for live consumers: either a single alert
// or a periodic fleet score snapshot.
type Event struct {
	Kind      EventKind                                   `json:"kind"`
	Timestamp time.Time                                   `json:"timestamp"`
	Alert     *models.Alert                               `json:"alert,omitempty"`
	Scores    map[string]scoring.ComprehensiveScoreResult `json:"scores,omitempty"`
	Summary   *aggregator.SummaryStats                    `json:"summary,omitempty"`
}

// subscriberBuffer sizes each subscriber channel. Slow subscribers lose
// events instead of stalling the monitor.
const subscriberBuffer = 64

type hub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[chan Event]struct{})}
}

func (h *hub) subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	return ch
}

func (h *hub) unsubscribe(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

func (h *hub) broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *hub) subscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subs)
}
