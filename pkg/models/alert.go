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

// Package models pkg/models/alert.go
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AlertKind tags the alert variant carried by an AlertType.
type AlertKind string

const (
	AlertScoreDrop       AlertKind = "score_drop"
	AlertSustainedLoss   AlertKind = "sustained_loss"
	AlertAvailabilityLow AlertKind = "availability_low"
	AlertHighLatency     AlertKind = "high_latency"
	AlertHighJitter      AlertKind = "high_jitter"
)

// AlertType is a tagged union of alert variants. Only the fields belonging
// to the tagged kind are meaningful; use the constructors below.
type AlertType struct {
	Kind         AlertKind `json:"kind"`
	OldScore     float64   `json:"old_score,omitempty"`
	NewScore     float64   `json:"new_score,omitempty"`
	LossPercent  float64   `json:"loss_percent,omitempty"`
	Availability float64   `json:"availability,omitempty"`
	LatencyMs    float64   `json:"latency_ms,omitempty"`
	JitterMs     float64   `json:"jitter_ms,omitempty"`
}

// ScoreDrop creates an alert type for a significant composite score drop.
func ScoreDrop(oldScore, newScore float64) AlertType {
	return AlertType{Kind: AlertScoreDrop, OldScore: oldScore, NewScore: newScore}
}

// SustainedLoss creates an alert type for sustained packet loss.
func SustainedLoss(lossPercent float64) AlertType {
	return AlertType{Kind: AlertSustainedLoss, LossPercent: lossPercent}
}

// AvailabilityLow creates an alert type for low availability.
func AvailabilityLow(availability float64) AlertType {
	return AlertType{Kind: AlertAvailabilityLow, Availability: availability}
}

// HighLatency creates an alert type for high median latency.
func HighLatency(latencyMs float64) AlertType {
	return AlertType{Kind: AlertHighLatency, LatencyMs: latencyMs}
}

// HighJitter creates an alert type for high smoothed jitter.
func HighJitter(jitterMs float64) AlertType {
	return AlertType{Kind: AlertHighJitter, JitterMs: jitterMs}
}

// AlertSeverity classifies how urgent an alert is.
type AlertSeverity int

const (
	SeverityInfo AlertSeverity = iota
	SeverityWarning
	SeverityCritical
)

func (s AlertSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Severity derives the severity from the values carried by the variant.
// It is a pure function of the payload; severity is never stored.
func (t AlertType) Severity() AlertSeverity {
	switch t.Kind {
	case AlertScoreDrop:
		drop := t.OldScore - t.NewScore

		switch {
		case drop >= 40.0:
			return SeverityCritical
		case drop >= 20.0:
			return SeverityWarning
		default:
			return SeverityInfo
		}
	case AlertSustainedLoss:
		switch {
		case t.LossPercent >= 10.0:
			return SeverityCritical
		case t.LossPercent >= 3.0:
			return SeverityWarning
		default:
			return SeverityInfo
		}
	case AlertAvailabilityLow:
		switch {
		case t.Availability < 90.0:
			return SeverityCritical
		case t.Availability < 95.0:
			return SeverityWarning
		default:
			return SeverityInfo
		}
	case AlertHighLatency:
		switch {
		case t.LatencyMs > 500.0:
			return SeverityCritical
		case t.LatencyMs > 200.0:
			return SeverityWarning
		default:
			return SeverityInfo
		}
	case AlertHighJitter:
		switch {
		case t.JitterMs > 100.0:
			return SeverityCritical
		case t.JitterMs > 50.0:
			return SeverityWarning
		default:
			return SeverityInfo
		}
	default:
		return SeverityInfo
	}
}

// Description renders a human-readable message for the variant.
func (t AlertType) Description() string {
	switch t.Kind {
	case AlertScoreDrop:
		return fmt.Sprintf("Score dropped from %.1f to %.1f", t.OldScore, t.NewScore)
	case AlertSustainedLoss:
		return fmt.Sprintf("Sustained packet loss: %.1f%%", t.LossPercent)
	case AlertAvailabilityLow:
		return fmt.Sprintf("Low availability: %.1f%%", t.Availability)
	case AlertHighLatency:
		return fmt.Sprintf("High latency: %.1fms", t.LatencyMs)
	case AlertHighJitter:
		return fmt.Sprintf("High jitter: %.1fms", t.JitterMs)
	default:
		return "Unknown alert"
	}
}

// Alert is a threshold-triggered event for one endpoint. Alerts are
// immutable after creation except for the acknowledged flag, which only a
// consumer may set.
type Alert struct {
	ID           string    `json:"id"`
	EndpointID   string    `json:"endpoint_id"`
	Type         AlertType `json:"type"`
	Timestamp    time.Time `json:"timestamp"`
	Acknowledged bool      `json:"acknowledged"`
}

// NewAlert creates an unacknowledged alert with a fresh ID.
func NewAlert(endpointID string, alertType AlertType) Alert {
	return Alert{
		ID:         uuid.New().String(),
		EndpointID: endpointID,
		Type:       alertType,
		Timestamp:  time.Now(),
	}
}

// Severity derives severity from the alert's variant payload.
func (a *Alert) Severity() AlertSeverity {
	return a.Type.Severity()
}

// Description renders the alert's message.
func (a *Alert) Description() string {
	return a.Type.Description()
}

// Acknowledge marks the alert as seen by a consumer.
func (a *Alert) Acknowledge() {
	a.Acknowledged = true
}

// IsRecent reports whether the alert fired within the last hour.
func (a *Alert) IsRecent() bool {
	return time.Since(a.Timestamp) < time.Hour
}
