// Package api pkg/api/interfaces.go
package api

import (
	"github.com/cloudpulse/cloudpulse/pkg/aggregator"
	"github.com/cloudpulse/cloudpulse/pkg/metrics"
	"github.com/cloudpulse/cloudpulse/pkg/models"
	"github.com/cloudpulse/cloudpulse/pkg/monitoring"
	"github.com/cloudpulse/cloudpulse/pkg/scoring"
)

// MonitorService is the view of the monitor the API serves from.
type MonitorService interface {
	Endpoints() []models.Endpoint
	GetEndpoint(endpointID string) (models.Endpoint, bool)
	EndpointState(endpointID string) (*metrics.AggregatorState, bool)
	EndpointScore(endpointID string) (scoring.ComprehensiveScoreResult, bool)
	Scores() map[string]scoring.ComprehensiveScoreResult
	Summary() aggregator.SummaryStats
	Subscribe() chan monitoring.Event
	Unsubscribe(ch chan monitoring.Event)
}

// AlertStore is the view of alert history the API serves from.
type AlertStore interface {
	GetRecentAlerts(limit int) ([]models.Alert, error)
	GetEndpointAlerts(endpointID string, limit int) ([]models.Alert, error)
	AcknowledgeAlert(alertID string) error
}
