// Package db pkg/db/interfaces.go
package db

import (
	"time"

	"github.com/cloudpulse/cloudpulse/pkg/models"
)

//go:generate mockgen -destination=mock_db.go -package=db github.com/cloudpulse/cloudpulse/pkg/db Service

// Service represents all alert history operations.
type Service interface {
	Close() error

	// Alert operations.

	StoreAlert(alert *models.Alert) error
	GetAlert(alertID string) (*models.Alert, error)
	GetRecentAlerts(limit int) ([]models.Alert, error)
	GetEndpointAlerts(endpointID string, limit int) ([]models.Alert, error)
	AcknowledgeAlert(alertID string) error

	// Maintenance operations.

	CleanOldAlerts(retentionPeriod time.Duration) error
}
