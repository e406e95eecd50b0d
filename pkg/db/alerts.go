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

// Package db pkg/db/alerts.go
package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cloudpulse/cloudpulse/pkg/models"
)

const defaultAlertLimit = 100

// StoreAlert persists an alert. The variant payload is stored as JSON so
// the exact alert can be reconstructed.
func (db *DB) StoreAlert(alert *models.Alert) error {
	payload, err := json.Marshal(alert.Type)
	if err != nil {
		return fmt.Errorf("%w alert payload: %w", ErrFailedToInsert, err)
	}

	const insertSQL = `
		INSERT INTO alerts
			(alert_id, endpoint_id, kind, severity, description, payload, timestamp, acknowledged)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = db.Exec(insertSQL,
		alert.ID,
		alert.EndpointID,
		string(alert.Type.Kind),
		alert.Severity().String(),
		alert.Description(),
		string(payload),
		alert.Timestamp,
		alert.Acknowledged,
	)
	if err != nil {
		return fmt.Errorf("%w alert: %w", ErrFailedToInsert, err)
	}

	return nil
}

// GetAlert loads a single alert by ID.
func (db *DB) GetAlert(alertID string) (*models.Alert, error) {
	const querySQL = `
		SELECT alert_id, endpoint_id, payload, timestamp, acknowledged
		FROM alerts
		WHERE alert_id = ?
	`

	alert, err := scanAlert(db.QueryRow(querySQL, alertID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAlertNotFound
	}

	if err != nil {
		return nil, err
	}

	return alert, nil
}

// GetRecentAlerts returns the newest alerts, most recent first.
func (db *DB) GetRecentAlerts(limit int) ([]models.Alert, error) {
	if limit <= 0 {
		limit = defaultAlertLimit
	}

	const querySQL = `
		SELECT alert_id, endpoint_id, payload, timestamp, acknowledged
		FROM alerts
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := db.Query(querySQL, limit)
	if err != nil {
		return nil, fmt.Errorf("%w alerts: %w", ErrFailedToQuery, err)
	}

	return scanAlerts(rows)
}

// GetEndpointAlerts returns the newest alerts for one endpoint, most
// recent first.
func (db *DB) GetEndpointAlerts(endpointID string, limit int) ([]models.Alert, error) {
	if limit <= 0 {
		limit = defaultAlertLimit
	}

	const querySQL = `
		SELECT alert_id, endpoint_id, payload, timestamp, acknowledged
		FROM alerts
		WHERE endpoint_id = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := db.Query(querySQL, endpointID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w endpoint alerts: %w", ErrFailedToQuery, err)
	}

	return scanAlerts(rows)
}

// AcknowledgeAlert marks an alert as acknowledged.
func (db *DB) AcknowledgeAlert(alertID string) error {
	const updateSQL = `
		UPDATE alerts
		SET acknowledged = 1
		WHERE alert_id = ?
	`

	result, err := db.Exec(updateSQL, alertID)
	if err != nil {
		return fmt.Errorf("%w alert: %w", ErrFailedToUpdate, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToUpdate, err)
	}

	if rowsAffected == 0 {
		return ErrAlertNotFound
	}

	return nil
}

// CleanOldAlerts removes alerts older than the retention period.
func (db *DB) CleanOldAlerts(retentionPeriod time.Duration) error {
	cutoff := time.Now().Add(-retentionPeriod)

	if _, err := db.Exec(`DELETE FROM alerts WHERE timestamp < ?`, cutoff); err != nil {
		return fmt.Errorf("%w old alerts: %w", ErrFailedToClean, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAlert(row rowScanner) (*models.Alert, error) {
	var (
		alert   models.Alert
		payload string
	)

	if err := row.Scan(&alert.ID, &alert.EndpointID, &payload, &alert.Timestamp, &alert.Acknowledged); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("%w alert row: %w", ErrFailedToScan, err)
	}

	if err := json.Unmarshal([]byte(payload), &alert.Type); err != nil {
		return nil, fmt.Errorf("%w alert payload: %w", ErrFailedToScan, err)
	}

	return &alert, nil
}

func scanAlerts(rows *sql.Rows) ([]models.Alert, error) {
	defer func() {
		_ = rows.Close()
	}()

	var alerts []models.Alert

	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}

		alerts = append(alerts, *alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w alerts: %w", ErrFailedToQuery, err)
	}

	return alerts, nil
}
