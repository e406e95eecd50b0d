// Package db pkg/db/db.go provides SQLite-backed alert history for CloudPulse
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const createTablesSQL = `
	-- Threshold alerts raised by the aggregator
	CREATE TABLE IF NOT EXISTS alerts (
		alert_id TEXT PRIMARY KEY,
		endpoint_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		severity TEXT NOT NULL,
		description TEXT NOT NULL,
		payload TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		acknowledged BOOLEAN NOT NULL DEFAULT 0
	);

	-- Indexes for better query performance
	CREATE INDEX IF NOT EXISTS idx_alerts_endpoint_time
		ON alerts(endpoint_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_alerts_time
		ON alerts(timestamp);
	CREATE INDEX IF NOT EXISTS idx_alerts_acknowledged
		ON alerts(acknowledged);

	PRAGMA foreign_keys=ON;
	`

// DB represents the database connection and operations.
type DB struct {
	*sql.DB
}

// New creates a new database connection and initializes the schema.
func New(dbPath string) (Service, error) {
	sqlDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedOpenDB, err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToEnableWAL, err)
	}

	db := &DB{sqlDB}
	if err := db.initSchema(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToInit, err)
	}

	return db, nil
}

// initSchema creates the database tables if they don't exist.
func (db *DB) initSchema() error {
	_, err := db.Exec(createTablesSQL)

	return err
}
