// Package errors pkg/db/errors.go provides errors for the db package.

package db

import "errors"

var (
	ErrFailedToClean     = errors.New("failed to clean")
	ErrFailedToScan      = errors.New("failed to scan")
	ErrFailedToQuery     = errors.New("failed to query")
	ErrFailedToInsert    = errors.New("failed to insert")
	ErrFailedToUpdate    = errors.New("failed to update")
	ErrFailedToInit      = errors.New("failed to initialize schema")
	ErrFailedToEnableWAL = errors.New("failed to enable WAL mode")
	ErrFailedOpenDB      = errors.New("failed to open database")
	ErrAlertNotFound     = errors.New("alert not found")
)
