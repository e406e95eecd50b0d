// Package models pkg/models/probe.go
package models

import "time"

// ProbeRecord is the outcome of a single probe attempt. Records are
// immutable after creation: the probe engine produces them, the aggregator
// consumes them.
type ProbeRecord struct {
	EndpointID string    `json:"endpoint_id"`
	Timestamp  time.Time `json:"timestamp"`
	RTTMs      *float64  `json:"rtt_ms,omitempty"`
	Success    bool      `json:"success"`
	ErrorCode  string    `json:"error_code,omitempty"`
}

// SuccessRecord creates a successful record carrying the measured RTT.
func SuccessRecord(endpointID string, rttMs float64) ProbeRecord {
	return ProbeRecord{
		EndpointID: endpointID,
		Timestamp:  time.Now(),
		RTTMs:      &rttMs,
		Success:    true,
	}
}

// FailureRecord creates a failed record with an optional error code.
func FailureRecord(endpointID, errorCode string) ProbeRecord {
	return ProbeRecord{
		EndpointID: endpointID,
		Timestamp:  time.Now(),
		Success:    false,
		ErrorCode:  errorCode,
	}
}

// TimeoutRecord creates a failed record for a probe that exceeded its
// deadline. Timeouts are expected telemetry, not errors.
func TimeoutRecord(endpointID string) ProbeRecord {
	return FailureRecord(endpointID, "timeout")
}

// IsSuccess reports whether the probe succeeded and carries an RTT. The
// constructors above never produce a successful record without one, so this
// is the authoritative success check.
func (r *ProbeRecord) IsSuccess() bool {
	return r.Success && r.RTTMs != nil
}

// RTTOrDefault returns the RTT, or def for failed probes.
func (r *ProbeRecord) RTTOrDefault(def float64) float64 {
	if r.RTTMs == nil {
		return def
	}

	return *r.RTTMs
}
