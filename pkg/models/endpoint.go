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

// Package models pkg/models/endpoint.go
package models

import (
	"net"
	"strconv"
)

// ProbeType identifies the probing method used against an endpoint.
type ProbeType string

const (
	ProbeTCP  ProbeType = "tcp"
	ProbeHTTP ProbeType = "http"
	ProbeICMP ProbeType = "icmp"
)

// DefaultPort returns the default port for the probe type. ICMP does not
// use ports.
func (p ProbeType) DefaultPort() uint16 {
	switch p {
	case ProbeTCP, ProbeHTTP:
		return 80
	case ProbeICMP:
		return 0
	default:
		return 0
	}
}

// RequiresPrivileges reports whether the probe type needs raw socket access.
func (p ProbeType) RequiresPrivileges() bool {
	return p == ProbeICMP
}

// Endpoint is a network target with probe configuration and metadata.
// The ID is the endpoint's immutable identity; all metrics are keyed by it.
type Endpoint struct {
	ID        string            `json:"id"`
	Host      string            `json:"host"`
	Port      uint16            `json:"port"`
	ProbeType ProbeType         `json:"probe_type"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NewEndpoint creates an endpoint with an empty metadata map.
func NewEndpoint(id, host string, port uint16, probeType ProbeType) Endpoint {
	return Endpoint{
		ID:        id,
		Host:      host,
		Port:      port,
		ProbeType: probeType,
		Metadata:  make(map[string]string),
	}
}

// Address returns the dialable address for the endpoint. ICMP targets use
// the bare host.
func (e *Endpoint) Address() string {
	if e.ProbeType == ProbeICMP {
		return e.Host
	}

	return net.JoinHostPort(e.Host, strconv.Itoa(int(e.Port)))
}

// IsValid reports whether the endpoint has enough identity to probe.
func (e *Endpoint) IsValid() bool {
	return e.ID != "" && e.Host != "" && (e.ProbeType == ProbeICMP || e.Port > 0)
}

// GetMetadata returns the metadata value for key, if present.
func (e *Endpoint) GetMetadata(key string) (string, bool) {
	v, ok := e.Metadata[key]
	return v, ok
}

// SetMetadata sets a metadata key, allocating the map if needed.
func (e *Endpoint) SetMetadata(key, value string) {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}

	e.Metadata[key] = value
}
