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

// Package loader pkg/loader/loader.go
package loader

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/cloudpulse/cloudpulse/pkg/config"
	"github.com/cloudpulse/cloudpulse/pkg/models"
)

var errInvalidRegion = errors.New("invalid region")

// Region describes a probe target location from a region definition file.
type Region struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	URL       string  `json:"url"`
	Provider  string  `json:"provider"`
	Country   string  `json:"country"`
	Enabled   bool    `json:"enabled"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks the fields a region file must carry.
func (r *Region) Validate() error {
	if r.ID == "" || r.Name == "" || r.URL == "" {
		return fmt.Errorf("%w: id, name and url are required", errInvalidRegion)
	}

	if r.Latitude < -90 || r.Latitude > 90 {
		return fmt.Errorf("%w: latitude %f out of range", errInvalidRegion, r.Latitude)
	}

	if r.Longitude < -180 || r.Longitude > 180 {
		return fmt.Errorf("%w: longitude %f out of range", errInvalidRegion, r.Longitude)
	}

	return nil
}

// RegionsFile is the on-disk shape of a region definition file.
type RegionsFile struct {
	Regions []Region `json:"regions"`
}

// Validate rejects the file if any region is invalid or an ID repeats.
func (f *RegionsFile) Validate() error {
	seen := make(map[string]struct{}, len(f.Regions))

	for i := range f.Regions {
		if err := f.Regions[i].Validate(); err != nil {
			return err
		}

		if _, ok := seen[f.Regions[i].ID]; ok {
			return fmt.Errorf("%w: duplicate region id %q", errInvalidRegion, f.Regions[i].ID)
		}

		seen[f.Regions[i].ID] = struct{}{}
	}

	return nil
}

// LoadRegions reads and validates a region definition file.
func LoadRegions(path string) ([]Region, error) {
	var file RegionsFile
	if err := config.LoadAndValidate(path, &file); err != nil {
		return nil, err
	}

	return file.Regions, nil
}

// EndpointsFromRegions converts enabled regions into probe endpoints.
// Regions with unparseable URLs are logged and skipped rather than failing
// the whole set.
func EndpointsFromRegions(regions []Region) []models.Endpoint {
	endpoints := make([]models.Endpoint, 0, len(regions))

	for i := range regions {
		region := &regions[i]

		if !region.Enabled {
			continue
		}

		endpoint, err := endpointFromRegion(region)
		if err != nil {
			log.Printf("Skipping region %s: %v", region.ID, err)
			continue
		}

		endpoints = append(endpoints, endpoint)
	}

	return endpoints
}

func endpointFromRegion(region *Region) (models.Endpoint, error) {
	u, err := url.Parse(region.URL)
	if err != nil {
		return models.Endpoint{}, fmt.Errorf("%w: %w", errInvalidRegion, err)
	}

	if u.Hostname() == "" {
		return models.Endpoint{}, fmt.Errorf("%w: url %q has no host", errInvalidRegion, region.URL)
	}

	// HTTPS and HTTP probe over HTTP on their well-known ports; icmp gets an
	// ICMP probe. Every other scheme probes over TCP, defaulting to port 80.
	probeType := models.ProbeTCP
	port := uint16(80)

	switch u.Scheme {
	case "https":
		probeType = models.ProbeHTTP
		port = 443
	case "http":
		probeType = models.ProbeHTTP
	case "icmp":
		probeType = models.ProbeICMP
		port = 0
	}

	if p := u.Port(); p != "" {
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return models.Endpoint{}, fmt.Errorf("%w: bad port %q", errInvalidRegion, p)
		}

		port = uint16(n)
	}

	endpoint := models.NewEndpoint(region.ID, u.Hostname(), port, probeType)
	endpoint.SetMetadata("name", region.Name)

	if region.Provider != "" {
		endpoint.SetMetadata("provider", region.Provider)
	}

	if region.Country != "" {
		endpoint.SetMetadata("country", region.Country)
	}

	return endpoint, nil
}
