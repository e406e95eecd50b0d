// Package probe pkg/probe/config.go
package probe

import (
	"fmt"
	"time"

	"github.com/cloudpulse/cloudpulse/pkg/config"
)

const (
	defaultProbeInterval    = 5 * time.Second
	defaultConcurrencyLimit = 500
	defaultRTTTimeout       = 2 * time.Second
	defaultJitterPercent    = 10

	// minSleep floors the jittered inter-probe delay regardless of
	// configuration.
	minSleep = 100 * time.Millisecond
)

// Config controls probe timing and concurrency.
type Config struct {
	// ProbeInterval is the base delay between probes of one endpoint.
	ProbeInterval config.Duration `json:"probe_interval"`

	// ConcurrencyLimit caps in-flight probes across the whole fleet.
	ConcurrencyLimit int64 `json:"concurrency_limit"`

	// RTTTimeout bounds a single probe attempt.
	RTTTimeout config.Duration `json:"rtt_timeout"`

	// JitterPercent spreads the inter-probe delay by +/- this percentage
	// to avoid thundering-herd synchronization across endpoints.
	JitterPercent int `json:"jitter_percent"`

	// RateLimit caps probes per second fleet-wide. Zero disables the cap.
	RateLimit float64 `json:"rate_limit,omitempty"`
}

// DefaultConfig returns the stock probe configuration.
func DefaultConfig() Config {
	return Config{
		ProbeInterval:    config.Duration(defaultProbeInterval),
		ConcurrencyLimit: defaultConcurrencyLimit,
		RTTTimeout:       config.Duration(defaultRTTTimeout),
		JitterPercent:    defaultJitterPercent,
	}
}

// Validate implements config.Validator, repairing unset fields.
func (c *Config) Validate() error {
	if time.Duration(c.ProbeInterval) <= 0 {
		c.ProbeInterval = config.Duration(defaultProbeInterval)
	}

	if c.ConcurrencyLimit <= 0 {
		c.ConcurrencyLimit = defaultConcurrencyLimit
	}

	if time.Duration(c.RTTTimeout) <= 0 {
		c.RTTTimeout = config.Duration(defaultRTTTimeout)
	}

	if c.JitterPercent < 0 || c.JitterPercent > 100 {
		return fmt.Errorf("%w: jitter_percent must be within [0,100], got %d",
			errInvalidConfig, c.JitterPercent)
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("%w: rate_limit must be non-negative", errInvalidConfig)
	}

	return nil
}
