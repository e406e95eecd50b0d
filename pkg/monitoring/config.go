// Package monitoring pkg/monitoring/config.go
package monitoring

import (
	"time"

	"github.com/cloudpulse/cloudpulse/pkg/aggregator"
	"github.com/cloudpulse/cloudpulse/pkg/config"
	"github.com/cloudpulse/cloudpulse/pkg/probe"
)

const defaultSnapshotInterval = 60 * time.Second

// Config bundles the probe and aggregator settings with the monitor's own
// snapshot cadence.
type Config struct {
	Probe      probe.Config      `json:"probe"`
	Aggregator aggregator.Config `json:"aggregator"`

	// SnapshotInterval is how often score snapshots are broadcast to
	// subscribers.
	SnapshotInterval config.Duration `json:"snapshot_interval"`
}

// DefaultConfig returns the stock monitor configuration.
func DefaultConfig() Config {
	return Config{
		Probe:            probe.DefaultConfig(),
		Aggregator:       aggregator.DefaultConfig(),
		SnapshotInterval: config.Duration(defaultSnapshotInterval),
	}
}

// Validate cascades into the probe and aggregator configs and repairs the
// snapshot interval.
func (c *Config) Validate() error {
	if err := c.Probe.Validate(); err != nil {
		return err
	}

	if err := c.Aggregator.Validate(); err != nil {
		return err
	}

	if time.Duration(c.SnapshotInterval) <= 0 {
		c.SnapshotInterval = config.Duration(defaultSnapshotInterval)
	}

	return nil
}
