// Package aggregator pkg/aggregator/config.go
package aggregator

import (
	"errors"
	"time"

	"github.com/cloudpulse/cloudpulse/pkg/config"
	"github.com/cloudpulse/cloudpulse/pkg/metrics"
	"github.com/cloudpulse/cloudpulse/pkg/scoring"
)

var errInvalidAggregatorConfig = errors.New("invalid aggregator config")

const (
	defaultEwmaAlpha             = 1.0 / 16.0
	defaultLongRecomputeInterval = 30 * time.Second
	defaultAlertCooldown         = 60 * time.Second

	defaultScoreDropThreshold    = 20.0
	defaultSustainedLossPercent  = 3.0
	defaultAvailabilityThreshold = 95.0
)

// Config controls window sizes, smoothing, scoring weights and alert
// thresholds for the streaming aggregator.
type Config struct {
	ShortWindow int `json:"short_window"`
	LongWindow  int `json:"long_window"`

	// EwmaAlpha is the jitter smoothing factor in (0, 1].
	EwmaAlpha float64 `json:"ewma_alpha"`

	Weights scoring.AlgorithmWeights `json:"weights"`

	LongRecomputeInterval config.Duration `json:"long_recompute_interval"`
	AlertCooldown         config.Duration `json:"alert_cooldown"`

	// ScoreDropThreshold is the composite score drop that raises an alert.
	ScoreDropThreshold float64 `json:"score_drop_threshold"`

	// SustainedLossPercent is the short-window loss percent that raises an
	// alert.
	SustainedLossPercent float64 `json:"sustained_loss_percent"`

	// AvailabilityThreshold raises an alert when long-window availability
	// falls below it.
	AvailabilityThreshold float64 `json:"availability_threshold"`
}

// DefaultConfig returns the stock aggregator configuration.
func DefaultConfig() Config {
	return Config{
		ShortWindow:           metrics.DefaultShortWindow,
		LongWindow:            metrics.DefaultLongWindow,
		EwmaAlpha:             defaultEwmaAlpha,
		Weights:               scoring.DefaultWeights(),
		LongRecomputeInterval: config.Duration(defaultLongRecomputeInterval),
		AlertCooldown:         config.Duration(defaultAlertCooldown),
		ScoreDropThreshold:    defaultScoreDropThreshold,
		SustainedLossPercent:  defaultSustainedLossPercent,
		AvailabilityThreshold: defaultAvailabilityThreshold,
	}
}

// Validate repairs zero values with defaults and rejects settings that
// cannot be repaired.
func (c *Config) Validate() error {
	if c.ShortWindow <= 0 {
		c.ShortWindow = metrics.DefaultShortWindow
	}

	if c.LongWindow <= 0 {
		c.LongWindow = metrics.DefaultLongWindow
	}

	if c.LongWindow < c.ShortWindow {
		return errInvalidAggregatorConfig
	}

	if c.EwmaAlpha == 0 {
		c.EwmaAlpha = defaultEwmaAlpha
	}

	if c.EwmaAlpha < 0 || c.EwmaAlpha > 1 {
		return errInvalidAggregatorConfig
	}

	zero := scoring.AlgorithmWeights{}
	if c.Weights == zero {
		c.Weights = scoring.DefaultWeights()
	}

	if !c.Weights.IsValid() {
		if err := c.Weights.Normalize(); err != nil {
			return errInvalidAggregatorConfig
		}
	}

	if time.Duration(c.LongRecomputeInterval) <= 0 {
		c.LongRecomputeInterval = config.Duration(defaultLongRecomputeInterval)
	}

	if time.Duration(c.AlertCooldown) <= 0 {
		c.AlertCooldown = config.Duration(defaultAlertCooldown)
	}

	if c.ScoreDropThreshold <= 0 {
		c.ScoreDropThreshold = defaultScoreDropThreshold
	}

	if c.SustainedLossPercent <= 0 {
		c.SustainedLossPercent = defaultSustainedLossPercent
	}

	if c.AvailabilityThreshold <= 0 {
		c.AvailabilityThreshold = defaultAvailabilityThreshold
	}

	return nil
}
