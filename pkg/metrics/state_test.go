package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudpulse/cloudpulse/pkg/models"
)

const testAlpha = 1.0 / 16.0

func TestAggregatorStateFirstRecord(t *testing.T) {
	state := NewAggregatorState("ep-1", 10, 100)

	state.AddRecord(models.SuccessRecord("ep-1", 50.0), testAlpha)

	assert.Equal(t, 1, state.TotalSentShort)
	assert.Equal(t, 1, state.TotalRecvShort)
	assert.InDelta(t, 100.0, state.CachedAvailShort, 1e-9)
	assert.InDelta(t, 0.0, state.CachedLossShort, 1e-9)

	// No prior RTT to diff against: jitter stays at zero.
	assert.InDelta(t, 0.0, state.EWMAJitterMs, 1e-9)
}

func TestAggregatorStateEWMAJitter(t *testing.T) {
	state := NewAggregatorState("ep-1", 10, 100)

	state.AddRecord(models.SuccessRecord("ep-1", 50.0), 0.5)
	state.AddRecord(models.SuccessRecord("ep-1", 100.0), 0.5)

	// (|100-50| - 0) * 0.5 = 25
	assert.InDelta(t, 25.0, state.EWMAJitterMs, 1e-9)
}

func TestAggregatorStateTimeoutJitterPenalty(t *testing.T) {
	state := NewAggregatorState("ep-1", 10, 100)

	state.AddRecord(models.TimeoutRecord("ep-1"), 0.5)

	// (100 - 0) * (0.5/2) = 25
	assert.InDelta(t, 25.0, state.EWMAJitterMs, 1e-9)

	require.Nil(t, state.LastRTTMs)
}

func TestAggregatorStateLossAndAvailability(t *testing.T) {
	state := NewAggregatorState("ep-1", 10, 100)

	for i := 0; i < 8; i++ {
		state.AddRecord(models.SuccessRecord("ep-1", 40.0), testAlpha)
	}

	state.AddRecord(models.FailureRecord("ep-1", "refused"), testAlpha)
	state.AddRecord(models.TimeoutRecord("ep-1"), testAlpha)

	assert.Equal(t, 10, state.TotalSentShort)
	assert.Equal(t, 8, state.TotalRecvShort)
	assert.InDelta(t, 20.0, state.CachedLossShort, 1e-9)
	assert.InDelta(t, 80.0, state.CachedAvailShort, 1e-9)

	assert.Equal(t, 2, state.RecentFailureCount(5))
	assert.Equal(t, 1, state.RecentFailureCount(1))
}

func TestAggregatorStateWindowEviction(t *testing.T) {
	state := NewAggregatorState("ep-1", 4, 100)

	// Fill the short window with failures, then push successes past them.
	for i := 0; i < 4; i++ {
		state.AddRecord(models.FailureRecord("ep-1", "refused"), testAlpha)
	}

	for i := 0; i < 4; i++ {
		state.AddRecord(models.SuccessRecord("ep-1", 30.0), testAlpha)
	}

	assert.Equal(t, 4, state.TotalSentShort)
	assert.Equal(t, 4, state.TotalRecvShort)
	assert.InDelta(t, 100.0, state.CachedAvailShort, 1e-9)

	// Long window still remembers everything.
	assert.Equal(t, 8, state.TotalSentLong)
	assert.Equal(t, 4, state.TotalRecvLong)
}

func TestAggregatorStateLongRecompute(t *testing.T) {
	state := NewAggregatorState("ep-1", 10, 100)

	state.AddRecord(models.SuccessRecord("ep-1", 40.0), testAlpha)
	state.AddRecord(models.FailureRecord("ep-1", "refused"), testAlpha)

	// Long aggregates are stale until the timer-driven recompute runs.
	assert.InDelta(t, 0.0, state.CachedLossLong, 1e-9)

	state.RecomputeLongAggregates()
	assert.InDelta(t, 50.0, state.CachedLossLong, 1e-9)
	assert.InDelta(t, 50.0, state.CachedAvailLong, 1e-9)

	// Idempotent while clean.
	state.RecomputeLongAggregates()
	assert.InDelta(t, 50.0, state.CachedLossLong, 1e-9)
}

func TestAggregatorStatePercentiles(t *testing.T) {
	state := NewAggregatorState("ep-1", 60, 720)

	for i := 0; i < 10; i++ {
		state.AddRecord(models.SuccessRecord("ep-1", 20.0+float64(i)), testAlpha)
	}

	assert.InDelta(t, 24.5, state.CachedP50Short, 1e-9)
	assert.InDelta(t, 28.1, state.CachedP90Short, 1e-9)
	assert.Greater(t, state.CachedP99Short, state.CachedP50Short)
}

func TestAggregatorStateHealth(t *testing.T) {
	state := NewAggregatorState("ep-1", 10, 100)

	// Too few samples.
	state.AddRecord(models.SuccessRecord("ep-1", 30.0), testAlpha)
	assert.Equal(t, HealthUnknown, state.Health())

	for i := 0; i < 5; i++ {
		state.AddRecord(models.SuccessRecord("ep-1", 30.0), testAlpha)
	}

	assert.Equal(t, HealthExcellent, state.Health())
}

func TestAggregatorStateHealthCriticalOnLoss(t *testing.T) {
	state := NewAggregatorState("ep-1", 10, 100)

	// Fast RTTs but heavy loss: loss >= 10% must force critical.
	for i := 0; i < 8; i++ {
		state.AddRecord(models.SuccessRecord("ep-1", 10.0), testAlpha)
	}

	state.AddRecord(models.FailureRecord("ep-1", "refused"), testAlpha)
	state.AddRecord(models.FailureRecord("ep-1", "refused"), testAlpha)

	require.InDelta(t, 20.0, state.CachedLossShort, 1e-9)
	assert.Equal(t, HealthCritical, state.Health())
}

func TestAggregatorStateClone(t *testing.T) {
	state := NewAggregatorState("ep-1", 10, 100)
	state.AddRecord(models.SuccessRecord("ep-1", 25.0), testAlpha)

	clone := state.Clone()
	state.AddRecord(models.SuccessRecord("ep-1", 75.0), testAlpha)

	assert.Equal(t, 1, clone.TotalSentShort)
	assert.Equal(t, 2, state.TotalSentShort)

	require.NotNil(t, clone.LastRTTMs)
	assert.InDelta(t, 25.0, *clone.LastRTTMs, 1e-9)
}
