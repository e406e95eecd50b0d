package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudpulse/cloudpulse/pkg/metrics"
	"github.com/cloudpulse/cloudpulse/pkg/models"
)

const testAlpha = 1.0 / 16.0

func TestDefaultWeightsValid(t *testing.T) {
	w := DefaultWeights()
	assert.True(t, w.IsValid())
}

func TestWeightNormalization(t *testing.T) {
	w := AlgorithmWeights{
		Latency:      3,
		Jitter:       2,
		PacketLoss:   2.5,
		Consistency:  1.5,
		Availability: 1,
	}

	require.False(t, w.IsValid())
	require.NoError(t, w.Normalize())
	assert.True(t, w.IsValid())

	// Ratios preserved.
	assert.InDelta(t, 0.3, w.Latency, 1e-9)
	assert.InDelta(t, 0.2, w.Jitter, 1e-9)
	assert.InDelta(t, 1.5, w.Latency/w.Jitter, 1e-9)
}

func TestWeightNormalizationAllZero(t *testing.T) {
	w := AlgorithmWeights{}
	assert.Error(t, w.Normalize())
}

func TestScoreToGrade(t *testing.T) {
	tests := []struct {
		score float64
		grade byte
	}{
		{95, 'A'},
		{90, 'A'},
		{85, 'B'},
		{75, 'C'},
		{65, 'D'},
		{59.9, 'F'},
		{0, 'F'},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.grade, ScoreToGrade(tt.score))
	}
}

func TestComputeScorePerfectEndpoint(t *testing.T) {
	state := metrics.NewAggregatorState("ep-1", 60, 720)

	for i := 0; i < 20; i++ {
		state.AddRecord(models.SuccessRecord("ep-1", 10.0), testAlpha)
	}

	result := ComputeScore(state, DefaultWeights())

	assert.GreaterOrEqual(t, result.Score, 90.0)
	assert.Equal(t, byte('A'), result.Grade)
	assert.InDelta(t, 100.0, result.Components.Availability, 1e-9)
	assert.InDelta(t, 100.0, result.Components.PacketLoss, 1e-9)
}

func TestComputeScoreTotalFailure(t *testing.T) {
	state := metrics.NewAggregatorState("ep-1", 60, 720)

	for i := 0; i < 20; i++ {
		state.AddRecord(models.TimeoutRecord("ep-1"), testAlpha)
	}

	result := ComputeScore(state, DefaultWeights())

	assert.Equal(t, byte('F'), result.Grade)
	assert.Zero(t, result.Components.Latency)
	assert.Zero(t, result.Components.Availability)
	assert.Zero(t, result.Components.Consistency)
}

func TestComputeScoreEmptyState(t *testing.T) {
	state := metrics.NewAggregatorState("ep-1", 60, 720)

	result := ComputeScore(state, DefaultWeights())

	// No probes at all: latency, consistency and availability all score
	// zero, so the composite cannot reach a passing grade.
	assert.GreaterOrEqual(t, result.Score, 0.0)
	assert.LessOrEqual(t, result.Score, 100.0)
	assert.Zero(t, result.Components.Latency)
	assert.Zero(t, result.Components.Consistency)
	assert.Equal(t, byte('F'), result.Grade)
}

func TestComputeScoreGoodEndpointScenario(t *testing.T) {
	state := metrics.NewAggregatorState("ep-1", 60, 720)

	// RTTs 20..29ms, one per integer step.
	for i := 0; i < 10; i++ {
		state.AddRecord(models.SuccessRecord("ep-1", 20.0+float64(i)), testAlpha)
	}

	require.Equal(t, 10, state.TotalSentShort)
	require.InDelta(t, 100.0, state.CachedAvailShort, 1e-9)

	result := ComputeScore(state, DefaultWeights())

	assert.GreaterOrEqual(t, result.Score, 80.0)
	assert.Contains(t, []byte{'A', 'B'}, result.Grade)
}

func TestSuitabilityBlends(t *testing.T) {
	state := metrics.NewAggregatorState("ep-1", 60, 720)

	for i := 0; i < 10; i++ {
		state.AddRecord(models.SuccessRecord("ep-1", 15.0), testAlpha)
	}

	result := ComputeScore(state, DefaultWeights())
	c := result.Components

	assert.InDelta(t, c.Latency*0.5+c.Jitter*0.3+c.PacketLoss*0.2, result.Suitability.Gaming, 1e-9)
	assert.InDelta(t, c.Consistency*0.4+c.Availability*0.3+c.PacketLoss*0.3, result.Suitability.Streaming, 1e-9)
	assert.InDelta(t, c.Latency*0.4+c.Jitter*0.3+c.PacketLoss*0.3, result.Suitability.VoIP, 1e-9)
}

func TestComputeScoreDoesNotMutateState(t *testing.T) {
	state := metrics.NewAggregatorState("ep-1", 60, 720)

	for i := 0; i < 10; i++ {
		state.AddRecord(models.SuccessRecord("ep-1", 25.0), testAlpha)
	}

	before := *state.Clone()

	first := ComputeScore(state, DefaultWeights())
	second := ComputeScore(state, DefaultWeights())

	assert.Equal(t, first, second)
	assert.Equal(t, before.CachedP50Short, state.CachedP50Short)
	assert.Equal(t, before.TotalSentShort, state.TotalSentShort)
}
