package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agdev-research/trials-cli/internal/model"
)

func TestSummarize(t *testing.T) {
	draws := make([]float64, 0, 1001)
	for i := 0; i <= 1000; i++ {
		draws = append(draws, float64(i)/1000)
	}

	s, err := Summarize(draws)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, s.Mean, 1e-9)
	assert.InDelta(t, 0.5, s.Median, 1e-3)
	assert.InDelta(t, 0.025, s.Q2_5, 1e-3)
	assert.InDelta(t, 0.975, s.Q97_5, 1e-3)
	assert.Greater(t, s.SD, 0.0)
	assert.Less(t, s.Q2_5, s.Median)
	assert.Less(t, s.Median, s.Q97_5)
}

func TestSummarize_Empty(t *testing.T) {
	_, err := Summarize(nil)
	require.Error(t, err)
}

func TestSummarize_DoesNotMutateInput(t *testing.T) {
	draws := []float64{3, 1, 2}
	_, err := Summarize(draws)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, draws)
}

func flatDraws(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func aggregateRequest() model.FitRequest {
	return model.FitRequest{
		Outcome: "adopted_lime",
		Effect:  model.EffectLogOddsRatio,
		Pooling: model.PoolingPartial,
		Input: &model.ModelInput{
			Variant: model.VariantAggregate,
			Aggregate: []model.AggregateRecord{
				{Group: "siaya", A: 12, B: 8, C: 5, D: 15, N1: 20, N2: 20},
				{Group: "busia", A: 30, B: 10, N1: 40, Warning: "empty control arm"},
			},
		},
	}
}

func TestBuildResult(t *testing.T) {
	req := aggregateRequest()
	resp := &Response{
		Draws: map[string][]float64{
			"mu":           flatDraws(0.4, 100),
			"tau":          flatDraws(0.2, 100),
			"i_squared":    flatDraws(0.3, 100),
			"theta[siaya]": flatDraws(0.5, 100),
		},
		Diagnostics: model.Diagnostics{Converged: true, MaxRhat: 1.01},
	}

	result, err := BuildResult(req, resp, 1500*time.Millisecond)
	require.NoError(t, err)

	assert.Equal(t, "adopted_lime", result.Outcome)
	assert.Equal(t, model.PoolingPartial, result.Pooling)
	assert.InDelta(t, 0.4, result.Pooled.Mean, 1e-9)
	assert.InDelta(t, 0.2, result.Tau.Mean, 1e-9)
	assert.InDelta(t, 0.3, result.ISquared.Mean, 1e-9)
	assert.Equal(t, int64(1500), result.ElapsedMS)
	assert.True(t, result.Diagnostics.Converged)

	require.Len(t, result.Trials, 2)
	assert.Equal(t, "siaya", result.Trials[0].Group)
	assert.False(t, result.Trials[0].Skipped)
	assert.InDelta(t, 0.5, result.Trials[0].Effect.Mean, 1e-9)

	// The empty-arm trial is skipped, never looked up in the draws.
	assert.Equal(t, "busia", result.Trials[1].Group)
	assert.True(t, result.Trials[1].Skipped)
	assert.NotEmpty(t, result.Trials[1].Reason)
}

func TestBuildResult_IndividualEmptyArmTrialSkipped(t *testing.T) {
	// A sampler given degenerate individual-level data omits the trial's
	// theta draws; the result must flag the trial, not fail the outcome.
	req := model.FitRequest{
		Outcome: "adopted_lime",
		Effect:  model.EffectLogOddsRatio,
		Pooling: model.PoolingPartial,
		Input: &model.ModelInput{
			Variant: model.VariantIndividual,
			Individual: []model.IndividualRecord{
				{Group: "siaya", Treatment: 1, Outcome: 1},
				{Group: "siaya", Treatment: 0, Outcome: 0},
				{Group: "busia", Treatment: 1, Outcome: 1},
				{Group: "busia", Treatment: 1, Outcome: 0},
			},
		},
	}
	resp := &Response{
		Draws: map[string][]float64{
			"mu":           flatDraws(0.4, 100),
			"tau":          flatDraws(0.2, 100),
			"i_squared":    flatDraws(0.3, 100),
			"theta[siaya]": flatDraws(0.5, 100),
			// no theta[busia]: its control arm is empty
		},
		Diagnostics: model.Diagnostics{Converged: true, MaxRhat: 1.0},
	}

	result, err := BuildResult(req, resp, time.Second)
	require.NoError(t, err)
	require.Len(t, result.Trials, 2)
	assert.False(t, result.Trials[0].Skipped)
	assert.True(t, result.Trials[1].Skipped)
	assert.NotEmpty(t, result.Trials[1].Reason)
}

func TestBuildResult_MissingTrialDraws(t *testing.T) {
	req := aggregateRequest()
	resp := &Response{
		Draws: map[string][]float64{
			"mu":        flatDraws(0.4, 10),
			"tau":       flatDraws(0.2, 10),
			"i_squared": flatDraws(0.3, 10),
			// theta[siaya] absent
		},
	}

	_, err := BuildResult(req, resp, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "siaya")
}

func TestBuildResult_MissingPooledDraws(t *testing.T) {
	req := aggregateRequest()
	resp := &Response{Draws: map[string][]float64{}}

	_, err := BuildResult(req, resp, time.Second)
	require.Error(t, err)
}
