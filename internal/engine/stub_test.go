package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agdev-research/trials-cli/internal/model"
)

func stubRequest() model.FitRequest {
	return model.FitRequest{
		Outcome: "adopted_lime",
		Effect:  model.EffectLogOddsRatio,
		Pooling: model.PoolingPartial,
		Sampler: model.SamplerConfig{Chains: 2, Iterations: 1000, Warmup: 200, Seed: 42},
		Input: &model.ModelInput{
			Variant: model.VariantAggregate,
			Aggregate: []model.AggregateRecord{
				{Group: "siaya", A: 12, B: 8, C: 5, D: 15, N1: 20, N2: 20},
				{Group: "kakamega", A: 40, B: 60, C: 30, D: 70, N1: 100, N2: 100},
			},
		},
	}
}

func TestStubEngine_Deterministic(t *testing.T) {
	req := stubRequest()

	first, err := StubEngine{}.Fit(context.Background(), req)
	require.NoError(t, err)
	second, err := StubEngine{}.Fit(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Pooled, second.Pooled)
	assert.Equal(t, first.Tau, second.Tau)
	assert.Equal(t, first.Trials, second.Trials)
	assert.True(t, first.Diagnostics.Converged)
	require.Len(t, first.Trials, 2)
	for _, trial := range first.Trials {
		assert.False(t, trial.Skipped)
	}
}

func TestStubEngine_SeedChangesDraws(t *testing.T) {
	req := stubRequest()
	first, err := StubEngine{}.Fit(context.Background(), req)
	require.NoError(t, err)

	req.Sampler.Seed = 43
	second, err := StubEngine{}.Fit(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, first.Pooled, second.Pooled)
}

func TestStubEngine_SkipsEmptyArmTrial(t *testing.T) {
	req := stubRequest()
	req.Input.Aggregate = append(req.Input.Aggregate,
		model.AggregateRecord{Group: "busia", A: 30, B: 10, N1: 40, Warning: "empty control arm"})

	result, err := StubEngine{}.Fit(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, result.Trials, 3)
	assert.True(t, result.Trials[2].Skipped)
	assert.Equal(t, "busia", result.Trials[2].Group)
}

func TestStubEngine_AllArmsEmpty(t *testing.T) {
	req := stubRequest()
	req.Input.Aggregate = []model.AggregateRecord{
		{Group: "busia", A: 30, B: 10, N1: 40},
	}

	_, err := StubEngine{}.Fit(context.Background(), req)
	require.Error(t, err)
}

func TestStubEngine_IndividualInput(t *testing.T) {
	var records []model.IndividualRecord
	add := func(group string, treatment, outcome, count int) {
		for i := 0; i < count; i++ {
			records = append(records, model.IndividualRecord{Group: group, Treatment: treatment, Outcome: outcome})
		}
	}
	add("siaya", 1, 1, 12)
	add("siaya", 1, 0, 8)
	add("siaya", 0, 1, 5)
	add("siaya", 0, 0, 15)
	add("vihiga", 1, 1, 20)
	add("vihiga", 1, 0, 30)
	add("vihiga", 0, 1, 10)
	add("vihiga", 0, 0, 40)

	req := stubRequest()
	req.Input = &model.ModelInput{Variant: model.VariantIndividual, Individual: records}

	result, err := StubEngine{}.Fit(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Trials, 2)
	assert.Equal(t, "siaya", result.Trials[0].Group)
	assert.Equal(t, "vihiga", result.Trials[1].Group)
}

func TestStubEngine_IndividualEmptyArmTrialSkipped(t *testing.T) {
	var records []model.IndividualRecord
	add := func(group string, treatment, outcome, count int) {
		for i := 0; i < count; i++ {
			records = append(records, model.IndividualRecord{Group: group, Treatment: treatment, Outcome: outcome})
		}
	}
	add("siaya", 1, 1, 12)
	add("siaya", 1, 0, 8)
	add("siaya", 0, 1, 5)
	add("siaya", 0, 0, 15)
	// busia enrolled treated subjects only; no control arm exists.
	add("busia", 1, 1, 30)
	add("busia", 1, 0, 10)

	req := stubRequest()
	req.Input = &model.ModelInput{Variant: model.VariantIndividual, Individual: records}

	result, err := StubEngine{}.Fit(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, result.Trials, 2)
	assert.Equal(t, "siaya", result.Trials[0].Group)
	assert.False(t, result.Trials[0].Skipped)
	assert.Equal(t, "busia", result.Trials[1].Group)
	assert.True(t, result.Trials[1].Skipped)
	assert.NotEmpty(t, result.Trials[1].Reason)
}

func TestStubEngine_EmptyInput(t *testing.T) {
	req := stubRequest()
	req.Input = &model.ModelInput{Variant: model.VariantAggregate}
	_, err := StubEngine{}.Fit(context.Background(), req)
	require.Error(t, err)

	req.Input = nil
	_, err = StubEngine{}.Fit(context.Background(), req)
	require.Error(t, err)
}

func TestTally_IndividualMatchesCounts(t *testing.T) {
	input := &model.ModelInput{
		Variant: model.VariantIndividual,
		Individual: []model.IndividualRecord{
			{Group: "siaya", Treatment: 1, Outcome: 1},
			{Group: "siaya", Treatment: 1, Outcome: 0},
			{Group: "siaya", Treatment: 0, Outcome: 1},
			{Group: "siaya", Treatment: 0, Outcome: 0},
			{Group: "siaya", Treatment: 0, Outcome: 0},
		},
	}

	counts, err := tally(input)
	require.NoError(t, err)
	require.Len(t, counts, 1)

	rec := counts[0].rec
	assert.Equal(t, 1, rec.A)
	assert.Equal(t, 1, rec.B)
	assert.Equal(t, 1, rec.C)
	assert.Equal(t, 2, rec.D)
	assert.Equal(t, 2, rec.N1)
	assert.Equal(t, 3, rec.N2)
}
