package engine

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agdev-research/trials-cli/internal/config"
	"github.com/agdev-research/trials-cli/internal/model"
)

func TestNewExternal_TimeoutDefault(t *testing.T) {
	e := NewExternal(config.EngineConfig{Command: "bhm-sample"})
	assert.Equal(t, 24*time.Hour, e.timeout)

	e = NewExternal(config.EngineConfig{Command: "bhm-sample", TimeoutMins: 30})
	assert.Equal(t, 30*time.Minute, e.timeout)
}

func TestExternalEngine_Fit(t *testing.T) {
	resp := Response{
		Draws: map[string][]float64{
			"mu":           flatDraws(0.4, 50),
			"tau":          flatDraws(0.2, 50),
			"i_squared":    flatDraws(0.3, 50),
			"theta[siaya]": flatDraws(0.5, 50),
		},
		Diagnostics: model.Diagnostics{Converged: true, MaxRhat: 1.0},
	}
	payload, err := json.Marshal(resp)
	require.NoError(t, err)

	// "echo <json>" stands in for the sampler binary; stdin is ignored.
	e := NewExternal(config.EngineConfig{
		Command:     "echo",
		Args:        []string{string(payload)},
		TimeoutMins: 1,
	})

	req := aggregateRequest()
	req.Sampler = model.SamplerConfig{Chains: 2, Iterations: 100, Warmup: 10, Seed: 1}

	result, err := e.Fit(context.Background(), req)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, result.Pooled.Mean, 1e-9)
	require.Len(t, result.Trials, 2)
	assert.True(t, result.Trials[1].Skipped)
}

func TestExternalEngine_CommandFails(t *testing.T) {
	e := NewExternal(config.EngineConfig{Command: "false", TimeoutMins: 1})

	_, err := e.Fit(context.Background(), aggregateRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "adopted_lime")
}

func TestExternalEngine_BadResponse(t *testing.T) {
	e := NewExternal(config.EngineConfig{
		Command:     "echo",
		Args:        []string{"not json"},
		TimeoutMins: 1,
	})

	_, err := e.Fit(context.Background(), aggregateRequest())
	require.Error(t, err)
}

func TestExternalEngine_CommandMissing(t *testing.T) {
	e := NewExternal(config.EngineConfig{Command: "no-such-sampler-binary", TimeoutMins: 1})

	_, err := e.Fit(context.Background(), aggregateRequest())
	require.Error(t, err)
}
