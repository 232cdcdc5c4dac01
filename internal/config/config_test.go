package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "site", cfg.Data.GroupKey)
	assert.Equal(t, "sms", cfg.Data.TreatmentKey)
	assert.Len(t, cfg.Data.TrialOrder, 6)
	assert.Contains(t, cfg.Data.NATokens, "NA")
	assert.Equal(t, 4, cfg.Sampler.Chains)
	assert.Equal(t, 10000, cfg.Sampler.Iterations)
	assert.Equal(t, 2000, cfg.Sampler.Warmup)
	assert.InDelta(t, 0.95, cfg.Sampler.AdaptDelta, 0.001)
	assert.EqualValues(t, 42, cfg.Sampler.Seed)
	assert.InDelta(t, 0.2, cfg.Split.TestFraction, 0.001)
	assert.Equal(t, "partial", cfg.Fit.Pooling)
	assert.Equal(t, "aggregate", cfg.Fit.Variant)
	assert.Equal(t, 1, cfg.Fit.Concurrency)
	assert.Equal(t, "bhm-sample", cfg.Engine.Command)
	assert.Equal(t, 1440, cfg.Engine.TimeoutMins)
	assert.Equal(t, ".trials-cache", cfg.Cache.Dir)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/trials
log:
  level: debug
  format: console
data:
  group_key: trial
  outcomes:
    - adopted_lime
sampler:
  iterations: 1000
  chains: 2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/trials", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "trial", cfg.Data.GroupKey)
	assert.Equal(t, []string{"adopted_lime"}, cfg.Data.Outcomes)
	assert.Equal(t, 1000, cfg.Sampler.Iterations)
	assert.Equal(t, 2, cfg.Sampler.Chains)
	// Untouched defaults survive a partial file.
	assert.Equal(t, 2000, cfg.Sampler.Warmup)
	assert.Equal(t, "sms", cfg.Data.TreatmentKey)
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("TRIALS_LOG_LEVEL", "warn")
	t.Setenv("TRIALS_SAMPLER_CHAINS", "8")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 8, cfg.Sampler.Chains)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "not-a-level", Format: "json"})
	require.Error(t, err)
}
