package model

// PoolingMode selects how much information trials share in the
// hierarchical model.
type PoolingMode string

const (
	PoolingNone    PoolingMode = "none"
	PoolingFull    PoolingMode = "full"
	PoolingPartial PoolingMode = "partial"
)

// Valid reports whether the mode is one of the three supported values.
func (m PoolingMode) Valid() bool {
	switch m {
	case PoolingNone, PoolingFull, PoolingPartial:
		return true
	}
	return false
}

// EffectType tags the effect scale requested from the engine.
type EffectType string

// EffectLogOddsRatio is the only effect type the pipeline emits.
const EffectLogOddsRatio EffectType = "log_odds_ratio"

// SamplerConfig is passed through to the external engine unchanged. The
// pipeline makes no assumptions about how the engine schedules chains.
type SamplerConfig struct {
	Chains     int     `json:"chains" yaml:"chains"`
	Iterations int     `json:"iterations" yaml:"iterations"`
	Warmup     int     `json:"warmup" yaml:"warmup"`
	AdaptDelta float64 `json:"adapt_delta" yaml:"adapt_delta"`
	Seed       uint64  `json:"seed" yaml:"seed"`
}

// FitRequest is the full contract handed to a meta-analysis engine.
type FitRequest struct {
	Outcome string        `json:"outcome"`
	Effect  EffectType    `json:"effect"`
	Pooling PoolingMode   `json:"pooling"`
	Sampler SamplerConfig `json:"sampler"`
	Input   *ModelInput   `json:"input"`
}

// PosteriorSummary condenses one parameter's posterior draws.
type PosteriorSummary struct {
	Mean   float64 `json:"mean"`
	SD     float64 `json:"sd"`
	Q2_5   float64 `json:"q2_5"`
	Median float64 `json:"median"`
	Q97_5  float64 `json:"q97_5"`
}

// TrialEffect is the per-trial posterior effect. Skipped is set for
// trials that cannot contribute a contrast (empty arm).
type TrialEffect struct {
	Group   string           `json:"group"`
	Effect  PosteriorSummary `json:"effect"`
	Skipped bool             `json:"skipped,omitempty"`
	Reason  string           `json:"reason,omitempty"`
}

// Diagnostics carries convergence information reported by the engine.
type Diagnostics struct {
	Divergences int     `json:"divergences"`
	MaxRhat     float64 `json:"max_rhat"`
	Converged   bool    `json:"converged"`
}

// FitResult is the engine's answer for one outcome: per-trial effects,
// the pooled hyper-mean, and heterogeneity summaries.
type FitResult struct {
	Outcome     string           `json:"outcome"`
	Effect      EffectType       `json:"effect"`
	Pooling     PoolingMode      `json:"pooling"`
	Trials      []TrialEffect    `json:"trials"`
	Pooled      PosteriorSummary `json:"pooled"`
	Tau         PosteriorSummary `json:"tau"`
	ISquared    PosteriorSummary `json:"i_squared"`
	Diagnostics Diagnostics      `json:"diagnostics"`
	ElapsedMS   int64            `json:"elapsed_ms"`
	FromCache   bool             `json:"from_cache,omitempty"`
}
