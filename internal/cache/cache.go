// Package cache memoizes fitted-model results on disk so that repeated
// pipeline runs with identical inputs skip the (potentially day-long)
// sampler invocation. The port is a plain key -> artifact interface so
// correctness tests can substitute an in-memory fake.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/agdev-research/trials-cli/internal/model"
)

// Key identifies one fitted model exactly: the outcome, the shaped
// input, and every sampler knob that can change the posterior. Any
// field differing between two runs means a different cache entry.
type Key struct {
	Outcome     string            `json:"outcome" yaml:"outcome"`
	Variant     model.Variant     `json:"variant" yaml:"variant"`
	Pooling     model.PoolingMode `json:"pooling" yaml:"pooling"`
	Effect      model.EffectType  `json:"effect" yaml:"effect"`
	Chains      int               `json:"chains" yaml:"chains"`
	Iterations  int               `json:"iterations" yaml:"iterations"`
	Warmup      int               `json:"warmup" yaml:"warmup"`
	AdaptDelta  float64           `json:"adapt_delta" yaml:"adapt_delta"`
	Seed        uint64            `json:"seed" yaml:"seed"`
	Covariates  []string          `json:"covariates,omitempty" yaml:"covariates,omitempty"`
	InputDigest string            `json:"input_digest" yaml:"input_digest"`
}

// KeyFor derives the cache key for a fit request. Covariates are sorted
// so that column order never splits the cache.
func KeyFor(req model.FitRequest, covariates []string) (Key, error) {
	raw, err := json.Marshal(req.Input)
	if err != nil {
		return Key{}, eris.Wrap(err, "cache: marshal input")
	}
	sum := sha256.Sum256(raw)

	covs := slices.Clone(covariates)
	slices.Sort(covs)

	variant := model.VariantAggregate
	if req.Input != nil {
		variant = req.Input.Variant
	}

	return Key{
		Outcome:     req.Outcome,
		Variant:     variant,
		Pooling:     req.Pooling,
		Effect:      req.Effect,
		Chains:      req.Sampler.Chains,
		Iterations:  req.Sampler.Iterations,
		Warmup:      req.Sampler.Warmup,
		AdaptDelta:  req.Sampler.AdaptDelta,
		Seed:        req.Sampler.Seed,
		Covariates:  covs,
		InputDigest: hex.EncodeToString(sum[:]),
	}, nil
}

// Digest returns the key's content address.
func (k Key) Digest() string {
	raw, _ := json.Marshal(k)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Equal reports whether two keys match field for field.
func (k Key) Equal(other Key) bool {
	return k.Outcome == other.Outcome &&
		k.Variant == other.Variant &&
		k.Pooling == other.Pooling &&
		k.Effect == other.Effect &&
		k.Chains == other.Chains &&
		k.Iterations == other.Iterations &&
		k.Warmup == other.Warmup &&
		k.AdaptDelta == other.AdaptDelta &&
		k.Seed == other.Seed &&
		slices.Equal(k.Covariates, other.Covariates) &&
		k.InputDigest == other.InputDigest
}

// Cache stores fitted results by key. Get returns ok=false on a miss; a
// stale or mismatched entry is a miss, never a hit.
type Cache interface {
	Get(ctx context.Context, key Key) (*model.FitResult, bool, error)
	Put(ctx context.Context, key Key, result *model.FitResult) error
}
