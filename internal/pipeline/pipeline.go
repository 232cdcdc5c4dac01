package pipeline

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agdev-research/trials-cli/internal/cache"
	"github.com/agdev-research/trials-cli/internal/config"
	"github.com/agdev-research/trials-cli/internal/dataset"
	"github.com/agdev-research/trials-cli/internal/engine"
	"github.com/agdev-research/trials-cli/internal/model"
	"github.com/agdev-research/trials-cli/internal/store"
)

// Pipeline wires the reshaping stages to the engine, cache, and run
// store. Each outcome runs through a fresh instantiation of the stages;
// nothing is shared between outcome runs except these read-only
// collaborators.
type Pipeline struct {
	cfg    *config.Config
	store  store.Store
	engine engine.Engine
	cache  cache.Cache
}

// New creates a Pipeline with all dependencies.
func New(cfg *config.Config, st store.Store, eng engine.Engine, c cache.Cache) *Pipeline {
	return &Pipeline{cfg: cfg, store: st, engine: eng, cache: c}
}

// RunOutcome fits one outcome end to end: shape input, consult the
// cache, invoke the engine on a miss, record the run. A returned error
// means this outcome failed; the raw table is untouched either way.
func (p *Pipeline) RunOutcome(ctx context.Context, tbl *dataset.Table, outcome string) (*model.OutcomeResult, error) {
	log := zap.L().With(zap.String("outcome", outcome))

	variant := model.Variant(p.cfg.Fit.Variant)
	pooling := model.PoolingMode(p.cfg.Fit.Pooling)
	if !pooling.Valid() {
		return nil, eris.Errorf("pipeline: invalid pooling mode %q", p.cfg.Fit.Pooling)
	}
	builder, err := BuilderFor(variant)
	if err != nil {
		return nil, err
	}

	run, err := p.store.CreateRun(ctx, outcome, variant, pooling)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}
	result := &model.OutcomeResult{Outcome: outcome, RunID: run.ID}

	fail := func(cause error) (*model.OutcomeResult, error) {
		if storeErr := p.store.FailRun(ctx, run.ID, cause.Error()); storeErr != nil {
			log.Warn("pipeline: failed to record run failure", zap.Error(storeErr))
		}
		result.Error = cause.Error()
		return result, cause
	}

	if err := p.store.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning); err != nil {
		log.Warn("pipeline: failed to update run status", zap.Error(err))
	}

	spec := InputSpec{
		Keys: Keys{
			Group:     p.cfg.Data.GroupKey,
			Treatment: p.cfg.Data.TreatmentKey,
			Outcome:   outcome,
		},
		Exclude:      p.cfg.Data.Outcomes,
		TrialOrder:   p.cfg.Data.TrialOrder,
		TestFraction: p.cfg.Split.TestFraction,
		Seed:         p.cfg.Split.Seed,
	}

	input, warnings, err := builder.Build(tbl, spec)
	if err != nil {
		return fail(eris.Wrapf(err, "pipeline: build %s input", builder.Name()))
	}
	for _, w := range warnings {
		result.Warnings = append(result.Warnings, w.Error())
	}

	req := model.FitRequest{
		Outcome: outcome,
		Effect:  model.EffectLogOddsRatio,
		Pooling: pooling,
		Sampler: model.SamplerConfig{
			Chains:     p.cfg.Sampler.Chains,
			Iterations: p.cfg.Sampler.Iterations,
			Warmup:     p.cfg.Sampler.Warmup,
			AdaptDelta: p.cfg.Sampler.AdaptDelta,
			Seed:       p.cfg.Sampler.Seed,
		},
		Input: input,
	}

	var covariates []string
	if len(input.Individual) > 0 && len(input.Columns) > 4 {
		covariates = input.Columns[4:]
	}
	key, err := cache.KeyFor(req, covariates)
	if err != nil {
		return fail(err)
	}

	fit, hit, err := p.cache.Get(ctx, key)
	if err != nil {
		return fail(eris.Wrap(err, "pipeline: cache lookup"))
	}
	if hit {
		log.Info("pipeline: cache hit, skipping sampler", zap.String("digest", key.Digest()))
		fit.FromCache = true
	} else {
		fit, err = p.engine.Fit(ctx, req)
		if err != nil {
			return fail(eris.Wrap(err, "pipeline: fit"))
		}
		if err := p.cache.Put(ctx, key, fit); err != nil {
			log.Warn("pipeline: failed to cache result", zap.Error(err))
		}
	}

	if err := p.store.CompleteRun(ctx, run.ID, fit); err != nil {
		log.Warn("pipeline: failed to record run result", zap.Error(err))
	}

	result.Result = fit
	return result, nil
}

// RunAll fits every outcome. Outcomes are independent: one failure is
// recorded on its OutcomeResult and never blocks siblings. Concurrency
// defaults to 1, which is the plain synchronous pipeline.
func (p *Pipeline) RunAll(ctx context.Context, tbl *dataset.Table, outcomes []string) []model.OutcomeResult {
	concurrency := p.cfg.Fit.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var mu sync.Mutex
	results := make([]model.OutcomeResult, len(outcomes))

	for i, outcome := range outcomes {
		g.Go(func() error {
			res, err := p.RunOutcome(gCtx, tbl, outcome)
			if err != nil {
				zap.L().Error("pipeline: outcome failed",
					zap.String("outcome", outcome),
					zap.Error(err),
				)
				if res == nil {
					res = &model.OutcomeResult{Outcome: outcome, Error: err.Error()}
				}
			}
			mu.Lock()
			results[i] = *res
			mu.Unlock()
			return nil // don't abort batch on individual failure
		})
	}
	_ = g.Wait()

	return results
}
