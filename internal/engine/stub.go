package engine

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/rotisserie/eris"

	"github.com/agdev-research/trials-cli/internal/model"
)

// StubEngine is a deterministic offline stand-in for the real sampler.
// It fabricates posterior draws around the empirical per-trial log-odds
// ratios (continuity-corrected) so that the full fit/cache/report path
// can run without the external binary. Its numbers are indicative only.
type StubEngine struct{}

// maxStubDraws keeps offline runs light regardless of configured
// iteration counts.
const maxStubDraws = 4000

func (StubEngine) Fit(_ context.Context, req model.FitRequest) (*model.FitResult, error) {
	start := time.Now()

	counts, err := tally(req.Input)
	if err != nil {
		return nil, err
	}

	n := req.Sampler.Chains * (req.Sampler.Iterations - req.Sampler.Warmup)
	if n <= 0 {
		n = 1000
	}
	if n > maxStubDraws {
		n = maxStubDraws
	}

	rng := rand.New(rand.NewPCG(req.Sampler.Seed, 0x747269616c73))

	resp := &Response{
		Draws:       make(map[string][]float64),
		Diagnostics: model.Diagnostics{Converged: true, MaxRhat: 1.0},
	}

	var effects, weights []float64
	for _, c := range counts {
		if c.rec.EmptyArm() {
			continue
		}
		logOR := math.Log((float64(c.rec.A) + 0.5) * (float64(c.rec.D) + 0.5) /
			((float64(c.rec.B) + 0.5) * (float64(c.rec.C) + 0.5)))
		se := math.Sqrt(1/(float64(c.rec.A)+0.5) + 1/(float64(c.rec.B)+0.5) +
			1/(float64(c.rec.C)+0.5) + 1/(float64(c.rec.D)+0.5))
		resp.Draws[thetaKey(c.rec.Group)] = normalDraws(rng, n, logOR, se)
		effects = append(effects, logOR)
		weights = append(weights, 1/(se*se))
	}
	if len(effects) == 0 {
		return nil, eris.Errorf("engine: outcome %q has no trial with both arms populated", req.Outcome)
	}

	var wsum, esum float64
	for i, e := range effects {
		wsum += weights[i]
		esum += e * weights[i]
	}
	center := esum / wsum
	spread := spreadOf(effects, center)

	resp.Draws["mu"] = normalDraws(rng, n, center, 1/math.Sqrt(wsum))
	resp.Draws["tau"] = absDraws(rng, n, spread, spread/4+0.05)
	resp.Draws["i_squared"] = boundedDraws(rng, n, spread/(spread+0.5), 0.1)

	return BuildResult(req, resp, time.Since(start))
}

type tallied struct {
	rec model.AggregateRecord
}

// tally reduces either input shape to per-trial 2x2 counts, preserving
// input order.
func tally(input *model.ModelInput) ([]tallied, error) {
	if input == nil {
		return nil, eris.New("engine: nil model input")
	}
	if len(input.Aggregate) > 0 {
		out := make([]tallied, 0, len(input.Aggregate))
		for _, rec := range input.Aggregate {
			out = append(out, tallied{rec: rec})
		}
		return out, nil
	}
	if len(input.Individual) == 0 {
		return nil, eris.New("engine: empty model input")
	}

	byGroup := make(map[string]*model.AggregateRecord)
	var order []string
	for _, rec := range input.Individual {
		agg, ok := byGroup[rec.Group]
		if !ok {
			agg = &model.AggregateRecord{Group: rec.Group}
			byGroup[rec.Group] = agg
			order = append(order, rec.Group)
		}
		switch {
		case rec.Treatment == 1 && rec.Outcome == 1:
			agg.A++
		case rec.Treatment == 1:
			agg.B++
		case rec.Outcome == 1:
			agg.C++
		default:
			agg.D++
		}
	}
	out := make([]tallied, 0, len(order))
	for _, g := range order {
		agg := byGroup[g]
		agg.N1 = agg.A + agg.B
		agg.N2 = agg.C + agg.D
		out = append(out, tallied{rec: *agg})
	}
	return out, nil
}

func normalDraws(rng *rand.Rand, n int, mean, sd float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = mean + sd*rng.NormFloat64()
	}
	return out
}

func absDraws(rng *rand.Rand, n int, mean, sd float64) []float64 {
	out := normalDraws(rng, n, mean, sd)
	for i := range out {
		out[i] = math.Abs(out[i])
	}
	return out
}

func boundedDraws(rng *rand.Rand, n int, mean, sd float64) []float64 {
	out := normalDraws(rng, n, mean, sd)
	for i := range out {
		out[i] = math.Min(math.Max(out[i], 0), 1)
	}
	return out
}

func spreadOf(xs []float64, center float64) float64 {
	if len(xs) < 2 {
		return 0.1
	}
	var ss float64
	for _, x := range xs {
		ss += (x - center) * (x - center)
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}
