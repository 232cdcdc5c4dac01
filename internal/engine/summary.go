package engine

import (
	"fmt"
	"slices"
	"time"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat"

	"github.com/agdev-research/trials-cli/internal/model"
)

// Summarize condenses one parameter's posterior draws into mean, sd, and
// the 2.5/50/97.5 percent quantiles.
func Summarize(draws []float64) (model.PosteriorSummary, error) {
	if len(draws) == 0 {
		return model.PosteriorSummary{}, eris.New("engine: no draws to summarize")
	}
	sorted := slices.Clone(draws)
	slices.Sort(sorted)

	return model.PosteriorSummary{
		Mean:   stat.Mean(sorted, nil),
		SD:     stat.StdDev(sorted, nil),
		Q2_5:   stat.Quantile(0.025, stat.Empirical, sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Q97_5:  stat.Quantile(0.975, stat.Empirical, sorted, nil),
	}, nil
}

// BuildResult turns a sampler response into a FitResult for the request.
// Trials flagged with an empty arm are marked skipped rather than looked
// up in the draws; any other trial without draws is an engine error.
func BuildResult(req model.FitRequest, resp *Response, elapsed time.Duration) (*model.FitResult, error) {
	result := &model.FitResult{
		Outcome:     req.Outcome,
		Effect:      req.Effect,
		Pooling:     req.Pooling,
		Diagnostics: resp.Diagnostics,
		ElapsedMS:   elapsed.Milliseconds(),
	}

	var err error
	if result.Pooled, err = Summarize(resp.Draws["mu"]); err != nil {
		return nil, eris.Wrap(err, "engine: pooled effect")
	}
	if result.Tau, err = Summarize(resp.Draws["tau"]); err != nil {
		return nil, eris.Wrap(err, "engine: heterogeneity tau")
	}
	if result.ISquared, err = Summarize(resp.Draws["i_squared"]); err != nil {
		return nil, eris.Wrap(err, "engine: i_squared")
	}

	for _, trial := range trialsOf(req.Input) {
		effect := model.TrialEffect{Group: trial.group}
		if trial.emptyArm {
			effect.Skipped = true
			effect.Reason = "empty treatment or control arm"
			result.Trials = append(result.Trials, effect)
			continue
		}
		draws, ok := resp.Draws[thetaKey(trial.group)]
		if !ok {
			return nil, eris.Errorf("engine: no draws for trial %q", trial.group)
		}
		if effect.Effect, err = Summarize(draws); err != nil {
			return nil, eris.Wrapf(err, "engine: trial %q", trial.group)
		}
		result.Trials = append(result.Trials, effect)
	}

	return result, nil
}

func thetaKey(group string) string {
	return fmt.Sprintf("theta[%s]", group)
}

type trialRef struct {
	group    string
	emptyArm bool
}

// trialsOf lists the input's trials in table order with their arm
// status. Individual-level inputs are reduced to per-trial 2x2 counts
// so an all-treatment or all-control trial is flagged the same way an
// aggregate row with a zero arm is.
func trialsOf(input *model.ModelInput) []trialRef {
	counts, err := tally(input)
	if err != nil {
		return nil
	}
	out := make([]trialRef, 0, len(counts))
	for _, c := range counts {
		out = append(out, trialRef{group: c.rec.Group, emptyArm: c.rec.EmptyArm()})
	}
	return out
}
