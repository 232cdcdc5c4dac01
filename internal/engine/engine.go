// Package engine adapts the pipeline to an external Bayesian
// meta-analysis sampler. The sampler is a black box subprocess: it
// receives the shaped model input plus sampler configuration and returns
// posterior draws, which this package condenses into summaries. Nothing
// here implements the hierarchical model itself.
package engine

import (
	"context"

	"github.com/agdev-research/trials-cli/internal/model"
)

// Engine fits one outcome's model input and returns posterior
// summaries. Implementations may take minutes to a day per call; callers
// bound them through ctx.
type Engine interface {
	Fit(ctx context.Context, req model.FitRequest) (*model.FitResult, error)
}

// Response is the wire format the external sampler writes to stdout:
// named parameter draws plus convergence diagnostics. Per-trial effects
// are keyed "theta[<group>]".
type Response struct {
	Draws       map[string][]float64 `json:"draws"`
	Diagnostics model.Diagnostics    `json:"diagnostics"`
}
