package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/agdev-research/trials-cli/internal/config"
	"github.com/agdev-research/trials-cli/internal/model"
)

// ExternalEngine invokes the configured sampler binary. The request is
// written as JSON to the subprocess stdin and the Response is read from
// its stdout. Chain count and iteration settings pass through in the
// request untouched; how the sampler parallelizes is its own business.
type ExternalEngine struct {
	command string
	args    []string
	timeout time.Duration
}

// NewExternal builds an ExternalEngine from configuration.
func NewExternal(cfg config.EngineConfig) *ExternalEngine {
	timeout := time.Duration(cfg.TimeoutMins) * time.Minute
	if timeout <= 0 {
		timeout = 24 * time.Hour
	}
	return &ExternalEngine{command: cfg.Command, args: cfg.Args, timeout: timeout}
}

// Fit runs the sampler subprocess for one outcome.
func (e *ExternalEngine) Fit(ctx context.Context, req model.FitRequest) (*model.FitResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "engine: marshal request")
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.command, e.args...)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	zap.L().Info("engine: invoking sampler",
		zap.String("command", e.command),
		zap.String("outcome", req.Outcome),
		zap.String("pooling", string(req.Pooling)),
		zap.Int("chains", req.Sampler.Chains),
		zap.Int("iterations", req.Sampler.Iterations),
	)

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, eris.Wrapf(ctx.Err(), "engine: sampler timed out for outcome %q", req.Outcome)
		}
		return nil, eris.Wrapf(err, "engine: sampler failed for outcome %q: %s", req.Outcome, stderr.String())
	}
	elapsed := time.Since(start)

	var resp Response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, eris.Wrap(err, "engine: decode sampler response")
	}

	result, err := BuildResult(req, &resp, elapsed)
	if err != nil {
		return nil, err
	}

	if !result.Diagnostics.Converged {
		zap.L().Warn("engine: sampler reported non-convergence",
			zap.String("outcome", req.Outcome),
			zap.Float64("max_rhat", result.Diagnostics.MaxRhat),
			zap.Int("divergences", result.Diagnostics.Divergences),
		)
	}

	zap.L().Info("engine: sampler finished",
		zap.String("outcome", req.Outcome),
		zap.Duration("elapsed", elapsed),
	)
	return result, nil
}
