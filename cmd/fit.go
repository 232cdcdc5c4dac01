package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agdev-research/trials-cli/internal/pipeline"
)

var (
	fitInput       string
	fitOutcome     string
	fitPooling     string
	fitVariant     string
	fitOffline     bool
	fitNoCache     bool
	fitConcurrency int
	fitOutput      string
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit the hierarchical model for one or all outcomes",
	Long: `Shapes the raw table per outcome, checks the fitted-model cache, and
invokes the external sampler on misses. Outcomes are independent: one
failure never blocks the others.

Examples:
  # All configured outcomes, partial pooling, external sampler
  trials-cli fit --input pooled.csv

  # One outcome offline (deterministic stub sampler, no binary needed)
  trials-cli fit --input pooled.csv --outcome adopted_lime --offline

  # Individual-level variant, ignoring the cache
  trials-cli fit --input pooled.csv --variant individual --no-cache`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		// Flag overrides on top of config.
		if fitPooling != "" {
			cfg.Fit.Pooling = fitPooling
		}
		if fitVariant != "" {
			cfg.Fit.Variant = fitVariant
		}
		if fitConcurrency > 0 {
			cfg.Fit.Concurrency = fitConcurrency
		}
		if fitNoCache {
			cfg.Cache.Disabled = true
		}

		tbl, err := loadTable(fitInput)
		if err != nil {
			return eris.Wrap(err, "fit: load table")
		}

		st, err := initStore(ctx)
		if err != nil {
			return eris.Wrap(err, "fit: init store")
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "fit: migrate store")
		}

		c, err := initCache()
		if err != nil {
			return eris.Wrap(err, "fit: init cache")
		}

		p := pipeline.New(cfg, st, initEngine(fitOffline), c)

		outcomes := resolveOutcomes(fitOutcome)
		if len(outcomes) == 0 {
			return eris.New("fit: no outcome configured")
		}

		results := p.RunAll(ctx, tbl, outcomes)

		var succeeded, failed int
		for _, res := range results {
			if res.Error != "" {
				failed++
				fmt.Fprintf(os.Stderr, "FAIL %s: %s\n", res.Outcome, res.Error)
				continue
			}
			succeeded++
			cached := ""
			if res.Result.FromCache {
				cached = " (cached)"
			}
			fmt.Printf("OK   %s: pooled log OR %.3f [%.3f, %.3f]%s\n",
				res.Outcome, res.Result.Pooled.Mean,
				res.Result.Pooled.Q2_5, res.Result.Pooled.Q97_5, cached)
			for _, warning := range res.Warnings {
				fmt.Fprintf(os.Stderr, "warning: %s: %s\n", res.Outcome, warning)
			}
		}
		zap.L().Info("fit: batch finished",
			zap.Int("succeeded", succeeded),
			zap.Int("failed", failed),
		)

		if fitOutput != "" {
			raw, err := json.MarshalIndent(results, "", "  ")
			if err != nil {
				return eris.Wrap(err, "fit: marshal results")
			}
			if err := os.WriteFile(fitOutput, raw, 0o644); err != nil {
				return eris.Wrap(err, "fit: write results")
			}
			fmt.Printf("results written to %s\n", fitOutput)
		}

		if failed == len(outcomes) {
			return eris.New("fit: all outcomes failed")
		}
		return nil
	},
}

func init() {
	fitCmd.Flags().StringVar(&fitInput, "input", "", "raw trial table (csv or xlsx)")
	fitCmd.Flags().StringVar(&fitOutcome, "outcome", "", "single outcome column (default: all configured)")
	fitCmd.Flags().StringVar(&fitPooling, "pooling", "", "pooling mode: none, full, or partial")
	fitCmd.Flags().StringVar(&fitVariant, "variant", "", "model input variant: aggregate, individual, or covariate")
	fitCmd.Flags().BoolVar(&fitOffline, "offline", false, "use the deterministic stub sampler")
	fitCmd.Flags().BoolVar(&fitNoCache, "no-cache", false, "skip the fitted-model cache")
	fitCmd.Flags().IntVar(&fitConcurrency, "concurrency", 0, "outcomes fitted in parallel (default 1)")
	fitCmd.Flags().StringVar(&fitOutput, "output", "", "write full results JSON to this path")
	rootCmd.AddCommand(fitCmd)
}
