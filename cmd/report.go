package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/agdev-research/trials-cli/internal/model"
	"github.com/agdev-research/trials-cli/internal/report"
	"github.com/agdev-research/trials-cli/internal/store"
)

var (
	reportOutput string
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the cross-outcome comparison table from run history",
	Long: `Collects the latest successful run per configured outcome and formats
the comparison table (pooled effect, credible interval, heterogeneity)
as markdown or CSV for the external renderer.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		var results []model.OutcomeResult
		for _, outcome := range cfg.Data.Outcomes {
			runs, err := st.ListRuns(ctx, store.RunFilter{
				Outcome: outcome,
				Status:  model.RunStatusSucceeded,
				Limit:   1,
			})
			if err != nil {
				return eris.Wrapf(err, "report: list runs for %s", outcome)
			}
			if len(runs) == 0 {
				results = append(results, model.OutcomeResult{
					Outcome: outcome,
					Error:   "no successful run recorded",
				})
				continue
			}
			results = append(results, model.OutcomeResult{
				Outcome: outcome,
				RunID:   runs[0].ID,
				Result:  runs[0].Result,
			})
		}

		if reportFormat == "csv" {
			out := os.Stdout
			if reportOutput != "" {
				f, err := os.Create(reportOutput)
				if err != nil {
					return eris.Wrap(err, "report: create output")
				}
				defer f.Close() //nolint:errcheck
				out = f
			}
			return report.WriteCSV(out, report.BuildSummary(results))
		}

		md := report.FormatMarkdown(results)
		if reportOutput != "" {
			if err := os.WriteFile(reportOutput, []byte(md), 0o644); err != nil {
				return eris.Wrap(err, "report: write output")
			}
			fmt.Printf("report written to %s\n", reportOutput)
			return nil
		}
		fmt.Print(md)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportOutput, "output", "", "write to this path instead of stdout")
	reportCmd.Flags().StringVar(&reportFormat, "format", "markdown", "output format: markdown or csv")
	rootCmd.AddCommand(reportCmd)
}
