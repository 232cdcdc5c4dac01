package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agdev-research/trials-cli/internal/model"
	"github.com/agdev-research/trials-cli/internal/pipeline"
)

var (
	prepareInput   string
	prepareOutcome string
	prepareFormat  string
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Reshape the raw trial table without fitting",
	Long: `Runs the column filter, individual-record builder, and aggregator for one
outcome and prints the resulting tables. Useful for eyeballing the 2x2
contingency layout and empty-arm flags before a day-long fit.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		tbl, err := loadTable(prepareInput)
		if err != nil {
			return eris.Wrap(err, "prepare: load table")
		}
		zap.L().Info("loaded table",
			zap.Int("rows", tbl.Len()),
			zap.Int("columns", len(tbl.Columns())),
		)

		outcomes := resolveOutcomes(prepareOutcome)
		if len(outcomes) == 0 {
			return eris.New("prepare: no outcome configured")
		}
		outcome := outcomes[0]

		usable := pipeline.SelectUsableColumns(tbl, cfg.Data.GroupKey)

		keys := pipeline.Keys{
			Group:     cfg.Data.GroupKey,
			Treatment: cfg.Data.TreatmentKey,
			Outcome:   outcome,
		}
		records, err := pipeline.BuildIndividual(tbl, keys, nil, cfg.Split.TestFraction, cfg.Split.Seed)
		if err != nil {
			return eris.Wrap(err, "prepare: build individual")
		}
		aggs, warnings := pipeline.Aggregate(records, cfg.Data.TrialOrder)

		if prepareFormat == "json" {
			return printPrepareJSON(outcome, usable, records, aggs)
		}

		fmt.Printf("outcome: %s\n", outcome)
		fmt.Printf("usable columns: %v\n", usable)
		fmt.Printf("individual records: %d (of %d raw rows)\n\n", len(records), tbl.Len())

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "group\ta\tb\tc\td\tn1\tn2\twarning")
		for _, agg := range aggs {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
				agg.Group, agg.A, agg.B, agg.C, agg.D, agg.N1, agg.N2, agg.Warning)
		}
		if err := w.Flush(); err != nil {
			return eris.Wrap(err, "prepare: flush table")
		}

		for _, warning := range warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
		}
		return nil
	},
}

func printPrepareJSON(outcome string, usable []string, records []model.IndividualRecord, aggs []model.AggregateRecord) error {
	out := struct {
		Outcome       string                  `json:"outcome"`
		UsableColumns []string                `json:"usable_columns"`
		Individual    []model.IndividualRecord `json:"individual"`
		Aggregate     []model.AggregateRecord  `json:"aggregate"`
	}{outcome, usable, records, aggs}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(out), "prepare: encode json")
}

func init() {
	prepareCmd.Flags().StringVar(&prepareInput, "input", "", "raw trial table (csv or xlsx)")
	prepareCmd.Flags().StringVar(&prepareOutcome, "outcome", "", "outcome column (default: first configured)")
	prepareCmd.Flags().StringVar(&prepareFormat, "format", "text", "output format: text or json")
	rootCmd.AddCommand(prepareCmd)
}
