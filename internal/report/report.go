// Package report formats fit results into the cross-outcome comparison
// table and a human-readable summary for the external renderer.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/agdev-research/trials-cli/internal/model"
)

// BuildSummary produces one SummaryRow per successfully fitted outcome,
// preserving input order. Failed outcomes carry no numbers and are left
// to FormatMarkdown's failure section.
func BuildSummary(results []model.OutcomeResult) []model.SummaryRow {
	var rows []model.SummaryRow
	for _, res := range results {
		if res.Result == nil {
			continue
		}
		fit := res.Result
		contributing := 0
		for _, trial := range fit.Trials {
			if !trial.Skipped {
				contributing++
			}
		}
		rows = append(rows, model.SummaryRow{
			Index:       len(rows),
			Outcome:     res.Outcome,
			Trials:      contributing,
			PooledLogOR: fit.Pooled.Mean,
			CrILow:      fit.Pooled.Q2_5,
			CrIHigh:     fit.Pooled.Q97_5,
			ISquared:    fit.ISquared.Mean,
			ISquaredLow: fit.ISquared.Q2_5,
			ISquaredHi:  fit.ISquared.Q97_5,
		})
	}
	return rows
}

// WriteCSV writes the summary table as CSV.
func WriteCSV(w io.Writer, rows []model.SummaryRow) error {
	raw, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrap(err, "report: marshal csv")
	}
	if _, err := w.Write(raw); err != nil {
		return eris.Wrap(err, "report: write csv")
	}
	return nil
}

// FormatMarkdown generates a human-readable comparison report: the
// pooled table, a forest table per outcome, and any failures.
func FormatMarkdown(results []model.OutcomeResult) string {
	var b strings.Builder

	b.WriteString("# Meta-Analysis Summary\n\n")

	rows := BuildSummary(results)
	if len(rows) > 0 {
		b.WriteString("## Pooled Effects (log odds ratio)\n")
		b.WriteString("| outcome | trials | estimate | 95% CrI | I² | I² 95% CrI |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for _, row := range rows {
			fmt.Fprintf(&b, "| %s | %d | %.3f | [%.3f, %.3f] | %.2f | [%.2f, %.2f] |\n",
				row.Outcome, row.Trials, row.PooledLogOR, row.CrILow, row.CrIHigh,
				row.ISquared, row.ISquaredLow, row.ISquaredHi)
		}
		b.WriteString("\n")
	}

	for _, res := range results {
		if res.Result == nil {
			continue
		}
		fmt.Fprintf(&b, "## Outcome: %s\n", res.Outcome)
		fmt.Fprintf(&b, "Pooling: %s, sampler elapsed: %dms", res.Result.Pooling, res.Result.ElapsedMS)
		if res.Result.FromCache {
			b.WriteString(" (cached)")
		}
		b.WriteString("\n\n")
		b.WriteString("| trial | log OR | 95% CrI | note |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, trial := range res.Result.Trials {
			if trial.Skipped {
				fmt.Fprintf(&b, "| %s | — | — | %s |\n", trial.Group, trial.Reason)
				continue
			}
			fmt.Fprintf(&b, "| %s | %.3f | [%.3f, %.3f] | |\n",
				trial.Group, trial.Effect.Mean, trial.Effect.Q2_5, trial.Effect.Q97_5)
		}
		if !res.Result.Diagnostics.Converged {
			fmt.Fprintf(&b, "\n**Warning**: sampler did not converge (max R-hat %.3f, %d divergences)\n",
				res.Result.Diagnostics.MaxRhat, res.Result.Diagnostics.Divergences)
		}
		for _, warning := range res.Warnings {
			fmt.Fprintf(&b, "\n**Warning**: %s\n", warning)
		}
		b.WriteString("\n")
	}

	var failed []model.OutcomeResult
	for _, res := range results {
		if res.Error != "" {
			failed = append(failed, res)
		}
	}
	if len(failed) > 0 {
		b.WriteString("## Failed Outcomes\n")
		for _, res := range failed {
			fmt.Fprintf(&b, "- %s: %s\n", res.Outcome, res.Error)
		}
	}

	return b.String()
}
