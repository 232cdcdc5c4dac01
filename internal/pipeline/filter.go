// Package pipeline reshapes raw per-subject trial tables into the
// individual- and aggregate-level inputs required by a hierarchical
// binomial meta-analysis, and orchestrates fits across outcomes.
package pipeline

import (
	"go.uber.org/zap"

	"github.com/agdev-research/trials-cli/internal/dataset"
	"github.com/agdev-research/trials-cli/internal/model"
)

// ProfileColumn computes a candidate column's missing fraction and its
// count of distinct non-missing values within each trial group.
func ProfileColumn(tbl *dataset.Table, col, groupKey string) model.ColumnProfile {
	profile := model.ColumnProfile{
		Column:           col,
		DistinctPerGroup: make(map[string]int),
	}

	missing := 0
	seen := make(map[string]map[string]struct{})
	for row := 0; row < tbl.Len(); row++ {
		if tbl.IsMissing(row, col) {
			missing++
			continue
		}
		group, _ := tbl.Cell(row, groupKey)
		v, _ := tbl.Cell(row, col)
		if seen[group] == nil {
			seen[group] = make(map[string]struct{})
		}
		seen[group][v] = struct{}{}
	}

	if tbl.Len() > 0 {
		profile.MissingFraction = float64(missing) / float64(tbl.Len())
	}
	for group, values := range seen {
		profile.DistinctPerGroup[group] = len(values)
	}
	return profile
}

// SelectUsableColumns returns, in header order, the columns eligible as
// covariates or outcomes: fully observed across the whole table and
// varying within every trial group. The group key itself is never
// returned. Pure query; running it twice yields the same set.
func SelectUsableColumns(tbl *dataset.Table, groupKey string) []string {
	groups := make(map[string]struct{})
	for row := 0; row < tbl.Len(); row++ {
		g, _ := tbl.Cell(row, groupKey)
		groups[g] = struct{}{}
	}

	var usable []string
	for _, col := range tbl.Columns() {
		if col == groupKey {
			continue
		}
		profile := ProfileColumn(tbl, col, groupKey)
		// A column absent from some group's profile was all-missing
		// there; require a >1 distinct count for every group present
		// in the table.
		if profile.MissingFraction > 0 || len(profile.DistinctPerGroup) < len(groups) {
			zap.L().Debug("filter: dropping column",
				zap.String("column", col),
				zap.Float64("missing_fraction", profile.MissingFraction),
			)
			continue
		}
		if !profile.Usable() {
			zap.L().Debug("filter: dropping constant-within-trial column",
				zap.String("column", col),
			)
			continue
		}
		usable = append(usable, col)
	}
	return usable
}
