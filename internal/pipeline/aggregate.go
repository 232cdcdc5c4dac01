package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/agdev-research/trials-cli/internal/model"
)

// Aggregate pivots individual records into one 2x2 contingency row per
// trial. Output follows trialOrder; trials present in the data but not
// in the order list are appended in first-seen order, and order entries
// with no data are skipped. A trial with an empty arm keeps zero counts
// (never missing) and is returned with its Warning set; the
// corresponding EmptyArmError values come back as warnings so callers
// can flag the trial instead of dividing by zero downstream.
func Aggregate(records []model.IndividualRecord, trialOrder []string) ([]model.AggregateRecord, []error) {
	type counts struct{ a, b, c, d int }

	byGroup := make(map[string]*counts)
	var seen []string
	for _, rec := range records {
		cnt, ok := byGroup[rec.Group]
		if !ok {
			cnt = &counts{}
			byGroup[rec.Group] = cnt
			seen = append(seen, rec.Group)
		}
		switch {
		case rec.Treatment == 1 && rec.Outcome == 1:
			cnt.a++
		case rec.Treatment == 1:
			cnt.b++
		case rec.Outcome == 1:
			cnt.c++
		default:
			cnt.d++
		}
	}

	ordered := make([]string, 0, len(byGroup))
	inOrder := make(map[string]struct{}, len(trialOrder))
	for _, g := range trialOrder {
		inOrder[g] = struct{}{}
		if _, ok := byGroup[g]; ok {
			ordered = append(ordered, g)
		}
	}
	for _, g := range seen {
		if _, ok := inOrder[g]; !ok {
			ordered = append(ordered, g)
		}
	}

	var warnings []error
	out := make([]model.AggregateRecord, 0, len(ordered))
	for _, g := range ordered {
		cnt := byGroup[g]
		rec := model.AggregateRecord{
			Group: g,
			A:     cnt.a,
			B:     cnt.b,
			C:     cnt.c,
			D:     cnt.d,
			N1:    cnt.a + cnt.b,
			N2:    cnt.c + cnt.d,
		}
		if rec.N1 == 0 {
			warnings = append(warnings, flagEmptyArm(&rec, "treatment"))
		}
		if rec.N2 == 0 {
			warnings = append(warnings, flagEmptyArm(&rec, "control"))
		}
		out = append(out, rec)
	}
	return out, warnings
}

func flagEmptyArm(rec *model.AggregateRecord, arm string) error {
	err := &EmptyArmError{Group: rec.Group, Arm: arm}
	if rec.Warning != "" {
		rec.Warning = fmt.Sprintf("%s; %s", rec.Warning, err.Error())
	} else {
		rec.Warning = err.Error()
	}
	zap.L().Warn("aggregate: empty trial arm",
		zap.String("group", rec.Group),
		zap.String("arm", arm),
	)
	return err
}
