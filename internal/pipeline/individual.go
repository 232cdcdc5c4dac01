package pipeline

import (
	"hash/fnv"
	"math/rand/v2"

	"github.com/rotisserie/eris"

	"github.com/agdev-research/trials-cli/internal/dataset"
	"github.com/agdev-research/trials-cli/internal/model"
)

// Keys maps raw table columns to their canonical roles.
type Keys struct {
	Group     string
	Treatment string
	Outcome   string
}

// BuildIndividual converts the raw table into one IndividualRecord per
// subject for the given outcome. Rows whose outcome cell is missing are
// dropped, which is what lets the same raw table be reused across
// outcome columns. The IsTest label is a Bernoulli(testFraction) draw,
// stratified per trial: each trial gets its own stream derived from the
// seed and trial name, so one trial's assignment never shifts when
// another trial's rows change. Assignment is reproducible bit-for-bit
// for a fixed seed and row order.
func BuildIndividual(tbl *dataset.Table, keys Keys, covariates []string, testFraction float64, seed uint64) ([]model.IndividualRecord, error) {
	for _, col := range []string{keys.Group, keys.Treatment, keys.Outcome} {
		if !tbl.HasColumn(col) {
			return nil, &MissingColumnError{Column: col}
		}
	}
	if testFraction < 0 || testFraction > 1 {
		return nil, eris.Errorf("individual: test fraction %v outside [0,1]", testFraction)
	}

	streams := make(map[string]*rand.Rand)
	records := make([]model.IndividualRecord, 0, tbl.Len())
	for row := 0; row < tbl.Len(); row++ {
		if tbl.IsMissing(row, keys.Outcome) {
			continue
		}
		if tbl.IsMissing(row, keys.Group) {
			return nil, eris.Errorf("individual: row %d has no trial group", row)
		}

		group, _ := tbl.Cell(row, keys.Group)
		treatment, err := tbl.BinaryCell(row, keys.Treatment)
		if err != nil {
			return nil, eris.Wrap(err, "individual: treatment")
		}
		outcome, err := tbl.BinaryCell(row, keys.Outcome)
		if err != nil {
			return nil, eris.Wrap(err, "individual: outcome")
		}

		rec := model.IndividualRecord{
			Group:     group,
			Treatment: treatment,
			Outcome:   outcome,
		}

		rng, ok := streams[group]
		if !ok {
			rng = rand.New(rand.NewPCG(seed, groupSalt(group)))
			streams[group] = rng
		}
		if rng.Float64() < testFraction {
			rec.IsTest = 1
		}

		if len(covariates) > 0 {
			rec.Covariates = make(map[string]string, len(covariates))
			for _, cov := range covariates {
				v, _ := tbl.Cell(row, cov)
				rec.Covariates[cov] = v
			}
		}

		records = append(records, rec)
	}
	return records, nil
}

// groupSalt derives a stable second seed word from the trial name.
func groupSalt(group string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(group))
	return h.Sum64()
}
