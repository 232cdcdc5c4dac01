// Package model defines the domain types shared across the trial
// meta-analysis pipeline: individual and aggregate trial records, model
// inputs, fit requests/results, and run bookkeeping.
package model

// Variant selects how the raw table is shaped into model input.
type Variant string

const (
	// VariantAggregate builds one 2x2 contingency row per trial.
	VariantAggregate Variant = "aggregate"
	// VariantIndividual builds one row per subject.
	VariantIndividual Variant = "individual"
	// VariantCovariate builds one row per subject with retained covariates.
	VariantCovariate Variant = "covariate"
)

// ColumnProfile describes a candidate covariate/outcome column's usability.
type ColumnProfile struct {
	Column           string         `json:"column"`
	MissingFraction  float64        `json:"missing_fraction"`
	DistinctPerGroup map[string]int `json:"distinct_per_group"`
}

// Usable reports whether the column passes both filter tests: fully
// observed, and varying within every trial group.
func (p ColumnProfile) Usable() bool {
	if p.MissingFraction > 0 {
		return false
	}
	for _, n := range p.DistinctPerGroup {
		if n <= 1 {
			return false
		}
	}
	return len(p.DistinctPerGroup) > 0
}

// IndividualRecord is one subject in one trial, with the outcome of
// interest resolved to 0/1. Rows whose outcome is missing in the raw
// table never become IndividualRecords.
type IndividualRecord struct {
	Group      string            `json:"group"`
	Treatment  int               `json:"treatment"`
	Outcome    int               `json:"outcome"`
	IsTest     int               `json:"is_test"`
	Covariates map[string]string `json:"covariates,omitempty"`
}

// AggregateRecord is the 2x2 contingency summary for one trial:
// a/b are events/non-events under treatment, c/d under control.
type AggregateRecord struct {
	Group   string `json:"group"`
	A       int    `json:"a"`
	B       int    `json:"b"`
	C       int    `json:"c"`
	D       int    `json:"d"`
	N1      int    `json:"n1"`
	N2      int    `json:"n2"`
	Warning string `json:"warning,omitempty"`
}

// EmptyArm reports whether either treatment arm has zero subjects. Such
// trials cannot contribute a treatment-control contrast and must be
// skipped or flagged by effect-size consumers.
func (r AggregateRecord) EmptyArm() bool {
	return r.N1 == 0 || r.N2 == 0
}

// Total returns the subject count across both arms.
func (r AggregateRecord) Total() int {
	return r.A + r.B + r.C + r.D
}

// ModelInput is the shaped table handed to the meta-analysis engine.
// Exactly one of Aggregate or Individual is populated, per Variant.
type ModelInput struct {
	Variant    Variant            `json:"variant"`
	Columns    []string           `json:"columns"`
	Aggregate  []AggregateRecord  `json:"aggregate,omitempty"`
	Individual []IndividualRecord `json:"individual,omitempty"`
}
