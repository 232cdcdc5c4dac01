package pipeline

import (
	"github.com/rotisserie/eris"

	"github.com/agdev-research/trials-cli/internal/dataset"
	"github.com/agdev-research/trials-cli/internal/model"
)

// InputSpec carries everything a builder needs to shape the raw table
// for one outcome.
type InputSpec struct {
	Keys         Keys
	Exclude      []string // columns never used as covariates (sibling outcomes)
	TrialOrder   []string
	TestFraction float64
	Seed         uint64
}

// InputBuilder shapes the raw table into one model-input variant. Each
// implementation declares its own column contract and output shape, so
// the three variants are independently testable.
type InputBuilder interface {
	Name() string
	Build(tbl *dataset.Table, spec InputSpec) (*model.ModelInput, []error, error)
}

// BuilderFor returns the builder for the given variant.
func BuilderFor(v model.Variant) (InputBuilder, error) {
	switch v {
	case model.VariantAggregate:
		return AggregateBuilder{}, nil
	case model.VariantIndividual:
		return IndividualBuilder{}, nil
	case model.VariantCovariate:
		return CovariateBuilder{}, nil
	}
	return nil, eris.Errorf("pipeline: unknown variant %q", v)
}

// AggregateBuilder emits one 2x2 contingency row per trial.
type AggregateBuilder struct{}

func (AggregateBuilder) Name() string { return string(model.VariantAggregate) }

func (AggregateBuilder) Build(tbl *dataset.Table, spec InputSpec) (*model.ModelInput, []error, error) {
	records, err := BuildIndividual(tbl, spec.Keys, nil, spec.TestFraction, spec.Seed)
	if err != nil {
		return nil, nil, err
	}
	aggs, warnings := Aggregate(records, spec.TrialOrder)
	return &model.ModelInput{
		Variant:   model.VariantAggregate,
		Columns:   []string{"group", "a", "b", "c", "d", "n1", "n2"},
		Aggregate: aggs,
	}, warnings, nil
}

// IndividualBuilder emits one row per subject with no covariates.
type IndividualBuilder struct{}

func (IndividualBuilder) Name() string { return string(model.VariantIndividual) }

func (IndividualBuilder) Build(tbl *dataset.Table, spec InputSpec) (*model.ModelInput, []error, error) {
	records, err := BuildIndividual(tbl, spec.Keys, nil, spec.TestFraction, spec.Seed)
	if err != nil {
		return nil, nil, err
	}
	return &model.ModelInput{
		Variant:    model.VariantIndividual,
		Columns:    []string{"group", "treatment", "outcome", "is_test"},
		Individual: records,
	}, nil, nil
}

// CovariateBuilder emits one row per subject plus every covariate that
// survives the column filter. Key columns, the outcome of interest, and
// any excluded sibling outcomes are never treated as covariates.
type CovariateBuilder struct{}

func (CovariateBuilder) Name() string { return string(model.VariantCovariate) }

func (CovariateBuilder) Build(tbl *dataset.Table, spec InputSpec) (*model.ModelInput, []error, error) {
	drop := map[string]struct{}{
		spec.Keys.Group:     {},
		spec.Keys.Treatment: {},
		spec.Keys.Outcome:   {},
	}
	for _, col := range spec.Exclude {
		drop[col] = struct{}{}
	}

	var covariates []string
	for _, col := range SelectUsableColumns(tbl, spec.Keys.Group) {
		if _, skip := drop[col]; skip {
			continue
		}
		covariates = append(covariates, col)
	}

	records, err := BuildIndividual(tbl, spec.Keys, covariates, spec.TestFraction, spec.Seed)
	if err != nil {
		return nil, nil, err
	}

	columns := append([]string{"group", "treatment", "outcome", "is_test"}, covariates...)
	return &model.ModelInput{
		Variant:    model.VariantCovariate,
		Columns:    columns,
		Individual: records,
	}, nil, nil
}
