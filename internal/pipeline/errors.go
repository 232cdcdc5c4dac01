package pipeline

import "fmt"

// MissingColumnError is returned when a required key column (group,
// treatment, or outcome) is absent from the raw table. It aborts the
// current outcome's run only; sibling outcomes are unaffected.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("required column %q not in table", e.Column)
}

// EmptyArmError flags a trial with zero subjects in one treatment arm.
// The trial's counts default to zero rather than missing, but its
// treatment-control contrast is undefined and downstream effect-size
// computation must skip or flag it.
type EmptyArmError struct {
	Group string
	Arm   string // "treatment" or "control"
}

func (e *EmptyArmError) Error() string {
	return fmt.Sprintf("trial %q has no subjects in %s arm", e.Group, e.Arm)
}
