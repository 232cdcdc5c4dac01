package model

import "time"

// RunStatus tracks a fit run's lifecycle in the store.
type RunStatus string

const (
	RunStatusQueued    RunStatus = "queued"
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// Run records one fit invocation for one outcome.
type Run struct {
	ID        string      `json:"id"`
	Outcome   string      `json:"outcome"`
	Variant   Variant     `json:"variant"`
	Pooling   PoolingMode `json:"pooling"`
	Status    RunStatus   `json:"status"`
	Result    *FitResult  `json:"result,omitempty"`
	Error     string      `json:"error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// OutcomeResult is what the orchestrator returns for one outcome. A
// failed outcome carries Error and a nil Result; siblings are unaffected.
type OutcomeResult struct {
	Outcome  string     `json:"outcome"`
	RunID    string     `json:"run_id,omitempty"`
	Result   *FitResult `json:"result,omitempty"`
	Warnings []string   `json:"warnings,omitempty"`
	Error    string     `json:"error,omitempty"`
}
