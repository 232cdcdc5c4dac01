package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/agdev-research/trials-cli/internal/model"
	"github.com/agdev-research/trials-cli/internal/store"
)

// fakeStore is an in-memory store.Store for orchestrator tests.
type fakeStore struct {
	mu   sync.Mutex
	runs map[string]*model.Run
}

func newFakeStore() *fakeStore {
	return &fakeStore{runs: make(map[string]*model.Run)}
}

func (s *fakeStore) CreateRun(_ context.Context, outcome string, variant model.Variant, pooling model.PoolingMode) (*model.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run := &model.Run{
		ID:        uuid.NewString(),
		Outcome:   outcome,
		Variant:   variant,
		Pooling:   pooling,
		Status:    model.RunStatusQueued,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.runs[run.ID] = run
	return run, nil
}

func (s *fakeStore) UpdateRunStatus(_ context.Context, runID string, status model.RunStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[runID]
	if !ok {
		return eris.Errorf("no run %s", runID)
	}
	run.Status = status
	return nil
}

func (s *fakeStore) CompleteRun(_ context.Context, runID string, result *model.FitResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[runID]
	if !ok {
		return eris.Errorf("no run %s", runID)
	}
	run.Status = model.RunStatusSucceeded
	run.Result = result
	return nil
}

func (s *fakeStore) FailRun(_ context.Context, runID string, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[runID]
	if !ok {
		return eris.Errorf("no run %s", runID)
	}
	run.Status = model.RunStatusFailed
	run.Error = message
	return nil
}

func (s *fakeStore) GetRun(_ context.Context, runID string) (*model.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[runID]
	if !ok {
		return nil, eris.Errorf("no run %s", runID)
	}
	return run, nil
}

func (s *fakeStore) ListRuns(_ context.Context, _ store.RunFilter) ([]model.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Run
	for _, run := range s.runs {
		out = append(out, *run)
	}
	return out, nil
}

func (s *fakeStore) Migrate(context.Context) error { return nil }
func (s *fakeStore) Close() error                  { return nil }
