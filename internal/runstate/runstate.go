// Package runstate records the progress of brand and content runs so that
// clients can poll a run's stage history while it executes.
package runstate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonathan/brand-studio/internal/pipeline/steps"
)

// ErrRunNotFound is returned for unknown or expired runs.
var ErrRunNotFound = errors.New("run not found")

// Run kinds.
const (
	KindBrand   = "brand"
	KindContent = "content"
)

// Run statuses. A run uses the step status vocabulary.
const (
	StatusRunning   = steps.StatusInProgress
	StatusCompleted = steps.StatusCompleted
	StatusFailed    = steps.StatusFailed
)

// StepState is the recorded state of one step.
type StepState struct {
	Step        string     `json:"step"`
	Category    string     `json:"category"`
	Status      string     `json:"status"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	DurationMs  int64      `json:"duration_ms,omitempty"`
	FailureKind string     `json:"failure_kind,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Run is the recorded state of a run.
type Run struct {
	ID          string      `json:"id"`
	Kind        string      `json:"kind"`
	CompanyID   int64       `json:"company_id,omitempty"`
	Status      string      `json:"status"`
	FailureKind string      `json:"failure_kind,omitempty"`
	Error       string      `json:"error,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Steps       []StepState `json:"steps"`
}

// Tracker stores run progress.
type Tracker interface {
	StartRun(ctx context.Context, run Run) error
	UpdateStep(ctx context.Context, runID string, state StepState) error
	FinishRun(ctx context.Context, runID, status, failureKind, message string) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	StepStatus(ctx context.Context, runID, step string) (string, error)
}

// MemoryTracker keeps runs in process memory. It is used when no Redis is
// configured and in tests.
type MemoryTracker struct {
	mu   sync.Mutex
	runs map[string]*Run
	now  func() time.Time
}

// NewMemoryTracker creates an empty MemoryTracker.
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{runs: make(map[string]*Run), now: time.Now}
}

// StartRun implements Tracker.
func (m *MemoryTracker) StartRun(_ context.Context, run Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	run.Status = StatusRunning
	run.CreatedAt, run.UpdatedAt = now, now
	run.Steps = nil
	m.runs[run.ID] = &run
	return nil
}

// UpdateStep implements Tracker.
func (m *MemoryTracker) UpdateStep(_ context.Context, runID string, state StepState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[runID]
	if !ok {
		return ErrRunNotFound
	}
	run.UpdatedAt = m.now().UTC()
	for i := range run.Steps {
		if run.Steps[i].Step == state.Step {
			run.Steps[i] = mergeStep(run.Steps[i], state)
			return nil
		}
	}
	run.Steps = append(run.Steps, state)
	sortSteps(run.Steps)
	return nil
}

// FinishRun implements Tracker.
func (m *MemoryTracker) FinishRun(_ context.Context, runID, status, failureKind, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[runID]
	if !ok {
		return ErrRunNotFound
	}
	run.Status, run.FailureKind, run.Error = status, failureKind, message
	run.UpdatedAt = m.now().UTC()
	return nil
}

// GetRun implements Tracker.
func (m *MemoryTracker) GetRun(_ context.Context, runID string) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[runID]
	if !ok {
		return nil, ErrRunNotFound
	}
	cp := *run
	cp.Steps = append([]StepState(nil), run.Steps...)
	return &cp, nil
}

// StepStatus implements steps.StatusSource.
func (m *MemoryTracker) StepStatus(_ context.Context, runID, step string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[runID]
	if !ok {
		return "", ErrRunNotFound
	}
	for _, s := range run.Steps {
		if s.Step == step {
			return s.Status, nil
		}
	}
	return "", nil
}

// mergeStep overlays an update on the recorded state, keeping the start time.
func mergeStep(prev, next StepState) StepState {
	if next.StartedAt == nil {
		next.StartedAt = prev.StartedAt
	}
	if next.Category == "" {
		next.Category = prev.Category
	}
	return next
}

func sortSteps(states []StepState) {
	names := make([]string, len(states))
	byName := make(map[string]StepState, len(states))
	for i, s := range states {
		names[i] = s.Step
		byName[s.Step] = s
	}
	steps.Sort(names)
	for i, n := range names {
		states[i] = byName[n]
	}
}
