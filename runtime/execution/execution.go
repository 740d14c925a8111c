package execution

import (
	"time"

	"github.com/viant/smalltalk/internal/clock"
)

// StepExecution records a single step run within a branch.
type StepExecution struct {
	Step        string     `json:"step"`
	State       StepState  `json:"state"`
	Attempts    int        `json:"attempts,omitempty"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// NewStepExecution creates a pending step execution.
func NewStepExecution(step string) *StepExecution {
	return &StepExecution{Step: step, State: StepStatePending, StartedAt: clock.Now()}
}

// Complete marks the step terminal with the given state.
func (e *StepExecution) Complete(state StepState, err error) {
	e.State = state
	if err != nil {
		e.Error = err.Error()
	}
	now := clock.Now()
	e.CompletedAt = &now
}

// BranchOutcome is the single terminal record of a branch run.
type BranchOutcome struct {
	BranchID    string           `json:"branchId"`
	OutputKey   string           `json:"outputKey"`
	Status      BranchStatus     `json:"status"`
	Output      interface{}      `json:"output,omitempty"`
	Failure     error            `json:"-"`
	Steps       []*StepExecution `json:"steps,omitempty"`
	StartedAt   time.Time        `json:"startedAt"`
	CompletedAt time.Time        `json:"completedAt"`
}

// Attempts returns the attempt count per step name.
func (o *BranchOutcome) Attempts() map[string]int {
	result := make(map[string]int, len(o.Steps))
	for _, step := range o.Steps {
		result[step.Step] = step.Attempts
	}
	return result
}

// Merged returns true when the outcome contributes output to the merge.
func (o *BranchOutcome) Merged() bool {
	return o.Status == BranchSucceeded || o.Status == BranchRecovered
}

// Elapsed returns the branch run time.
func (o *BranchOutcome) Elapsed() time.Duration {
	return o.CompletedAt.Sub(o.StartedAt)
}
