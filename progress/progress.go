// Package progress keeps aggregated step counters for a single execution.
// The tracker lives in the execution context so that every branch goroutine
// can update it without a global registry.
package progress

import (
	"context"
	"sync"
	"time"

	"github.com/viant/smalltalk/runtime/execution"
)

// Delta represents an incremental counter change. Fields are signed.
type Delta struct {
	Total     int
	Running   int
	Completed int
	Recovered int
	Failed    int
	Aborted   int
	Attempts  int
	Retries   int
}

// Snapshot is a point in time copy of the counters.
type Snapshot struct {
	ExecutionID    string        `json:"executionId,omitempty"`
	Workflow       string        `json:"workflow,omitempty"`
	StartedAt      time.Time     `json:"startedAt"`
	Elapsed        time.Duration `json:"elapsed"`
	TotalSteps     int           `json:"totalSteps"`
	RunningSteps   int           `json:"runningSteps"`
	CompletedSteps int           `json:"completedSteps"`
	RecoveredSteps int           `json:"recoveredSteps"`
	FailedSteps    int           `json:"failedSteps"`
	AbortedSteps   int           `json:"abortedSteps"`
	Attempts       int           `json:"attempts"`
	Retries        int           `json:"retries"`
}

// Pending returns the number of steps not started yet.
func (s Snapshot) Pending() int {
	return s.TotalSteps - s.RunningSteps - s.CompletedSteps - s.RecoveredSteps - s.FailedSteps - s.AbortedSteps
}

// Progress aggregates step counters; it is safe for concurrent use.
type Progress struct {
	snapshot Snapshot
	onChange func(Snapshot)
	mux      sync.Mutex
}

// Update applies d. The change callback runs outside the lock with a copy
// of the updated counters.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}
	p.mux.Lock()
	s := &p.snapshot
	s.TotalSteps += d.Total
	s.RunningSteps += d.Running
	s.CompletedSteps += d.Completed
	s.RecoveredSteps += d.Recovered
	s.FailedSteps += d.Failed
	s.AbortedSteps += d.Aborted
	s.Attempts += d.Attempts
	s.Retries += d.Retries
	snapshot := p.snapshot
	cb := p.onChange
	p.mux.Unlock()

	if cb != nil {
		snapshot.Elapsed = time.Since(snapshot.StartedAt)
		cb(snapshot)
	}
}

// Snapshot returns a copy of the counters.
func (p *Progress) Snapshot() Snapshot {
	if p == nil {
		return Snapshot{}
	}
	p.mux.Lock()
	defer p.mux.Unlock()
	snapshot := p.snapshot
	snapshot.Elapsed = time.Since(snapshot.StartedAt)
	return snapshot
}

// Transition returns the counter change of a step moving from one state to
// another.
func Transition(from, to execution.StepState) Delta {
	var d Delta
	switch to {
	case execution.StepStateInvoking:
		d.Attempts = 1
		if from == execution.StepStatePending || from == "" {
			d.Running = 1
		}
		return d
	case execution.StepStateRetrying:
		d.Retries = 1
		return d
	}
	if !to.IsTerminal() {
		return d
	}
	if from != execution.StepStatePending && from != "" {
		d.Running = -1
	}
	switch to {
	case execution.StepStateSucceeded:
		d.Completed = 1
	case execution.StepStateCaughtFailure:
		d.Recovered = 1
	case execution.StepStateFatalFailure:
		d.Failed = 1
	case execution.StepStateAborted:
		d.Aborted = 1
	}
	return d
}

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithNewTracker creates a tracker for totalSteps, embeds it in a derived
// context and returns both. onChange may be nil.
func WithNewTracker(ctx context.Context, executionID, workflow string, totalSteps int, onChange func(Snapshot)) (context.Context, *Progress) {
	if ctx == nil {
		ctx = context.Background()
	}
	tracker := &Progress{
		snapshot: Snapshot{ExecutionID: executionID, Workflow: workflow, StartedAt: time.Now(), TotalSteps: totalSteps},
		onChange: onChange,
	}
	return context.WithValue(ctx, trackerKey, tracker), tracker
}

// FromContext extracts the tracker from ctx.
func FromContext(ctx context.Context) (*Progress, bool) {
	if ctx == nil {
		return nil, false
	}
	tracker, ok := ctx.Value(trackerKey).(*Progress)
	return tracker, ok
}

// UpdateCtx applies d to the tracker carried by ctx, if any.
func UpdateCtx(ctx context.Context, d Delta) {
	if tracker, ok := FromContext(ctx); ok {
		tracker.Update(d)
	}
}
