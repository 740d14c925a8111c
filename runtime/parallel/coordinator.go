// Package parallel fans a workflow out into concurrent branch runs and joins
// all of them under the express deadline.
package parallel

import (
	"context"
	"errors"
	"time"

	"github.com/viant/smalltalk/model"
	"github.com/viant/smalltalk/model/graph"
	"github.com/viant/smalltalk/model/types"
	"github.com/viant/smalltalk/runtime/execution"
)

// DefaultDeadline applies when neither the caller nor the workflow sets one.
const DefaultDeadline = 5 * time.Minute

// BranchRunner runs a single branch to its terminal outcome.
type BranchRunner interface {
	Run(ctx context.Context, branch *graph.Branch, input map[string]interface{}) *execution.BranchOutcome
}

// Coordinator launches every branch concurrently and waits for all of them.
type Coordinator struct {
	runner BranchRunner
}

type indexedOutcome struct {
	index   int
	outcome *execution.BranchOutcome
}

// Run runs all branches of workflow and returns their outcomes in definition
// order. A failed sibling never cancels the others. The error is
// types.ErrExecutionTimeout when the deadline elapses first,
// types.ErrExecutionAborted when ctx ends, or the *types.BranchFailure of
// the first failed branch in definition order.
func (c *Coordinator) Run(ctx context.Context, workflow *model.Workflow, input map[string]interface{}, deadline time.Duration) ([]*execution.BranchOutcome, error) {
	if deadline <= 0 {
		deadline = DefaultDeadline
	}
	runCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	branches := workflow.Branches
	// buffered so abandoned branches can always report and exit
	done := make(chan indexedOutcome, len(branches))
	for i, branch := range branches {
		go func(index int, branch *graph.Branch) {
			done <- indexedOutcome{index: index, outcome: c.runner.Run(runCtx, branch, input)}
		}(i, branch)
	}

	outcomes := make([]*execution.BranchOutcome, len(branches))
	for pending := len(branches); pending > 0; pending-- {
		select {
		case item := <-done:
			outcomes[item.index] = item.outcome
		case <-runCtx.Done():
			return settled(outcomes), endedError(ctx)
		}
	}
	for _, outcome := range outcomes {
		if outcome.Status == execution.BranchAborted {
			return outcomes, endedError(ctx)
		}
	}
	for _, outcome := range outcomes {
		if outcome.Status != execution.BranchFailed {
			continue
		}
		var failure *types.BranchFailure
		if errors.As(outcome.Failure, &failure) {
			return outcomes, failure
		}
		return outcomes, &types.BranchFailure{Branch: outcome.BranchID, Detail: outcome.Failure.Error(), Err: outcome.Failure}
	}
	return outcomes, nil
}

// endedError reports why the execution context ended: the caller's context
// or the express deadline.
func endedError(ctx context.Context) error {
	if ctx.Err() != nil {
		return types.ErrExecutionAborted
	}
	return types.ErrExecutionTimeout
}

// settled returns the outcomes that reported before the execution ended.
func settled(outcomes []*execution.BranchOutcome) []*execution.BranchOutcome {
	result := make([]*execution.BranchOutcome, 0, len(outcomes))
	for _, outcome := range outcomes {
		if outcome != nil {
			result = append(result, outcome)
		}
	}
	return result
}

// New creates a coordinator.
func New(runner BranchRunner) *Coordinator {
	return &Coordinator{runner: runner}
}
