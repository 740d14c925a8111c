package parallel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/smalltalk/model"
	"github.com/viant/smalltalk/model/graph"
	"github.com/viant/smalltalk/model/types"
	"github.com/viant/smalltalk/runtime/execution"
)

type runnerFunc func(ctx context.Context, branch *graph.Branch, input map[string]interface{}) *execution.BranchOutcome

func (f runnerFunc) Run(ctx context.Context, branch *graph.Branch, input map[string]interface{}) *execution.BranchOutcome {
	return f(ctx, branch, input)
}

func newWorkflow(ids ...string) *model.Workflow {
	workflow := model.NewWorkflow("test")
	for _, id := range ids {
		workflow.NewBranch(id).AddStep(graph.NewPassStep("pass", nil))
	}
	return workflow
}

func outcome(branch *graph.Branch, status execution.BranchStatus, output interface{}, failure error) *execution.BranchOutcome {
	return &execution.BranchOutcome{BranchID: branch.ID, OutputKey: branch.Key(), Status: status, Output: output, Failure: failure}
}

func TestCoordinator_RunsBranchesConcurrently(t *testing.T) {
	var started sync.WaitGroup
	started.Add(2)
	release := make(chan struct{})
	go func() {
		started.Wait()
		close(release)
	}()
	runner := runnerFunc(func(ctx context.Context, branch *graph.Branch, input map[string]interface{}) *execution.BranchOutcome {
		started.Done()
		select {
		case <-release:
		case <-ctx.Done():
			return outcome(branch, execution.BranchAborted, nil, types.ErrExecutionAborted)
		}
		return outcome(branch, execution.BranchSucceeded, branch.ID, nil)
	})

	outcomes, err := New(runner).Run(context.Background(), newWorkflow("weather", "techNews"), nil, time.Second)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, "weather", outcomes[0].BranchID)
	assert.Equal(t, "techNews", outcomes[1].BranchID)
}

func TestCoordinator_JoinsAllBranches(t *testing.T) {
	runner := runnerFunc(func(ctx context.Context, branch *graph.Branch, input map[string]interface{}) *execution.BranchOutcome {
		switch branch.ID {
		case "first":
			time.Sleep(30 * time.Millisecond)
			return outcome(branch, execution.BranchFailed, nil, &types.BranchFailure{Branch: "first", Step: "pass", Detail: "first failure"})
		case "second":
			return outcome(branch, execution.BranchFailed, nil, &types.BranchFailure{Branch: "second", Step: "pass", Detail: "second failure"})
		}
		time.Sleep(60 * time.Millisecond)
		if ctx.Err() != nil {
			return outcome(branch, execution.BranchAborted, nil, types.ErrExecutionAborted)
		}
		return outcome(branch, execution.BranchRecovered, "fallback", nil)
	})

	outcomes, err := New(runner).Run(context.Background(), newWorkflow("first", "second", "slow"), nil, time.Second)
	var failure *types.BranchFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, "first", failure.Branch)
	require.Len(t, outcomes, 3)
	assert.Equal(t, execution.BranchRecovered, outcomes[2].Status)
	assert.Equal(t, "fallback", outcomes[2].Output)
}

func TestCoordinator_Deadline(t *testing.T) {
	runner := runnerFunc(func(ctx context.Context, branch *graph.Branch, input map[string]interface{}) *execution.BranchOutcome {
		if branch.ID == "fast" {
			return outcome(branch, execution.BranchSucceeded, "ok", nil)
		}
		<-ctx.Done()
		return outcome(branch, execution.BranchAborted, nil, types.ErrExecutionAborted)
	})

	outcomes, err := New(runner).Run(context.Background(), newWorkflow("fast", "hanging"), nil, 50*time.Millisecond)
	assert.ErrorIs(t, err, types.ErrExecutionTimeout)
	for _, item := range outcomes {
		assert.NotEqual(t, "hanging", item.BranchID)
	}
}

func TestCoordinator_CallerCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := runnerFunc(func(ctx context.Context, branch *graph.Branch, input map[string]interface{}) *execution.BranchOutcome {
		cancel()
		<-ctx.Done()
		return outcome(branch, execution.BranchAborted, nil, types.ErrExecutionAborted)
	})

	_, err := New(runner).Run(ctx, newWorkflow("weather"), nil, time.Minute)
	assert.ErrorIs(t, err, types.ErrExecutionAborted)
}
