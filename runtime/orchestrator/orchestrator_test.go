package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/smalltalk/model"
	"github.com/viant/smalltalk/model/graph"
	"github.com/viant/smalltalk/model/types"
	"github.com/viant/smalltalk/progress"
	"github.com/viant/smalltalk/runtime/branch"
	"github.com/viant/smalltalk/runtime/execution"
	"github.com/viant/smalltalk/runtime/parallel"
)

type runnerFunc func(ctx context.Context, branch *graph.Branch, input map[string]interface{}) *execution.BranchOutcome

func (f runnerFunc) Run(ctx context.Context, branch *graph.Branch, input map[string]interface{}) *execution.BranchOutcome {
	return f(ctx, branch, input)
}

// echo runs a branch by returning its id with the location it received;
// the techNews branch fails when failNews is set.
func echo(failNews bool) runnerFunc {
	return func(ctx context.Context, branch *graph.Branch, input map[string]interface{}) *execution.BranchOutcome {
		outcome := &execution.BranchOutcome{BranchID: branch.ID, OutputKey: branch.Key(), Status: execution.BranchSucceeded}
		if failNews && branch.ID == "techNews" {
			outcome.Status = execution.BranchFailed
			outcome.Failure = &types.BranchFailure{Branch: branch.ID, Step: "getTechNews", Detail: "page moved"}
			return outcome
		}
		body := input["body"].(map[string]interface{})
		outcome.Output = map[string]interface{}{"branch": branch.ID, "location": body["location"]}
		return outcome
	}
}

func newWorkflow() *model.Workflow {
	workflow := model.NewWorkflow("small-talk")
	workflow.NewBranch("weather").AddStep(graph.NewTaskStep("getWeather", "weather:current"))
	workflow.NewBranch("techNews").WithOutputKey("news").AddStep(graph.NewTaskStep("getTechNews", "technews:top"))
	return workflow
}

func TestOrchestrator_Run(t *testing.T) {
	var testCases = []struct {
		description  string
		workflow     func() *model.Workflow
		failNews     bool
		expectStatus execution.Status
		expectOutput interface{}
		expectError  *execution.ErrorInfo
	}{
		{
			description:  "merged under output keys",
			workflow:     newWorkflow,
			expectStatus: execution.StatusSucceeded,
			expectOutput: map[string]interface{}{
				"weather": map[string]interface{}{"branch": "weather", "location": "Boston"},
				"news":    map[string]interface{}{"branch": "techNews", "location": "Boston"},
			},
		},
		{
			description: "merge step reshapes output",
			workflow: func() *model.Workflow {
				return newWorkflow().WithMerge(map[string]interface{}{"summary": "${state.weather.location}", "for": "${input.body.location}"})
			},
			expectStatus: execution.StatusSucceeded,
			expectOutput: map[string]interface{}{"summary": "Boston", "for": "Boston"},
		},
		{
			description:  "branch failure has no output",
			workflow:     newWorkflow,
			failNews:     true,
			expectStatus: execution.StatusFailed,
			expectError:  &execution.ErrorInfo{Type: execution.ErrorTypeBranchFailure, Branch: "techNews", Step: "getTechNews", Detail: "page moved"},
		},
		{
			description: "definition error",
			workflow: func() *model.Workflow {
				workflow := newWorkflow()
				workflow.Branch("techNews").WithOutputKey("weather")
				return workflow
			},
			expectStatus: execution.StatusFailed,
		},
		{
			description:  "nil workflow",
			workflow:     func() *model.Workflow { return nil },
			expectStatus: execution.StatusFailed,
		},
	}

	for _, testCase := range testCases {
		orchestrator := New(parallel.New(echo(testCase.failNews)))
		input := map[string]interface{}{"body": map[string]interface{}{"location": "Boston"}}
		result := orchestrator.Run(context.Background(), testCase.workflow(), input, time.Second)

		assert.Equal(t, testCase.expectStatus, result.Status, testCase.description)
		assert.Equal(t, testCase.expectOutput, result.Output, testCase.description)
		if testCase.expectError != nil {
			assert.Equal(t, testCase.expectError, result.Error, testCase.description)
		}
		if testCase.expectStatus == execution.StatusFailed && testCase.expectError == nil {
			require.NotNil(t, result.Error, testCase.description)
			assert.Equal(t, execution.ErrorTypeDefinition, result.Error.Type, testCase.description)
		}
		assert.Equal(t, map[string]interface{}{"body": map[string]interface{}{"location": "Boston"}}, input, testCase.description)
	}
}

func TestOrchestrator_DeadlineFallsBackToWorkflowTimeout(t *testing.T) {
	hang := runnerFunc(func(ctx context.Context, branch *graph.Branch, input map[string]interface{}) *execution.BranchOutcome {
		<-ctx.Done()
		return &execution.BranchOutcome{BranchID: branch.ID, OutputKey: branch.Key(), Status: execution.BranchAborted, Failure: types.ErrExecutionAborted}
	})
	workflow := newWorkflow().WithTimeout(20 * time.Millisecond)

	started := time.Now()
	result := New(parallel.New(hang)).Run(context.Background(), workflow, nil, 0)
	require.NotNil(t, result.Error)
	assert.Equal(t, execution.ErrorTypeExecutionTimeout, result.Error.Type)
	assert.Less(t, time.Since(started), time.Second)
	assert.NotEmpty(t, result.ID)
}

func TestOrchestrator_CallerCancel(t *testing.T) {
	hang := runnerFunc(func(ctx context.Context, branch *graph.Branch, input map[string]interface{}) *execution.BranchOutcome {
		<-ctx.Done()
		return &execution.BranchOutcome{BranchID: branch.ID, OutputKey: branch.Key(), Status: execution.BranchAborted, Failure: types.ErrExecutionAborted}
	})
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	result := New(parallel.New(hang)).Run(ctx, newWorkflow(), nil, time.Minute)
	require.NotNil(t, result.Error)
	assert.Equal(t, execution.ErrorTypeExecutionAborted, result.Error.Type)
}

type invokerFunc func(ctx context.Context, action *graph.Action, input interface{}, timeout time.Duration) (interface{}, error)

func (f invokerFunc) Invoke(ctx context.Context, action *graph.Action, input interface{}, timeout time.Duration) (interface{}, error) {
	return f(ctx, action, input, timeout)
}

func TestOrchestrator_Progress(t *testing.T) {
	var calls int32
	invoker := invokerFunc(func(ctx context.Context, action *graph.Action, input interface{}, timeout time.Duration) (interface{}, error) {
		if action.Service == "technews" && atomic.AddInt32(&calls, 1) == 1 {
			return nil, types.NewTransientError("busy", nil)
		}
		return map[string]interface{}{"ok": true}, nil
	})
	workflow := newWorkflow()
	workflow.Branch("techNews").Steps[0].WithRetry(&graph.Retry{MaxAttempts: 2, BackoffRate: 1, Interval: time.Millisecond})
	workflow.Branch("weather").AddStep(graph.NewPassStep("shape", "${state}"))

	var mux sync.Mutex
	var snapshots []progress.Snapshot
	runner := branch.New(invoker, branch.WithSleep(func(ctx context.Context, delay time.Duration) error { return nil }))
	orchestrator := New(parallel.New(runner), WithProgressListener(func(snapshot progress.Snapshot) {
		mux.Lock()
		defer mux.Unlock()
		snapshots = append(snapshots, snapshot)
	}))

	result := orchestrator.Run(context.Background(), workflow, nil, time.Second)
	require.Equal(t, execution.StatusSucceeded, result.Status)
	mux.Lock()
	defer mux.Unlock()
	require.NotEmpty(t, snapshots)
	var last progress.Snapshot
	for _, snapshot := range snapshots {
		if snapshot.CompletedSteps == 3 {
			last = snapshot
		}
	}
	assert.Equal(t, 3, last.TotalSteps)
	assert.Equal(t, 0, last.RunningSteps)
	assert.Equal(t, 0, last.Pending())
	assert.Equal(t, 3, last.Attempts)
	assert.Equal(t, 1, last.Retries)
	assert.Equal(t, result.ID, last.ExecutionID)
}
