package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/viant/smalltalk/internal/clock"
	"github.com/viant/smalltalk/internal/idgen"
	"github.com/viant/smalltalk/internal/logger"
	"github.com/viant/smalltalk/model"
	"github.com/viant/smalltalk/model/types"
	"github.com/viant/smalltalk/progress"
	"github.com/viant/smalltalk/runtime/document"
	"github.com/viant/smalltalk/runtime/execution"
	"github.com/viant/smalltalk/runtime/merger"
	"github.com/viant/smalltalk/runtime/parallel"
	"github.com/viant/smalltalk/tracing"
)

// Orchestrator runs built workflows.
type Orchestrator struct {
	coordinator *parallel.Coordinator
	onProgress  func(progress.Snapshot)
}

// Option customises the orchestrator.
type Option func(*Orchestrator)

// WithProgressListener streams step counters of every execution; the
// listener is called from branch goroutines and must not block.
func WithProgressListener(listener func(progress.Snapshot)) Option {
	return func(o *Orchestrator) {
		o.onProgress = listener
	}
}

// Run executes workflow against input within deadline. A zero deadline
// falls back to the workflow timeout, then to parallel.DefaultDeadline.
// Input is never modified; the result carries merged output only when every
// branch succeeded or recovered.
func (o *Orchestrator) Run(ctx context.Context, workflow *model.Workflow, input map[string]interface{}, deadline time.Duration) *execution.Result {
	if o == nil || o.coordinator == nil {
		return execution.Failed("", fmt.Errorf("orchestrator not initialised: %w", types.ErrExecutionAborted), nil)
	}
	if workflow == nil {
		return execution.Failed("", &types.DefinitionError{Issues: []error{fmt.Errorf("workflow is nil")}}, nil)
	}
	id := idgen.NewExecutionID(workflow.Name)
	if !workflow.IsBuilt() {
		built, err := workflow.Build()
		if err != nil {
			log.Error().Err(err).Str("workflow", workflow.Name).Msg("rejected workflow definition")
			return execution.Failed(id, err, nil)
		}
		workflow = built
	}
	if deadline <= 0 {
		deadline = workflow.Timeout
	}
	if input == nil {
		input = map[string]interface{}{}
	}
	input = document.Map(document.Copy(input))

	execLogger := logger.Execution(id, workflow.Name)
	ctx = execLogger.WithContext(ctx)
	ctx, tracker := progress.WithNewTracker(ctx, id, workflow.Name, countSteps(workflow), o.onProgress)
	ctx, span := tracing.StartSpan(ctx, "execution.run", "SERVER")
	span.WithAttributes(map[string]string{"execution": id, "workflow": workflow.Name})

	started := clock.Now()
	execLogger.Info().Int("branches", len(workflow.Branches)).Dur("deadline", deadline).Msg("execution started")
	outcomes, err := o.coordinator.Run(ctx, workflow, input, deadline)
	if err != nil {
		tracing.EndSpan(span, err)
		execLogger.Error().Err(err).Dur("elapsed", clock.Since(started)).Interface("progress", tracker.Snapshot()).Msg("execution failed")
		return execution.Failed(id, err, outcomes)
	}
	output := merger.Merge(outcomes, workflow.Merge, input)
	tracing.EndSpan(span, nil)
	execLogger.Info().Dur("elapsed", clock.Since(started)).Interface("progress", tracker.Snapshot()).Msg("execution succeeded")
	return execution.Succeeded(id, output, outcomes)
}

func countSteps(workflow *model.Workflow) int {
	count := 0
	for _, branch := range workflow.Branches {
		count += len(branch.Steps)
	}
	return count
}

// New creates an orchestrator.
func New(coordinator *parallel.Coordinator, opts ...Option) *Orchestrator {
	o := &Orchestrator{coordinator: coordinator}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
