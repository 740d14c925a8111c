// Package branch runs a single branch: its steps in order, each task step
// through the invoker with retry and catch handling.
package branch

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/viant/smalltalk/internal/clock"
	"github.com/viant/smalltalk/model/graph"
	"github.com/viant/smalltalk/model/types"
	"github.com/viant/smalltalk/progress"
	"github.com/viant/smalltalk/runtime/catch"
	"github.com/viant/smalltalk/runtime/document"
	"github.com/viant/smalltalk/runtime/execution"
	"github.com/viant/smalltalk/runtime/expander"
	"github.com/viant/smalltalk/runtime/retry"
	"github.com/viant/smalltalk/tracing"
)

// Invoker performs a single task call.
type Invoker interface {
	Invoke(ctx context.Context, action *graph.Action, input interface{}, timeout time.Duration) (interface{}, error)
}

// Transition describes a step state change.
type Transition struct {
	Branch  string
	Step    string
	From    execution.StepState
	To      execution.StepState
	Attempt int
	Delay   time.Duration
	Err     error
}

// Listener observes step state changes; it is called from the branch
// goroutine and must not block.
type Listener func(transition *Transition)

// Runner runs branches.
type Runner struct {
	invoker  Invoker
	retry    *retry.Evaluator
	listener Listener
	sleep    func(ctx context.Context, delay time.Duration) error
}

// Run runs every step of b in order against its own copy of input and
// returns the branch outcome. Input is never modified.
func (r *Runner) Run(ctx context.Context, b *graph.Branch, input map[string]interface{}) *execution.BranchOutcome {
	ctx, span := tracing.StartSpan(ctx, "branch.run", "INTERNAL")
	span.WithAttributes(map[string]string{"branch": b.ID})

	outcome := &execution.BranchOutcome{
		BranchID:  b.ID,
		OutputKey: b.Key(),
		Status:    execution.BranchSucceeded,
		StartedAt: clock.Now(),
	}
	logger := contextLogger(ctx).With().Str("branch", b.ID).Logger()
	var doc interface{} = document.Copy(input)
	for _, step := range b.Steps {
		stepExecution := execution.NewStepExecution(step.Name)
		outcome.Steps = append(outcome.Steps, stepExecution)
		var err error
		if step.IsTask() {
			doc, err = r.runTask(ctx, b, step, stepExecution, input, doc, &logger)
		} else {
			doc = r.runPass(step, input, doc)
			r.transition(ctx, b, step, stepExecution, execution.StepStateSucceeded, 0, 0, nil)
		}
		if stepExecution.State == execution.StepStateCaughtFailure {
			outcome.Status = execution.BranchRecovered
		}
		if err != nil {
			outcome.Failure = err
			outcome.Status = execution.BranchFailed
			if errors.Is(err, types.ErrExecutionAborted) {
				outcome.Status = execution.BranchAborted
			}
			outcome.CompletedAt = clock.Now()
			tracing.EndSpan(span, err)
			return outcome
		}
	}
	outcome.Output = doc
	outcome.CompletedAt = clock.Now()
	span.WithAttributes(map[string]string{"status": string(outcome.Status)})
	tracing.EndSpan(span, nil)
	return outcome
}

// runPass yields the pass value expanded against the input and the branch
// document; a nil value passes the document through.
func (r *Runner) runPass(step *graph.Step, input map[string]interface{}, doc interface{}) interface{} {
	value := step.Pass.Value
	if value == nil {
		return document.With(doc, step.OutputKey, doc)
	}
	value = expander.Expand(value, map[string]interface{}{"input": input, "state": doc})
	return document.With(doc, step.OutputKey, value)
}

func (r *Runner) runTask(ctx context.Context, b *graph.Branch, step *graph.Step, stepExecution *execution.StepExecution, input map[string]interface{}, doc interface{}, logger *zerolog.Logger) (interface{}, error) {
	taskInput := doc
	if step.Input != nil {
		taskInput = expander.Expand(step.Input, map[string]interface{}{"input": input, "state": doc})
	}
	for attempt := 1; ; attempt++ {
		stepExecution.Attempts = attempt
		r.transition(ctx, b, step, stepExecution, execution.StepStateInvoking, attempt, 0, nil)
		output, err := r.invoker.Invoke(ctx, step.Action, taskInput, step.Timeout)
		if err == nil {
			r.transition(ctx, b, step, stepExecution, execution.StepStateSucceeded, attempt, 0, nil)
			return document.With(doc, step.OutputKey, output), nil
		}
		if errors.Is(err, types.ErrExecutionAborted) {
			r.transition(ctx, b, step, stepExecution, execution.StepStateAborted, attempt, 0, err)
			return nil, err
		}
		taskErr := asTaskError(err)
		class := retry.Transient
		if !taskErr.Transient {
			class = retry.Permanent
		}
		decision := r.retry.Evaluate(attempt, step.Retry, class)
		if decision.Retry {
			logger.Debug().Str("step", step.Name).Int("attempt", attempt).Dur("delay", decision.Delay).Err(err).Msg("retrying step")
			r.transition(ctx, b, step, stepExecution, execution.StepStateRetrying, attempt, decision.Delay, err)
			if err = r.sleep(ctx, decision.Delay); err != nil {
				r.transition(ctx, b, step, stepExecution, execution.StepStateAborted, attempt, 0, err)
				return nil, err
			}
			continue
		}
		exhausted := &types.RetriesExhaustedError{Step: step.Name, Attempts: attempt, Last: taskErr}
		if step.Catch != nil {
			logger.Warn().Str("step", step.Name).Int("attempts", attempt).Err(exhausted).Msg("caught step failure")
			r.transition(ctx, b, step, stepExecution, execution.StepStateCaughtFailure, attempt, 0, exhausted)
			return catch.Resolve(step.Catch, exhausted, input, doc), nil
		}
		logger.Error().Str("step", step.Name).Int("attempts", attempt).Err(exhausted).Msg("branch failed")
		r.transition(ctx, b, step, stepExecution, execution.StepStateFatalFailure, attempt, 0, exhausted)
		return nil, &types.BranchFailure{Branch: b.ID, Step: step.Name, Detail: taskErr.Detail, Err: exhausted}
	}
}

func (r *Runner) transition(ctx context.Context, b *graph.Branch, step *graph.Step, stepExecution *execution.StepExecution, to execution.StepState, attempt int, delay time.Duration, err error) {
	from := stepExecution.State
	if to.IsTerminal() {
		stepExecution.Complete(to, err)
	} else {
		stepExecution.State = to
	}
	progress.UpdateCtx(ctx, progress.Transition(from, to))
	if r.listener != nil {
		r.listener(&Transition{Branch: b.ID, Step: step.Name, From: from, To: to, Attempt: attempt, Delay: delay, Err: err})
	}
}

// contextLogger returns the execution logger carried by ctx, or the global one.
func contextLogger(ctx context.Context) *zerolog.Logger {
	if logger := zerolog.Ctx(ctx); logger.GetLevel() != zerolog.Disabled {
		return logger
	}
	return &log.Logger
}

func asTaskError(err error) *types.TaskError {
	var taskErr *types.TaskError
	if errors.As(err, &taskErr) {
		return taskErr
	}
	return types.NewTransientError(err.Error(), err)
}

// sleep waits for delay unless ctx ends first.
func sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		if ctx.Err() != nil {
			return types.ErrExecutionAborted
		}
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return types.ErrExecutionAborted
	}
}

// New creates a branch runner.
func New(invoker Invoker, opts ...Option) *Runner {
	r := &Runner{invoker: invoker, retry: retry.New(), sleep: sleep}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
