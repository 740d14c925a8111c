package branch

import (
	"context"
	"time"

	"github.com/viant/smalltalk/runtime/retry"
)

// Option customises a Runner.
type Option func(*Runner)

// WithListener sets the transition listener.
func WithListener(listener Listener) Option {
	return func(r *Runner) {
		r.listener = listener
	}
}

// WithRetryEvaluator overrides the retry policy evaluator.
func WithRetryEvaluator(evaluator *retry.Evaluator) Option {
	return func(r *Runner) {
		r.retry = evaluator
	}
}

// WithSleep overrides how retry delays are waited.
func WithSleep(fn func(ctx context.Context, delay time.Duration) error) Option {
	return func(r *Runner) {
		r.sleep = fn
	}
}
