// Package retry decides whether a failed task attempt is retried and how long
// the owning branch waits before the next attempt.
package retry

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/viant/smalltalk/model/graph"
)

// Class is a failure classification.
type Class string

const (
	Transient Class = "Transient"
	Permanent Class = "Permanent"
)

// Decision is the outcome of a policy evaluation.
type Decision struct {
	Retry bool
	Delay time.Duration
}

// Evaluator evaluates retry policies; Rand returns a value in [0, 1) and
// drives full jitter.
type Evaluator struct {
	Rand func() float64
}

// New creates an evaluator using the default random source.
func New() *Evaluator {
	return &Evaluator{Rand: rand.Float64}
}

// Evaluate returns the decision after the given 1-based attempt failed with
// class. Without a policy, once MaxAttempts is reached, or for permanent
// failures no retry is granted.
func (e *Evaluator) Evaluate(attempt int, policy *graph.Retry, class Class) Decision {
	if policy == nil || class == Permanent || attempt >= policy.MaxAttempts {
		return Decision{}
	}
	delay := Backoff(attempt, policy)
	if policy.Jitter == graph.JitterFull {
		random := e.Rand
		if random == nil {
			random = rand.Float64
		}
		// uniform in [0, delay]
		delay = time.Duration(random() * float64(delay+1))
		if ceiling := Backoff(attempt, policy); delay > ceiling {
			delay = ceiling
		}
	}
	return Decision{Retry: true, Delay: delay}
}

// Backoff returns the un-jittered delay before the attempt following the
// given one: Interval * BackoffRate^(attempt-1), capped by MaxDelay.
func Backoff(attempt int, policy *graph.Retry) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	rate := policy.BackoffRate
	if rate < 1 {
		rate = 1
	}
	delay := float64(policy.Interval) * math.Pow(rate, float64(attempt-1))
	if policy.MaxDelay > 0 && delay > float64(policy.MaxDelay) {
		return policy.MaxDelay
	}
	if delay > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(delay)
}

var defaultEvaluator = New()

// Evaluate evaluates policy with the default evaluator.
func Evaluate(attempt int, policy *graph.Retry, class Class) Decision {
	return defaultEvaluator.Evaluate(attempt, policy, class)
}
