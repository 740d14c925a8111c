package graph

import (
	"fmt"
	"strings"
	"time"
)

// Jitter strategies for retry backoff.
const (
	JitterNone = "none"
	JitterFull = "full"
)

type (
	// Action identifies a task method as service:method.
	Action struct {
		Service string `json:"service,omitempty" yaml:"service,omitempty"`
		Method  string `json:"method,omitempty" yaml:"method,omitempty"`
	}

	// Step is either a task step (Action set) or a pass step (Pass set).
	Step struct {
		Name   string  `json:"name,omitempty" yaml:"name,omitempty"`
		Action *Action `json:"action,omitempty" yaml:"action,omitempty"`
		// Input is an optional template shaping the task input; the branch
		// document is passed as is when nil.
		Input interface{} `json:"input,omitempty" yaml:"input,omitempty"`
		// Timeout bounds a single task invocation; zero means engine default.
		Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
		Retry   *Retry        `json:"retry,omitempty" yaml:"retry,omitempty"`
		Catch   *Catch        `json:"catch,omitempty" yaml:"catch,omitempty"`
		Pass    *Pass         `json:"pass,omitempty" yaml:"pass,omitempty"`
		// OutputKey places the step result under this key of the branch
		// document; empty replaces the document with the result.
		OutputKey string `json:"outputKey,omitempty" yaml:"outputKey,omitempty"`
	}

	// Retry policy for a task step.
	Retry struct {
		MaxAttempts int           `json:"maxAttempts,omitempty" yaml:"maxAttempts,omitempty"`
		BackoffRate float64       `json:"backoffRate,omitempty" yaml:"backoffRate,omitempty"`
		Interval    time.Duration `json:"interval,omitempty" yaml:"interval,omitempty"`
		Jitter      string        `json:"jitter,omitempty" yaml:"jitter,omitempty"`
		MaxDelay    time.Duration `json:"maxDelay,omitempty" yaml:"maxDelay,omitempty"`
	}

	// Catch converts a step's terminal failure into a fallback output.
	Catch struct {
		OutputKey string      `json:"outputKey,omitempty" yaml:"outputKey,omitempty"`
		Fallback  interface{} `json:"fallback,omitempty" yaml:"fallback,omitempty"`
	}

	// Pass yields Value (static or ${...} expression); nil passes the branch
	// document through unchanged.
	Pass struct {
		Value interface{} `json:"value,omitempty" yaml:"value,omitempty"`
	}
)

// ParseAction parses "service:method"; the method may be omitted.
func ParseAction(text string) *Action {
	parts := strings.SplitN(strings.TrimSpace(text), ":", 2)
	action := &Action{Service: parts[0]}
	if len(parts) > 1 {
		action.Method = parts[1]
	}
	return action
}

func (a *Action) String() string {
	if a.Method == "" {
		return a.Service
	}
	return a.Service + ":" + a.Method
}

// IsTask returns true for task steps.
func (s *Step) IsTask() bool {
	return s.Action != nil
}

// NewTaskStep creates a task step for the service:method action.
func NewTaskStep(name, action string) *Step {
	return &Step{Name: name, Action: ParseAction(action)}
}

// NewPassStep creates a pass step yielding value.
func NewPassStep(name string, value interface{}) *Step {
	return &Step{Name: name, Pass: &Pass{Value: value}}
}

// WithRetry attaches a retry policy.
func (s *Step) WithRetry(retry *Retry) *Step {
	s.Retry = retry
	return s
}

// WithCatch attaches a catch handler.
func (s *Step) WithCatch(outputKey string, fallback interface{}) *Step {
	s.Catch = &Catch{OutputKey: outputKey, Fallback: fallback}
	return s
}

// WithOutputKey sets the step output key.
func (s *Step) WithOutputKey(key string) *Step {
	s.OutputKey = key
	return s
}

// WithInput sets the task input template.
func (s *Step) WithInput(input interface{}) *Step {
	s.Input = input
	return s
}

// WithTimeout sets the task invocation timeout.
func (s *Step) WithTimeout(timeout time.Duration) *Step {
	s.Timeout = timeout
	return s
}

// Validate checks static step properties.
func (s *Step) Validate() []error {
	var issues []error
	if s.Name == "" {
		issues = append(issues, fmt.Errorf("step name is empty"))
	}
	switch {
	case s.Action != nil && s.Pass != nil:
		issues = append(issues, fmt.Errorf("step %s defines both action and pass", s.Name))
	case s.Action == nil && s.Pass == nil:
		issues = append(issues, fmt.Errorf("step %s defines neither action nor pass", s.Name))
	case s.Action != nil && s.Action.Service == "":
		issues = append(issues, fmt.Errorf("step %s has empty action service", s.Name))
	}
	if s.Pass != nil && (s.Retry != nil || s.Catch != nil) {
		issues = append(issues, fmt.Errorf("pass step %s cannot define retry or catch", s.Name))
	}
	if s.Timeout < 0 {
		issues = append(issues, fmt.Errorf("step %s has negative timeout", s.Name))
	}
	if s.Retry != nil {
		for _, issue := range s.Retry.Validate() {
			issues = append(issues, fmt.Errorf("step %s: %w", s.Name, issue))
		}
	}
	return issues
}

// Validate checks retry policy bounds.
func (r *Retry) Validate() []error {
	var issues []error
	if r.MaxAttempts < 1 {
		issues = append(issues, fmt.Errorf("retry maxAttempts must be >= 1, but had %d", r.MaxAttempts))
	}
	if r.BackoffRate < 1 {
		issues = append(issues, fmt.Errorf("retry backoffRate must be >= 1, but had %v", r.BackoffRate))
	}
	if r.Interval <= 0 {
		issues = append(issues, fmt.Errorf("retry interval must be > 0, but had %v", r.Interval))
	}
	switch r.Jitter {
	case "", JitterNone, JitterFull:
	default:
		issues = append(issues, fmt.Errorf("unsupported retry jitter %q", r.Jitter))
	}
	if r.MaxDelay < 0 {
		issues = append(issues, fmt.Errorf("retry maxDelay must be >= 0"))
	}
	return issues
}

// Clone creates a deep copy of a step's structure; template values are
// shared since they are never mutated.
func (s *Step) Clone() *Step {
	if s == nil {
		return nil
	}
	clone := *s
	if s.Action != nil {
		action := *s.Action
		clone.Action = &action
	}
	if s.Retry != nil {
		retry := *s.Retry
		clone.Retry = &retry
	}
	if s.Catch != nil {
		catch := *s.Catch
		clone.Catch = &catch
	}
	if s.Pass != nil {
		pass := *s.Pass
		clone.Pass = &pass
	}
	return &clone
}
