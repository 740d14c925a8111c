package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExecutionTimeout is reported when the express deadline elapses
	// before every branch settles.
	ErrExecutionTimeout = errors.New("execution timed out")

	// ErrExecutionAborted is returned by blocking calls once the execution
	// context ends; it is never merged into branch output.
	ErrExecutionAborted = errors.New("execution aborted")
)

func NewMethodNotFoundError(name string) error {
	return fmt.Errorf("method %v not found", name)
}

func NewInvalidInputError(in interface{}) error {
	return fmt.Errorf("invalid input %T", in)
}

func NewInvalidOutputError(in interface{}) error {
	return fmt.Errorf("invalid output %T", in)
}

// TaskError is a classified task failure. Transient failures are retryable,
// permanent ones never are.
type TaskError struct {
	Task      string
	Transient bool
	Detail    string
	Err       error
}

func (e *TaskError) Error() string {
	class := "permanent"
	if e.Transient {
		class = "transient"
	}
	if e.Task == "" {
		return fmt.Sprintf("%s task failure: %s", class, e.Detail)
	}
	return fmt.Sprintf("%s task failure %s: %s", class, e.Task, e.Detail)
}

func (e *TaskError) Unwrap() error { return e.Err }

// Class returns "Transient" or "Permanent".
func (e *TaskError) Class() string {
	if e.Transient {
		return "Transient"
	}
	return "Permanent"
}

// NewTransientError returns a retryable task failure.
func NewTransientError(detail string, err error) *TaskError {
	return &TaskError{Transient: true, Detail: detail, Err: err}
}

// NewPermanentError returns a non-retryable task failure.
func NewPermanentError(detail string, err error) *TaskError {
	return &TaskError{Detail: detail, Err: err}
}

// RetriesExhaustedError is the terminal state of a task step once the retry
// policy grants no further attempt. A catch handler may absorb it.
type RetriesExhaustedError struct {
	Step     string
	Attempts int
	Last     *TaskError
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("step %s failed after %d attempt(s): %v", e.Step, e.Attempts, e.Last)
}

func (e *RetriesExhaustedError) Unwrap() error { return e.Last }

// BranchFailure is an unhandled branch failure; it aborts the execution.
type BranchFailure struct {
	Branch string
	Step   string
	Detail string
	Err    error
}

func (e *BranchFailure) Error() string {
	return fmt.Sprintf("branch %s failed at step %s: %s", e.Branch, e.Step, e.Detail)
}

func (e *BranchFailure) Unwrap() error { return e.Err }

// DefinitionError aggregates structural problems found when building a
// workflow definition.
type DefinitionError struct {
	Workflow string
	Issues   []error
}

func (e *DefinitionError) Error() string {
	texts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		texts = append(texts, issue.Error())
	}
	return fmt.Sprintf("invalid workflow %s: %s", e.Workflow, strings.Join(texts, "; "))
}

// Unwrap exposes individual issues to errors.Is/As.
func (e *DefinitionError) Unwrap() []error { return e.Issues }
