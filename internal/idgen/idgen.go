package idgen

import "github.com/google/uuid"

// NewFunc returns a new globally unique identifier as string.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new identifier.
func New() string { return NewFunc() }

// NewExecutionID returns an execution identifier scoped to the workflow name,
// e.g. "small-talk/8c1f...".
func NewExecutionID(workflow string) string {
	if workflow == "" {
		return New()
	}
	return workflow + "/" + New()
}
