package execution

import (
	"errors"

	"github.com/viant/smalltalk/model/types"
)

// Error types reported to callers.
const (
	ErrorTypeBranchFailure    = "UnhandledBranchFailure"
	ErrorTypeExecutionTimeout = "ExecutionTimeout"
	ErrorTypeExecutionAborted = "ExecutionAborted"
	ErrorTypeDefinition       = "DefinitionError"
)

// ErrorInfo describes why an execution failed.
type ErrorInfo struct {
	Type   string `json:"type"`
	Branch string `json:"branch,omitempty"`
	Step   string `json:"step,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Result is the terminal record of an execution. Output is set only when
// Status is Succeeded.
type Result struct {
	ID       string           `json:"id,omitempty"`
	Status   Status           `json:"status"`
	Output   interface{}      `json:"output,omitempty"`
	Error    *ErrorInfo       `json:"error,omitempty"`
	Outcomes []*BranchOutcome `json:"-"`
}

// Succeeded creates a successful result.
func Succeeded(id string, output interface{}, outcomes []*BranchOutcome) *Result {
	return &Result{ID: id, Status: StatusSucceeded, Output: output, Outcomes: outcomes}
}

// Failed creates a failed result from err. A *types.BranchFailure reports its
// branch and step; types.ErrExecutionTimeout reports a timeout.
func Failed(id string, err error, outcomes []*BranchOutcome) *Result {
	info := &ErrorInfo{Detail: err.Error()}
	var branchFailure *types.BranchFailure
	var definitionErr *types.DefinitionError
	switch {
	case errors.As(err, &branchFailure):
		info.Type = ErrorTypeBranchFailure
		info.Branch = branchFailure.Branch
		info.Step = branchFailure.Step
		info.Detail = branchFailure.Detail
	case errors.Is(err, types.ErrExecutionTimeout):
		info.Type = ErrorTypeExecutionTimeout
	case errors.As(err, &definitionErr):
		info.Type = ErrorTypeDefinition
	default:
		info.Type = ErrorTypeExecutionAborted
	}
	return &Result{ID: id, Status: StatusFailed, Error: info, Outcomes: outcomes}
}

// Err returns the failure as an error or nil for successful results.
func (r *Result) Err() error {
	if r.Status != StatusFailed || r.Error == nil {
		return nil
	}
	switch r.Error.Type {
	case ErrorTypeBranchFailure:
		return &types.BranchFailure{Branch: r.Error.Branch, Step: r.Error.Step, Detail: r.Error.Detail}
	case ErrorTypeExecutionTimeout:
		return types.ErrExecutionTimeout
	case ErrorTypeDefinition:
		return &types.DefinitionError{Issues: []error{errors.New(r.Error.Detail)}}
	}
	return types.ErrExecutionAborted
}

// Outcome returns the outcome of a branch or nil.
func (r *Result) Outcome(branchID string) *BranchOutcome {
	for _, outcome := range r.Outcomes {
		if outcome.BranchID == branchID {
			return outcome
		}
	}
	return nil
}
