package execution

// StepState represents the current state of a step within a branch.
type StepState string

const (
	StepStatePending       StepState = "pending"
	StepStateInvoking      StepState = "invoking"
	StepStateRetrying      StepState = "retrying"
	StepStateSucceeded     StepState = "succeeded"
	StepStateCaughtFailure StepState = "caughtFailure"
	StepStateFatalFailure  StepState = "fatalFailure"
	// StepStateAborted marks a step interrupted by the end of the execution.
	StepStateAborted StepState = "aborted"
)

// IsTerminal returns true when no further transition is possible.
func (s StepState) IsTerminal() bool {
	switch s {
	case StepStateSucceeded, StepStateCaughtFailure, StepStateFatalFailure, StepStateAborted:
		return true
	}
	return false
}

// BranchStatus is the terminal status of a branch.
type BranchStatus string

const (
	BranchSucceeded BranchStatus = "Succeeded"
	BranchRecovered BranchStatus = "Recovered"
	BranchFailed    BranchStatus = "Failed"
	BranchAborted   BranchStatus = "Aborted"
)

// Status is the terminal status of an execution.
type Status string

const (
	StatusSucceeded Status = "Succeeded"
	StatusFailed    Status = "Failed"
)
