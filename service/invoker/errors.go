package invoker

import (
	"context"
	"errors"

	"github.com/viant/smalltalk/model/types"
)

// ErrTimedOut is the cause of a task call that outlived its timeout.
var ErrTimedOut = errors.New("task timed out")

// Classify converts err into a classified task failure. Errors that already
// carry a class keep it; everything else, timeouts and network errors
// included, is transient.
func Classify(err error) *types.TaskError {
	if err == nil {
		return nil
	}
	var taskErr *types.TaskError
	if errors.As(err, &taskErr) {
		classified := *taskErr
		return &classified
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrTimedOut) {
		return types.NewTransientError(ErrTimedOut.Error(), err)
	}
	return types.NewTransientError(err.Error(), err)
}
