// Package catch converts a step's terminal failure into a fallback document.
package catch

import (
	"errors"

	"github.com/viant/smalltalk/model/graph"
	"github.com/viant/smalltalk/model/types"
	"github.com/viant/smalltalk/runtime/document"
	"github.com/viant/smalltalk/runtime/expander"
)

// Summary describes a caught failure; it is exposed to fallback templates
// as the "error" variable.
func Summary(err error) map[string]interface{} {
	summary := map[string]interface{}{
		"error":     "TaskFailure",
		"cause":     "",
		"transient": false,
		"attempts":  1,
	}
	if err == nil {
		return summary
	}
	summary["cause"] = err.Error()
	var exhausted *types.RetriesExhaustedError
	if errors.As(err, &exhausted) {
		summary["step"] = exhausted.Step
		summary["attempts"] = exhausted.Attempts
		summary["error"] = "RetriesExhausted"
	}
	var taskErr *types.TaskError
	if errors.As(err, &taskErr) {
		summary["cause"] = taskErr.Detail
		summary["transient"] = taskErr.Transient
		if summary["error"] == "TaskFailure" {
			summary["error"] = taskErr.Class()
		}
	}
	return summary
}

// Resolve expands the handler fallback against the failure, the execution
// input and the current branch document, then places the result by the
// handler output key. A nil fallback yields the failure summary.
func Resolve(handler *graph.Catch, failure error, input map[string]interface{}, doc interface{}) interface{} {
	summary := Summary(failure)
	var fallback interface{} = summary
	if handler.Fallback != nil {
		fallback = expander.Expand(handler.Fallback, map[string]interface{}{
			"error": summary,
			"input": input,
			"state": doc,
		})
	}
	return document.With(doc, handler.OutputKey, fallback)
}
