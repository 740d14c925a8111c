// Package merger assembles branch outputs into the execution output.
package merger

import (
	"github.com/viant/smalltalk/model/graph"
	"github.com/viant/smalltalk/runtime/document"
	"github.com/viant/smalltalk/runtime/execution"
	"github.com/viant/smalltalk/runtime/expander"
)

// Merge places each merged outcome's output under its output key, in
// outcome order, then applies the optional merge pass step. Output keys are
// unique per built workflow so no branch overwrites another.
func Merge(outcomes []*execution.BranchOutcome, mergeStep *graph.Step, input map[string]interface{}) interface{} {
	merged := make(map[string]interface{}, len(outcomes))
	for _, outcome := range outcomes {
		if outcome == nil || !outcome.Merged() {
			continue
		}
		merged[outcome.OutputKey] = outcome.Output
	}
	if mergeStep == nil || mergeStep.Pass == nil || mergeStep.Pass.Value == nil {
		return merged
	}
	value := expander.Expand(mergeStep.Pass.Value, map[string]interface{}{"input": input, "state": merged})
	return document.With(merged, mergeStep.OutputKey, value)
}
