// Package orchestrator runs express executions: it fans the workflow out
// through the parallel coordinator, merges settled branch outputs and
// reports a single synchronous result to the caller.
package orchestrator
