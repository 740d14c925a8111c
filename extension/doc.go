// Package extension provides the run-time registry of task collaborators.
// Workflow steps name a task as service:method; the registry resolves that
// name to an executable method and its typed signature.
package extension
