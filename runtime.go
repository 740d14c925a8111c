package smalltalk

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/smalltalk/model"
	"github.com/viant/smalltalk/runtime/execution"
	"github.com/viant/smalltalk/runtime/orchestrator"
	"github.com/viant/smalltalk/service/dao/workflow"
)

// Runtime represents a workflow engine runtime
type Runtime struct {
	workflowDAO  *workflow.Service
	orchestrator *orchestrator.Orchestrator
}

// Run executes workflow against input; a zero deadline falls back to the
// workflow timeout.
func (r *Runtime) Run(ctx context.Context, workflow *model.Workflow, input map[string]interface{}, deadline time.Duration) *execution.Result {
	return r.orchestrator.Run(ctx, workflow, input, deadline)
}

// LoadWorkflow loads a workflow
func (r *Runtime) LoadWorkflow(ctx context.Context, location string) (*model.Workflow, error) {
	return r.workflowDAO.Load(ctx, location)
}

// DefaultWorkflow returns the embedded small talk workflow
func (r *Runtime) DefaultWorkflow() (*model.Workflow, error) {
	return r.workflowDAO.Default()
}

// DecodeYAMLWorkflow decodes a workflow
func (r *Runtime) DecodeYAMLWorkflow(data []byte) (*model.Workflow, error) {
	return r.workflowDAO.DecodeYAML(data)
}

// RefreshWorkflow discards any cached copy of the workflow definition located
// at the given location; the next LoadWorkflow reloads it.
func (r *Runtime) RefreshWorkflow(location string) error {
	if r == nil || r.workflowDAO == nil {
		return fmt.Errorf("runtime not initialised: workflowDAO missing")
	}
	r.workflowDAO.Refresh(location)
	return nil
}

// UpsertDefinition decodes YAML data and caches the workflow under location.
// Nil data falls back to RefreshWorkflow. Executions already running keep
// the definition they started with.
func (r *Runtime) UpsertDefinition(location string, data []byte) error {
	if r == nil || r.workflowDAO == nil {
		return fmt.Errorf("runtime not initialised: workflowDAO missing")
	}
	if data == nil {
		return r.RefreshWorkflow(location)
	}
	decoded, err := r.workflowDAO.DecodeYAML(data)
	if err != nil {
		return fmt.Errorf("failed to decode workflow YAML: %w", err)
	}
	if decoded.Source == nil {
		decoded.Source = &model.Source{URL: location}
	} else {
		decoded.Source.URL = location
	}
	r.workflowDAO.Upsert(location, decoded)
	return nil
}
