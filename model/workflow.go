package model

import (
	"fmt"
	"time"

	"github.com/viant/smalltalk/model/graph"
	"github.com/viant/smalltalk/model/types"
)

// Workflow represents a fan-out workflow definition: branches run
// concurrently, then their outputs are merged under each branch output key.
type Workflow struct {

	// Source provides information about the origin of the workflow
	Source *Source `json:"source,omitempty" yaml:"source,omitempty"`

	// Name is the unique identifier for the workflow
	Name string `json:"name" yaml:"name"`

	// Description provides a human-readable description of the workflow
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Version specifies the workflow version
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Timeout is the express execution deadline; zero means engine default.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Branches run concurrently; order defines merge and reporting order.
	Branches []*graph.Branch `json:"branches,omitempty" yaml:"branches,omitempty"`

	// Merge is an optional pass step applied to the merged document.
	Merge *graph.Step `json:"merge,omitempty" yaml:"merge,omitempty"`

	built bool
}

type Source struct {
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Validate performs structural validation of the workflow. The returned slice
// is empty when the workflow is sound. Expressions are not evaluated.
func (w *Workflow) Validate() []error {
	var issues []error
	if w.Name == "" {
		issues = append(issues, fmt.Errorf("workflow name is empty"))
	}
	if len(w.Branches) == 0 {
		issues = append(issues, fmt.Errorf("workflow has no branches"))
	}
	if w.Timeout < 0 {
		issues = append(issues, fmt.Errorf("workflow timeout must be >= 0"))
	}
	ids := map[string]bool{}
	keys := map[string]string{}
	for i, branch := range w.Branches {
		if branch == nil {
			issues = append(issues, fmt.Errorf("branch[%d] is nil", i))
			continue
		}
		if ids[branch.ID] {
			issues = append(issues, fmt.Errorf("duplicate branch id %s", branch.ID))
		}
		ids[branch.ID] = true
		key := branch.Key()
		if owner, ok := keys[key]; ok {
			issues = append(issues, fmt.Errorf("branches %s and %s declare the same output key %q", owner, branch.ID, key))
		} else {
			keys[key] = branch.ID
		}
		issues = append(issues, branch.Validate()...)
	}
	if w.Merge != nil {
		if w.Merge.Pass == nil || w.Merge.Action != nil {
			issues = append(issues, fmt.Errorf("merge step must be a pass step"))
		}
		if owner, ok := keys[w.Merge.OutputKey]; ok && w.Merge.OutputKey != "" {
			issues = append(issues, fmt.Errorf("merge step output key %q collides with branch %s", w.Merge.OutputKey, owner))
		}
	}
	return issues
}

// Build validates the workflow and returns an immutable copy suitable for
// sharing across concurrent executions.
func (w *Workflow) Build() (*Workflow, error) {
	if w == nil {
		return nil, &types.DefinitionError{Issues: []error{fmt.Errorf("workflow is nil")}}
	}
	if issues := w.Validate(); len(issues) > 0 {
		return nil, &types.DefinitionError{Workflow: w.Name, Issues: issues}
	}
	clone := w.Clone()
	if clone.Merge != nil && clone.Merge.Name == "" {
		clone.Merge.Name = "merge"
	}
	clone.built = true
	return clone, nil
}

// IsBuilt returns true for workflows returned by Build.
func (w *Workflow) IsBuilt() bool {
	return w != nil && w.built
}

// NewWorkflow creates a new workflow with the given name
func NewWorkflow(name string) *Workflow {
	return &Workflow{Name: name}
}

// WithDescription sets the description of the workflow
func (w *Workflow) WithDescription(description string) *Workflow {
	w.Description = description
	return w
}

// WithVersion sets the version of the workflow
func (w *Workflow) WithVersion(version string) *Workflow {
	w.Version = version
	return w
}

// WithTimeout sets the express execution deadline
func (w *Workflow) WithTimeout(timeout time.Duration) *Workflow {
	w.Timeout = timeout
	return w
}

// WithMerge sets the merge pass step value.
func (w *Workflow) WithMerge(value interface{}) *Workflow {
	w.Merge = graph.NewPassStep("merge", value)
	return w
}

// NewBranch creates a branch and adds it to the workflow
func (w *Workflow) NewBranch(id string) *graph.Branch {
	branch := graph.NewBranch(id)
	w.Branches = append(w.Branches, branch)
	return branch
}

// Branch returns a branch by id
func (w *Workflow) Branch(id string) *graph.Branch {
	for _, branch := range w.Branches {
		if branch.ID == id {
			return branch
		}
	}
	return nil
}

// Clone creates a deep copy of the workflow
func (w *Workflow) Clone() *Workflow {
	if w == nil {
		return nil
	}
	clone := &Workflow{
		Name:        w.Name,
		Description: w.Description,
		Version:     w.Version,
		Timeout:     w.Timeout,
		Merge:       w.Merge.Clone(),
	}
	if w.Source != nil {
		source := *w.Source
		clone.Source = &source
	}
	if w.Branches != nil {
		clone.Branches = make([]*graph.Branch, len(w.Branches))
		for i, branch := range w.Branches {
			clone.Branches[i] = branch.Clone()
		}
	}
	return clone
}
