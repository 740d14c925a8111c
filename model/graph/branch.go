package graph

import "fmt"

// Branch is an ordered chain of steps run concurrently with its siblings.
type Branch struct {
	ID string `json:"id" yaml:"id"`
	// OutputKey is the merge key of the branch output; defaults to ID.
	OutputKey string  `json:"outputKey,omitempty" yaml:"outputKey,omitempty"`
	Steps     []*Step `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// NewBranch creates a branch with the given id.
func NewBranch(id string) *Branch {
	return &Branch{ID: id}
}

// Key returns the declared merge key.
func (b *Branch) Key() string {
	if b.OutputKey != "" {
		return b.OutputKey
	}
	return b.ID
}

// WithOutputKey sets the merge key.
func (b *Branch) WithOutputKey(key string) *Branch {
	b.OutputKey = key
	return b
}

// AddStep appends a step and returns it for further configuration.
func (b *Branch) AddStep(step *Step) *Step {
	b.Steps = append(b.Steps, step)
	return step
}

// Validate checks the branch and its steps.
func (b *Branch) Validate() []error {
	var issues []error
	if b.ID == "" {
		issues = append(issues, fmt.Errorf("branch id is empty"))
	}
	if len(b.Steps) == 0 {
		issues = append(issues, fmt.Errorf("branch %s has no steps", b.ID))
	}
	seen := map[string]bool{}
	for i, step := range b.Steps {
		if step == nil {
			issues = append(issues, fmt.Errorf("branch %s step[%d] is nil", b.ID, i))
			continue
		}
		if seen[step.Name] {
			issues = append(issues, fmt.Errorf("branch %s has duplicate step %s", b.ID, step.Name))
		}
		seen[step.Name] = true
		for _, issue := range step.Validate() {
			issues = append(issues, fmt.Errorf("branch %s: %w", b.ID, issue))
		}
	}
	return issues
}

// Clone creates a deep copy of the branch.
func (b *Branch) Clone() *Branch {
	if b == nil {
		return nil
	}
	clone := &Branch{ID: b.ID, OutputKey: b.OutputKey}
	if b.Steps != nil {
		clone.Steps = make([]*Step, len(b.Steps))
		for i, step := range b.Steps {
			clone.Steps[i] = step.Clone()
		}
	}
	return clone
}
