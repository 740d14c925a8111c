package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/smalltalk/model/graph"
	"github.com/viant/smalltalk/model/types"
)

func newSmallTalk() *Workflow {
	workflow := NewWorkflow("small-talk").WithTimeout(4 * time.Minute).WithMerge("${state}")
	weather := workflow.NewBranch("weather")
	weather.AddStep(graph.NewTaskStep("getCoordinates", "weather:coordinates")).
		WithOutputKey("metadata").
		WithRetry(&graph.Retry{MaxAttempts: 3, BackoffRate: 2, Interval: 2 * time.Second, Jitter: graph.JitterFull})
	weather.AddStep(graph.NewTaskStep("getWeather", "weather:current")).WithCatch("", nil)
	workflow.NewBranch("techNews").AddStep(graph.NewTaskStep("getTechNews", "technews:top"))
	return workflow
}

func TestWorkflow_Build(t *testing.T) {
	var testCases = []struct {
		description string
		mutate      func(w *Workflow)
		expectIssue string
	}{
		{description: "valid", mutate: func(w *Workflow) {}},
		{description: "empty name", mutate: func(w *Workflow) { w.Name = "" }, expectIssue: "workflow name is empty"},
		{description: "no branches", mutate: func(w *Workflow) { w.Branches = nil }, expectIssue: "workflow has no branches"},
		{
			description: "output key collision",
			mutate:      func(w *Workflow) { w.Branch("weather").WithOutputKey("techNews") },
			expectIssue: `branches weather and techNews declare the same output key "techNews"`,
		},
		{
			description: "duplicate branch",
			mutate: func(w *Workflow) {
				w.NewBranch("techNews").WithOutputKey("news").AddStep(graph.NewPassStep("noop", nil))
			},
			expectIssue: "duplicate branch id techNews",
		},
		{
			description: "branch without steps",
			mutate:      func(w *Workflow) { w.NewBranch("empty") },
			expectIssue: "branch empty has no steps",
		},
		{
			description: "retry bounds",
			mutate:      func(w *Workflow) { w.Branch("weather").Steps[0].Retry.MaxAttempts = 0 },
			expectIssue: "retry maxAttempts must be >= 1",
		},
		{
			description: "unsupported jitter",
			mutate:      func(w *Workflow) { w.Branch("weather").Steps[0].Retry.Jitter = "decorrelated" },
			expectIssue: `unsupported retry jitter "decorrelated"`,
		},
		{
			description: "merge must be a pass step",
			mutate:      func(w *Workflow) { w.Merge = graph.NewTaskStep("merge", "fn:merge") },
			expectIssue: "merge step must be a pass step",
		},
		{
			description: "merge output key collides with branch",
			mutate:      func(w *Workflow) { w.Merge.WithOutputKey("weather") },
			expectIssue: `merge step output key "weather" collides with branch weather`,
		},
		{
			description: "merge output key beside branches",
			mutate:      func(w *Workflow) { w.Merge.WithOutputKey("summary") },
		},
		{
			description: "pass step with retry",
			mutate: func(w *Workflow) {
				w.Branch("techNews").AddStep(graph.NewPassStep("shape", "${state}")).WithRetry(&graph.Retry{MaxAttempts: 1, BackoffRate: 1, Interval: time.Second})
			},
			expectIssue: "pass step shape cannot define retry or catch",
		},
	}

	for _, testCase := range testCases {
		workflow := newSmallTalk()
		testCase.mutate(workflow)
		built, err := workflow.Build()
		if testCase.expectIssue == "" {
			require.NoError(t, err, testCase.description)
			assert.True(t, built.IsBuilt(), testCase.description)
			assert.False(t, workflow.IsBuilt(), testCase.description)
			continue
		}
		var definitionErr *types.DefinitionError
		require.True(t, errors.As(err, &definitionErr), testCase.description)
		assert.Contains(t, err.Error(), testCase.expectIssue, testCase.description)
		assert.Nil(t, built, testCase.description)
	}
}

func TestWorkflow_BuildIsIsolated(t *testing.T) {
	workflow := newSmallTalk()
	built, err := workflow.Build()
	require.NoError(t, err)

	workflow.Branch("weather").Steps[0].Retry.MaxAttempts = 10
	workflow.Branch("techNews").OutputKey = "news"
	assert.Equal(t, 3, built.Branch("weather").Steps[0].Retry.MaxAttempts)
	assert.Equal(t, "techNews", built.Branch("techNews").Key())
	assert.Equal(t, "merge", built.Merge.Name)
}

func TestWorkflow_NilBuild(t *testing.T) {
	var workflow *Workflow
	_, err := workflow.Build()
	var definitionErr *types.DefinitionError
	assert.True(t, errors.As(err, &definitionErr))
	assert.False(t, workflow.IsBuilt())
}
