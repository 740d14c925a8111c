package merger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/smalltalk/model/graph"
	"github.com/viant/smalltalk/runtime/execution"
)

func TestMerge(t *testing.T) {
	outcomes := []*execution.BranchOutcome{
		{BranchID: "weather", OutputKey: "weather", Status: execution.BranchSucceeded, Output: map[string]interface{}{"temp": 59}},
		{BranchID: "techNews", OutputKey: "techNews", Status: execution.BranchRecovered, Output: []interface{}{"story"}},
	}
	input := map[string]interface{}{"body": map[string]interface{}{"location": "Boston"}}

	var testCases = []struct {
		description string
		merge       *graph.Step
		expect      interface{}
	}{
		{
			description: "no merge step",
			expect: map[string]interface{}{
				"weather":  map[string]interface{}{"temp": 59},
				"techNews": []interface{}{"story"},
			},
		},
		{
			description: "passthrough merge step",
			merge:       graph.NewPassStep("merge", "${state}"),
			expect: map[string]interface{}{
				"weather":  map[string]interface{}{"temp": 59},
				"techNews": []interface{}{"story"},
			},
		},
		{
			description: "reshaping merge step",
			merge: graph.NewPassStep("merge", map[string]interface{}{
				"location": "${input.body.location}",
				"temp":     "${state.weather.temp}",
				"news":     "${state.techNews}",
			}),
			expect: map[string]interface{}{
				"location": "Boston",
				"temp":     59,
				"news":     []interface{}{"story"},
			},
		},
		{
			description: "merge step output key",
			merge:       graph.NewPassStep("merge", "${input.body.location}").WithOutputKey("location"),
			expect: map[string]interface{}{
				"weather":  map[string]interface{}{"temp": 59},
				"techNews": []interface{}{"story"},
				"location": "Boston",
			},
		},
	}

	for _, testCase := range testCases {
		actual := Merge(outcomes, testCase.merge, input)
		assert.EqualValues(t, testCase.expect, actual, testCase.description)
	}
}

func TestMerge_SkipsFailedOutcomes(t *testing.T) {
	outcomes := []*execution.BranchOutcome{
		{BranchID: "weather", OutputKey: "weather", Status: execution.BranchFailed},
		{BranchID: "techNews", OutputKey: "techNews", Status: execution.BranchSucceeded, Output: "ok"},
	}
	assert.Equal(t, map[string]interface{}{"techNews": "ok"}, Merge(outcomes, nil, nil))
}
