package execution

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/smalltalk/model/types"
)

func TestFailed(t *testing.T) {
	var testCases = []struct {
		description string
		err         error
		expect      string
	}{
		{
			description: "branch failure",
			err:         &types.BranchFailure{Branch: "techNews", Step: "getTechNews", Detail: "upstream unavailable"},
			expect:      `{"id":"x","status":"Failed","error":{"type":"UnhandledBranchFailure","branch":"techNews","step":"getTechNews","detail":"upstream unavailable"}}`,
		},
		{
			description: "timeout",
			err:         types.ErrExecutionTimeout,
			expect:      `{"id":"x","status":"Failed","error":{"type":"ExecutionTimeout","detail":"execution timed out"}}`,
		},
	}

	for _, testCase := range testCases {
		result := Failed("x", testCase.err, nil)
		data, err := json.Marshal(result)
		require.NoError(t, err, testCase.description)
		assert.JSONEq(t, testCase.expect, string(data), testCase.description)
		assert.Nil(t, result.Output, testCase.description)
	}
}

func TestResult_Err(t *testing.T) {
	result := Failed("x", &types.BranchFailure{Branch: "weather", Step: "getWeather", Detail: "boom"}, nil)
	var branchFailure *types.BranchFailure
	require.True(t, errors.As(result.Err(), &branchFailure))
	assert.Equal(t, "weather", branchFailure.Branch)

	assert.ErrorIs(t, Failed("x", types.ErrExecutionTimeout, nil).Err(), types.ErrExecutionTimeout)
	assert.NoError(t, Succeeded("x", map[string]interface{}{}, nil).Err())
}

func TestSucceeded_JSON(t *testing.T) {
	result := Succeeded("", map[string]interface{}{"weather": map[string]interface{}{"temp": 71}}, nil)
	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"Succeeded","output":{"weather":{"temp":71}}}`, string(data))
}
