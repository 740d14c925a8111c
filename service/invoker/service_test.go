package invoker

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/smalltalk/extension"
	"github.com/viant/smalltalk/model/graph"
	"github.com/viant/smalltalk/model/types"
	"github.com/viant/smalltalk/service/action/fn"
)

type coordinates struct {
	Location string  `json:"location"`
	Lat      float64 `json:"lat"`
}

type coordinatesService struct{}

func (s *coordinatesService) Name() string { return "geo" }

func (s *coordinatesService) Methods() types.Signatures {
	return types.Signatures{{
		Name:   "locate",
		Input:  reflect.TypeOf(&coordinates{}),
		Output: reflect.TypeOf(&coordinates{}),
	}}
}

func (s *coordinatesService) Method(name string) (types.Executable, error) {
	return func(ctx context.Context, in, out interface{}) error {
		input := in.(*coordinates)
		output := out.(*coordinates)
		output.Location = input.Location
		output.Lat = 42.36
		return nil
	}, nil
}

func newInvoker() *Service {
	tasks := fn.New("test").
		With("echo", func(ctx context.Context, input interface{}) (interface{}, error) {
			return input, nil
		}).
		With("hang", func(ctx context.Context, input interface{}) (interface{}, error) {
			time.Sleep(time.Second)
			return "late", nil
		}).
		With("permanent", func(ctx context.Context, input interface{}) (interface{}, error) {
			return nil, types.NewPermanentError("bad request", nil)
		}).
		With("plain", func(ctx context.Context, input interface{}) (interface{}, error) {
			return nil, errors.New("connection reset by peer")
		}).
		With("panic", func(ctx context.Context, input interface{}) (interface{}, error) {
			panic("boom")
		})
	return New(extension.NewActions(tasks, &coordinatesService{}), WithListener(nil))
}

func TestService_Invoke(t *testing.T) {
	var testCases = []struct {
		description     string
		action          string
		input           interface{}
		expect          interface{}
		expectTransient bool
		expectErr       string
	}{
		{
			description: "document echo",
			action:      "test:echo",
			input:       map[string]interface{}{"location": "Boston"},
			expect:      map[string]interface{}{"location": "Boston"},
		},
		{
			description: "typed input and output",
			action:      "geo:locate",
			input:       map[string]interface{}{"location": "Boston", "ignored": true},
			expect:      map[string]interface{}{"location": "Boston", "lat": 42.36},
		},
		{
			description: "default method",
			action:      "geo",
			input:       map[string]interface{}{"location": "Paris"},
			expect:      map[string]interface{}{"location": "Paris", "lat": 42.36},
		},
		{
			description:     "timeout is transient",
			action:          "test:hang",
			expectTransient: true,
			expectErr:       "task timed out",
		},
		{
			description: "task classified permanent",
			action:      "test:permanent",
			expectErr:   "bad request",
		},
		{
			description:     "unclassified error is transient",
			action:          "test:plain",
			expectTransient: true,
			expectErr:       "connection reset by peer",
		},
		{
			description: "unknown service is permanent",
			action:      "missing:call",
			expectErr:   "service missing not found",
		},
		{
			description: "unknown method is permanent",
			action:      "test:missing",
			expectErr:   "method missing not found",
		},
		{
			description: "panic is permanent",
			action:      "test:panic",
			expectErr:   "task panicked: boom",
		},
	}

	invoker := newInvoker()
	for _, testCase := range testCases {
		output, err := invoker.Invoke(context.Background(), graph.ParseAction(testCase.action), testCase.input, 50*time.Millisecond)
		if testCase.expectErr == "" {
			require.NoError(t, err, testCase.description)
			assert.EqualValues(t, testCase.expect, output, testCase.description)
			continue
		}
		require.Error(t, err, testCase.description)
		var taskErr *types.TaskError
		require.True(t, errors.As(err, &taskErr), testCase.description)
		assert.Equal(t, testCase.expectTransient, taskErr.Transient, testCase.description)
		assert.Contains(t, taskErr.Detail, testCase.expectErr, testCase.description)
		assert.Nil(t, output, testCase.description)
	}
}

func TestService_Invoke_Aborted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := newInvoker().Invoke(ctx, graph.ParseAction("test:hang"), nil, time.Minute)
	assert.ErrorIs(t, err, types.ErrExecutionAborted)
}

func TestService_Invoke_InputNotShared(t *testing.T) {
	var seen interface{}
	tasks := fn.New("test").With("mutate", func(ctx context.Context, input interface{}) (interface{}, error) {
		input.(map[string]interface{})["changed"] = true
		seen = input
		return "ok", nil
	})
	invoker := New(extension.NewActions(tasks), WithListener(nil))
	input := map[string]interface{}{"location": "Boston"}
	_, err := invoker.Invoke(context.Background(), graph.ParseAction("test:mutate"), input, time.Second)
	require.NoError(t, err)
	assert.NotContains(t, input, "changed")
	assert.Contains(t, seen, "changed")
}

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify(nil))
	assert.True(t, Classify(context.DeadlineExceeded).Transient)
	assert.Equal(t, "task timed out", Classify(context.DeadlineExceeded).Detail)

	permanent := types.NewPermanentError("invalid", nil)
	classified := Classify(permanent)
	assert.False(t, classified.Transient)
	assert.NotSame(t, permanent, classified)
}
