package invoker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/viant/structology/conv"

	"github.com/viant/smalltalk/extension"
	"github.com/viant/smalltalk/model/graph"
	"github.com/viant/smalltalk/model/types"
	"github.com/viant/smalltalk/runtime/document"
	"github.com/viant/smalltalk/tracing"
)

// DefaultTimeout bounds a task call when the step declares none.
const DefaultTimeout = 30 * time.Second

// Listener is invoked once a task call completes, whether or not it failed.
type Listener func(action *graph.Action, input, output interface{}, err error)

// LogListener logs every task call at debug level.
func LogListener(action *graph.Action, input, output interface{}, err error) {
	event := log.Debug().Str("action", action.String()).Interface("input", input)
	if err != nil {
		event.Err(err).Msg("task call failed")
		return
	}
	event.Interface("output", output).Msg("task call completed")
}

// Option is used to customise the invoker.
type Option func(*Service)

// WithListener overrides the listener; nil disables it.
func WithListener(listener Listener) Option {
	return func(s *Service) {
		s.listener = listener
	}
}

// WithDefaultTimeout sets the timeout used when a step declares none.
func WithDefaultTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.defaultTimeout = timeout
	}
}

// Service invokes task methods registered in the action registry.
type Service struct {
	actions        *extension.Actions
	converter      *conv.Converter
	listener       Listener
	defaultTimeout time.Duration
}

type callResult struct {
	output interface{}
	err    error
}

// Invoke performs a single task call. It returns the output document, a
// *types.TaskError for task failures, or types.ErrExecutionAborted once ctx
// ends before the call settles.
func (s *Service) Invoke(ctx context.Context, action *graph.Action, input interface{}, timeout time.Duration) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, types.ErrExecutionAborted
	}
	method, signature, err := s.actions.Resolve(action)
	if err != nil {
		return nil, types.NewPermanentError(err.Error(), err)
	}
	if timeout <= 0 {
		timeout = s.defaultTimeout
	}

	ctx, span := tracing.StartSpan(ctx, "task.invoke", "CLIENT")
	span.WithAttributes(map[string]string{"action": action.String()})

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// buffered so an abandoned call never blocks
	done := make(chan callResult, 1)
	go func() {
		output, err := s.call(callCtx, method, signature, input)
		done <- callResult{output: output, err: err}
	}()

	var output interface{}
	select {
	case result := <-done:
		output, err = result.output, result.err
		if err != nil && ctx.Err() != nil {
			err = types.ErrExecutionAborted
		}
	case <-callCtx.Done():
		if ctx.Err() != nil {
			err = types.ErrExecutionAborted
		} else {
			err = ErrTimedOut
		}
	}
	if err != nil && !errors.Is(err, types.ErrExecutionAborted) {
		taskErr := Classify(err)
		if taskErr.Task == "" {
			taskErr.Task = action.String()
		}
		err = taskErr
	}
	tracing.EndSpan(span, err)
	if s.listener != nil {
		s.listener(action, input, output, err)
	}
	if err != nil {
		return nil, err
	}
	return output, nil
}

func (s *Service) call(ctx context.Context, method types.Executable, signature *types.Signature, input interface{}) (output interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = types.NewPermanentError(fmt.Sprintf("task panicked: %v", r), nil)
		}
	}()
	typedInput, err := s.typedValue(signature.Input, input)
	if err != nil {
		return nil, types.NewPermanentError(types.NewInvalidInputError(input).Error(), err)
	}
	typedOutput := newInstancePtr(signature.Output)
	if err = method(ctx, typedInput, typedOutput); err != nil {
		return nil, err
	}
	return asDocument(typedOutput)
}

func (s *Service) typedValue(aType reflect.Type, value interface{}) (interface{}, error) {
	instance := newInstancePtr(aType)
	if value == nil {
		return instance, nil
	}
	target := reflect.ValueOf(instance).Elem()
	if source := reflect.ValueOf(value); source.Type().AssignableTo(target.Type()) {
		target.Set(reflect.ValueOf(document.Copy(value)))
		return instance, nil
	}
	if err := s.converter.Convert(value, instance); err != nil {
		return nil, err
	}
	return instance, nil
}

func newInstancePtr(t reflect.Type) interface{} {
	if t == nil {
		return &map[string]interface{}{}
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return reflect.New(t).Interface()
}

// asDocument converts a typed output into a JSON document.
func asDocument(output interface{}) (interface{}, error) {
	data, err := json.Marshal(output)
	if err != nil {
		return nil, types.NewPermanentError(types.NewInvalidOutputError(output).Error(), err)
	}
	var doc interface{}
	if err = json.Unmarshal(data, &doc); err != nil {
		return nil, types.NewPermanentError(types.NewInvalidOutputError(output).Error(), err)
	}
	return doc, nil
}

// New creates an invoker for the supplied registry.
func New(actions *extension.Actions, opts ...Option) *Service {
	options := conv.DefaultOptions()
	options.ClonePointerData = true
	options.IgnoreUnmapped = true
	options.AccessUnexported = true

	s := &Service{
		actions:        actions,
		converter:      conv.NewConverter(options),
		listener:       LogListener,
		defaultTimeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
