// Package fn exposes plain Go functions as task services.
package fn

import (
	"context"
	"reflect"

	"github.com/viant/smalltalk/model/types"
)

// Func is a task implemented as a function over documents.
type Func func(ctx context.Context, input interface{}) (interface{}, error)

var documentType = reflect.TypeOf((*interface{})(nil))

// Service is a named group of function tasks.
type Service struct {
	name    string
	order   []string
	methods map[string]Func
}

// New creates an empty function service.
func New(name string) *Service {
	return &Service{name: name, methods: map[string]Func{}}
}

// With registers fn under method.
func (s *Service) With(method string, fn Func) *Service {
	if _, ok := s.methods[method]; !ok {
		s.order = append(s.order, method)
	}
	s.methods[method] = fn
	return s
}

// Name returns the service name
func (s *Service) Name() string {
	return s.name
}

// Methods returns the service methods in registration order
func (s *Service) Methods() types.Signatures {
	result := make(types.Signatures, 0, len(s.order))
	for _, method := range s.order {
		result = append(result, types.Signature{Name: method, Input: documentType, Output: documentType})
	}
	return result
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	fn, ok := s.methods[name]
	if !ok {
		return nil, types.NewMethodNotFoundError(name)
	}
	return func(ctx context.Context, in, out interface{}) error {
		input, ok := in.(*interface{})
		if !ok {
			return types.NewInvalidInputError(in)
		}
		output, ok := out.(*interface{})
		if !ok {
			return types.NewInvalidOutputError(out)
		}
		result, err := fn(ctx, *input)
		if err != nil {
			return err
		}
		*output = result
		return nil
	}, nil
}
