package types

import (
	"context"
	"reflect"
)

type Signatures []Signature

// Lookup returns a signature by name or nil.
func (s Signatures) Lookup(name string) *Signature {
	for i := range s {
		sig := &s[i]
		if sig.Name == name {
			return sig
		}
	}
	return nil
}

// Signature describes a task method; Input and Output are pointer types that
// the invoker instantiates per call.
type Signature struct {
	Name        string
	Description string
	Input       reflect.Type
	Output      reflect.Type
}

// Executable is a task method. It populates output from input or returns an
// error, ideally a *TaskError carrying the failure class.
type Executable func(ctx context.Context, input, output interface{}) error
