package extension

import (
	"fmt"
	"sync"

	"github.com/viant/smalltalk/model/graph"
	"github.com/viant/smalltalk/model/types"
)

// Actions provides task service registry
type Actions struct {
	services map[string]types.Service
	mux      sync.RWMutex
}

// Lookup returns a service by name
func (s *Actions) Lookup(name string) types.Service {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.services[name]
}

// Register registers a service
func (s *Actions) Register(service types.Service) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.services[service.Name()] = service
}

// Names returns registered service names
func (s *Actions) Names() []string {
	s.mux.RLock()
	defer s.mux.RUnlock()
	result := make([]string, 0, len(s.services))
	for name := range s.services {
		result = append(result, name)
	}
	return result
}

// Resolve returns the method and signature for an action. An empty method
// selects the service's first declared method.
func (s *Actions) Resolve(action *graph.Action) (types.Executable, *types.Signature, error) {
	if action == nil {
		return nil, nil, fmt.Errorf("action was nil")
	}
	service := s.Lookup(action.Service)
	if service == nil {
		return nil, nil, fmt.Errorf("service %v not found", action.Service)
	}
	signatures := service.Methods()
	methodName := action.Method
	if methodName == "" {
		if len(signatures) == 0 {
			return nil, nil, fmt.Errorf("service %v has no methods", action.Service)
		}
		methodName = signatures[0].Name
	}
	signature := signatures.Lookup(methodName)
	if signature == nil {
		return nil, nil, fmt.Errorf("failed to find method %v for service %v: %w", methodName, action.Service, types.NewMethodNotFoundError(methodName))
	}
	method, err := service.Method(methodName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find method %v for service %v: %w", methodName, action.Service, err)
	}
	return method, signature, nil
}

// NewActions creates a new registry with the supplied services
func NewActions(services ...types.Service) *Actions {
	ret := &Actions{services: make(map[string]types.Service)}
	for _, service := range services {
		if service != nil {
			ret.Register(service)
		}
	}
	return ret
}
