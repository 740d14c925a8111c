package workflow

import (
	"context"
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/viant/smalltalk/internal/yml"
	"github.com/viant/smalltalk/model"
	"github.com/viant/smalltalk/service/meta"
)

// DefaultLocation identifies the embedded small-talk definition.
const DefaultLocation = "embed://small-talk.yaml"

//go:embed small-talk.yaml
var defaultDefinition []byte

// Service loads, decodes and caches built workflow definitions.
type Service struct {
	metaService *meta.Service
	cache       map[string]*model.Workflow
	mux         sync.RWMutex
}

// DecodeYAML decodes and builds a workflow from YAML
func (s *Service) DecodeYAML(encoded []byte) (*model.Workflow, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(encoded, &node); err != nil {
		return nil, err
	}
	return s.ParseWorkflow("", &node)
}

// Default returns the embedded small-talk definition.
func (s *Service) Default() (*model.Workflow, error) {
	return s.Load(context.Background(), DefaultLocation)
}

// Load loads a built workflow from YAML at the specified URL. Definitions
// are cached per location until Refresh.
func (s *Service) Load(ctx context.Context, URL string) (*model.Workflow, error) {
	if filepath.Ext(URL) == "" {
		URL += ".yaml"
	}
	if workflow := s.lookup(URL); workflow != nil {
		return workflow, nil
	}
	var node yaml.Node
	if URL == DefaultLocation {
		if err := yaml.Unmarshal(defaultDefinition, &node); err != nil {
			return nil, err
		}
	} else {
		if err := s.metaService.Load(ctx, URL, &node); err != nil {
			return nil, fmt.Errorf("failed to load workflow from %s: %w", URL, err)
		}
	}
	workflow, err := s.ParseWorkflow(URL, &node)
	if err != nil {
		return nil, err
	}
	s.Upsert(URL, workflow)
	return workflow, nil
}

// Upsert stores a workflow under location.
func (s *Service) Upsert(location string, workflow *model.Workflow) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.cache[location] = workflow
}

// Refresh discards the cached definition for location.
func (s *Service) Refresh(location string) {
	s.mux.Lock()
	defer s.mux.Unlock()
	delete(s.cache, location)
}

func (s *Service) lookup(location string) *model.Workflow {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.cache[location]
}

// ParseWorkflow converts a YAML document into a built workflow. Structural
// problems are reported as a *types.DefinitionError.
func (s *Service) ParseWorkflow(URL string, node *yaml.Node) (*model.Workflow, error) {
	workflow := &model.Workflow{Name: getWorkflowNameFromURL(URL)}
	if URL != "" {
		workflow.Source = &model.Source{URL: URL}
	}
	root := (*yml.Node)(node).Root()
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("failed to parse workflow %s: expected mapping document", URL)
	}
	if err := parseWorkflow(root, workflow); err != nil {
		return nil, fmt.Errorf("failed to parse workflow %s: %w", URL, err)
	}
	return workflow.Build()
}

// getWorkflowNameFromURL extracts workflow name from URL (file name without extension)
func getWorkflowNameFromURL(URL string) string {
	if URL == "" {
		return ""
	}
	base := filepath.Base(URL)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// New creates a workflow definition service.
func New(opts ...Option) *Service {
	s := &Service{cache: map[string]*model.Workflow{}}
	for _, opt := range opts {
		opt(s)
	}
	if s.metaService == nil {
		s.metaService = meta.New(nil, "")
	}
	return s
}
