package smalltalk

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/viant/smalltalk/extension"
	"github.com/viant/smalltalk/model/types"
	"github.com/viant/smalltalk/runtime/branch"
	"github.com/viant/smalltalk/runtime/execution"
	"github.com/viant/smalltalk/runtime/orchestrator"
	"github.com/viant/smalltalk/runtime/parallel"
	"github.com/viant/smalltalk/service/action/technews"
	"github.com/viant/smalltalk/service/action/weather"
	"github.com/viant/smalltalk/service/cache"
	"github.com/viant/smalltalk/service/dao/workflow"
	"github.com/viant/smalltalk/service/invoker"
	"github.com/viant/smalltalk/service/meta"
	"github.com/viant/smalltalk/service/secret"
)

// Service wires task collaborators, the invoker and the orchestrator.
type Service struct {
	config              *Config
	runtime             *Runtime
	metaService         *meta.Service
	actions             *extension.Actions
	invoker             *invoker.Service
	cache               *cache.Cache
	secrets             secret.Provider
	httpClient          *http.Client
	extensionServices   []types.Service
	invokerOptions      []invoker.Option
	branchOptions       []branch.Option
	orchestratorOptions []orchestrator.Option
	metaBaseURL         string
	metaFsOptions       []storage.Option
	tracingExporter     sdktrace.SpanExporter
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if err := s.tracingInit(); err != nil {
		return fmt.Errorf("failed to initialise tracing: %w", err)
	}
	if s.metaService == nil {
		s.metaService = meta.New(afs.New(), s.metaBaseURL, s.metaFsOptions...)
	}
	if s.secrets == nil {
		s.secrets = secret.New(s.config.SecretKey)
	}
	var err error
	if s.cache, err = cache.New(s.config.Cache.Size); err != nil {
		return err
	}
	s.actions = extension.NewActions(s.collaborators()...)
	for _, service := range s.extensionServices {
		s.actions.Register(service)
	}
	invokerOptions := append([]invoker.Option{invoker.WithDefaultTimeout(s.config.TaskTimeout)}, s.invokerOptions...)
	s.invoker = invoker.New(s.actions, invokerOptions...)
	runner := branch.New(s.invoker, s.branchOptions...)
	s.runtime = &Runtime{
		workflowDAO:  workflow.New(workflow.WithMetaService(s.metaService)),
		orchestrator: orchestrator.New(parallel.New(runner), s.orchestratorOptions...),
	}
	return nil
}

func (s *Service) collaborators() []types.Service {
	weatherOptions := []weather.Option{weather.WithSecrets(s.secrets), weather.WithCache(s.cache, s.config.Cache.WeatherTTL)}
	newsOptions := []technews.Option{technews.WithCache(s.cache, s.config.Cache.NewsTTL)}
	if s.httpClient != nil {
		weatherOptions = append(weatherOptions, weather.WithHTTPClient(s.httpClient))
		newsOptions = append(newsOptions, technews.WithHTTPClient(s.httpClient))
	}
	weatherConfig := s.config.Weather
	newsConfig := s.config.News
	return []types.Service{
		weather.New(&weatherConfig, weatherOptions...),
		technews.New(&newsConfig, newsOptions...),
	}
}

// Run executes the configured workflow against input within the configured
// deadline.
func (s *Service) Run(ctx context.Context, input map[string]interface{}) *execution.Result {
	workflow, err := s.runtime.LoadWorkflow(ctx, s.config.WorkflowURL)
	if err != nil {
		log.Error().Err(err).Str("workflow", s.config.WorkflowURL).Msg("failed to load workflow")
		return execution.Failed("", err, nil)
	}
	return s.runtime.Run(ctx, workflow, input, s.config.Deadline)
}

// RegisterExtensionServices registers additional task services; a service
// replaces any registered service of the same name.
func (s *Service) RegisterExtensionServices(services ...types.Service) {
	for i := range services {
		s.actions.Register(services[i])
	}
}

// Actions returns the task service registry
func (s *Service) Actions() *extension.Actions {
	return s.actions
}

// Runtime returns the runtime
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Config returns the effective configuration
func (s *Service) Config() *Config {
	return s.config
}

// Close releases the result cache.
func (s *Service) Close() error {
	s.cache.Close()
	return nil
}

// New creates a service
func New(options ...Option) (*Service, error) {
	ret := &Service{}
	if err := ret.init(options); err != nil {
		return nil, fmt.Errorf("failed to initialise smalltalk: %w", err)
	}
	return ret, nil
}
