package smalltalk

import (
	"net/http"

	"github.com/viant/afs/storage"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/viant/smalltalk/model/types"
	"github.com/viant/smalltalk/progress"
	"github.com/viant/smalltalk/runtime/branch"
	"github.com/viant/smalltalk/runtime/orchestrator"
	"github.com/viant/smalltalk/service/invoker"
	"github.com/viant/smalltalk/service/meta"
	"github.com/viant/smalltalk/service/secret"
	"github.com/viant/smalltalk/tracing"
)

const serviceName = "smalltalk"

// Option customises the service
type Option func(s *Service)

// WithConfig sets the configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithMetaService sets the meta service
func WithMetaService(service *meta.Service) Option {
	return func(s *Service) {
		s.metaService = service
	}
}

// WithMetaBaseURL sets the meta base URL
func WithMetaBaseURL(url string) Option {
	return func(s *Service) {
		s.metaBaseURL = url
	}
}

// WithMetaFsOptions with meta file system options
func WithMetaFsOptions(options ...storage.Option) Option {
	return func(s *Service) {
		s.metaFsOptions = options
	}
}

// WithExtensionServices sets the extension services; they replace built in
// collaborators of the same name.
func WithExtensionServices(services ...types.Service) Option {
	return func(s *Service) {
		s.extensionServices = services
	}
}

// WithSecretProvider sets the secret provider
func WithSecretProvider(provider secret.Provider) Option {
	return func(s *Service) {
		s.secrets = provider
	}
}

// WithHTTPClient sets the HTTP client used by collaborators
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		s.httpClient = client
	}
}

// WithInvokerOptions passes options to the task invoker
func WithInvokerOptions(opts ...invoker.Option) Option {
	return func(s *Service) {
		s.invokerOptions = append(s.invokerOptions, opts...)
	}
}

// WithBranchOptions passes options to the branch runner
func WithBranchOptions(opts ...branch.Option) Option {
	return func(s *Service) {
		s.branchOptions = append(s.branchOptions, opts...)
	}
}

// WithProgressListener streams step counters of every execution
func WithProgressListener(listener func(progress.Snapshot)) Option {
	return func(s *Service) {
		s.orchestratorOptions = append(s.orchestratorOptions, orchestrator.WithProgressListener(listener))
	}
}

// WithTracingExporter configures OpenTelemetry tracing with a custom
// SpanExporter; it takes precedence over the configured output file. The
// first successful initialisation wins.
func WithTracingExporter(exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		s.tracingExporter = exporter
	}
}

func (s *Service) tracingInit() error {
	if s.tracingExporter != nil {
		return tracing.InitWithExporter(serviceName, Version, s.tracingExporter)
	}
	if !s.config.Tracing.Enabled {
		return nil
	}
	return tracing.Init(serviceName, Version, s.config.Tracing.OutputFile)
}
