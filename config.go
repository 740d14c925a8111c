package smalltalk

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/smalltalk/internal/logger"
	"github.com/viant/smalltalk/service/action/technews"
	"github.com/viant/smalltalk/service/action/weather"
	"github.com/viant/smalltalk/service/cache"
	"github.com/viant/smalltalk/service/dao/workflow"
	"github.com/viant/smalltalk/service/invoker"
	"github.com/viant/smalltalk/service/meta"
)

// Config is a serialisable representation of the engine configuration. The
// zero value of every nested field inherits its package default. A zero
// Deadline defers to the workflow timeout. SecretKey is the scy encryption
// key URL, e.g. blowfish://default.
type Config struct {
	WorkflowURL string          `json:"workflowURL,omitempty" yaml:"workflowURL,omitempty"`
	Deadline    time.Duration   `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	TaskTimeout time.Duration   `json:"taskTimeout,omitempty" yaml:"taskTimeout,omitempty"`
	LogLevel    string          `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
	SecretKey   string          `json:"secretKey,omitempty" yaml:"secretKey,omitempty"`
	HTTP        HTTPConfig      `json:"http" yaml:"http"`
	Tracing     TracingConfig   `json:"tracing" yaml:"tracing"`
	Weather     weather.Config  `json:"weather" yaml:"weather"`
	News        technews.Config `json:"news" yaml:"news"`
	Cache       cache.Config    `json:"cache" yaml:"cache"`
}

// HTTPConfig represents the endpoint settings
type HTTPConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// TracingConfig represents OpenTelemetry settings; an empty output file
// exports to stdout.
type TracingConfig struct {
	Enabled    bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	OutputFile string `json:"outputFile,omitempty" yaml:"outputFile,omitempty"`
}

// DefaultConfig returns a Config populated with package defaults.
func DefaultConfig() *Config {
	return &Config{
		WorkflowURL: workflow.DefaultLocation,
		TaskTimeout: invoker.DefaultTimeout,
		LogLevel:    "info",
		HTTP:        HTTPConfig{Addr: ":8080"},
		Weather:     *weather.DefaultConfig(),
		News:        *technews.DefaultConfig(),
		Cache:       *cache.DefaultConfig(),
	}
}

// Validate returns an error describing the first invalid setting or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Deadline < 0 {
		return fmt.Errorf("deadline must be >= 0")
	}
	if c.TaskTimeout < 0 {
		return fmt.Errorf("taskTimeout must be >= 0")
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache.size must be >= 0")
	}
	if c.News.Limit < 0 {
		return fmt.Errorf("news.limit must be >= 0")
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// LoadConfig reads YAML configuration from URL over DefaultConfig.
// ${env.KEY} expressions are expanded before decoding.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	config := DefaultConfig()
	if URL == "" {
		return config, nil
	}
	if err := meta.New(nil, "").Load(ctx, URL, config); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", URL, err)
	}
	return config, nil
}
