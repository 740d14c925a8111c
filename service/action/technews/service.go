// Package technews provides the technews:top task method returning the top
// stories of the Hacker News front page.
package technews

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/viant/smalltalk/internal/upstream"
	"github.com/viant/smalltalk/model/types"
	"github.com/viant/smalltalk/service/cache"
)

const (
	name     = "technews"
	cacheKey = "top-stories"
)

// Config represents the news collaborator settings
type Config struct {
	URL   string `json:"url,omitempty" yaml:"url,omitempty"`
	Limit int    `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// DefaultConfig returns the Hacker News front page with a limit of 5.
func DefaultConfig() *Config {
	return &Config{URL: "https://news.ycombinator.com/", Limit: 5}
}

// Input represents the number of stories to return
type Input struct {
	Limit int `json:"limit,omitempty"`
}

// Service implements the technews task methods
type Service struct {
	config *Config
	client *http.Client
	cache  *cache.Cache
	ttl    time.Duration
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "top",
			Description: "Returns the top stories of the Hacker News front page.",
			Input:       reflect.TypeOf(&Input{}),
			Output:      reflect.TypeOf(&Articles{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "top":
		return s.top, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

func (s *Service) top(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*Input)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*Articles)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	limit := input.Limit
	if limit <= 0 {
		limit = s.config.Limit
	}
	articles, err := s.articles(ctx)
	if err != nil {
		return err
	}
	if limit < len(articles) {
		articles = articles[:limit]
	}
	*output = articles
	return nil
}

func (s *Service) articles(ctx context.Context) (Articles, error) {
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.(Articles), nil
	}
	base, err := url.Parse(s.config.URL)
	if err != nil {
		return nil, types.NewPermanentError(fmt.Sprintf("invalid news URL %s", s.config.URL), err)
	}
	data, err := upstream.Get(ctx, s.client, s.config.URL, http.Header{"Accept": []string{"text/html"}})
	if err != nil {
		return nil, err
	}
	articles, err := Parse(bytes.NewReader(data), base)
	if err != nil {
		return nil, types.NewPermanentError(fmt.Sprintf("failed to parse news page: %v", err), err)
	}
	s.cache.Set(cacheKey, articles, s.ttl)
	return articles, nil
}

// Option customises the technews service
type Option func(*Service)

// WithHTTPClient sets the HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		s.client = client
	}
}

// WithCache sets the result cache and its TTL
func WithCache(c *cache.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.ttl = ttl
	}
}

// New creates a technews service
func New(config *Config, opts ...Option) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Limit <= 0 {
		config.Limit = DefaultConfig().Limit
	}
	s := &Service{config: config, client: upstream.NewClient(), ttl: cache.DefaultConfig().NewsTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
