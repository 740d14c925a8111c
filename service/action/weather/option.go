package weather

import (
	"net/http"
	"time"

	"github.com/viant/smalltalk/service/cache"
	"github.com/viant/smalltalk/service/secret"
)

// Option customises the weather service
type Option func(*Service)

// WithHTTPClient sets the HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		s.client = client
	}
}

// WithSecrets sets the API key secret provider
func WithSecrets(provider secret.Provider) Option {
	return func(s *Service) {
		s.secrets = provider
	}
}

// WithCache sets the result cache and its TTL
func WithCache(c *cache.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.ttl = ttl
	}
}
