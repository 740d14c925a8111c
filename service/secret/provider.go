// Package secret reveals secrets such as upstream API keys. Revealed values
// are kept in memory for the life of the provider.
package secret

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/viant/scy"
)

// Provider reveals a secret by URL.
type Provider interface {
	Secret(ctx context.Context, URL string) (string, error)
}

// Service reveals secrets with viant/scy.
type Service struct {
	scyService *scy.Service
	key        string
	revealed   map[string]string
	mux        sync.RWMutex
}

// Secret loads and decrypts the raw secret stored at URL.
func (s *Service) Secret(ctx context.Context, URL string) (string, error) {
	s.mux.RLock()
	value, ok := s.revealed[URL]
	s.mux.RUnlock()
	if ok {
		return value, nil
	}
	resource := scy.NewResource(nil, URL, s.key)
	secret, err := s.scyService.Load(ctx, resource)
	if err != nil {
		return "", fmt.Errorf("failed to load secret from %s: %w", URL, err)
	}
	value = strings.TrimSpace(secret.String())
	s.mux.Lock()
	s.revealed[URL] = value
	s.mux.Unlock()
	return value, nil
}

// New creates a scy backed provider; key is the encryption key URL, e.g.
// "blowfish://default", or empty for plain secrets.
func New(key string) *Service {
	return &Service{scyService: scy.New(), key: key, revealed: map[string]string{}}
}

// Static serves fixed secrets keyed by URL.
type Static map[string]string

// Secret returns the configured secret.
func (s Static) Secret(ctx context.Context, URL string) (string, error) {
	value, ok := s[URL]
	if !ok {
		return "", fmt.Errorf("secret %s not found", URL)
	}
	return value, nil
}
