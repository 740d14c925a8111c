// Package cache provides the TTL cache used by task collaborators to avoid
// repeating upstream calls for recently fetched results.
package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// Config represents cache settings
type Config struct {
	Size       int64         `json:"size,omitempty" yaml:"size,omitempty"`
	WeatherTTL time.Duration `json:"weatherTTL,omitempty" yaml:"weatherTTL,omitempty"`
	NewsTTL    time.Duration `json:"newsTTL,omitempty" yaml:"newsTTL,omitempty"`
}

// DefaultConfig returns the cache defaults: weather for 15 minutes, news
// for 5 minutes.
func DefaultConfig() *Config {
	return &Config{Size: 1024, WeatherTTL: 15 * time.Minute, NewsTTL: 5 * time.Minute}
}

// Cache is a bounded TTL cache; every entry costs 1.
type Cache struct {
	cache *ristretto.Cache
}

// New creates a cache holding up to size entries.
func New(size int64) (*Cache, error) {
	if size <= 0 {
		size = DefaultConfig().Size
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * size,
		MaxCost:     size,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	return &Cache{cache: cache}, nil
}

// Get returns a cached value.
func (c *Cache) Get(key string) (interface{}, bool) {
	if c == nil {
		return nil, false
	}
	return c.cache.Get(key)
}

// Set stores value for ttl; a non positive ttl disables caching.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	if c == nil || ttl <= 0 {
		return
	}
	c.cache.SetWithTTL(key, value, 1, ttl)
	c.cache.Wait()
}

// Delete removes a key.
func (c *Cache) Delete(key string) {
	if c == nil {
		return
	}
	c.cache.Del(key)
}

// Close stops the cache background goroutines.
func (c *Cache) Close() {
	if c == nil {
		return
	}
	c.cache.Close()
}
