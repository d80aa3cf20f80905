// Package cachetest provides an in-memory catalog cache store for service tests.
package cachetest

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/cache"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

// Memory implements cache.Store and cache.Keyer without expiry.
type Memory struct {
	mu     sync.Mutex
	Values map[string]string
}

func NewMemory() *Memory {
	return &Memory{Values: map[string]string{}}
}

// Catalog wraps m in a catalog cache with default TTLs.
func (m *Memory) Catalog() *cache.Catalog {
	return cache.NewCatalogStore(m, m, config.CacheConfig{CatalogTTL: 5 * time.Minute, NotFoundTTL: time.Minute}, nil)
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case string:
		m.Values[key] = v
	case []byte:
		m.Values[key] = string(v)
	}
	return nil
}

func (m *Memory) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.Values, k)
	}
	return nil
}

func (m *Memory) CatalogKey(kind, slug string) string {
	return "sf:catalog:" + kind + ":" + slug
}

// Has reports whether key is present.
func (m *Memory) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Values[key]
	return ok
}
