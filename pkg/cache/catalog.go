package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

const (
	KindProduct  = "product"
	KindCategory = "category"

	notFoundMarker = "notfound"
)

// Store is the subset of the redis client used for cache-aside reads.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Keyer builds catalog cache keys.
type Keyer interface {
	CatalogKey(kind, slug string) string
}

// Catalog caches catalog detail payloads keyed by kind and slug.
// A nil *Catalog is valid and always reads through to the loader.
type Catalog struct {
	store       Store
	keyer       Keyer
	ttl         time.Duration
	notFoundTTL time.Duration
	logg        *logger.Logger
}

// NewCatalog wires a catalog cache on top of the shared redis client.
func NewCatalog(client *redis.Client, cfg config.CacheConfig, logg *logger.Logger) *Catalog {
	if client == nil {
		return nil
	}
	return NewCatalogStore(client, client, cfg, logg)
}

// NewCatalogStore builds a catalog cache over any Store and Keyer.
func NewCatalogStore(store Store, keyer Keyer, cfg config.CacheConfig, logg *logger.Logger) *Catalog {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Catalog{
		store:       store,
		keyer:       keyer,
		ttl:         cfg.CatalogTTL,
		notFoundTTL: cfg.NotFoundTTL,
		logg:        logg,
	}
}

// Fetch returns the cached value for kind/slug or calls load and caches the result.
// load returns (nil, nil) when the entity does not exist; the miss is remembered for notFoundTTL.
func Fetch[T any](ctx context.Context, c *Catalog, kind, slug string, load func(context.Context) (*T, error)) (*T, error) {
	if c == nil || c.store == nil {
		return load(ctx)
	}
	key := c.keyer.CatalogKey(kind, slug)

	raw, err := c.store.Get(ctx, key)
	switch {
	case err == nil && raw == notFoundMarker:
		return nil, nil
	case err == nil:
		var cached T
		if decodeErr := json.Unmarshal([]byte(raw), &cached); decodeErr == nil {
			return &cached, nil
		}
		c.logg.Warn(c.logg.WithField(ctx, "cache_key", key), "catalog.cache.decode_failed")
	case !errors.Is(err, redis.Nil):
		c.logg.Warn(c.logg.WithField(ctx, "cache_key", key), "catalog.cache.read_failed")
	}

	value, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if value == nil {
		c.write(ctx, key, notFoundMarker, c.notFoundTTL)
		return nil, nil
	}
	payload, err := json.Marshal(value)
	if err == nil {
		c.write(ctx, key, string(payload), c.ttl)
	}
	return value, nil
}

// Invalidate drops the cached entries for the given slugs.
func (c *Catalog) Invalidate(ctx context.Context, kind string, slugs ...string) error {
	if c == nil || c.store == nil || len(slugs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		keys = append(keys, c.keyer.CatalogKey(kind, slug))
	}
	return c.store.Del(ctx, keys...)
}

func (c *Catalog) write(ctx context.Context, key, value string, ttl time.Duration) {
	if err := c.store.Set(ctx, key, value, ttl); err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "cache_key", key), "catalog.cache.write_failed")
	}
}
