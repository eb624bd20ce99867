package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const catalogCacheKey = "catalog:productos"

// Catalog serves the active product list with a short redis cache in front
// of the upstream catalog. Concurrent misses collapse into one fetch.
type Catalog struct {
	productos *Productos
	client    *redis.Client
	ttl       time.Duration
	logger    *slog.Logger
	group     singleflight.Group
}

// NewCatalog constructs the cached catalog. A nil redis client disables
// caching and every call hits the upstream (still deduplicated).
func NewCatalog(productos *Productos, client *redis.Client, ttl time.Duration, logger *slog.Logger) *Catalog {
	return &Catalog{productos: productos, client: client, ttl: ttl, logger: logger}
}

// Activos returns the active products, from cache when fresh.
func (c *Catalog) Activos(ctx context.Context) ([]Producto, error) {
	if c.client != nil {
		raw, err := c.client.Get(ctx, catalogCacheKey).Bytes()
		if err == nil {
			var cached []Producto
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) && c.logger != nil {
			c.logger.Warn("catalog cache read", slog.Any("error", err))
		}
	}

	value, err, _ := c.group.Do(catalogCacheKey, func() (any, error) {
		productos, err := c.productos.Activos(ctx)
		if err != nil {
			return nil, err
		}
		if c.client != nil {
			if raw, err := json.Marshal(productos); err == nil {
				if err := c.client.Set(ctx, catalogCacheKey, raw, c.ttl).Err(); err != nil && c.logger != nil {
					c.logger.Warn("catalog cache write", slog.Any("error", err))
				}
			}
		}
		return productos, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]Producto), nil
}

// Invalidate drops the cached catalog.
func (c *Catalog) Invalidate(ctx context.Context) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, catalogCacheKey).Err(); err != nil && c.logger != nil {
		c.logger.Warn("catalog cache invalidate", slog.Any("error", err))
	}
}
