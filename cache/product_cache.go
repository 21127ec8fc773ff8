package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/models"
	"go.uber.org/zap"
)

const (
	ProductCachePrefix = "crm:product:"
	DefaultCacheTTL    = 10 * time.Minute
	asyncTimeout       = 5 * time.Second
)

// ProductCache caches single products by id in Redis. Every method is
// best-effort: Redis failures degrade to cache misses and are logged.
type ProductCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewProductCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ProductCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ProductCache{redis: client, ttl: ttl, logger: logger}
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func productKey(id uuid.UUID) string {
	return ProductCachePrefix + id.String()
}

func (c *ProductCache) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, bool) {
	data, err := c.redis.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Product cache read failed", zap.String("product_id", id.String()), zap.Error(err))
		}
		return nil, false
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		c.logger.Warn("Failed to unmarshal cached product", zap.String("product_id", id.String()), zap.Error(err))
		return nil, false
	}
	return &product, true
}

// SetProductAsync caches a copy of product without blocking the caller.
func (c *ProductCache) SetProductAsync(product *models.Product) {
	data, err := json.Marshal(product)
	if err != nil {
		c.logger.Warn("Failed to marshal product for cache", zap.String("product_id", product.ID.String()), zap.Error(err))
		return
	}
	key := productKey(product.ID)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
		defer cancel()
		if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("Failed to cache product", zap.String("key", key), zap.Error(err))
		}
	}()
}

// InvalidateProducts drops the cached entries of the given products.
func (c *ProductCache) InvalidateProducts(ctx context.Context, ids ...uuid.UUID) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(id)
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.logger.Error("Failed to invalidate product cache", zap.Strings("keys", keys), zap.Error(err))
	}
}
