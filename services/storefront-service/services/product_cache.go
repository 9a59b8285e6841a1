package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/models"
)

const (
	productListCacheKey = "storefront:products"
	defaultCacheTTL     = 10 * time.Minute
)

// ProductCache is the cache-aside layer in front of the catalog. A cache
// outage degrades to the database, it never fails a request.
type ProductCache interface {
	Get(ctx context.Context) ([]models.Product, bool)
	SetAsync(products []models.Product)
}

type RedisProductCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisProductCache(client *redis.Client, logger *zap.Logger) *RedisProductCache {
	return &RedisProductCache{
		redis:  client,
		ttl:    defaultCacheTTL,
		logger: logger,
	}
}

func (c *RedisProductCache) Get(ctx context.Context) ([]models.Product, bool) {
	cached, err := c.redis.Get(ctx, productListCacheKey).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Product cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var products []models.Product
	if err := json.Unmarshal([]byte(cached), &products); err != nil {
		c.logger.Warn("Failed to unmarshal cached product list", zap.Error(err))
		return nil, false
	}
	return products, true
}

func (c *RedisProductCache) SetAsync(products []models.Product) {
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		jsonBytes, err := json.Marshal(products)
		if err != nil {
			c.logger.Warn("Failed to marshal product list for cache", zap.Error(err))
			return
		}

		if err := c.redis.Set(bgCtx, productListCacheKey, jsonBytes, c.ttl).Err(); err != nil {
			c.logger.Warn("Failed to cache product list", zap.Error(err))
		}
	}()
}
