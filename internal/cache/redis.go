package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"widgetstore/internal/models"
)

func NewRedisProductCache(client *redis.Client, baseTTL time.Duration) *RedisProductCache {
	if baseTTL <= 0 {
		baseTTL = 10 * time.Minute
	}
	return &RedisProductCache{
		client:  client,
		baseTTL: baseTTL,
	}
}

type RedisProductCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisProductCache) Get(ctx context.Context, id string) (*models.Product, error) {
	data, err := r.client.Get(ctx, cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("unmarshal product failed: %w", err)
	}
	return &product, nil
}

// Set stores the product with the base TTL plus up to four minutes of jitter
// so entries written together do not expire together.
func (r *RedisProductCache) Set(ctx context.Context, product *models.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("marshal product failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(5)) * time.Minute
	if err := r.client.Set(ctx, cacheKey(product.ID), data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisProductCache) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}
