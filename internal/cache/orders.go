// Package cache keeps the last loaded order list in Redis so restarts and
// reloads do not hit the order source every time.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"mets-backend/internal/models"
	"mets-backend/internal/orders"
)

const (
	DefaultKey = "mets:orders:snapshot"
	opTimeout  = 3 * time.Second
)

// OrderCache stores the full order list as one JSON value.
type OrderCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewOrderCache(addr, password string, db int, ttl time.Duration) (*OrderCache, error) {
	if addr == "" {
		return nil, errors.New("redis address is required")
	}
	return &OrderCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		key: DefaultKey,
		ttl: ttl,
	}, nil
}

// Get returns the cached list. ok is false on a miss.
func (c *OrderCache) Get(ctx context.Context) ([]models.Order, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	val, err := c.client.Get(ctx, c.key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read order cache: %w", err)
	}

	var list []models.Order
	if err := json.Unmarshal(val, &list); err != nil {
		return nil, false, fmt.Errorf("failed to decode order cache: %w", err)
	}
	return list, true, nil
}

func (c *OrderCache) Set(ctx context.Context, list []models.Order) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode order cache: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write order cache: %w", err)
	}
	return nil
}

func (c *OrderCache) Invalidate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := c.client.Del(ctx, c.key).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to invalidate order cache: %w", err)
	}
	return nil
}

func (c *OrderCache) Close() error {
	return c.client.Close()
}

// CachedSource reads through the cache. Cache failures are logged and the
// underlying source is used as if the cache were empty.
type CachedSource struct {
	source orders.Source
	cache  *OrderCache
	logger *zap.Logger
}

func NewCachedSource(source orders.Source, cache *OrderCache, logger *zap.Logger) *CachedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{source: source, cache: cache, logger: logger}
}

func (s *CachedSource) Load(ctx context.Context) ([]models.Order, error) {
	list, ok, err := s.cache.Get(ctx)
	if err != nil {
		s.logger.Warn("order cache unavailable", zap.Error(err))
	}
	if ok {
		s.logger.Debug("orders served from cache", zap.Int("count", len(list)))
		return list, nil
	}

	list, err = s.source.Load(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, list); err != nil {
		s.logger.Warn("order cache not updated", zap.Error(err))
	}
	return list, nil
}

// Invalidate drops the cached list so the next Load reads the source.
func (s *CachedSource) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx)
}
