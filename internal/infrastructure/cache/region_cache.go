package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/compucar/backend/internal/domain/shipping"
)

// RedisRegionCache implements shipping.RegionCache on Redis. Entries
// are stored as JSON with the configured TTL.
type RedisRegionCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

// RedisRegionCacheOption is a functional option for configuring RedisRegionCache
type RedisRegionCacheOption func(*RedisRegionCache)

// WithRegionCacheTTL overrides the default entry lifetime
func WithRegionCacheTTL(ttl time.Duration) RedisRegionCacheOption {
	return func(c *RedisRegionCache) {
		c.ttl = ttl
	}
}

// WithRegionCacheLogger sets the logger
func WithRegionCacheLogger(logger *zap.Logger) RedisRegionCacheOption {
	return func(c *RedisRegionCache) {
		c.logger = logger
	}
}

// NewRedisRegionCache creates a region cache from Redis connection settings
func NewRedisRegionCache(cfg RedisConfig, opts ...RedisRegionCacheOption) (*RedisRegionCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis for region cache: %w", err)
	}

	return NewRedisRegionCacheWithClient(client, opts...), nil
}

// NewRedisRegionCacheWithClient creates a region cache on an existing client
func NewRedisRegionCacheWithClient(client *redis.Client, opts ...RedisRegionCacheOption) *RedisRegionCache {
	c := &RedisRegionCache{
		client:    client,
		keyPrefix: "region:",
		ttl:       24 * time.Hour,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ shipping.RegionCache = (*RedisRegionCache)(nil)

func (c *RedisRegionCache) wilayasKey() string {
	return c.keyPrefix + "wilayas"
}

func (c *RedisRegionCache) communesKey(wilayaID int) string {
	return c.keyPrefix + "communes:" + strconv.Itoa(wilayaID)
}

func (c *RedisRegionCache) stopdesksKey(wilayaID int) string {
	return c.keyPrefix + "stopdesks:" + strconv.Itoa(wilayaID)
}

// GetWilayas returns the cached wilaya list, if present
func (c *RedisRegionCache) GetWilayas(ctx context.Context) ([]shipping.Wilaya, bool, error) {
	var wilayas []shipping.Wilaya
	ok, err := c.get(ctx, c.wilayasKey(), &wilayas)
	return wilayas, ok, err
}

// SetWilayas caches the wilaya list
func (c *RedisRegionCache) SetWilayas(ctx context.Context, wilayas []shipping.Wilaya) error {
	return c.set(ctx, c.wilayasKey(), wilayas)
}

// GetCommunes returns the cached communes of one wilaya, if present
func (c *RedisRegionCache) GetCommunes(ctx context.Context, wilayaID int) ([]shipping.Commune, bool, error) {
	var communes []shipping.Commune
	ok, err := c.get(ctx, c.communesKey(wilayaID), &communes)
	return communes, ok, err
}

// SetCommunes caches the communes of one wilaya
func (c *RedisRegionCache) SetCommunes(ctx context.Context, wilayaID int, communes []shipping.Commune) error {
	return c.set(ctx, c.communesKey(wilayaID), communes)
}

// GetStopdesks returns the cached stopdesks of one wilaya, if present
func (c *RedisRegionCache) GetStopdesks(ctx context.Context, wilayaID int) ([]shipping.Stopdesk, bool, error) {
	var desks []shipping.Stopdesk
	ok, err := c.get(ctx, c.stopdesksKey(wilayaID), &desks)
	return desks, ok, err
}

// SetStopdesks caches the stopdesks of one wilaya
func (c *RedisRegionCache) SetStopdesks(ctx context.Context, wilayaID int, desks []shipping.Stopdesk) error {
	return c.set(ctx, c.stopdesksKey(wilayaID), desks)
}

func (c *RedisRegionCache) get(ctx context.Context, key string, out interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("region cache get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		// Corrupt entry, drop it and treat as a miss
		c.logger.Warn("dropping corrupt region cache entry",
			zap.String("key", key), zap.Error(err))
		c.client.Del(ctx, key)
		return false, nil
	}
	return true, nil
}

func (c *RedisRegionCache) set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("region cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("region cache set %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisRegionCache) Close() error {
	return c.client.Close()
}
