package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Lixing-Zhang/striv-storefront/backend/internal/config"
	"github.com/Lixing-Zhang/striv-storefront/backend/pkg/logger"
)

// ProductCache stores rendered catalog reads. Invalidate drops every entry
// at once; writers call it after any product or stock change.
//
// Get returns a slot naming key under the version it was read at. Fills go
// to that slot, so a fill computed before an Invalidate is never visible
// after it. An empty slot means the value must not be stored.
type ProductCache interface {
	Get(ctx context.Context, key string, dst interface{}) (slot string, hit bool, err error)
	Set(ctx context.Context, slot string, v interface{}) error
	Invalidate(ctx context.Context) error
	Close() error
}

// Noop is used when no redis address is configured.
type Noop struct{}

func (Noop) Get(context.Context, string, interface{}) (string, bool, error) { return "", false, nil }
func (Noop) Set(context.Context, string, interface{}) error { return nil }
func (Noop) Invalidate(context.Context) error { return nil }
func (Noop) Close() error { return nil }

const versionKey = "products:version"

// Redis namespaces entries under a version counter so invalidation is a
// single INCR instead of a key scan.
type Redis struct {
	rdb *goredis.Client
	ttl time.Duration
	log *logger.Logger
}

// New returns a redis-backed cache, or Noop when cfg has no address.
func New(ctx context.Context, cfg config.CacheConfig, log *logger.Logger) (ProductCache, error) {
	if cfg.RedisAddr == "" {
		return Noop{}, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedis(rdb, cfg.ProductTTL, log), nil
}

func NewRedis(rdb *goredis.Client, ttl time.Duration, log *logger.Logger) *Redis {
	return &Redis{rdb: rdb, ttl: ttl, log: log.With("component", "product_cache")}
}

func (c *Redis) Get(ctx context.Context, key string, dst interface{}) (string, bool, error) {
	k, err := c.key(ctx, key)
	if err != nil {
		return "", false, err
	}

	raw, err := c.rdb.Get(ctx, k).Bytes()
	if errors.Is(err, goredis.Nil) {
		return k, false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.log.Warn("dropping undecodable cache entry", "key", k, "error", err)
		_ = c.rdb.Del(ctx, k).Err()
		return k, false, nil
	}
	return k, true, nil
}

// Set stores v in a slot returned by Get.
func (c *Redis) Set(ctx context.Context, slot string, v interface{}) error {
	if slot == "" {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := c.rdb.Set(ctx, slot, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *Redis) Invalidate(ctx context.Context) error {
	if err := c.rdb.Incr(ctx, versionKey).Err(); err != nil {
		return fmt.Errorf("redis incr: %w", err)
	}
	return nil
}

func (c *Redis) Close() error {
	return c.rdb.Close()
}

func (c *Redis) key(ctx context.Context, key string) (string, error) {
	v, err := c.rdb.Get(ctx, versionKey).Int64()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return "", fmt.Errorf("redis get version: %w", err)
	}
	return fmt.Sprintf("products:v%d:%s", v, key), nil
}
