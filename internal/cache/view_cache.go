// Package cache is an optional redis read-through cache for derived views
// (CDM table, chord diagrams, modality lists). Entries are keyed by a
// generation counter that imports and wipes bump, so stale views are never
// served and simply expire.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
)

const (
	keyPrefix     = "pdv:view:"
	generationKey = keyPrefix + "generation"
)

type ViewCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
	sf  singleflight.Group
}

// New returns a cache backed by redis at addr. An empty addr disables redis;
// concurrent builds of the same view are still collapsed.
func New(log *logger.Logger, addr string, ttl time.Duration) (*ViewCache, error) {
	c := &ViewCache{log: log.With("component", "ViewCache"), ttl: ttl}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		c.log.Info("REDIS_ADDR not set, view cache disabled")
		return c, nil
	}
	if c.ttl <= 0 {
		c.ttl = 10 * time.Minute
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	c.rdb = rdb
	return c, nil
}

func (c *ViewCache) Enabled() bool { return c != nil && c.rdb != nil }

func (c *ViewCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}

// Invalidate retires every cached view.
func (c *ViewCache) Invalidate(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	if err := c.rdb.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("bump view generation: %w", err)
	}
	return nil
}

func (c *ViewCache) generation(ctx context.Context) (int64, error) {
	n, err := c.rdb.Get(ctx, generationKey).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return n, err
}

func dataKey(gen int64, key string) string {
	return fmt.Sprintf("%s%d:%s", keyPrefix, gen, key)
}

// Load returns the view stored under key, building and storing it on a miss.
// Redis failures are logged and fall back to building.
func Load[T any](ctx context.Context, c *ViewCache, key string, build func(context.Context) (T, error)) (T, error) {
	var zero T
	if c == nil {
		return build(ctx)
	}

	gen := int64(-1)
	if c.Enabled() {
		if g, err := c.generation(ctx); err != nil {
			c.log.Warn("Read view generation failed", "key", key, "error", err)
		} else {
			gen = g
			raw, err := c.rdb.Get(ctx, dataKey(gen, key)).Bytes()
			switch {
			case err == nil:
				var v T
				if err := json.Unmarshal(raw, &v); err == nil {
					return v, nil
				}
				c.log.Warn("Discarding undecodable cached view", "key", key)
			case !errors.Is(err, goredis.Nil):
				c.log.Warn("Read cached view failed", "key", key, "error", err)
			}
		}
	}

	flightKey := fmt.Sprintf("%d:%s", gen, key)
	v, err, _ := c.sf.Do(flightKey, func() (interface{}, error) {
		built, err := build(ctx)
		if err != nil {
			return nil, err
		}
		if gen >= 0 {
			if raw, err := json.Marshal(built); err == nil {
				if err := c.rdb.Set(ctx, dataKey(gen, key), raw, c.ttl).Err(); err != nil {
					c.log.Warn("Store cached view failed", "key", key, "error", err)
				}
			}
		}
		return built, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}
