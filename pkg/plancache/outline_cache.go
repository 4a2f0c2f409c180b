// Package plancache is the redis-backed outline cache of the generation
// pipeline. The cache is an optimization only: every operation fails open,
// so an unreachable redis slows generation down but never breaks it.
package plancache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "planner:outline:"

// OutlineCache stores generated outlines keyed by normalized request hash.
type OutlineCache interface {
	// Get returns the cached outline for the hash, or (nil, false) on miss.
	// Backend errors are logged and reported as a miss.
	Get(ctx context.Context, requestHash string) (*entity.PlanOutline, bool)

	// Set writes the outline with the given TTL. Unconditional overwrite,
	// last write wins. Backend errors are logged and swallowed.
	Set(ctx context.Context, requestHash string, outline *entity.PlanOutline, ttl time.Duration)

	// Delete removes a cached outline, used when a guide ingestion
	// invalidates existing context for a destination.
	Delete(ctx context.Context, requestHash string)
}

type RedisOutlineCache struct {
	rdb    *redis.Client
	logger logger.ILogger
}

// NewRedisOutlineCache wraps the shared redis client. A nil client yields a
// cache that always misses, which keeps local development working without
// redis running.
func NewRedisOutlineCache(rdb *redis.Client, log logger.ILogger) *RedisOutlineCache {
	return &RedisOutlineCache{
		rdb:    rdb,
		logger: log,
	}
}

func cacheKey(requestHash string) string {
	return keyPrefix + requestHash
}

func (c *RedisOutlineCache) Get(ctx context.Context, requestHash string) (*entity.PlanOutline, bool) {
	if c.rdb == nil {
		return nil, false
	}

	raw, err := c.rdb.Get(ctx, cacheKey(requestHash)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("PlanCache", "cache read failed, treating as miss", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return nil, false
	}

	var outline entity.PlanOutline
	if err := json.Unmarshal(raw, &outline); err != nil {
		// A corrupt entry is dropped so the next generation overwrites it
		c.logger.Warn("PlanCache", "corrupt cache entry, evicting", map[string]interface{}{
			"error": err.Error(),
		})
		c.Delete(ctx, requestHash)
		return nil, false
	}

	return &outline, true
}

func (c *RedisOutlineCache) Set(ctx context.Context, requestHash string, outline *entity.PlanOutline, ttl time.Duration) {
	if c.rdb == nil || outline == nil {
		return
	}

	raw, err := json.Marshal(outline)
	if err != nil {
		c.logger.Error("PlanCache", "failed to marshal outline", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	if err := c.rdb.Set(ctx, cacheKey(requestHash), raw, ttl).Err(); err != nil {
		c.logger.Warn("PlanCache", "cache write failed, continuing without cache", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (c *RedisOutlineCache) Delete(ctx context.Context, requestHash string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, cacheKey(requestHash)).Err(); err != nil {
		c.logger.Warn("PlanCache", "cache delete failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// InvalidateDestination drops every cached outline. Outlines are keyed by
// opaque request hashes, so a destination-scoped invalidation falls back to
// a prefix scan.
func (c *RedisOutlineCache) InvalidateDestination(ctx context.Context, destination string) error {
	if c.rdb == nil {
		return nil
	}

	iter := c.rdb.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	var deleted int
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("delete %s: %w", iter.Val(), err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return err
	}

	c.logger.Info("PlanCache", "invalidated cached outlines", map[string]interface{}{
		"destination": destination,
		"deleted":     deleted,
	})
	return nil
}
