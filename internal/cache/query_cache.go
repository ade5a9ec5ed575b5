package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const feedKeyPrefix = "feed:"

// FeedKey names the cached aggregation result for one (user, scope) pair.
func FeedKey(userID uint, showArchived bool, page, limit int) string {
	return fmt.Sprintf("%suser:%d:archived:%t:page:%d:limit:%d", feedKeyPrefix, userID, showArchived, page, limit)
}

// PopoverKey names the cached popover feed for one user.
func PopoverKey(userID uint, showArchived bool) string {
	return fmt.Sprintf("%suser:%d:popover:archived:%t", feedKeyPrefix, userID, showArchived)
}

// QueryCache is the Redis-backed query cache layer. It stores aggregated
// feed results and is driven by the event bus for invalidation. Every cache
// failure degrades to a direct database read behind a logged warning; the
// cache is never load-bearing for correctness.
type QueryCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewQueryCache(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *QueryCache {
	return &QueryCache{rdb: rdb, ttl: ttl, log: log}
}

// Get loads a cached value into dest. The first return is false on miss or
// on any cache error.
func (c *QueryCache) Get(ctx context.Context, key string, dest interface{}) bool {
	payload, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		c.log.Warn("query cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		c.log.Warn("query cache payload corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Set stores a value under the cache TTL.
func (c *QueryCache) Set(ctx context.Context, key string, value interface{}) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("query cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.log.Warn("query cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateUser drops every cached feed scope for one user, after a
// read/archive mutation.
func (c *QueryCache) InvalidateUser(ctx context.Context, userID uint) {
	c.invalidatePrefix(ctx, fmt.Sprintf("%suser:%d:", feedKeyPrefix, userID))
}

// InvalidateAllFeeds drops every cached feed. Content-change signals fan out
// to every resident of the neighborhood, so per-user precision buys nothing.
func (c *QueryCache) InvalidateAllFeeds(ctx context.Context) {
	c.invalidatePrefix(ctx, feedKeyPrefix)
}

func (c *QueryCache) invalidatePrefix(ctx context.Context, prefix string) {
	iter := c.rdb.Scan(ctx, 0, prefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("query cache scan failed", zap.String("prefix", prefix), zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("query cache invalidation failed", zap.Int("keys", len(keys)), zap.Error(err))
	}
}
