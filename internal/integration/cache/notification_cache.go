// Package cache provides Redis-backed caches for read-heavy user endpoints.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/streamshare/backend/internal/application/adapter"
)

const (
	pendingKeyPrefix    = "mutual:pending:"
	generationKeyPrefix = "mutual:pending:gen:"

	// generations outlive any count by a wide margin; an expired one reads as 0
	generationTTL = 24 * time.Hour
)

// setIfGeneration writes the count only while the generation is unchanged.
// KEYS[1] count key, KEYS[2] generation key; ARGV[1] generation, ARGV[2] count, ARGV[3] ttl ms.
var setIfGeneration = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// redisNotificationCache implements the adapter.NotificationCache interface.
type redisNotificationCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisNotificationCache creates a notification cache storing counts for ttl.
// ttl must be positive.
func NewRedisNotificationCache(client redis.Cmdable, ttl time.Duration) adapter.NotificationCache {
	return &redisNotificationCache{client: client, ttl: ttl}
}

func pendingKey(userID uuid.UUID) string {
	return pendingKeyPrefix + userID.String()
}

func generationKey(userID uuid.UUID) string {
	return generationKeyPrefix + userID.String()
}

// Get reads the count and the generation in one round trip.
func (c *redisNotificationCache) Get(ctx context.Context, userID uuid.UUID) (adapter.CachedCount, error) {
	values, err := c.client.MGet(ctx, pendingKey(userID), generationKey(userID)).Result()
	if err != nil {
		return adapter.CachedCount{}, fmt.Errorf("failed to read pending count: %w", err)
	}

	var cached adapter.CachedCount
	if raw, ok := values[1].(string); ok {
		cached.Generation, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return adapter.CachedCount{}, fmt.Errorf("corrupt pending count generation %q: %w", raw, err)
		}
	}
	if raw, ok := values[0].(string); ok {
		cached.Count, err = strconv.Atoi(raw)
		if err != nil {
			return adapter.CachedCount{}, fmt.Errorf("corrupt pending count %q: %w", raw, err)
		}
		cached.Hit = true
	}
	return cached, nil
}

// Set stores the pending count unless an invalidation happened since generation was read.
func (c *redisNotificationCache) Set(ctx context.Context, userID uuid.UUID, count int, generation int64) error {
	keys := []string{pendingKey(userID), generationKey(userID)}
	err := setIfGeneration.Run(ctx, c.client, keys, strconv.FormatInt(generation, 10), count, c.ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("failed to store pending count: %w", err)
	}
	return nil
}

// Invalidate removes the cached counts and bumps the generation of every user atomically.
func (c *redisNotificationCache) Invalidate(ctx context.Context, userIDs ...uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range userIDs {
			pipe.Incr(ctx, generationKey(id))
			pipe.Expire(ctx, generationKey(id), generationTTL)
			pipe.Del(ctx, pendingKey(id))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate pending counts: %w", err)
	}
	return nil
}

// nopNotificationCache never holds anything; every read falls through to the ledger.
type nopNotificationCache struct{}

// NewNopNotificationCache returns a cache used when Redis is not configured.
func NewNopNotificationCache() adapter.NotificationCache {
	return nopNotificationCache{}
}

func (nopNotificationCache) Get(context.Context, uuid.UUID) (adapter.CachedCount, error) {
	return adapter.CachedCount{}, nil
}

func (nopNotificationCache) Set(context.Context, uuid.UUID, int, int64) error { return nil }

func (nopNotificationCache) Invalidate(context.Context, ...uuid.UUID) error { return nil }
