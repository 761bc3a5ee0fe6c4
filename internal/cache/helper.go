package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const analyticsKeyPrefix = "media-analytics:%s"

// opTimeout bounds every cache call so a slow Redis degrades to a miss
// instead of hanging the request.
const opTimeout = 2 * time.Second

// AnalyticsKey returns the cache key for a media asset's analytics snapshot.
func AnalyticsKey(mediaID string) string {
	return fmt.Sprintf(analyticsKeyPrefix, mediaID)
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
// A nil client reads as not found.
func GetJSON(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	s, err := rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL. A nil client is a no-op.
func SetJSON(ctx context.Context, rdb *redis.Client, key string, v any, ttl time.Duration) error {
	if rdb == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return rdb.Set(ctx, key, b, ttl).Err()
}

// Invalidate deletes the key. After a successful ledger write the delete
// runs synchronously, before the response is acknowledged.
func Invalidate(ctx context.Context, rdb *redis.Client, key string) error {
	if rdb == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return rdb.Del(ctx, key).Err()
}
