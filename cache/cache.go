// Package cache provides a small read-through cache over Redis for case list
// and detail responses. When no Redis address is configured the cache is
// disabled and every Fetch falls through to its fill function.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/crashdoc/crashdoc-api/domain"
	"github.com/crashdoc/crashdoc-api/log"
)

// Cache key layout. Mutations invalidate every shape for the records they
// touch.
const (
	keyCaseFmt      = "case:%s"
	keyCasesUserFmt = "cases:user:%s"
	keyUserFmt      = "user:%s"
)

var client *redis.Client

func init() {
	Init(domain.Env.RedisAddr, domain.Env.RedisPassword, domain.Env.RedisDB)
}

// Init connects the package-level Redis client. An empty addr disables
// caching.
func Init(addr, password string, db int) {
	if addr == "" || domain.Env.CacheDisabled {
		client = nil
		return
	}

	client = redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
}

// UseClient swaps in a pre-built client, primarily for tests.
func UseClient(c *redis.Client) {
	client = c
}

// Enabled reports whether a Redis client is configured
func Enabled() bool {
	return client != nil
}

// TTL is the configured lifetime of cached entries
func TTL() time.Duration {
	return time.Duration(domain.Env.CacheTTLSeconds) * time.Second
}

// CaseKey is the cache key for a single case
func CaseKey(id fmt.Stringer) string {
	return fmt.Sprintf(keyCaseFmt, id)
}

// UserCasesKey is the cache key for one principal's case list
func UserCasesKey(id fmt.Stringer) string {
	return fmt.Sprintf(keyCasesUserFmt, id)
}

// UserKey is the cache key for one user's hydrated profile
func UserKey(id fmt.Stringer) string {
	return fmt.Sprintf(keyUserFmt, id)
}

// Fetch implements the read-through pattern: on a hit the cached JSON is
// unmarshalled into dest; on a miss fill is called and its result is cached
// and copied into dest. Redis failures are logged and degrade to a miss
// rather than failing the request.
func Fetch(ctx context.Context, key string, dest any, fill func() (any, error)) error {
	if client != nil {
		cached, err := client.Get(ctx, key).Result()
		if err == nil {
			if jsonErr := json.Unmarshal([]byte(cached), dest); jsonErr == nil {
				return nil
			}
			// fall through and refill on a corrupt entry
		} else if !errors.Is(err, redis.Nil) {
			log.Errorf("cache get failed for %s: %s", key, err)
		}
	}

	fresh, err := fill()
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(fresh)
	if err != nil {
		return fmt.Errorf("failed to encode value for cache key %s: %w", key, err)
	}

	if client != nil {
		if err := client.Set(ctx, key, encoded, TTL()).Err(); err != nil {
			log.Errorf("cache set failed for %s: %s", key, err)
		}
	}

	return json.Unmarshal(encoded, dest)
}

// Invalidate removes the given keys. Failures are logged, not returned, since
// a stale entry will expire on its own.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		log.Errorf("cache invalidation failed for %v: %s", keys, err)
	}
}
