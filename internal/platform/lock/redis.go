package lock

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"tle_userdb/internal/common"
	"tle_userdb/internal/platform/logging"
)

var log = logging.For("lock")

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Connect opens a Redis client and checks it answers.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	log.WithField("addr", addr).Info("Connected to Redis")
	return rdb, nil
}

// Release gives back every key taken by Acquire.
type Release func(ctx context.Context)

// RedisLocker takes short-lived advisory locks with SET NX and a per-holder
// token, so a holder whose lock expired cannot delete someone else's.
type RedisLocker struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisLocker(rdb *redis.Client, prefix string, ttl time.Duration) *RedisLocker {
	return &RedisLocker{rdb: rdb, prefix: prefix, ttl: ttl}
}

// Acquire locks every key or none. Keys are taken in sorted order so two
// callers locking the same pair cannot deadlock. A held key yields
// common.ErrLockBusy.
func (l *RedisLocker) Acquire(ctx context.Context, keys ...string) (Release, error) {
	token := uuid.NewString()
	var held []string
	release := func(ctx context.Context) {
		for _, key := range held {
			deleted, err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Int64()
			if err != nil {
				log.WithError(err).WithField("key", key).Error("Failed to release lock")
			} else if deleted == 0 {
				log.WithField("key", key).Warn("Lock expired or was taken by another holder before release")
			}
		}
	}

	for _, key := range orderedKeys(l.prefix, keys) {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			release(ctx)
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if !ok {
			release(ctx)
			return nil, fmt.Errorf("lock %s: %w", key, common.ErrLockBusy)
		}
		held = append(held, key)
	}
	return release, nil
}

func orderedKeys(prefix string, keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, prefix+k)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// NopLocker is used when no Redis is configured. The only guard left is the
// read-then-write check in the services.
type NopLocker struct{}

func (NopLocker) Acquire(context.Context, ...string) (Release, error) {
	return func(context.Context) {}, nil
}
