package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/channelsync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still carries our token
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

const defaultRetryInterval = 50 * time.Millisecond

// ErrLockExpired is returned on release when the lock had already expired
var ErrLockExpired = errors.New("lock expired before release")

// redisClient is the subset of *redis.Client the locker needs
type redisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RedisLocker implements Locker with SET NX PX and a token-checked release.
// The TTL bounds how long a crashed holder can block a key. The lease is not
// renewed while held, so the TTL must be longer than the slowest sync run
// under the lock; otherwise a second holder can take the key mid-sync and the
// first holder's release reports ErrLockExpired.
type RedisLocker struct {
	client        redisClient
	keyPrefix     string
	ttl           time.Duration
	retryInterval time.Duration
}

// NewRedisLocker creates a locker on top of an existing redis client
func NewRedisLocker(client redisClient, keyPrefix string, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{
		client:        client,
		keyPrefix:     keyPrefix,
		ttl:           ttl,
		retryInterval: defaultRetryInterval,
	}
}

// Acquire polls SETNX until the key is free, ctx is done, or wait elapses
func (l *RedisLocker) Acquire(ctx context.Context, key string, wait time.Duration) (shared.UnlockFunc, error) {
	redisKey := l.keyPrefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(wait)

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire redis lock %s: %w", redisKey, err)
		}
		if ok {
			return l.releaseFunc(redisKey, token), nil
		}
		if !time.Now().Add(l.retryInterval).Before(deadline) {
			return nil, notAcquired(key)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryInterval):
		}
	}
}

func (l *RedisLocker) releaseFunc(redisKey, token string) shared.UnlockFunc {
	return func(ctx context.Context) error {
		deleted, err := l.client.Eval(ctx, releaseScript, []string{redisKey}, token).Int64()
		if err != nil {
			return fmt.Errorf("failed to release redis lock %s: %w", redisKey, err)
		}
		if deleted == 0 {
			return ErrLockExpired
		}
		return nil
	}
}

var _ shared.Locker = (*RedisLocker)(nil)
