package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisLocker holds keys in Redis so several engine processes sharing one
// database serialize on the same allocation.
type RedisLocker struct {
	client  *redislock.Client
	ttl     time.Duration
	retry   time.Duration
	retries int
}

// RedisOption configures a RedisLocker.
type RedisOption func(*RedisLocker)

// WithTTL sets how long a key is held if the owner dies without releasing it.
func WithTTL(ttl time.Duration) RedisOption {
	return func(l *RedisLocker) { l.ttl = ttl }
}

// WithRetry sets the polling interval and attempt count while a key is busy.
func WithRetry(interval time.Duration, retries int) RedisOption {
	return func(l *RedisLocker) {
		l.retry = interval
		l.retries = retries
	}
}

func NewRedisLocker(rdb redis.UniversalClient, opts ...RedisOption) *RedisLocker {
	l := &RedisLocker{
		client:  redislock.New(rdb),
		ttl:     30 * time.Second,
		retry:   50 * time.Millisecond,
		retries: 100,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *RedisLocker) Acquire(ctx context.Context, keys ...string) (func(), error) {
	return acquireAll(ctx, keys, l.take)
}

func (l *RedisLocker) take(ctx context.Context, key string) (func(), error) {
	lk, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(l.retry), l.retries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: %s", ErrNotObtained, key)
	}
	if err != nil {
		return nil, fmt.Errorf("obtaining lock %s: %w", key, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// Release uses a fresh context: the caller's may already be done.
			if err := lk.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				logrus.WithError(err).WithField("key", key).Warn("releasing lock")
			}
		})
	}, nil
}
