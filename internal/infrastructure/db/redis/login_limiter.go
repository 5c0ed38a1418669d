package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxAttempts = 5
	defaultWindow      = 15 * time.Minute
)

// LoginLimiter counts failed logins per email in fixed windows.
// Key format: login:fail:<email>
type LoginLimiter struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
}

// NewLoginLimiter returns a limiter that blocks an email after maxAttempts
// failures until window has passed since the first failure.
func NewLoginLimiter(client *redis.Client, maxAttempts int, window time.Duration) *LoginLimiter {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &LoginLimiter{client: client, maxAttempts: int64(maxAttempts), window: window}
}

func (l *LoginLimiter) Blocked(ctx context.Context, email string) (bool, error) {
	n, err := l.client.Get(ctx, l.key(email)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("login limiter get: %w", err)
	}
	return n >= l.maxAttempts, nil
}

// RecordFailure increments the counter; the first failure opens the window.
// INCR and EXPIRE NX run in one MULTI so a counter never outlives its window.
func (l *LoginLimiter) RecordFailure(ctx context.Context, email string) error {
	key := l.key(email)
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("login limiter record failure: %w", err)
	}
	return nil
}

func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	return l.client.Del(ctx, l.key(email)).Err()
}

func (l *LoginLimiter) key(email string) string {
	return "login:fail:" + email
}
