package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/resolvease/complaint-service/internal/config"
)

// LoginLimiter counts failed logins per email in Redis.
// A nil client or a Redis failure never blocks a login.
type LoginLimiter struct {
	rdb         *redis.Client
	maxAttempts int
	window      time.Duration
	logger      *zap.Logger
}

// NewLoginLimiter builds a limiter from auth configuration.
func NewLoginLimiter(rdb *redis.Client, cfg config.AuthConfig, logger *zap.Logger) *LoginLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoginLimiter{rdb: rdb, maxAttempts: cfg.LoginMaxAttempts, window: cfg.LoginWindow(), logger: logger}
}

func loginKey(email string) string {
	return fmt.Sprintf("rate_limit:login:%s", strings.ToLower(strings.TrimSpace(email)))
}

// Allow reports whether another attempt is permitted and, if not, when the block lifts.
func (l *LoginLimiter) Allow(ctx context.Context, email string) (bool, time.Duration) {
	if l == nil || l.rdb == nil || l.maxAttempts <= 0 {
		return true, 0
	}
	key := loginKey(email)
	count, err := l.rdb.Get(ctx, key).Int()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			l.logger.Warn("login limiter lookup failed", zap.Error(err))
		}
		return true, 0
	}
	if count < l.maxAttempts {
		return true, 0
	}
	ttl, err := l.rdb.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = l.window
	}
	return false, ttl
}

// RecordFailure bumps the failure counter, starting the window on the first failure.
func (l *LoginLimiter) RecordFailure(ctx context.Context, email string) {
	if l == nil || l.rdb == nil || l.maxAttempts <= 0 {
		return
	}
	key := loginKey(email)
	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn("login limiter increment failed", zap.Error(err))
		return
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			l.logger.Warn("login limiter expire failed", zap.Error(err))
		}
	}
}

// Reset clears the failure counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, email string) {
	if l == nil || l.rdb == nil {
		return
	}
	if err := l.rdb.Del(ctx, loginKey(email)).Err(); err != nil {
		l.logger.Warn("login limiter reset failed", zap.Error(err))
	}
}
