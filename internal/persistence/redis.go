package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/resolvease/complaint-service/internal/config"
	"github.com/resolvease/complaint-service/internal/repository"
)

// Short socket timeouts: the login limiter and the user cache both fail open,
// so an unreachable Redis must not stall a request for long.
const (
	redisDialTimeout = 2 * time.Second
	redisIOTimeout   = 500 * time.Millisecond
)

// Redis holds the client shared by the login limiter and the user cache.
type Redis struct {
	Client       *redis.Client
	userCacheTTL time.Duration
	logger       *zap.Logger
}

// NewRedis creates the client. An unreachable server is logged, not fatal.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  redisDialTimeout,
		ReadTimeout:  redisIOTimeout,
		WriteTimeout: redisIOTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable; login throttling and user cache fail open",
			zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	}

	return &Redis{Client: client, userCacheTTL: cfg.UserCacheTTL(), logger: logger}
}

// CacheUsers wraps users with the read-through principal cache, using the configured TTL.
// Without a client the repository is returned unchanged.
func (r *Redis) CacheUsers(users repository.UserRepository) repository.UserRepository {
	if r == nil || r.Client == nil {
		return users
	}
	return repository.NewCachedUserRepository(users, r.Client, r.userCacheTTL, r.logger)
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}
