package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/resolvease/complaint-service/internal/domain"
)

// RedisCache is the minimal Redis surface needed for user caching.
type RedisCache interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CachedUserRepository serves GetByID from Redis and falls through to the wrapped repository.
type CachedUserRepository struct {
	UserRepository
	client RedisCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedUserRepository wraps repo with a read-through cache.
func NewCachedUserRepository(repo UserRepository, client RedisCache, ttl time.Duration, logger *zap.Logger) *CachedUserRepository {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedUserRepository{UserRepository: repo, client: client, ttl: ttl, logger: logger}
}

// cachedUser is the cache entry for a user. The password hash is never written to Redis;
// a user read from the cache has an empty PasswordHash, which Update leaves untouched.
type cachedUser struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       domain.Role `json:"role"`
	Department string      `json:"department"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

func newCachedUser(u *domain.User) cachedUser {
	return cachedUser{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Department: u.Department,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func (c cachedUser) user() *domain.User {
	return &domain.User{
		ID:         c.ID,
		Name:       c.Name,
		Email:      c.Email,
		Role:       c.Role,
		Department: c.Department,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func userCacheKey(id string) string {
	return fmt.Sprintf("complaints:user:id:%s", id)
}

func (c *CachedUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	key := userCacheKey(id)
	if cached, err := c.client.Get(ctx, key).Result(); err == nil {
		var entry cachedUser
		if err := json.Unmarshal([]byte(cached), &entry); err == nil {
			return entry.user(), nil
		}
		c.logger.Debug("discarding undecodable cached user", zap.String("key", key))
	}

	user, err := c.UserRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(newCachedUser(user))
	if err != nil {
		c.logger.Warn("failed to marshal user for cache", zap.Error(err))
		return user, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to cache user", zap.String("key", key), zap.Error(err))
	}
	return user, nil
}

func (c *CachedUserRepository) Update(ctx context.Context, user *domain.User) error {
	if err := c.UserRepository.Update(ctx, user); err != nil {
		return err
	}
	c.invalidate(ctx, user.ID)
	return nil
}

func (c *CachedUserRepository) Delete(ctx context.Context, id string) error {
	if err := c.UserRepository.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *CachedUserRepository) invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, userCacheKey(id)).Err(); err != nil {
		c.logger.Warn("user cache invalidation failed", zap.String("user_id", id), zap.Error(err))
	}
}
