package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/resolvease/complaint-service/internal/config"
	"github.com/resolvease/complaint-service/internal/domain"
	"github.com/resolvease/complaint-service/internal/repository/memory"
	apperrors "github.com/resolvease/complaint-service/pkg/util/errorutil"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            4,
		LoginMaxAttempts:      3,
		LoginWindowSeconds:    60,
	}
}

func TestTokenManager(t *testing.T) {
	t.Run("Should round trip the user id", func(t *testing.T) {
		tm := NewTokenManager(testAuthConfig())
		token, err := tm.Issue("u1")
		require.NoError(t, err)
		assert.Equal(t, time.Hour, token.ExpiresAt.Sub(token.IssuedAt))

		userID, err := tm.Verify(token.Value)
		require.NoError(t, err)
		assert.Equal(t, "u1", userID)
	})

	t.Run("Should default to thirty days", func(t *testing.T) {
		tm := NewTokenManager(config.AuthConfig{JWTSecret: "s"})
		token, err := tm.Issue("u1")
		require.NoError(t, err)
		assert.Equal(t, 30*24*time.Hour, token.ExpiresAt.Sub(token.IssuedAt))
	})

	t.Run("Should reject expired tokens", func(t *testing.T) {
		tm := NewTokenManager(testAuthConfig())
		tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := tm.Issue("u1")
		require.NoError(t, err)

		tm.now = time.Now
		_, err = tm.Verify(token.Value)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidToken))
	})

	t.Run("Should reject tokens signed with another secret", func(t *testing.T) {
		other := NewTokenManager(config.AuthConfig{JWTSecret: "other", AccessTokenTTLMinutes: 5})
		token, err := other.Issue("u1")
		require.NoError(t, err)

		_, err = NewTokenManager(testAuthConfig()).Verify(token.Value)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidToken))
	})

	t.Run("Should reject garbage", func(t *testing.T) {
		_, err := NewTokenManager(testAuthConfig()).Verify("not-a-token")
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidToken))
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	user := &domain.User{PasswordHash: hash}
	assert.True(t, VerifyPassword(user, "s3cret"))
	assert.False(t, VerifyPassword(user, "wrong"))
	assert.False(t, VerifyPassword(nil, "s3cret"))
}

func newProtectedApp(t *testing.T) (*fiber.App, *TokenManager, *domain.User, *domain.User) {
	t.Helper()
	store := memory.NewStore()
	users := store.Users()
	employee := &domain.User{Name: "Eve", Email: "eve@example.com", Role: domain.RoleEmployee}
	admin := &domain.User{Name: "Ada", Email: "ada@example.com", Role: domain.RoleAdmin}
	require.NoError(t, users.Create(context.Background(), employee))
	require.NoError(t, users.Create(context.Background(), admin))

	tokens := NewTokenManager(testAuthConfig())
	mw := NewAuthMiddleware(tokens, users)

	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		domainErr := apperrors.ToDomainError(err)
		return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"code": domainErr.Code})
	}})
	app.Get("/me", mw.Handle, func(c *fiber.Ctx) error {
		user, _ := PrincipalFromContext(c)
		return c.SendString(user.ID)
	})
	app.Get("/admin", mw.Handle, RequireRole(domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app, tokens, employee, admin
}

func TestAuthMiddleware(t *testing.T) {
	app, tokens, employee, admin := newProtectedApp(t)

	call := func(path, header string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	employeeToken, err := tokens.Issue(employee.ID)
	require.NoError(t, err)
	adminToken, err := tokens.Issue(admin.ID)
	require.NoError(t, err)
	ghostToken, err := tokens.Issue("ghost")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, call("/me", ""))
	assert.Equal(t, http.StatusUnauthorized, call("/me", "Token abc"))
	assert.Equal(t, http.StatusUnauthorized, call("/me", "Bearer "+ghostToken.Value))
	assert.Equal(t, http.StatusOK, call("/me", "Bearer "+employeeToken.Value))
	assert.Equal(t, http.StatusForbidden, call("/admin", "Bearer "+employeeToken.Value))
	assert.Equal(t, http.StatusNoContent, call("/admin", "Bearer "+adminToken.Value))
}

func TestLoginLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	limiter := NewLoginLimiter(client, testAuthConfig(), zap.NewNop())

	for i := 0; i < 3; i++ {
		allowed, _ := limiter.Allow(ctx, "Eve@example.com")
		require.True(t, allowed)
		limiter.RecordFailure(ctx, "eve@example.com")
	}

	allowed, retry := limiter.Allow(ctx, "eve@example.com")
	assert.False(t, allowed)
	assert.Greater(t, retry, time.Duration(0))

	mr.FastForward(61 * time.Second)
	allowed, _ = limiter.Allow(ctx, "eve@example.com")
	assert.True(t, allowed)

	limiter.RecordFailure(ctx, "eve@example.com")
	limiter.Reset(ctx, "eve@example.com")
	assert.False(t, mr.Exists(loginKey("eve@example.com")))
}

func TestLoginLimiter_FailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	limiter := NewLoginLimiter(client, testAuthConfig(), zap.NewNop())
	limiter.RecordFailure(context.Background(), "eve@example.com")
	allowed, _ := limiter.Allow(context.Background(), "eve@example.com")
	assert.True(t, allowed)

	var nilLimiter *LoginLimiter
	allowed, _ = nilLimiter.Allow(context.Background(), "eve@example.com")
	assert.True(t, allowed)
}
