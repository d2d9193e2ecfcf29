package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/resolvease/complaint-service/internal/auth"
	"github.com/resolvease/complaint-service/internal/domain"
	apperrors "github.com/resolvease/complaint-service/pkg/util/errorutil"
)

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create an employee and issue a token", func(t *testing.T) {
		f := newFixture(t)
		result, err := f.auth.Register(ctx, RegisterInput{
			Name:       "Carol",
			Email:      "  Carol@Example.com ",
			Password:   "secret",
			Department: "Finance",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleEmployee, result.User.Role)
		assert.Equal(t, "carol@example.com", result.User.Email)
		assert.NotEqual(t, "secret", result.User.PasswordHash)

		userID, err := f.auth.TokenManager().Verify(result.Token.Value)
		require.NoError(t, err)
		assert.Equal(t, result.User.ID, userID)
	})

	t.Run("Should reject a duplicate email", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.auth.Register(ctx, RegisterInput{Name: "Alice 2", Email: "alice@example.com", Password: "x"})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	})

	t.Run("Should refuse a self-chosen admin role", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.auth.Register(ctx, RegisterInput{Name: "Mallory", Email: "m@example.com", Password: "x", Role: "admin"})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

		_, err = f.auth.Register(ctx, RegisterInput{Name: "Mallory", Email: "m@example.com", Password: "x", Role: "root"})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	})

	t.Run("Should honour role when registration roles are enabled", func(t *testing.T) {
		f := newFixture(t)
		cfg := testAuthConfig()
		cfg.AllowRegisterRole = true
		svc := NewAuthService(cfg, AuthDependencies{UserRepo: f.store.Users()})

		result, err := svc.Register(ctx, RegisterInput{Name: "Root", Email: "root@example.com", Password: "x", Role: "admin"})
		require.NoError(t, err)
		assert.True(t, result.User.IsAdmin())
	})

	t.Run("Should list missing fields", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.auth.Register(ctx, RegisterInput{Email: "x@example.com"})
		require.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
		assert.Equal(t, []string{"name", "password"}, apperrors.ToDomainError(err).Details["missing"])
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("Should authenticate with valid credentials", func(t *testing.T) {
		f := newFixture(t)
		result, err := f.auth.Login(ctx, "ALICE@example.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, f.alice.ID, result.User.ID)
		assert.Equal(t, f.alice.ID, result.Token.SubjectID)
	})

	t.Run("Should not distinguish unknown email from wrong password", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.auth.Login(ctx, "alice@example.com", "nope")
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidCredentials))

		_, err = f.auth.Login(ctx, "ghost@example.com", "password123")
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidCredentials))
	})

	t.Run("Should throttle repeated failures", func(t *testing.T) {
		f := newFixture(t)
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer client.Close()

		cfg := testAuthConfig()
		svc := NewAuthService(cfg, AuthDependencies{
			UserRepo: f.store.Users(),
			Limiter:  auth.NewLoginLimiter(client, cfg, zap.NewNop()),
		})

		for i := 0; i < cfg.LoginMaxAttempts; i++ {
			_, err := svc.Login(ctx, "alice@example.com", "nope")
			require.True(t, apperrors.HasCode(err, apperrors.CodeInvalidCredentials))
		}
		_, err := svc.Login(ctx, "alice@example.com", "password123")
		require.True(t, apperrors.HasCode(err, apperrors.CodeRateLimited))
		assert.Contains(t, apperrors.ToDomainError(err).Details, "retry_after_seconds")
	})

	t.Run("Should reset the counter after success", func(t *testing.T) {
		f := newFixture(t)
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer client.Close()

		cfg := testAuthConfig()
		svc := NewAuthService(cfg, AuthDependencies{
			UserRepo: f.store.Users(),
			Limiter:  auth.NewLoginLimiter(client, cfg, zap.NewNop()),
		})

		_, _ = svc.Login(ctx, "alice@example.com", "nope")
		_, _ = svc.Login(ctx, "alice@example.com", "nope")
		_, err := svc.Login(ctx, "alice@example.com", "password123")
		require.NoError(t, err)
		_, _ = svc.Login(ctx, "alice@example.com", "nope")
		_, _ = svc.Login(ctx, "alice@example.com", "nope")
		_, err = svc.Login(ctx, "alice@example.com", "password123")
		assert.NoError(t, err)
	})
}

func TestAuthService_UpdateSelf(t *testing.T) {
	ctx := context.Background()

	t.Run("Should update profile fields and password", func(t *testing.T) {
		f := newFixture(t)
		result, err := f.auth.UpdateSelf(ctx, f.alice, UpdateSelfInput{
			Name:       strPtr("Alice Liddell"),
			Department: strPtr("Legal"),
			Password:   strPtr("new-password"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Alice Liddell", result.User.Name)
		assert.Equal(t, "Legal", result.User.Department)
		assert.Equal(t, domain.RoleEmployee, result.User.Role)
		assert.NotEmpty(t, result.Token.Value)

		_, err = f.auth.Login(ctx, "alice@example.com", "new-password")
		assert.NoError(t, err)
	})

	t.Run("Should keep fields that are empty", func(t *testing.T) {
		f := newFixture(t)
		result, err := f.auth.UpdateSelf(ctx, f.alice, UpdateSelfInput{Name: strPtr(""), Email: nil})
		require.NoError(t, err)
		assert.Equal(t, "Alice", result.User.Name)
		assert.Equal(t, "alice@example.com", result.User.Email)
	})

	t.Run("Should reject an email owned by someone else", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.auth.UpdateSelf(ctx, f.alice, UpdateSelfInput{Email: strPtr("bob@example.com")})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

		_, err = f.auth.UpdateSelf(ctx, f.alice, UpdateSelfInput{Email: strPtr("ALICE@example.com")})
		assert.NoError(t, err)
	})
}

func TestAuthService_Profile(t *testing.T) {
	f := newFixture(t)
	user, err := f.auth.Profile(context.Background(), f.bob)
	require.NoError(t, err)
	assert.Equal(t, "Bob", user.Name)

	_, err = f.auth.Profile(context.Background(), &domain.User{ID: "gone"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
