package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resolvease/complaint-service/internal/domain"
	apperrors "github.com/resolvease/complaint-service/pkg/util/errorutil"
)

func TestUserService_DeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Should let an admin delete their own account", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.users.DeleteUser(ctx, f.ada, f.ada.ID))
		_, err := f.users.GetUser(ctx, f.grace, f.ada.ID)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	})

	t.Run("Should forbid deleting another admin", func(t *testing.T) {
		f := newFixture(t)
		err := f.users.DeleteUser(ctx, f.ada, f.grace.ID)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	})

	t.Run("Should delete employees", func(t *testing.T) {
		f := newFixture(t)
		assert.NoError(t, f.users.DeleteUser(ctx, f.ada, f.bob.ID))
	})

	t.Run("Should deny employees and report missing targets", func(t *testing.T) {
		f := newFixture(t)
		err := f.users.DeleteUser(ctx, f.alice, f.bob.ID)
		assert.True(t, apperrors.HasCode(err, apperrors.CodePermissionDenied))

		err = f.users.DeleteUser(ctx, f.ada, "missing")
		assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	})
}

func TestUserService_AdminUpdateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Should change role and department", func(t *testing.T) {
		f := newFixture(t)
		user, err := f.users.AdminUpdateUser(ctx, f.ada, f.bob.ID, AdminUpdateUserInput{
			Role:       strPtr("admin"),
			Department: strPtr("Ops"),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, user.Role)
		assert.Equal(t, "Ops", user.Department)
		assert.Equal(t, "Bob", user.Name)
	})

	t.Run("Should validate role and email", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.users.AdminUpdateUser(ctx, f.ada, f.bob.ID, AdminUpdateUserInput{Role: strPtr("superuser")})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

		_, err = f.users.AdminUpdateUser(ctx, f.ada, f.bob.ID, AdminUpdateUserInput{Email: strPtr("alice@example.com")})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	})

	t.Run("Should require admin", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.users.AdminUpdateUser(ctx, f.alice, f.bob.ID, AdminUpdateUserInput{Name: strPtr("x")})
		assert.True(t, apperrors.HasCode(err, apperrors.CodePermissionDenied))
	})
}

func TestUserService_ListAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	users, err := f.users.ListUsers(ctx, f.ada)
	require.NoError(t, err)
	assert.Len(t, users, 4)

	_, err = f.users.ListUsers(ctx, f.bob)
	assert.True(t, apperrors.HasCode(err, apperrors.CodePermissionDenied))

	user, err := f.users.GetUser(ctx, f.ada, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestUserService_ProvisionAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin, err := f.users.ProvisionAdmin(ctx, ProvisionAdminInput{Name: "Ops", Email: "ops@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	_, err = f.auth.Login(ctx, "ops@example.com", "pw")
	assert.NoError(t, err)

	_, err = f.users.ProvisionAdmin(ctx, ProvisionAdminInput{Name: "Ops", Email: "ops@example.com", Password: "pw"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}
