package service

import (
	"context"

	"github.com/resolvease/complaint-service/internal/config"
	"github.com/resolvease/complaint-service/internal/domain"
	"github.com/resolvease/complaint-service/internal/policy"
	"github.com/resolvease/complaint-service/internal/repository"
	apperrors "github.com/resolvease/complaint-service/pkg/util/errorutil"
)

// UserService manages accounts on behalf of admins.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
}

// AdminUpdateUserInput carries optional changes. Empty fields keep current values.
type AdminUpdateUserInput struct {
	Name       *string
	Email      *string
	Role       *string
	Department *string
}

// ProvisionAdminInput describes an admin account created out of band.
type ProvisionAdminInput struct {
	Name       string
	Email      string
	Password   string
	Department string
}

// NewUserService constructs the service.
func NewUserService(cfg config.AuthConfig, users repository.UserRepository) *UserService {
	return &UserService{users: users, bcryptCost: cfg.BcryptCost}
}

// ListUsers returns every account, newest first.
func (s *UserService) ListUsers(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	if err := policy.ManageUsers(actor); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// GetUser fetches a single account.
func (s *UserService) GetUser(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	if err := policy.ManageUsers(actor); err != nil {
		return nil, err
	}
	return loadUser(ctx, s.users, id)
}

// AdminUpdateUser changes another account's name, email, role or department.
func (s *UserService) AdminUpdateUser(ctx context.Context, actor *domain.User, id string, input AdminUpdateUserInput) (*domain.User, error) {
	if err := policy.ManageUsers(actor); err != nil {
		return nil, err
	}
	user, err := loadUser(ctx, s.users, id)
	if err != nil {
		return nil, err
	}

	if raw := trimmedOrNil(input.Role); raw != nil {
		role, ok := domain.ParseRole(*raw)
		if !ok {
			return nil, apperrors.NewValidationError("invalid role", map[string]any{
				"role":    *raw,
				"allowed": []domain.Role{domain.RoleEmployee, domain.RoleAdmin},
			})
		}
		user.Role = role
	}
	if name := trimmedOrNil(input.Name); name != nil {
		user.Name = *name
	}
	if department := trimmedOrNil(input.Department); department != nil {
		user.Department = *department
	}
	if email := trimmedOrNil(input.Email); email != nil {
		normalized := normalizeEmail(*email)
		if err := ensureEmailAvailable(ctx, s.users, normalized, user.ID); err != nil {
			return nil, err
		}
		user.Email = normalized
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapUserWriteErr(err, user.Email)
	}
	return user, nil
}

// DeleteUser removes an account. Admins may delete themselves but no other admin.
func (s *UserService) DeleteUser(ctx context.Context, actor *domain.User, id string) error {
	if err := policy.ManageUsers(actor); err != nil {
		return err
	}
	target, err := loadUser(ctx, s.users, id)
	if err != nil {
		return err
	}
	if err := policy.DeleteUser(actor, target); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, target.ID); err != nil {
		return mapUserWriteErr(err, target.Email)
	}
	return nil
}

// ProvisionAdmin creates an admin account without an acting user. Used by operator tooling.
func (s *UserService) ProvisionAdmin(ctx context.Context, input ProvisionAdminInput) (*domain.User, error) {
	return createAccount(ctx, s.users, s.bcryptCost, accountFields{
		Name:       input.Name,
		Email:      input.Email,
		Password:   input.Password,
		Department: input.Department,
		Role:       domain.RoleAdmin,
	})
}
