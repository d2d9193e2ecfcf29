package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/resolvease/complaint-service/internal/auth"
	"github.com/resolvease/complaint-service/internal/config"
	"github.com/resolvease/complaint-service/internal/domain"
	"github.com/resolvease/complaint-service/internal/repository"
	apperrors "github.com/resolvease/complaint-service/pkg/util/errorutil"
)

// AuthService coordinates registration, login and self-service profile flows.
type AuthService struct {
	users             repository.UserRepository
	tokenMgr          *auth.TokenManager
	limiter           *auth.LoginLimiter
	bcryptCost        int
	allowRegisterRole bool
	logger            *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Tokens   *auth.TokenManager
	Limiter  *auth.LoginLimiter
	Logger   *zap.Logger
}

// RegisterInput describes a self-registration request.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Department string
	Role       string
}

// UpdateSelfInput carries optional profile changes. Empty fields keep current values.
type UpdateSelfInput struct {
	Name       *string
	Email      *string
	Department *string
	Password   *string
}

// AuthResult pairs an account with a freshly issued credential.
type AuthResult struct {
	User  *domain.User
	Token domain.Token
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	tokens := deps.Tokens
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:             deps.UserRepo,
		tokenMgr:          tokens,
		limiter:           deps.Limiter,
		bcryptCost:        cfg.BcryptCost,
		allowRegisterRole: cfg.AllowRegisterRole,
		logger:            logger,
	}
}

// Register creates an employee account and signs the user in.
// Requesting the admin role is refused unless registration roles are enabled.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	role, ok := domain.ParseRole(input.Role)
	if !ok {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{
			"role":    input.Role,
			"allowed": []domain.Role{domain.RoleEmployee, domain.RoleAdmin},
		})
	}
	if role != domain.RoleEmployee && !s.allowRegisterRole {
		return nil, apperrors.NewForbidden("role cannot be chosen at registration")
	}

	user, err := createAccount(ctx, s.users, s.bcryptCost, accountFields{
		Name:       input.Name,
		Email:      input.Email,
		Password:   input.Password,
		Department: input.Department,
		Role:       role,
	})
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Login verifies credentials and issues a bearer credential.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if allowed, retryAfter := s.limiter.Allow(ctx, email); !allowed {
		return nil, apperrors.NewRateLimited("too many failed login attempts", map[string]any{
			"retry_after_seconds": int(math.Ceil(retryAfter.Seconds())),
		})
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if user == nil || !auth.VerifyPassword(user, password) {
		s.limiter.RecordFailure(ctx, email)
		return nil, apperrors.NewInvalidCredentials()
	}

	s.limiter.Reset(ctx, email)
	return s.issue(user)
}

// Profile reloads the actor's own account.
func (s *AuthService) Profile(ctx context.Context, actor *domain.User) (*domain.User, error) {
	if actor == nil {
		return nil, apperrors.NewInvalidToken("authentication required")
	}
	return loadUser(ctx, s.users, actor.ID)
}

// UpdateSelf changes the actor's own name, email, department or password and re-issues a credential.
// The role is never self-mutable.
func (s *AuthService) UpdateSelf(ctx context.Context, actor *domain.User, input UpdateSelfInput) (*AuthResult, error) {
	if actor == nil {
		return nil, apperrors.NewInvalidToken("authentication required")
	}
	user, err := loadUser(ctx, s.users, actor.ID)
	if err != nil {
		return nil, err
	}

	if name := trimmedOrNil(input.Name); name != nil {
		user.Name = *name
	}
	if department := trimmedOrNil(input.Department); department != nil {
		user.Department = *department
	}
	if email := trimmedOrNil(input.Email); email != nil {
		if err := ensureEmailAvailable(ctx, s.users, normalizeEmail(*email), user.ID); err != nil {
			return nil, err
		}
		user.Email = normalizeEmail(*email)
	}
	if input.Password != nil && *input.Password != "" {
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapUserWriteErr(err, user.Email)
	}
	return s.issue(user)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, err := s.tokenMgr.Issue(user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

type accountFields struct {
	Name       string
	Email      string
	Password   string
	Department string
	Role       domain.Role
}

// createAccount validates, hashes and inserts a new user.
func createAccount(ctx context.Context, users repository.UserRepository, bcryptCost int, fields accountFields) (*domain.User, error) {
	name := strings.TrimSpace(fields.Name)
	email := normalizeEmail(fields.Email)

	missing := []string{}
	if name == "" {
		missing = append(missing, "name")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	if fields.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError(
			"missing required fields: "+strings.Join(missing, ", "),
			map[string]any{"missing": missing},
		)
	}

	if err := ensureEmailAvailable(ctx, users, email, ""); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(fields.Password, bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         fields.Role,
		Department:   strings.TrimSpace(fields.Department),
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, mapUserWriteErr(err, email)
	}
	return user, nil
}

func ensureEmailAvailable(ctx context.Context, users repository.UserRepository, email, ownerID string) error {
	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing != nil && existing.ID != ownerID {
		return apperrors.NewConflict("email already registered", map[string]any{"email": email})
	}
	return nil
}

func loadUser(ctx context.Context, users repository.UserRepository, id string) (*domain.User, error) {
	user, err := users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, err
	}
	return user, nil
}

func mapUserWriteErr(err error, email string) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apperrors.NewConflict("email already registered", map[string]any{"email": email})
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound("user", nil)
	default:
		return err
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
