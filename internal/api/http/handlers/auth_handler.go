package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/resolvease/complaint-service/internal/api/dto"
	"github.com/resolvease/complaint-service/internal/auth"
	"github.com/resolvease/complaint-service/internal/domain"
	"github.com/resolvease/complaint-service/internal/service"
	apperrors "github.com/resolvease/complaint-service/pkg/util/errorutil"
)

// AuthHandler exposes registration, login and profile endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Department: req.Department,
		Role:       req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAuthResponse(result.User, result.Token)})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAuthResponse(result.User, result.Token)})
}

// Profile handles GET /api/auth/profile.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	actor, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	user, err := h.auth.Profile(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// UpdateProfile handles PUT /api/auth/profile and returns a fresh credential.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	actor, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.auth.UpdateSelf(c.UserContext(), actor, service.UpdateSelfInput{
		Name:       optional(req.Name),
		Email:      optional(req.Email),
		Department: optional(req.Department),
		Password:   optional(req.Password),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAuthResponse(result.User, result.Token)})
}

// parseBody decodes the JSON body into req and runs its validation tags.
func parseBody(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return dto.Validate(req)
}

// optional maps the empty string to an absent value.
func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func requirePrincipal(c *fiber.Ctx) (*domain.User, error) {
	user, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewInvalidToken("authentication required")
	}
	return user, nil
}
