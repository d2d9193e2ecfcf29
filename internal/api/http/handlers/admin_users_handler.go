package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/resolvease/complaint-service/internal/api/dto"
	"github.com/resolvease/complaint-service/internal/service"
)

// AdminUsersHandler exposes user administration endpoints.
type AdminUsersHandler struct {
	users *service.UserService
}

// NewAdminUsersHandler constructs handler.
func NewAdminUsersHandler(userService *service.UserService) *AdminUsersHandler {
	return &AdminUsersHandler{users: userService}
}

// List GET /api/admin/users.
func (h *AdminUsersHandler) List(c *fiber.Ctx) error {
	actor, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	users, err := h.users.ListUsers(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponses(users)})
}

// Get GET /api/admin/users/:id.
func (h *AdminUsersHandler) Get(c *fiber.Ctx) error {
	actor, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	user, err := h.users.GetUser(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Update PUT /api/admin/users/:id.
func (h *AdminUsersHandler) Update(c *fiber.Ctx) error {
	actor, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.AdminUpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.AdminUpdateUser(c.UserContext(), actor, c.Params("id"), service.AdminUpdateUserInput{
		Name:       optional(req.Name),
		Email:      optional(req.Email),
		Role:       optional(req.Role),
		Department: optional(req.Department),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Delete DELETE /api/admin/users/:id.
func (h *AdminUsersHandler) Delete(c *fiber.Ctx) error {
	actor, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if err := h.users.DeleteUser(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "User removed"}})
}
