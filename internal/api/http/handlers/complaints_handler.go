package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/resolvease/complaint-service/internal/api/dto"
	"github.com/resolvease/complaint-service/internal/service"
)

// ComplaintsHandler manages employee complaint endpoints.
type ComplaintsHandler struct {
	service *service.ComplaintService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaintService *service.ComplaintService) *ComplaintsHandler {
	return &ComplaintsHandler{service: complaintService}
}

// Submit POST /api/users/complaints.
func (h *ComplaintsHandler) Submit(c *fiber.Ctx) error {
	actor, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.SubmitComplaintRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	complaint, err := h.service.Submit(c.UserContext(), actor, service.SubmitComplaintInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewSubmittedComplaintResponse(complaint, actor)})
}

// ListMine GET /api/users/mycomplaints.
func (h *ComplaintsHandler) ListMine(c *fiber.Ctx) error {
	actor, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	views, err := h.service.ListMine(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponses(views)})
}

// Get GET /api/users/complaints/:id. Owners and admins only.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	actor, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	view, err := h.service.GetByID(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(view)})
}
