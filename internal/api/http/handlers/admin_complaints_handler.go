package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/resolvease/complaint-service/internal/api/dto"
	"github.com/resolvease/complaint-service/internal/service"
	apperrors "github.com/resolvease/complaint-service/pkg/util/errorutil"
)

// AdminComplaintsHandler exposes complaint management for admins.
type AdminComplaintsHandler struct {
	service *service.ComplaintService
}

// NewAdminComplaintsHandler constructs handler.
func NewAdminComplaintsHandler(complaintService *service.ComplaintService) *AdminComplaintsHandler {
	return &AdminComplaintsHandler{service: complaintService}
}

// List GET /api/admin/complaints.
func (h *AdminComplaintsHandler) List(c *fiber.Ctx) error {
	actor, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var query dto.ComplaintListQuery
	if err := c.QueryParser(&query); err != nil {
		return apperrors.NewValidationError("invalid query", nil)
	}

	views, err := h.service.ListAll(c.UserContext(), actor, service.ComplaintFilter{
		Status:     queryValue(query.Status),
		Category:   queryValue(query.Category),
		AssignedTo: queryValue(query.AssignedTo),
		Department: queryValue(query.Department),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponses(views)})
}

// Get GET /api/admin/complaints/:id.
func (h *AdminComplaintsHandler) Get(c *fiber.Ctx) error {
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

// History GET /api/admin/complaints/:id/history.
func (h *AdminComplaintsHandler) History(c *fiber.Ctx) error {
	actor, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	entries, err := h.service.History(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewHistoryResponses(entries)})
}

// UpdateStatus PUT /api/admin/complaints/:id/status.
func (h *AdminComplaintsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	view, err := h.service.UpdateStatus(c.UserContext(), actor, c.Params("id"), optional(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(view)})
}

// Assign PUT /api/admin/complaints/:id/assign.
func (h *AdminComplaintsHandler) Assign(c *fiber.Ctx) error {
	actor, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	view, err := h.service.Assign(c.UserContext(), actor, c.Params("id"), service.AssignInput{
		AssigneeID: optional(req.AssignedTo),
		Department: optional(req.Department),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(view)})
}

// Reply POST /api/admin/complaints/:id/reply.
func (h *AdminComplaintsHandler) Reply(c *fiber.Ctx) error {
	actor, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ReplyRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	receipt, err := h.service.AddReply(c.UserContext(), actor, c.Params("id"), req.ReplyText)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.ReplyReceiptResponse{
		Message:   receipt.Message,
		Complaint: dto.NewComplaintResponse(receipt.Complaint),
	}})
}

func queryValue(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return &raw
}
