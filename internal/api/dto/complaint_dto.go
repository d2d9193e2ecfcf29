package dto

import (
	"time"

	"github.com/resolvease/complaint-service/internal/domain"
)

// SubmitComplaintRequest payload.
type SubmitComplaintRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=5000"`
	Category    string `json:"category" validate:"required,max=100"`
	Priority    string `json:"priority"`
}

// ComplaintListQuery captures admin list filters. Empty values mean no constraint.
type ComplaintListQuery struct {
	Status     string `query:"status"`
	Category   string `query:"category"`
	AssignedTo string `query:"assignedTo"`
	Department string `query:"department"`
}

// UpdateStatusRequest payload. A missing or empty status leaves the complaint untouched.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// AssignRequest payload. Empty values leave the corresponding field unchanged.
type AssignRequest struct {
	AssignedTo string `json:"assignedTo"`
	Department string `json:"department" validate:"omitempty,max=120"`
}

// ReplyRequest payload.
type ReplyRequest struct {
	ReplyText string `json:"replyText" validate:"required,max=5000"`
}

// UserSummaryResponse is the identity attached to complaints and replies.
type UserSummaryResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
}

// ReplyResponse represents one admin reply.
type ReplyResponse struct {
	ID        string               `json:"id"`
	User      *UserSummaryResponse `json:"user"`
	ReplyText string               `json:"replyText"`
	CreatedAt time.Time            `json:"createdAt"`
}

// ComplaintResponse provides full complaint info.
type ComplaintResponse struct {
	ID           string                   `json:"id"`
	User         *UserSummaryResponse     `json:"user"`
	Title        string                   `json:"title"`
	Description  string                   `json:"description"`
	Category     string                   `json:"category"`
	Status       domain.ComplaintStatus   `json:"status"`
	Priority     domain.ComplaintPriority `json:"priority"`
	AssignedTo   *UserSummaryResponse     `json:"assignedTo"`
	Department   *string                  `json:"department"`
	AdminReplies []ReplyResponse          `json:"adminReplies"`
	Version      int                      `json:"version"`
	CreatedAt    time.Time                `json:"createdAt"`
	UpdatedAt    time.Time                `json:"updatedAt"`
}

// HistoryResponse is one audit trail entry.
type HistoryResponse struct {
	ID         string         `json:"id"`
	ChangedBy  string         `json:"changedBy"`
	ChangeType string         `json:"changeType"`
	OldValue   map[string]any `json:"oldValue"`
	NewValue   map[string]any `json:"newValue"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// ReplyReceiptResponse mirrors the confirmation returned after a reply.
type ReplyReceiptResponse struct {
	Message   string            `json:"message"`
	Complaint ComplaintResponse `json:"complaint"`
}

// NewComplaintResponse renders an enriched complaint.
func NewComplaintResponse(view *domain.ComplaintView) ComplaintResponse {
	c := view.Complaint
	resp := ComplaintResponse{
		ID:           c.ID,
		User:         newUserSummary(view.Owner),
		Title:        c.Title,
		Description:  c.Description,
		Category:     c.Category,
		Status:       c.Status,
		Priority:     c.Priority,
		AssignedTo:   newUserSummary(view.Assignee),
		Department:   c.Department,
		AdminReplies: make([]ReplyResponse, 0, len(view.Replies)),
		Version:      c.Version,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	// An assignee that no longer resolves still shows its id.
	if resp.AssignedTo == nil && c.AssignedTo != nil {
		resp.AssignedTo = &UserSummaryResponse{ID: *c.AssignedTo}
	}
	for _, r := range view.Replies {
		resp.AdminReplies = append(resp.AdminReplies, ReplyResponse{
			ID:        r.Reply.ID,
			User:      newUserSummary(r.Author),
			ReplyText: r.Reply.Text,
			CreatedAt: r.Reply.CreatedAt,
		})
	}
	return resp
}

// NewComplaintResponses maps a complaint list, preserving order.
func NewComplaintResponses(views []domain.ComplaintView) []ComplaintResponse {
	out := make([]ComplaintResponse, 0, len(views))
	for i := range views {
		out = append(out, NewComplaintResponse(&views[i]))
	}
	return out
}

// NewSubmittedComplaintResponse renders a freshly created complaint owned by owner.
func NewSubmittedComplaintResponse(c *domain.Complaint, owner *domain.User) ComplaintResponse {
	return NewComplaintResponse(&domain.ComplaintView{Complaint: c, Owner: owner.Summary()})
}

// NewHistoryResponses maps audit entries.
func NewHistoryResponses(entries []domain.ComplaintHistory) []HistoryResponse {
	out := make([]HistoryResponse, 0, len(entries))
	for _, h := range entries {
		out = append(out, HistoryResponse{
			ID:         h.ID,
			ChangedBy:  h.ChangedByID,
			ChangeType: string(h.ChangeType),
			OldValue:   h.OldValue,
			NewValue:   h.NewValue,
			CreatedAt:  h.CreatedAt,
		})
	}
	return out
}

func newUserSummary(s *domain.UserSummary) *UserSummaryResponse {
	if s == nil {
		return nil
	}
	return &UserSummaryResponse{ID: s.ID, Name: s.Name, Email: s.Email, Department: s.Department}
}
