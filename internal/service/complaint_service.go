package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/resolvease/complaint-service/internal/domain"
	"github.com/resolvease/complaint-service/internal/events"
	"github.com/resolvease/complaint-service/internal/policy"
	"github.com/resolvease/complaint-service/internal/repository"
	apperrors "github.com/resolvease/complaint-service/pkg/util/errorutil"
)

// ReplyAddedMessage confirms a successful reply append.
const ReplyAddedMessage = "Reply added successfully"

// ComplaintService coordinates complaint workflows.
type ComplaintService struct {
	complaints repository.ComplaintRepository
	replies    repository.ComplaintReplyRepository
	users      repository.UserRepository
	history    repository.ComplaintHistoryRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ComplaintDependencies bundles repositories for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	ReplyRepo     repository.ComplaintReplyRepository
	UserRepo      repository.UserRepository
	HistoryRepo   repository.ComplaintHistoryRepository
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// SubmitComplaintInput describes complaint creation payload.
type SubmitComplaintInput struct {
	Title       string
	Description string
	Category    string
	Priority    string
}

// ComplaintFilter narrows the admin listing. Nil fields are ignored.
type ComplaintFilter struct {
	Status     *string
	Category   *string
	AssignedTo *string
	Department *string
}

// AssignInput carries the optional assignee and department.
type AssignInput struct {
	AssigneeID *string
	Department *string
}

// ReplyReceipt is returned after a reply is appended.
type ReplyReceipt struct {
	Complaint *domain.ComplaintView
	Message   string
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComplaintService{
		complaints: deps.ComplaintRepo,
		replies:    deps.ReplyRepo,
		users:      deps.UserRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Submit creates a Pending complaint owned by actor.
func (s *ComplaintService) Submit(ctx context.Context, actor *domain.User, input SubmitComplaintInput) (*domain.Complaint, error) {
	if actor == nil {
		return nil, apperrors.NewInvalidToken("authentication required")
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	category := strings.TrimSpace(input.Category)

	missing := []string{}
	if title == "" {
		missing = append(missing, "title")
	}
	if description == "" {
		missing = append(missing, "description")
	}
	if category == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError(
			"missing required fields: "+strings.Join(missing, ", "),
			map[string]any{"missing": missing},
		)
	}

	priority := domain.ComplaintPriorityLow
	if raw := strings.TrimSpace(input.Priority); raw != "" {
		priority = domain.ComplaintPriority(raw)
		if !priority.Valid() {
			return nil, apperrors.NewValidationError("invalid priority", map[string]any{
				"priority": raw,
				"allowed":  domain.ComplaintPriorities,
			})
		}
	}

	complaint := &domain.Complaint{
		OwnerID:     actor.ID,
		Title:       title,
		Description: description,
		Category:    category,
		Status:      domain.ComplaintStatusPending,
		Priority:    priority,
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, err
	}
	complaint.Replies = []domain.AdminReply{}

	s.publishEvent(ctx, events.NewEvent(events.EventComplaintSubmitted, complaint.ID, actor.ID,
		events.ComplaintSubmittedPayload{
			OwnerID:  complaint.OwnerID,
			Title:    complaint.Title,
			Category: complaint.Category,
			Priority: complaint.Priority,
		}))
	return complaint, nil
}

// ListMine returns the actor's complaints, newest first.
func (s *ComplaintService) ListMine(ctx context.Context, actor *domain.User) ([]domain.ComplaintView, error) {
	if actor == nil {
		return nil, apperrors.NewInvalidToken("authentication required")
	}
	ownerID := actor.ID
	complaints, err := s.complaints.ListWithFilter(ctx, repository.ComplaintFilter{OwnerID: &ownerID})
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, complaints)
}

// ListAll returns complaints matching every present filter, newest first. Admin only.
func (s *ComplaintService) ListAll(ctx context.Context, actor *domain.User, filter ComplaintFilter) ([]domain.ComplaintView, error) {
	if err := policy.ViewAllComplaints(actor); err != nil {
		return nil, err
	}
	repoFilter := repository.ComplaintFilter{
		Category:   filter.Category,
		AssignedTo: filter.AssignedTo,
		Department: filter.Department,
	}
	if filter.Status != nil {
		status := domain.ComplaintStatus(*filter.Status)
		repoFilter.Status = &status
	}
	complaints, err := s.complaints.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, complaints)
}

// GetByID returns a complaint visible to the actor.
func (s *ComplaintService) GetByID(ctx context.Context, actor *domain.User, id string) (*domain.ComplaintView, error) {
	complaint, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.ViewComplaint(actor, complaint); err != nil {
		return nil, err
	}
	return s.enrichOne(ctx, complaint)
}

// UpdateStatus sets a new status. A nil or empty status leaves the complaint unchanged.
func (s *ComplaintService) UpdateStatus(ctx context.Context, actor *domain.User, id string, newStatus *string) (*domain.ComplaintView, error) {
	if err := policy.ManageComplaint(actor); err != nil {
		return nil, err
	}
	complaint, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if newStatus == nil || strings.TrimSpace(*newStatus) == "" {
		return s.enrichOne(ctx, complaint)
	}

	status := domain.ComplaintStatus(strings.TrimSpace(*newStatus))
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{
			"status":  *newStatus,
			"allowed": domain.ComplaintStatuses,
		})
	}
	if status == complaint.Status {
		return s.enrichOne(ctx, complaint)
	}

	oldStatus := complaint.Status
	complaint.Status = status
	if err := s.save(ctx, complaint); err != nil {
		return nil, err
	}
	s.recordHistory(ctx, actor.ID, complaint.ID, domain.ChangeTypeStatus,
		map[string]any{"status": oldStatus},
		map[string]any{"status": status})
	s.publishEvent(ctx, events.NewEvent(events.EventComplaintStatusChanged, complaint.ID, actor.ID,
		events.ComplaintStatusChangedPayload{OldStatus: oldStatus, NewStatus: status}))
	return s.enrichOne(ctx, complaint)
}

// Assign sets the assignee and/or department. Each is applied independently when present.
func (s *ComplaintService) Assign(ctx context.Context, actor *domain.User, id string, input AssignInput) (*domain.ComplaintView, error) {
	if err := policy.ManageComplaint(actor); err != nil {
		return nil, err
	}
	complaint, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	assigneeID := trimmedOrNil(input.AssigneeID)
	department := trimmedOrNil(input.Department)

	if assigneeID != nil {
		candidate, err := s.users.GetByID(ctx, *assigneeID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		if err := policy.AssignComplaint(candidate); err != nil {
			return nil, err
		}
	}

	oldAssignee := complaint.AssignedTo
	oldDepartment := complaint.Department
	assigneeChanged := assigneeID != nil && !sameString(oldAssignee, assigneeID)
	departmentChanged := department != nil && !sameString(oldDepartment, department)
	if !assigneeChanged && !departmentChanged {
		return s.enrichOne(ctx, complaint)
	}

	if assigneeChanged {
		complaint.AssignedTo = assigneeID
	}
	if departmentChanged {
		complaint.Department = department
	}
	if err := s.save(ctx, complaint); err != nil {
		return nil, err
	}

	if assigneeChanged {
		s.recordHistory(ctx, actor.ID, complaint.ID, domain.ChangeTypeAssignee,
			map[string]any{"assigned_to": oldAssignee},
			map[string]any{"assigned_to": complaint.AssignedTo})
	}
	if departmentChanged {
		s.recordHistory(ctx, actor.ID, complaint.ID, domain.ChangeTypeDepartment,
			map[string]any{"department": oldDepartment},
			map[string]any{"department": complaint.Department})
	}
	s.publishEvent(ctx, events.NewEvent(events.EventComplaintAssigned, complaint.ID, actor.ID,
		events.ComplaintAssignedPayload{AssigneeID: complaint.AssignedTo, Department: complaint.Department}))
	return s.enrichOne(ctx, complaint)
}

// AddReply appends an admin reply to the end of the complaint's thread.
func (s *ComplaintService) AddReply(ctx context.Context, actor *domain.User, id, text string) (*ReplyReceipt, error) {
	if err := policy.ManageComplaint(actor); err != nil {
		return nil, err
	}
	complaint, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	body, ok := domain.NormalizeReplyText(text)
	if !ok {
		return nil, apperrors.NewValidationError("reply text is required", map[string]any{"missing": []string{"replyText"}})
	}

	// The complaint write comes first so a stale read fails before the reply is stored.
	if err := s.save(ctx, complaint); err != nil {
		return nil, err
	}
	reply := &domain.AdminReply{ComplaintID: complaint.ID, AuthorID: actor.ID, Text: body}
	if err := s.replies.Create(ctx, reply); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"id": id})
		}
		return nil, err
	}

	s.publishEvent(ctx, events.NewEvent(events.EventComplaintReplyAdded, complaint.ID, actor.ID,
		events.ComplaintReplyAddedPayload{
			ReplyID:     reply.ID,
			AuthorID:    reply.AuthorID,
			BodyPreview: stringPreview(reply.Text, 120),
		}))

	view, err := s.enrichOne(ctx, complaint)
	if err != nil {
		return nil, err
	}
	return &ReplyReceipt{Complaint: view, Message: ReplyAddedMessage}, nil
}

// History lists audit entries for a complaint, oldest first. Admin only.
func (s *ComplaintService) History(ctx context.Context, actor *domain.User, id string) ([]domain.ComplaintHistory, error) {
	if err := policy.ManageComplaint(actor); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []domain.ComplaintHistory{}, nil
	}
	return s.history.ListByComplaint(ctx, id)
}

func (s *ComplaintService) load(ctx context.Context, id string) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"id": id})
		}
		return nil, err
	}
	return complaint, nil
}

func (s *ComplaintService) save(ctx context.Context, complaint *domain.Complaint) error {
	err := s.complaints.Update(ctx, complaint)
	if errors.Is(err, repository.ErrVersionConflict) {
		return apperrors.NewConflict("complaint was modified concurrently", map[string]any{"id": complaint.ID})
	}
	return err
}

func (s *ComplaintService) enrichOne(ctx context.Context, complaint *domain.Complaint) (*domain.ComplaintView, error) {
	views, err := s.enrich(ctx, []domain.Complaint{*complaint})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// enrich attaches replies and owner, assignee and reply-author summaries in two batched lookups.
func (s *ComplaintService) enrich(ctx context.Context, complaints []domain.Complaint) ([]domain.ComplaintView, error) {
	views := make([]domain.ComplaintView, 0, len(complaints))
	if len(complaints) == 0 {
		return views, nil
	}

	complaintIDs := make([]string, 0, len(complaints))
	for _, c := range complaints {
		complaintIDs = append(complaintIDs, c.ID)
	}
	replies, err := s.replies.ListByComplaints(ctx, complaintIDs)
	if err != nil {
		return nil, err
	}
	repliesByComplaint := make(map[string][]domain.AdminReply, len(complaints))
	for _, reply := range replies {
		repliesByComplaint[reply.ComplaintID] = append(repliesByComplaint[reply.ComplaintID], reply)
	}

	userIDs := newIDSet()
	for _, c := range complaints {
		userIDs.add(c.OwnerID)
		if c.AssignedTo != nil {
			userIDs.add(*c.AssignedTo)
		}
	}
	for _, reply := range replies {
		userIDs.add(reply.AuthorID)
	}
	users, err := s.users.ListByIDs(ctx, userIDs.list())
	if err != nil {
		return nil, err
	}
	summaries := make(map[string]*domain.UserSummary, len(users))
	for i := range users {
		summaries[users[i].ID] = users[i].Summary()
	}

	for i := range complaints {
		c := complaints[i]
		c.Replies = repliesByComplaint[c.ID]
		if c.Replies == nil {
			c.Replies = []domain.AdminReply{}
		}
		view := domain.ComplaintView{
			Complaint: &c,
			Owner:     summaries[c.OwnerID],
			Replies:   make([]domain.ReplyView, 0, len(c.Replies)),
		}
		if c.AssignedTo != nil {
			view.Assignee = summaries[*c.AssignedTo]
		}
		for _, reply := range c.Replies {
			view.Replies = append(view.Replies, domain.ReplyView{Reply: reply, Author: summaries[reply.AuthorID]})
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *ComplaintService) recordHistory(ctx context.Context, actorID, complaintID string, changeType domain.ComplaintChangeType, oldValue, newValue map[string]any) {
	if s.history == nil {
		return
	}
	entry := &domain.ComplaintHistory{
		ComplaintID: complaintID,
		ChangedByID: actorID,
		ChangeType:  changeType,
		OldValue:    oldValue,
		NewValue:    newValue,
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record complaint history",
			zap.String("complaint_id", complaintID),
			zap.String("change_type", string(changeType)),
			zap.Error(err))
	}
}

func (s *ComplaintService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publication failed",
			zap.String("event_type", string(event.Type)),
			zap.String("complaint_id", event.ComplaintID),
			zap.Error(err))
	}
}

type idSet struct {
	seen  map[string]struct{}
	order []string
}

func newIDSet() *idSet {
	return &idSet{seen: make(map[string]struct{})}
}

func (s *idSet) add(id string) {
	if id == "" {
		return
	}
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
}

func (s *idSet) list() []string {
	return s.order
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func stringPreview(body string, limit int) string {
	runes := []rune(body)
	if len(runes) <= limit {
		return body
	}
	return string(runes[:limit]) + "..."
}
