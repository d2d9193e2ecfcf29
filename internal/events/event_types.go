package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/resolvease/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintSubmitted     EventType = "complaint_submitted"
	EventComplaintStatusChanged EventType = "complaint_status_changed"
	EventComplaintAssigned      EventType = "complaint_assigned"
	EventComplaintReplyAdded    EventType = "complaint_reply_added"
)

// AllEventTypes lists every event the lifecycle service emits.
var AllEventTypes = []EventType{
	EventComplaintSubmitted,
	EventComplaintStatusChanged,
	EventComplaintAssigned,
	EventComplaintReplyAdded,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ComplaintID string      `json:"complaint_id"`
	ActorID     string      `json:"actor_id"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// NewEvent stamps a fresh event.
func NewEvent(eventType EventType, complaintID, actorID string, payload interface{}) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		ComplaintID: complaintID,
		ActorID:     actorID,
		Timestamp:   time.Now().UTC(),
		Payload:     payload,
	}
}

// ComplaintSubmittedPayload payload.
type ComplaintSubmittedPayload struct {
	OwnerID  string                   `json:"owner_id"`
	Title    string                   `json:"title"`
	Category string                   `json:"category"`
	Priority domain.ComplaintPriority `json:"priority"`
}

// ComplaintStatusChangedPayload payload.
type ComplaintStatusChangedPayload struct {
	OldStatus domain.ComplaintStatus `json:"old_status"`
	NewStatus domain.ComplaintStatus `json:"new_status"`
}

// ComplaintAssignedPayload payload.
type ComplaintAssignedPayload struct {
	AssigneeID *string `json:"assignee_id,omitempty"`
	Department *string `json:"department,omitempty"`
}

// ComplaintReplyAddedPayload payload.
type ComplaintReplyAddedPayload struct {
	ReplyID     string `json:"reply_id"`
	AuthorID    string `json:"author_id"`
	BodyPreview string `json:"body_preview"`
}
