package domain

import (
	"strings"
	"time"
)

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	ComplaintStatusPending    ComplaintStatus = "Pending"
	ComplaintStatusInProgress ComplaintStatus = "In Progress"
	ComplaintStatusResolved   ComplaintStatus = "Resolved"
	ComplaintStatusClosed     ComplaintStatus = "Closed"
	ComplaintStatusRejected   ComplaintStatus = "Rejected"
)

// ComplaintStatuses lists every accepted status.
var ComplaintStatuses = []ComplaintStatus{
	ComplaintStatusPending,
	ComplaintStatusInProgress,
	ComplaintStatusResolved,
	ComplaintStatusClosed,
	ComplaintStatusRejected,
}

// Valid reports whether s is one of the enumerated statuses.
func (s ComplaintStatus) Valid() bool {
	for _, candidate := range ComplaintStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// ComplaintPriority enumerates urgency levels.
type ComplaintPriority string

const (
	ComplaintPriorityLow    ComplaintPriority = "Low"
	ComplaintPriorityMedium ComplaintPriority = "Medium"
	ComplaintPriorityHigh   ComplaintPriority = "High"
	ComplaintPriorityUrgent ComplaintPriority = "Urgent"
)

// ComplaintPriorities lists every accepted priority.
var ComplaintPriorities = []ComplaintPriority{
	ComplaintPriorityLow,
	ComplaintPriorityMedium,
	ComplaintPriorityHigh,
	ComplaintPriorityUrgent,
}

// Valid reports whether p is one of the enumerated priorities.
func (p ComplaintPriority) Valid() bool {
	for _, candidate := range ComplaintPriorities {
		if p == candidate {
			return true
		}
	}
	return false
}

// Complaint is the aggregate submitted by an employee.
type Complaint struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	Category    string
	Status      ComplaintStatus
	Priority    ComplaintPriority
	AssignedTo  *string
	Department  *string
	Replies     []AdminReply
	Version     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AdminReply is an append-only entry in a complaint's reply thread.
type AdminReply struct {
	ID          string
	ComplaintID string
	AuthorID    string
	Text        string
	CreatedAt   time.Time
}

// NormalizeReplyText trims reply text; ok is false when nothing is left.
func NormalizeReplyText(text string) (string, bool) {
	text = strings.TrimSpace(text)
	return text, text != ""
}

// ComplaintView is a complaint enriched with identity summaries.
type ComplaintView struct {
	Complaint *Complaint
	Owner     *UserSummary
	Assignee  *UserSummary
	Replies   []ReplyView
}

// ReplyView pairs a reply with its author's summary.
type ReplyView struct {
	Reply  AdminReply
	Author *UserSummary
}
