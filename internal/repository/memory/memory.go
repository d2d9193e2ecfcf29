// Package memory provides process-local repository implementations used when
// no Postgres DSN is configured and by service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/resolvease/complaint-service/internal/domain"
	"github.com/resolvease/complaint-service/internal/repository"
)

// Store holds every record behind a single lock so multi-record reads stay consistent.
type Store struct {
	mu         sync.RWMutex
	users      map[string]domain.User
	complaints map[string]domain.Complaint
	replies    []domain.AdminReply
	history    []domain.ComplaintHistory
	now        func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:      make(map[string]domain.User),
		complaints: make(map[string]domain.Complaint),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Users returns a UserRepository view.
func (s *Store) Users() repository.UserRepository { return &userRepo{s} }

// Complaints returns a ComplaintRepository view.
func (s *Store) Complaints() repository.ComplaintRepository { return &complaintRepo{s} }

// Replies returns a ComplaintReplyRepository view.
func (s *Store) Replies() repository.ComplaintReplyRepository { return &replyRepo{s} }

// History returns a ComplaintHistoryRepository view.
func (s *Store) History() repository.ComplaintHistoryRepository { return &historyRepo{s} }

// tick returns a timestamp strictly after every one issued before, keeping
// newest-first ordering stable within a clock tick.
func (s *Store) tick(last time.Time) time.Time {
	now := s.now()
	if !now.After(last) {
		now = last.Add(time.Microsecond)
	}
	return now
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.emailTaken(user.Email, "") {
		return repository.ErrDuplicateEmail
	}
	user.ID = uuid.NewString()
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepo) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.emailTaken(user.Email, user.ID) {
		return repository.ErrDuplicateEmail
	}
	if user.PasswordHash == "" {
		user.PasswordHash = existing.PasswordHash
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = r.s.now()
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.users, id)
	for cid, complaint := range r.s.complaints {
		if complaint.AssignedTo != nil && *complaint.AssignedTo == id {
			complaint.AssignedTo = nil
			r.s.complaints[cid] = complaint
		}
	}
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, user := range r.s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) List(_ context.Context) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make([]domain.User, 0, len(r.s.users))
	for _, user := range r.s.users {
		result = append(result, user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *userRepo) ListByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := []domain.User{}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if user, ok := r.s.users[id]; ok {
			result = append(result, user)
		}
	}
	return result, nil
}

func (r *userRepo) emailTaken(email, exceptID string) bool {
	for id, user := range r.s.users {
		if id != exceptID && strings.EqualFold(user.Email, email) {
			return true
		}
	}
	return false
}

type complaintRepo struct{ s *Store }

func (r *complaintRepo) Create(_ context.Context, complaint *domain.Complaint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	complaint.ID = uuid.NewString()
	complaint.Version = 1
	complaint.CreatedAt = r.s.tick(r.latestCreated())
	complaint.UpdatedAt = complaint.CreatedAt
	stored := *complaint
	stored.Replies = nil
	r.s.complaints[complaint.ID] = stored
	return nil
}

func (r *complaintRepo) Update(_ context.Context, complaint *domain.Complaint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.complaints[complaint.ID]
	if !ok || existing.Version != complaint.Version {
		return repository.ErrVersionConflict
	}
	existing.Status = complaint.Status
	existing.Priority = complaint.Priority
	existing.AssignedTo = cloneString(complaint.AssignedTo)
	existing.Department = cloneString(complaint.Department)
	existing.Version++
	existing.UpdatedAt = r.s.tick(existing.UpdatedAt)
	r.s.complaints[complaint.ID] = existing

	complaint.Version = existing.Version
	complaint.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *complaintRepo) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	complaint, ok := r.s.complaints[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyComplaint(complaint), nil
}

func (r *complaintRepo) ListWithFilter(_ context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := []domain.Complaint{}
	for _, complaint := range r.s.complaints {
		if matches(complaint, filter) {
			result = append(result, *copyComplaint(complaint))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []domain.Complaint{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *complaintRepo) latestCreated() time.Time {
	var latest time.Time
	for _, complaint := range r.s.complaints {
		if complaint.CreatedAt.After(latest) {
			latest = complaint.CreatedAt
		}
	}
	return latest
}

func matches(c domain.Complaint, f repository.ComplaintFilter) bool {
	if f.OwnerID != nil && c.OwnerID != *f.OwnerID {
		return false
	}
	if f.Status != nil && c.Status != *f.Status {
		return false
	}
	if f.Category != nil && c.Category != *f.Category {
		return false
	}
	if f.AssignedTo != nil && (c.AssignedTo == nil || *c.AssignedTo != *f.AssignedTo) {
		return false
	}
	if f.Department != nil && (c.Department == nil || *c.Department != *f.Department) {
		return false
	}
	return true
}

type replyRepo struct{ s *Store }

func (r *replyRepo) Create(_ context.Context, reply *domain.AdminReply) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.complaints[reply.ComplaintID]; !ok {
		return repository.ErrNotFound
	}
	reply.ID = uuid.NewString()
	reply.CreatedAt = r.s.now()
	r.s.replies = append(r.s.replies, *reply)
	return nil
}

func (r *replyRepo) ListByComplaints(_ context.Context, complaintIDs []string) ([]domain.AdminReply, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	wanted := make(map[string]bool, len(complaintIDs))
	for _, id := range complaintIDs {
		wanted[id] = true
	}
	result := []domain.AdminReply{}
	for _, reply := range r.s.replies {
		if wanted[reply.ComplaintID] {
			result = append(result, reply)
		}
	}
	return result, nil
}

type historyRepo struct{ s *Store }

func (r *historyRepo) Create(_ context.Context, history *domain.ComplaintHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	history.ID = uuid.NewString()
	history.CreatedAt = r.s.now()
	r.s.history = append(r.s.history, *history)
	return nil
}

func (r *historyRepo) ListByComplaint(_ context.Context, complaintID string) ([]domain.ComplaintHistory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := []domain.ComplaintHistory{}
	for _, entry := range r.s.history {
		if entry.ComplaintID == complaintID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func copyComplaint(c domain.Complaint) *domain.Complaint {
	c.AssignedTo = cloneString(c.AssignedTo)
	c.Department = cloneString(c.Department)
	c.Replies = nil
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
