package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resolvease/complaint-service/internal/domain"
	"github.com/resolvease/complaint-service/internal/repository"
)

func TestStore_UserEmailUniqueness(t *testing.T) {
	store := NewStore()
	users := store.Users()
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &domain.User{Name: "A", Email: "a@example.com", Role: domain.RoleEmployee}))
	err := users.Create(ctx, &domain.User{Name: "B", Email: "a@example.com", Role: domain.RoleEmployee})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestStore_ComplaintOrderingAndFilter(t *testing.T) {
	store := NewStore()
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }
	complaints := store.Complaints()
	ctx := context.Background()

	first := &domain.Complaint{OwnerID: "u1", Category: "IT Issue", Status: domain.ComplaintStatusResolved}
	second := &domain.Complaint{OwnerID: "u1", Category: "IT Issue", Status: domain.ComplaintStatusPending}
	third := &domain.Complaint{OwnerID: "u2", Category: "IT Issue", Status: domain.ComplaintStatusResolved}
	for _, c := range []*domain.Complaint{first, second, third} {
		require.NoError(t, complaints.Create(ctx, c))
	}
	assert.True(t, second.CreatedAt.After(first.CreatedAt))

	status := domain.ComplaintStatusResolved
	category := "IT Issue"
	result, err := complaints.ListWithFilter(ctx, repository.ComplaintFilter{Status: &status, Category: &category})
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, third.ID, result[0].ID)
	assert.Equal(t, first.ID, result[1].ID)

	owner := "u1"
	mine, err := complaints.ListWithFilter(ctx, repository.ComplaintFilter{OwnerID: &owner, Limit: 1})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, second.ID, mine[0].ID)
}

func TestStore_ComplaintVersioning(t *testing.T) {
	store := NewStore()
	complaints := store.Complaints()
	ctx := context.Background()

	c := &domain.Complaint{OwnerID: "u1", Status: domain.ComplaintStatusPending}
	require.NoError(t, complaints.Create(ctx, c))

	stale, err := complaints.GetByID(ctx, c.ID)
	require.NoError(t, err)

	created := c.UpdatedAt
	c.Status = domain.ComplaintStatusClosed
	require.NoError(t, complaints.Update(ctx, c))
	assert.Equal(t, 2, c.Version)
	assert.True(t, c.UpdatedAt.After(created))

	stale.Status = domain.ComplaintStatusRejected
	assert.ErrorIs(t, complaints.Update(ctx, stale), repository.ErrVersionConflict)

	stored, err := complaints.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusClosed, stored.Status)
}

func TestStore_DeleteUserClearsAssignments(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	assignee := &domain.User{Name: "Bob", Email: "bob@example.com", Role: domain.RoleEmployee}
	require.NoError(t, store.Users().Create(ctx, assignee))

	c := &domain.Complaint{OwnerID: "u1", AssignedTo: &assignee.ID}
	require.NoError(t, store.Complaints().Create(ctx, c))
	require.NoError(t, store.Users().Delete(ctx, assignee.ID))

	stored, err := store.Complaints().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.AssignedTo)
}

func TestStore_RepliesKeepInsertionOrder(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	c := &domain.Complaint{OwnerID: "u1"}
	require.NoError(t, store.Complaints().Create(ctx, c))

	for _, text := range []string{"R1", "R2", "R3"} {
		require.NoError(t, store.Replies().Create(ctx, &domain.AdminReply{ComplaintID: c.ID, AuthorID: "a1", Text: text}))
	}
	replies, err := store.Replies().ListByComplaints(ctx, []string{c.ID})
	require.NoError(t, err)
	require.Len(t, replies, 3)
	assert.Equal(t, []string{"R1", "R2", "R3"}, []string{replies[0].Text, replies[1].Text, replies[2].Text})

	err = store.Replies().Create(ctx, &domain.AdminReply{ComplaintID: "missing", Text: "x"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_UserUpdateKeepsPasswordHashWhenBlank(t *testing.T) {
	store := NewStore()
	users := store.Users()
	ctx := context.Background()

	user := &domain.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "hash", Role: domain.RoleEmployee}
	require.NoError(t, users.Create(ctx, user))

	require.NoError(t, users.Update(ctx, &domain.User{ID: user.ID, Name: "Alice B", Email: "alice@example.com", Role: domain.RoleEmployee}))
	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice B", stored.Name)
	assert.Equal(t, "hash", stored.PasswordHash)
}
