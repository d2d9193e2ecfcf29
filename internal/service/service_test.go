package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/resolvease/complaint-service/internal/auth"
	"github.com/resolvease/complaint-service/internal/config"
	"github.com/resolvease/complaint-service/internal/domain"
	"github.com/resolvease/complaint-service/internal/events"
	"github.com/resolvease/complaint-service/internal/repository/memory"
)

type recordedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordedEvents) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordedEvents) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store      *memory.Store
	complaints *ComplaintService
	auth       *AuthService
	users      *UserService
	events     *recordedEvents
	alice      *domain.User
	bob        *domain.User
	ada        *domain.User
	grace      *domain.User
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            4,
		LoginMaxAttempts:      3,
		LoginWindowSeconds:    60,
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	recorded := &recordedEvents{}
	for _, eventType := range events.AllEventTypes {
		dispatcher.Subscribe(eventType, recorded.handle)
	}

	cfg := testAuthConfig()
	f := &fixture{
		store: store,
		complaints: NewComplaintService(ComplaintDependencies{
			ComplaintRepo: store.Complaints(),
			ReplyRepo:     store.Replies(),
			UserRepo:      store.Users(),
			HistoryRepo:   store.History(),
			Dispatcher:    dispatcher,
			Logger:        zap.NewNop(),
		}),
		auth: NewAuthService(cfg, AuthDependencies{
			UserRepo: store.Users(),
			Tokens:   auth.NewTokenManager(cfg),
		}),
		users:  NewUserService(cfg, store.Users()),
		events: recorded,
	}

	f.alice = f.mustUser(t, "Alice", "alice@example.com", domain.RoleEmployee, "HR")
	f.bob = f.mustUser(t, "Bob", "bob@example.com", domain.RoleEmployee, "IT")
	f.ada = f.mustUser(t, "Ada", "ada@example.com", domain.RoleAdmin, "")
	f.grace = f.mustUser(t, "Grace", "grace@example.com", domain.RoleAdmin, "")
	return f
}

func (f *fixture) mustUser(t *testing.T, name, email string, role domain.Role, department string) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword("password123", 4)
	require.NoError(t, err)
	user := &domain.User{Name: name, Email: email, PasswordHash: hash, Role: role, Department: department}
	require.NoError(t, f.store.Users().Create(context.Background(), user))
	return user
}

func (f *fixture) mustSubmit(t *testing.T, owner *domain.User, title, category string) *domain.Complaint {
	t.Helper()
	complaint, err := f.complaints.Submit(context.Background(), owner, SubmitComplaintInput{
		Title:       title,
		Description: "details",
		Category:    category,
	})
	require.NoError(t, err)
	return complaint
}

func strPtr(v string) *string { return &v }
