package persistence

import (
	"context"
	"io/fs"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/resolvease/complaint-service/internal/config"
	"github.com/resolvease/complaint-service/internal/domain"
	"github.com/resolvease/complaint-service/internal/repository"
	"github.com/resolvease/complaint-service/internal/repository/memory"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"00001_users.sql", "00002_complaints.sql", "00003_complaint_history.sql"}, names)

	for _, name := range names {
		content, err := fs.ReadFile(migrationsFS, "migrations/"+name)
		require.NoError(t, err)
		assert.Contains(t, string(content), "-- +goose Up", name)
		assert.Contains(t, string(content), "-- +goose Down", name)
	}
}

func TestRunMigrations_NoPool(t *testing.T) {
	assert.NoError(t, RunMigrations(context.Background(), nil, zap.NewNop()))
}

func TestNewPostgres_MemoryMode(t *testing.T) {
	pg, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, pg.Enabled())
	assert.NoError(t, pg.Ping(context.Background()))
	assert.Nil(t, pg.PoolHandle())
	pg.Close()
}

func TestRedis_Ping(t *testing.T) {
	mr := miniredis.RunT(t)
	r := NewRedis(context.Background(), config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	defer r.Close()
	assert.NoError(t, r.Ping(context.Background()))

	mr.Close()
	assert.Error(t, r.Ping(context.Background()))

	var missing *Redis
	assert.Error(t, missing.Ping(context.Background()))
}

func TestRedis_CacheUsers(t *testing.T) {
	mr := miniredis.RunT(t)
	r := NewRedis(context.Background(), config.RedisConfig{Addr: mr.Addr(), UserCacheTTLSec: 30}, zap.NewNop())
	defer r.Close()

	store := memory.NewStore()
	user := &domain.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "hash", Role: domain.RoleEmployee}
	require.NoError(t, store.Users().Create(context.Background(), user))

	base := store.Users()
	users := r.CacheUsers(base)
	_, ok := users.(*repository.CachedUserRepository)
	require.True(t, ok)

	_, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, mr.TTL("complaints:user:id:"+user.ID))

	var missing *Redis
	assert.Same(t, base, missing.CacheUsers(base))
}
