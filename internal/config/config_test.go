package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "")
	t.Setenv("AUTH_ALLOW_REGISTER_ROLE", "")
	t.Setenv("APP_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.App.Port)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.TokenTTL())
	assert.False(t, cfg.Auth.AllowRegisterRole)
	assert.Equal(t, 5, cfg.Auth.LoginMaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Auth.LoginWindow())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_HOST", "127.0.0.1")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "15")
	t.Setenv("AUTH_ALLOW_REGISTER_ROLE", "true")
	t.Setenv("REDIS_USER_CACHE_TTL_SECONDS", "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.App.Addr())
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL())
	assert.True(t, cfg.Auth.AllowRegisterRole)
	assert.Equal(t, 5*time.Second, cfg.Redis.UserCacheTTL())
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "soon")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
}
