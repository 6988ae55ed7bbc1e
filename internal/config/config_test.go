package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "whistle-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL())
	assert.Contains(t, cfg.Storage.AllowedExtensions, "pdf")
	assert.Contains(t, cfg.Storage.AllowedExtensions, "webm")
}

func TestLoadEmailSetsAreNormalized(t *testing.T) {
	t.Setenv("ACCESS_REVIEWER_EMAILS", " RH@Example.com , ouvidoria@example.com ,")
	t.Setenv("ACCESS_ADMIN_EMAILS", "Admin@Example.COM")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"rh@example.com", "ouvidoria@example.com"}, cfg.Access.Reviewers)
	assert.Equal(t, []string{"admin@example.com"}, cfg.Access.Administrators)
	assert.Empty(t, cfg.Access.AllowList)
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}

func TestSessionTTLFallsBackWhenUnset(t *testing.T) {
	t.Setenv("SESSION_TTL_MINUTES", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL())
}
