package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.GetServerAddr())
	assert.Equal(t, "localhost:6379", cfg.GetRedisAddr())
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 4, cfg.Worker.Concurrency)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("REDIS_HOST", "cache.internal")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "cache.internal:6379", cfg.GetRedisAddr())
}

func TestInvalidEnvValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("CACHE_TTL", "not-a-duration")
	t.Setenv("WORKER_CONCURRENCY", "lots")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 4, cfg.Worker.Concurrency)
}

func TestProductionRequiresDatabasePassword(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "a-real-secret")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestProductionRequiresJWTSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DB_PASSWORD", "hunter2")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestProductionWithSecretsLoads(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DB_PASSWORD", "hunter2")
	t.Setenv("JWT_SECRET", "a-real-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestGetDatabaseDSN(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PASSWORD", "hunter2")
	t.Setenv("DB_NAME", "tracker")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t,
		"host=db.internal port=5432 user=postgres password=hunter2 dbname=tracker sslmode=disable",
		cfg.GetDatabaseDSN())
}
