package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp runs Load from an empty directory so no stray .env is picked up.
func chdirTemp(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.API.AllowedOrigins)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 100, cfg.Resume.ViewHistoryLimit)
	assert.Equal(t, time.Minute, cfg.Resume.PublicRateWindow)
	assert.Equal(t, "@every 1h", cfg.Worker.ReconcileSchedule)
	assert.Equal(t, "localhost:6379", cfg.Redis.RedisAddr())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("API_PORT", "9090")
	t.Setenv("API_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RESUME_VIEW_HISTORY_LIMIT", "25")
	t.Setenv("JWT_ACCESS_TOKEN_TTL", "5m")
	t.Setenv("POSTGRES_DB", "resumes")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.API.AllowedOrigins)
	assert.Equal(t, 25, cfg.Resume.ViewHistoryLimit)
	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Contains(t, cfg.Database.DSN(), "dbname=resumes")
}

func TestLoad_DotEnvFile(t *testing.T) {
	chdirTemp(t)
	t.Setenv("REDIS_HOST", "")
	require.NoError(t, os.Unsetenv("REDIS_HOST"))
	require.NoError(t, os.WriteFile(filepath.Join(".", ".env"), []byte("REDIS_HOST=cache\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("REDIS_HOST") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "cache", cfg.Redis.Host)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	chdirTemp(t)
	t.Setenv("RESUME_MAX_PAGE_SIZE", "5")

	_, err := Load()
	assert.ErrorContains(t, err, "page sizes")
}

func TestLoad_ConfigFile(t *testing.T) {
	chdirTemp(t)
	body := "api:\n  port: 7070\nresume:\n  public_rate_limit: 30\n"
	require.NoError(t, os.WriteFile("config.yaml", []byte(body), 0o600))
	t.Setenv("CONFIG_FILE", "config.yaml")
	t.Setenv("API_PORT", "7171")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Resume.PublicRateLimit)
	assert.Equal(t, 7171, cfg.API.Port, "environment wins over the file")
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	var cfg Config
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "api port must be positive")
	assert.ErrorContains(t, err, "worker concurrency must be positive")
	assert.ErrorContains(t, err, "redis host and port are required")
}
