package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "development-secret", cfg.JWT.Secret)
	assert.Equal(t, "local", cfg.Storage.Type)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  env: production
  port: 9000
database:
  driver: postgres
  dsn: postgres://from-file
jwt:
  secret: file-secret
  ttl: 2h
rate_limit:
  requests: 3
  window: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("FOODGRAM_DATABASE__DSN", "postgres://from-env")
	t.Setenv("FOODGRAM_SERVER__CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://from-env", cfg.Database.DSN)
	assert.Equal(t, 2*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
}

func TestValidate(t *testing.T) {
	t.Run("secret required in production", func(t *testing.T) {
		cfg := Default()
		cfg.Server.Env = "production"
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := Default()
		cfg.Database.Driver = "oracle"
		assert.Error(t, cfg.Validate())
	})

	t.Run("s3 needs bucket", func(t *testing.T) {
		cfg := Default()
		cfg.Storage.Type = "s3"
		assert.Error(t, cfg.Validate())
	})

	t.Run("zero rate limit disables limiter", func(t *testing.T) {
		cfg := Default()
		cfg.RateLimit.Requests = 0
		require.NoError(t, cfg.Validate())
		assert.True(t, cfg.RateLimit.Disabled)
	})
}
