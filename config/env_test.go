package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withValues(t *testing.T) {
	t.Helper()
	_ = Load()
	mu.RLock()
	saved := make(map[string]string, len(values))
	for k, v := range values {
		saved[k] = v
	}
	mu.RUnlock()
	t.Cleanup(func() {
		mu.Lock()
		values = saved
		mu.Unlock()
	})
}

func TestLoadFromFiles_LayersJSONDotenvAndEnvironment(t *testing.T) {
	withValues(t)

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "app.json")
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"app_port": 9000, "rate_limit": 50, "app_env": "staging", "debug": true}`), 0o600))
	require.NoError(t, os.WriteFile(envPath, []byte("APP_PORT=9100\nSESSION_STORE=memory\n"), 0o600))
	t.Setenv("RATE_LIMIT", "75")

	require.NoError(t, loadFromFiles(jsonPath, envPath))

	assert.Equal(t, "9100", get("APP_PORT", ""))
	assert.Equal(t, 75, intValue("RATE_LIMIT", 0))
	assert.Equal(t, "staging", get("APP_ENV", ""))
	assert.Equal(t, "true", get("DEBUG", ""))
	assert.Equal(t, "memory", SessionStore())
}

func TestLoadFromFiles_MissingFilesKeepDefaults(t *testing.T) {
	withValues(t)

	dir := t.TempDir()
	require.NoError(t, loadFromFiles(filepath.Join(dir, "nope.json"), filepath.Join(dir, "nope.env")))

	assert.Equal(t, defaultAppPort, get("APP_PORT", ""))
	assert.Equal(t, 4, intValue("EVENT_WORKERS", 0))
}

func TestLoadFromFiles_BadJSON(t *testing.T) {
	withValues(t)

	path := filepath.Join(t.TempDir(), "app.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	assert.Error(t, loadFromFiles(path, filepath.Join(t.TempDir(), ".env")))
}

func TestGetters(t *testing.T) {
	withValues(t)

	Set("db_driver", "oracle")
	assert.Equal(t, "sqlite", DatabaseDriver())
	assert.Equal(t, defaultSQLiteDSN, DatabaseDSN())

	Set("DB_DRIVER", "Postgres")
	assert.Equal(t, "postgres", DatabaseDriver())
	assert.Equal(t, defaultPostgresDSN, DatabaseDSN())

	Set("DATABASE_DSN", "host=db")
	assert.Equal(t, "host=db", DatabaseDSN())

	Set("CORS_ORIGINS", " https://a.example , ,https://b.example")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, CORSOrigins())

	Set("SESSION_TTL", "soon")
	assert.Equal(t, 2*time.Hour, SessionTTL())
	Set("SESSION_TTL", "30m")
	assert.Equal(t, 30*time.Minute, SessionTTL())

	assert.Equal(t, 24*time.Hour, JWTTTL())
	Set("JWT_TTL", "15m")
	assert.Equal(t, 15*time.Minute, JWTTTL())

	Set("RATE_LIMIT", "-3")
	assert.Equal(t, 200, RateLimitPerMinute())

	Set("SESSION_STORE", "dynamo")
	assert.Equal(t, "redis", SessionStore())

	assert.Equal(t, "fallback", Get("NOT_A_KEY", "fallback"))
}
