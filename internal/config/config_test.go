package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetForTest removes variables for the duration of the test. t.Setenv
// registers the restore, then os.Unsetenv clears the value it just set,
// since an empty string still counts as "set" to LookupEnv.
func unsetForTest(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetForTest(t,
		"SERVER_PORT", "JWT_EXPIRY", "CORS_ORIGIN",
		"PUBLIC_BASE_URL", "UPLOAD_DIR", "FEED_RETENTION_DAYS",
	)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, int64(72*60*60), cfg.JWTExpiry)
	assert.Equal(t, "http://localhost:5173", cfg.CORSOrigin)
	assert.Equal(t, "http://localhost:8080", cfg.PublicBaseURL)
	assert.Equal(t, "./uploads", cfg.UploadDir)
	assert.Equal(t, 14, cfg.FeedRetentionDays)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_EXPIRY", "3600")
	t.Setenv("FEED_RETENTION_DAYS", "30")
	t.Setenv("NATS_URL", "nats://localhost:4222")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, int64(3600), cfg.JWTExpiry)
	assert.Equal(t, 30, cfg.FeedRetentionDays)
	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "three days")
	t.Setenv("FEED_RETENTION_DAYS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(72*60*60), cfg.JWTExpiry)
	assert.Equal(t, 14, cfg.FeedRetentionDays)
}
