package config

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setEnv sets every variable Load reads so results do not depend on the host environment.
func setEnv(t *testing.T, overrides map[string]string) {
	t.Helper()
	vars := map[string]string{
		"GO_ENV":                "production",
		"DATABASE_URL":          "",
		"PORT":                  "",
		"JWT_SECRET":            "secret",
		"CORS_ALLOWED_ORIGINS":  "",
		"CACHE_DIR":             "",
		"CACHE_TTL":             "",
		"TX_MAX_ATTEMPTS":       "",
		"TASK_MAX_RETRIES":      "",
		"ANNOUNCEMENT_INTERVAL": "",
		"CONTEXT_TIMEOUT":       "",
		"EMAIL_PROVIDER":        "",
		"EMAIL_FROM_ADDRESS":    "",
		"EMAIL_FROM_NAME":       "",
		"AWS_REGION":            "",
		"AWS_ACCESS_KEY_ID":     "",
		"AWS_SECRET_ACCESS_KEY": "",
	}
	for k, v := range overrides {
		vars[k] = v
	}
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, nil)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Contains(t, cfg.DBUrl, "conferencecentral")
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Equal(t, time.Minute, cfg.AnnouncementInterval)
	assert.Equal(t, 10*time.Second, cfg.ContextTimeout)
	assert.Equal(t, 5, cfg.TxMaxAttempts)
	assert.Equal(t, 5, cfg.TaskMaxRetries)
	assert.Equal(t, "noop", cfg.Email.Provider)
	assert.Empty(t, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.CacheDir)
}

func TestLoad_Overrides(t *testing.T) {
	setEnv(t, map[string]string{
		"PORT":                  "9090",
		"CORS_ALLOWED_ORIGINS":  "https://a.example.com, ,https://b.example.com",
		"CACHE_TTL":             "1h",
		"ANNOUNCEMENT_INTERVAL": "30s",
		"TX_MAX_ATTEMPTS":       "3",
		"EMAIL_PROVIDER":        "ses",
		"EMAIL_FROM_ADDRESS":    "noreply@example.com",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.AnnouncementInterval)
	assert.Equal(t, 3, cfg.TxMaxAttempts)
	assert.Equal(t, "ses", cfg.Email.Provider)
	assert.Equal(t, "noreply@example.com", cfg.Email.FromAddress)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "bad duration", env: map[string]string{"CACHE_TTL": "forever"}, wantErr: "CACHE_TTL"},
		{name: "bad int", env: map[string]string{"TX_MAX_ATTEMPTS": "five"}, wantErr: "TX_MAX_ATTEMPTS"},
		{name: "zero attempts", env: map[string]string{"TX_MAX_ATTEMPTS": "0"}, wantErr: "TX_MAX_ATTEMPTS"},
		{name: "negative retries", env: map[string]string{"TASK_MAX_RETRIES": "-1"}, wantErr: "TASK_MAX_RETRIES"},
		{name: "zero interval", env: map[string]string{"ANNOUNCEMENT_INTERVAL": "0s"}, wantErr: "ANNOUNCEMENT_INTERVAL"},
		{name: "missing secret in production", env: map[string]string{"JWT_SECRET": ""}, wantErr: "JWT_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.env)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "production", "warn")
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	logger = newLogger(&buf, "development", "")
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
	logger.Info("text output")
	assert.Contains(t, buf.String(), "msg=\"text output\"")
}
