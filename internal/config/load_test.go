package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setRequiredEnv sets the minimum environment for a valid Load.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("QUESTLOG_DATABASE_URL", "postgres://localhost:5432/questlog_test")
	t.Setenv("QUESTLOG_AUTH_JWT_SECRET", "test-secret-that-is-long-enough-for-testing")
}

func TestLoad_FromEnvironment(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("QUESTLOG_SERVER_PORT", "9090")
	t.Setenv("QUESTLOG_SERVER_LOG_LEVEL", "debug")
	t.Setenv("QUESTLOG_LLM_GEMINI_API_KEY", "test-gemini-key")
	t.Setenv("QUESTLOG_ORGANIZER_TIMEOUT_SECONDS", "45")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "postgres://localhost:5432/questlog_test", cfg.Database.URL)
	assert.Equal(t, "test-secret-that-is-long-enough-for-testing", cfg.Auth.JWTSecret)
	assert.Equal(t, "test-gemini-key", cfg.LLM.GeminiAPIKey)
	assert.Equal(t, 45, cfg.Organizer.TimeoutSeconds)
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, 60, cfg.Auth.TokenLifetimeMinutes)
	assert.Equal(t, 10080, cfg.Auth.RefreshTokenLifetimeMinutes)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.GeminiModel)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.OpenAIModel)
	assert.InDelta(t, 0.7, float64(cfg.LLM.Temperature), 0.001)
	assert.Equal(t, 2048, cfg.LLM.MaxOutputTokens)
	assert.Equal(t, 30, cfg.Organizer.TimeoutSeconds)
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing database URL",
			env: map[string]string{
				"QUESTLOG_AUTH_JWT_SECRET": "test-secret-that-is-long-enough-for-testing",
			},
		},
		{
			name: "jwt secret too short",
			env: map[string]string{
				"QUESTLOG_DATABASE_URL":    "postgres://localhost/db",
				"QUESTLOG_AUTH_JWT_SECRET": "short",
			},
		},
		{
			name: "invalid log level",
			env: map[string]string{
				"QUESTLOG_DATABASE_URL":     "postgres://localhost/db",
				"QUESTLOG_AUTH_JWT_SECRET":  "test-secret-that-is-long-enough-for-testing",
				"QUESTLOG_SERVER_LOG_LEVEL": "loud",
			},
		},
		{
			name: "port out of range",
			env: map[string]string{
				"QUESTLOG_DATABASE_URL":    "postgres://localhost/db",
				"QUESTLOG_AUTH_JWT_SECRET": "test-secret-that-is-long-enough-for-testing",
				"QUESTLOG_SERVER_PORT":     "70000",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for key, value := range tc.env {
				t.Setenv(key, value)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestServerConfig_IsProduction(t *testing.T) {
	t.Parallel()

	assert.True(t, ServerConfig{Env: "production"}.IsProduction())
	assert.False(t, ServerConfig{Env: "development"}.IsProduction())
	assert.False(t, ServerConfig{Env: "test"}.IsProduction())
}
