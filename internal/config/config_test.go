package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv removes key for the rest of the test.
// Call t.Setenv first so the original value is restored on cleanup.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 9090, cfg.GRPCPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultStateEndpoint, cfg.Bot.StateEndpoint)
	assert.Equal(t, DefaultOpenIDMetadata, cfg.Bot.OpenIDMetadata)
	assert.Empty(t, cfg.Bot.AppID)
	assert.False(t, cfg.Bot.UseTableStorageForConversationState)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.State.TTL)
	assert.Equal(t, 30*time.Second, cfg.Timeouts.ShutdownTimeout)
	assert.Equal(t, 30*time.Second, cfg.Health.CheckInterval)
	assert.Equal(t, 1024, cfg.Health.MaxListeners)
	assert.Equal(t, ":8080", cfg.GetHTTPAddr())
	assert.Equal(t, ":9090", cfg.GetGRPCAddr())
}

func TestLoadFromBotSettings(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		KeyStateEndpoint:                       "https://custom/",
		KeyOpenIDMetadata:                      "",
		KeyAppID:                               "app-123",
		KeyAppPassword:                         "s3cret",
		KeyTableStorageConnectionString:        "redis://cache:6379/1",
		KeyUseTableStorageForConversationState: "true",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://custom/", cfg.Bot.StateEndpoint)
	assert.Equal(t, DefaultOpenIDMetadata, cfg.Bot.OpenIDMetadata)
	assert.Equal(t, "app-123", cfg.Bot.AppID)
	assert.Equal(t, "s3cret", cfg.Bot.AppPassword)
	assert.True(t, cfg.Bot.UseTableStorageForConversationState)

	redacted := cfg.Redacted()
	assert.Equal(t, "***", redacted[KeyAppPassword])
	assert.Equal(t, "***", redacted[KeyTableStorageConnectionString])
	assert.Equal(t, "app-123", redacted[KeyAppID])
	assert.Equal(t, "true", redacted[KeyUseTableStorageForConversationState])
}

func TestLoadFromInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"BOT_HTTP_PORT": "70000"}},
		{"bad grpc port", map[string]string{"BOT_GRPC_PORT": "0"}},
		{"bad log level", map[string]string{"LOG_LEVEL": "trace"}},
		{"negative listener ceiling", map[string]string{"RESOLVER_MAX_LISTENERS": "-1"}},
		{"bad flag", map[string]string{KeyUseTableStorageForConversationState: "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.env)
			assert.Error(t, err)
		})
	}
}

func TestLoadReadsProcessEnvironment(t *testing.T) {
	t.Setenv(KeyStateEndpoint, "https://from-env/")
	t.Setenv("BOT_HTTP_PORT", "8181")
	t.Setenv("BOT_GRPC_PORT", "9191")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://from-env/", cfg.Bot.StateEndpoint)
	assert.Equal(t, 8181, cfg.HTTPPort)
	assert.Equal(t, 9191, cfg.GRPCPort)
}

func TestValidateTableStorageBackend(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	cfg.Bot.UseTableStorageForConversationState = true
	cfg.Redis.Addr = ""
	assert.Error(t, cfg.Validate())

	cfg.Bot.TableStorageConnectionString = "redis://cache:6379/0"
	assert.NoError(t, cfg.Validate())
}
