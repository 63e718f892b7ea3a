package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for the bot support service
type Config struct {
	// Server configuration
	HTTPPort int    `env:"BOT_HTTP_PORT" envDefault:"8080"`
	GRPCPort int    `env:"BOT_GRPC_PORT" envDefault:"9090"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Bot application settings
	Bot BotConfig

	// Redis configuration
	Redis RedisConfig

	// State storage
	State StateConfig

	// Resolver health monitoring
	Health HealthConfig

	// Timeouts
	Timeouts TimeoutConfig
}

// BotConfig holds the bot application settings.
// The env keys are the public contract shared with the hosting platform.
type BotConfig struct {
	StateEndpoint  string `env:"BotStateEndpoint" envDefault:"https://state.botframework.com/"`
	OpenIDMetadata string `env:"BotOpenIdMetadata" envDefault:"https://login.botframework.com/v1/.well-known/openidconfiguration"`
	AppID          string `env:"MicrosoftAppId"`
	AppPassword    string `env:"MicrosoftAppPassword"`

	TableStorageConnectionString        string `env:"AzureWebJobsStorage"`
	UseTableStorageForConversationState bool   `env:"UseTableStorageForConversationState"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASS"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`

	// Connection pool settings
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	MaxRetries   int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// StateConfig holds state storage configuration
type StateConfig struct {
	TTL time.Duration `env:"STATE_TTL" envDefault:"24h"`
}

// HealthConfig holds resolver health monitor configuration
type HealthConfig struct {
	CheckInterval time.Duration `env:"HEALTH_CHECK_INTERVAL" envDefault:"30s"`
	MaxListeners  int           `env:"RESOLVER_MAX_LISTENERS" envDefault:"1024"`
}

// TimeoutConfig holds various timeout configurations
type TimeoutConfig struct {
	ShutdownTimeout time.Duration `env:"TIMEOUT_SHUTDOWN" envDefault:"30s"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	return load(env.Options{})
}

// LoadFrom reads configuration from the given environment map instead of the process
func LoadFrom(environment map[string]string) (*Config, error) {
	return load(env.Options{Environment: environment})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyDefaults treats empty endpoint settings like unset ones
func (c *Config) applyDefaults() {
	if c.Bot.StateEndpoint == "" {
		c.Bot.StateEndpoint = DefaultStateEndpoint
	}
	if c.Bot.OpenIDMetadata == "" {
		c.Bot.OpenIDMetadata = DefaultOpenIDMetadata
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server ports
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.GRPCPort < 1 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.GRPCPort)
	}

	// Validate state storage
	if c.Bot.UseTableStorageForConversationState &&
		c.Bot.TableStorageConnectionString == "" && c.Redis.Addr == "" {
		return fmt.Errorf("table storage requires %s or REDIS_ADDR", KeyTableStorageConnectionString)
	}
	if c.State.TTL < 0 {
		return fmt.Errorf("invalid state TTL: %s", c.State.TTL)
	}
	if c.Health.MaxListeners < 0 {
		return fmt.Errorf("invalid resolver listener ceiling: %d", c.Health.MaxListeners)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// GetGRPCAddr returns the gRPC server address
func (c *Config) GetGRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

// Redacted returns the bot settings safe for display.
// Credentials are reported only as set or unset.
func (c *Config) Redacted() map[string]string {
	return map[string]string{
		KeyStateEndpoint:                       c.Bot.StateEndpoint,
		KeyOpenIDMetadata:                      c.Bot.OpenIDMetadata,
		KeyAppID:                               c.Bot.AppID,
		KeyAppPassword:                         redact(c.Bot.AppPassword),
		KeyTableStorageConnectionString:        redact(c.Bot.TableStorageConnectionString),
		KeyUseTableStorageForConversationState: fmt.Sprintf("%t", c.Bot.UseTableStorageForConversationState),
	}
}

func redact(secret string) string {
	if strings.TrimSpace(secret) == "" {
		return ""
	}
	return "***"
}
