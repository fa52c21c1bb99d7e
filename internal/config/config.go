package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	ErrEmptyEnvironmentVariable = errors.New("empty environment variable")
	ErrInvalidConfig            = errors.New("invalid configuration")
)

const (
	GatewayProviderWhatsApp = "whatsapp"
	GatewayProviderTwilio   = "twilio"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig `envPrefix:"DB_"`
	Auth     AuthConfig
	Server   ServerConfig
	Gateway  GatewayConfig
	Dispatch DispatchConfig `envPrefix:"DISPATCH_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Mail     MailConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string `env:"HOST,required,notEmpty"`
	Username string `env:"USERNAME,required,notEmpty"`
	Password string `env:"PASSWORD,required,notEmpty"`
	Name     string `env:"NAME,required,notEmpty"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
}

// AuthConfig holds authentication-related configuration
type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int    `env:"SERVER_PORT" envDefault:"8080"`
	AllowOrigin string `env:"WEBAPP_URI" envDefault:"http://localhost:3000"`
}

// GatewayConfig selects and configures the outbound messaging gateway
type GatewayConfig struct {
	Provider string `env:"GATEWAY_PROVIDER" envDefault:"whatsapp"`

	WhatsAppBaseURL string        `env:"WHATSAPP_API_URL"`
	WhatsAppAPIKey  string        `env:"WHATSAPP_API_KEY"`
	Timeout         time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"15s"`

	TwilioAccountSID  string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken   string `env:"TWILIO_AUTH_TOKEN"`
	TwilioDefaultFrom string `env:"TWILIO_DEFAULT_FROM"`
}

// DispatchConfig holds the tick processor tuning knobs
type DispatchConfig struct {
	Timezone        string        `env:"TIMEZONE" envDefault:"America/Sao_Paulo"`
	Concurrency     int           `env:"CONCURRENCY" envDefault:"4"`
	ClaimTTL        time.Duration `env:"CLAIM_TTL" envDefault:"10m"`
	CampaignTimeout time.Duration `env:"CAMPAIGN_TIMEOUT" envDefault:"30s"`
	ClockInterval   time.Duration `env:"CLOCK_INTERVAL" envDefault:"15s"`
	LockTTL         time.Duration `env:"LOCK_TTL" envDefault:"1m"`
}

// RedisConfig holds the optional Redis connection used for dispatch leases
type RedisConfig struct {
	Enabled  bool   `env:"ENABLED" envDefault:"false"`
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// MailConfig holds the optional campaign completion notification settings
type MailConfig struct {
	ResendAPIKey string `env:"RESEND_API_KEY"`
	Sender       string `env:"DEFAULT_EMAIL_SENDER_ADDRESS"`
	NotifyTo     string `env:"CAMPAIGN_REPORT_EMAIL"`
}

// Load reads and validates all required environment variables
func Load() (*Config, error) {
	// Load env.local in non-production environments
	if os.Getenv("GO_ENV") != "production" {
		if err := godotenv.Load("env.local"); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env.local: %w", err)
		}
	}

	return Parse()
}

// Parse populates a Config from the current process environment.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) {
			for _, e := range aggErr.Errors {
				var missing env.VarIsNotSetError
				if errors.As(e, &missing) {
					return nil, fmt.Errorf("%s is not set: %w", missing.Key, ErrEmptyEnvironmentVariable)
				}
				var empty env.EmptyVarError
				if errors.As(e, &empty) {
					return nil, fmt.Errorf("%s is not set: %w", empty.Key, ErrEmptyEnvironmentVariable)
				}
			}
		}
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Gateway.Provider {
	case GatewayProviderWhatsApp:
		if c.Gateway.WhatsAppBaseURL == "" {
			return fmt.Errorf("WHATSAPP_API_URL is not set: %w", ErrEmptyEnvironmentVariable)
		}
	case GatewayProviderTwilio:
		if c.Gateway.TwilioAccountSID == "" || c.Gateway.TwilioAuthToken == "" {
			return fmt.Errorf("TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN are required: %w", ErrEmptyEnvironmentVariable)
		}
	default:
		return fmt.Errorf("unknown GATEWAY_PROVIDER %q: %w", c.Gateway.Provider, ErrInvalidConfig)
	}

	if c.Dispatch.Concurrency < 1 {
		return fmt.Errorf("DISPATCH_CONCURRENCY must be at least 1: %w", ErrInvalidConfig)
	}
	if _, err := time.LoadLocation(c.Dispatch.Timezone); err != nil {
		return fmt.Errorf("DISPATCH_TIMEZONE %q: %w", c.Dispatch.Timezone, ErrInvalidConfig)
	}
	return nil
}

// Location returns the dispatch operating time zone. validate guarantees it loads.
func (c *DispatchConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		c.Username, c.Password, c.Host, c.Name, c.SSLMode)
}

// MailEnabled reports whether completion notifications can be sent.
func (c *MailConfig) MailEnabled() bool {
	return c.ResendAPIKey != "" && c.Sender != "" && c.NotifyTo != ""
}
