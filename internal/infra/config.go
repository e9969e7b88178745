package infra

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration parsed from environment
// variables. The core never reads the environment itself; composition
// roots pass values down explicitly.
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PGHOST" envDefault:"localhost"`
	PGPort      int    `env:"PGPORT" envDefault:"5432"`
	PGUser      string `env:"PGUSER" envDefault:"trustplane"`
	PGPassword  string `env:"PGPASSWORD" envDefault:"trustplane"`
	PGDatabase  string `env:"PGDATABASE" envDefault:"trustplane"`

	// JWT
	JWTSecret        string `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTServiceExpiry string `env:"JWT_SERVICE_EXPIRY" envDefault:"1h"`
	JWTAdminExpiry   string `env:"JWT_ADMIN_EXPIRY" envDefault:"8h"`

	// Server
	APIPort int `env:"API_PORT" envDefault:"3200"`

	// Kafka
	KafkaBrokers string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled bool   `env:"KAFKA_ENABLED" envDefault:"false"`

	// Factor source collaborators (empty = local fallback assessors)
	GeoIPBaseURL       string `env:"GEOIP_BASE_URL"`
	DeviceTrustBaseURL string `env:"DEVICE_TRUST_BASE_URL"`
	BehaviorBaseURL    string `env:"BEHAVIOR_BASE_URL"`

	// Access evaluation rate limit (per caller, per minute)
	AccessRateLimit int `env:"ACCESS_RATE_LIMIT" envDefault:"120"`

	// CORS
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Dev
	AllowInsecureDefaults bool `env:"ALLOW_INSECURE_DEFAULTS" envDefault:"false"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks for insecure configuration that must not run in production.
// Set ALLOW_INSECURE_DEFAULTS=true to bypass (local dev only).
func (c *Config) Validate() error {
	if c.AllowInsecureDefaults {
		return nil
	}
	if c.JWTSecret == "change-me-in-production" {
		return fmt.Errorf("JWT_SECRET is set to the insecure default; set a strong secret or set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET is too short (%d chars); minimum 32 characters required", len(c.JWTSecret))
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

// ServiceExpiry parses the service token lifetime.
func (c *Config) ServiceExpiry() (time.Duration, error) {
	return time.ParseDuration(c.JWTServiceExpiry)
}

// AdminExpiry parses the admin token lifetime.
func (c *Config) AdminExpiry() (time.Duration, error) {
	return time.ParseDuration(c.JWTAdminExpiry)
}
