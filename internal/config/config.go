package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration for the application
// Following 12-factor app principles, all config is loaded from environment variables
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Cache     CacheConfig
	Mail      MailConfig
	Seed      SeedConfig
	Telemetry TelemetryConfig
	RateLimit RateLimitConfig
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"3000"`
	Host            string        `env:"HOST" envDefault:"0.0.0.0"`
	PublicURL       string        `env:"PUBLIC_URL" envDefault:"http://localhost:5173"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

type DatabaseConfig struct {
	Driver      string `env:"DB_DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DB_DSN" envDefault:"file:striv.db?_foreign_keys=on"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	MaxOpenConn int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
}

type AuthConfig struct {
	AccessSecret  string        `env:"JWT_SECRET" envDefault:"your-secret-key"`
	RefreshSecret string        `env:"JWT_REFRESH_SECRET" envDefault:"your-refresh-secret-key"`
	AccessTTL     time.Duration `env:"JWT_ACCESS_TTL" envDefault:"15m"`
	RefreshTTL    time.Duration `env:"JWT_REFRESH_TTL" envDefault:"168h"`
	AdminSecret   string        `env:"ADMIN_SECRET_KEY" envDefault:"admin-secret-key"`
	ResetTTL      time.Duration `env:"PASSWORD_RESET_TTL" envDefault:"1h"`
}

type CacheConfig struct {
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	ProductTTL    time.Duration `env:"PRODUCT_CACHE_TTL" envDefault:"5m"`
}

type MailConfig struct {
	Mode     string `env:"MAIL_MODE" envDefault:"log"`
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"EMAIL_FROM" envDefault:"noreply@strivfitness.com"`
}

type SeedConfig struct {
	Sources []string `env:"SEED_SOURCES" envSeparator:","`
}

type TelemetryConfig struct {
	Exporter    string `env:"TRACE_EXPORTER" envDefault:"none"`
	Endpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"striv-storefront"`
}

type RateLimitConfig struct {
	AuthRPS   float64 `env:"AUTH_RATE_LIMIT_RPS" envDefault:"5"`
	AuthBurst int     `env:"AUTH_RATE_LIMIT_BURST" envDefault:"10"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("invalid DB_DRIVER: %s (must be postgres or sqlite)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}

	if c.Auth.AccessSecret == "" || c.Auth.RefreshSecret == "" {
		return fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET are required")
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}

	switch c.Mail.Mode {
	case "log":
	case "smtp":
		if c.Mail.Host == "" {
			return fmt.Errorf("SMTP_HOST is required when MAIL_MODE=smtp")
		}
	default:
		return fmt.Errorf("invalid MAIL_MODE: %s (must be log or smtp)", c.Mail.Mode)
	}

	switch c.Telemetry.Exporter {
	case "none", "stdout", "otlp":
	default:
		return fmt.Errorf("invalid TRACE_EXPORTER: %s (must be none, stdout, or otlp)", c.Telemetry.Exporter)
	}

	if c.RateLimit.AuthRPS <= 0 || c.RateLimit.AuthBurst <= 0 {
		return fmt.Errorf("auth rate limit must be positive")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "console":
	default:
		return fmt.Errorf("invalid LOG_FORMAT: %s (must be json or console)", c.LogFormat)
	}

	return nil
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}
