package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env  string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port string `env:"PORT" envDefault:"8080" validate:"required"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	// MessageStore picks the reminder storage backend once at startup.
	// "postgres" shares the auth database; "file" keeps a bbolt file at
	// MessageDBPath for boxes that run without Postgres for messages.
	MessageStore  string `env:"MESSAGE_STORE" envDefault:"postgres" validate:"oneof=postgres file"`
	MessageDBPath string `env:"MESSAGE_DB_PATH" envDefault:"data/messages.db" validate:"required_if=MessageStore file"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`
	BaseURL      string `env:"BASE_URL"       envDefault:"http://localhost:8080"`

	SessionTTLHours      int `env:"SESSION_TTL_HOURS"       envDefault:"24"  validate:"min=1"`
	RememberTTLHours     int `env:"REMEMBER_TTL_HOURS"      envDefault:"720" validate:"min=1"`
	ResetTokenTTLMinutes int `env:"RESET_TOKEN_TTL_MINUTES" envDefault:"60"  validate:"min=1"`
	VerifyTokenTTLHours  int `env:"VERIFY_TOKEN_TTL_HOURS"  envDefault:"24"  validate:"min=1"`
	BcryptCost           int `env:"BCRYPT_COST"             envDefault:"12"  validate:"min=4,max=31"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// CookieSecure reports whether session cookies should carry the Secure flag.
// Local development runs over plain HTTP.
func (c *Config) CookieSecure() bool {
	return c.Env != "local"
}
