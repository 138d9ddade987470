package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Checkout CheckoutConfig
	Payments PaymentConfig
	Logging  LoggingConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port          string        `env:"API_SERVER_PORT" envDefault:"8080"`
	ReadTimeout   time.Duration `env:"API_SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout  time.Duration `env:"API_SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout   time.Duration `env:"API_SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownGrace time.Duration `env:"API_SERVER_SHUTDOWN_GRACE" envDefault:"10s"`
}

// StorageConfig locates the durable state database.
type StorageConfig struct {
	DatabasePath string `env:"API_STORAGE_DB_PATH" envDefault:"commerce.db"`
}

// CheckoutConfig controls checkout session behaviour.
type CheckoutConfig struct {
	SessionTTL time.Duration `env:"API_CHECKOUT_SESSION_TTL" envDefault:"1h"`
}

// PaymentConfig tunes the payment simulator.
type PaymentConfig struct {
	Latency     time.Duration `env:"API_PAYMENT_LATENCY" envDefault:"2s"`
	SuccessRate float64       `env:"API_PAYMENT_SUCCESS_RATE" envDefault:"0.9"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// ValidationError is returned when configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Load assembles the application configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	var invalid []string
	if strings.TrimSpace(cfg.Server.Port) == "" {
		invalid = append(invalid, "Server.Port")
	}
	if strings.TrimSpace(cfg.Storage.DatabasePath) == "" {
		invalid = append(invalid, "Storage.DatabasePath")
	}
	if cfg.Checkout.SessionTTL <= 0 {
		invalid = append(invalid, "Checkout.SessionTTL")
	}
	if cfg.Payments.Latency < 0 {
		invalid = append(invalid, "Payments.Latency")
	}
	if cfg.Payments.SuccessRate < 0 || cfg.Payments.SuccessRate > 1 {
		invalid = append(invalid, "Payments.SuccessRate")
	}
	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}
