package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Issuer string `env:"AUTH_ISSUER" envDefault:"bodhivana-auth"` // Issuer claim for tokens

	JWTSecret     string `env:"AUTH_JWT_SECRET,required"`     // HMAC secret for access tokens (min 32 bytes)
	WebhookSecret string `env:"PAYMENT_WEBHOOK_SECRET,required"` // Shared secret for payment webhook signatures

	DatabaseFile string `env:"AUTH_DATABASE_FILE" envDefault:"auth.db"` // Path to SQLite database file

	RedisAddr     string `env:"REDIS_ADDR"`     // Optional: host:port for Redis-backed rate limiting
	RedisPassword string `env:"REDIS_PASSWORD"` // Optional

	SMTPHost     string `env:"SMTP_HOST,required"` // SMTP relay for verification codes
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM,required"` // Sender address for outgoing mail

	Env       string `env:"ENV" envDefault:"dev"`         // Environment (dev, staging, prod)
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`  // Log level (debug, info, warn, error)
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"` // Log format (json, text)

	Port                 int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`
}

// LoadConfig reads configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
