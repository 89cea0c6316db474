package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
}

type Config struct {
	Port             int    `env:"PORT" envDefault:"8080"`
	DatabaseURL      string `env:"DATABASE_URL,required"`
	RedisURL         string `env:"REDIS_URL,required"`
	SessionSecret    string `env:"SESSION_SECRET"`
	StaffAPIKeyHash  string `env:"STAFF_API_KEY_HASH"`
	PortalBaseURL    string `env:"PORTAL_BASE_URL" envDefault:"http://localhost:8080/portal"`
	MailerSendAPIKey string `env:"MAILERSEND_API_KEY"`
	MailFromName     string `env:"MAIL_FROM_NAME" envDefault:"FieldPilot"`
	MailFromEmail    string `env:"MAIL_FROM_EMAIL"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	MigrationsDir    string `env:"MIGRATIONS_DIR" envDefault:"migrations"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	if isProduction {
		if err := validateSecret("SESSION_SECRET", c.SessionSecret); err != nil {
			return err
		}
		if c.StaffAPIKeyHash == "" {
			return fmt.Errorf("STAFF_API_KEY_HASH is required in production (generate with: go run scripts/hash-api-key.go <key>)")
		}
		if c.MailerSendAPIKey == "" {
			log.Warn().Msg("MAILERSEND_API_KEY is empty in production: portal emails will be logged instead of sent")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -base64 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
