package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingSecret reports that no token signing secret was configured.
var ErrMissingSecret = errors.New("auth.jwt_secret is required (set BGM_JWT_SECRET_KEY or auth.jwt_secret_file)")

// Validate checks the configuration for required fields and valid values.
// All problems are reported together, each with its field path.
func (c *Config) Validate() error {
	var errs []error

	if c.Auth.JWTSecret == "" {
		errs = append(errs, ErrMissingSecret)
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("auth.token_ttl must be > 0, got %s", c.Auth.TokenTTL))
	}
	if c.Auth.LoginRatePerMinute < 0 {
		errs = append(errs, fmt.Errorf("auth.login_rate_per_minute must be >= 0, got %d", c.Auth.LoginRatePerMinute))
	}
	if (c.Auth.BootstrapUsername == "") != (c.Auth.BootstrapPassword == "") {
		errs = append(errs, fmt.Errorf("auth.bootstrap_username and auth.bootstrap_password must be set together"))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.MaxBodySize <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_size must be > 0, got %d", c.Server.MaxBodySize))
	}

	switch c.Storage.Type {
	case "memory":
	case "postgres":
		if c.Storage.Postgres.DSN == "" {
			errs = append(errs, fmt.Errorf("storage.postgres.dsn or storage.postgres.dsn_file is required when storage.type is \"postgres\""))
		}
	case "sqlite":
		if c.Storage.SQLite.Path == "" {
			errs = append(errs, fmt.Errorf("storage.sqlite.path is required when storage.type is \"sqlite\""))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.type must be \"memory\", \"postgres\", or \"sqlite\", got %q", c.Storage.Type))
	}

	if c.Mail.Enabled {
		if c.Mail.Host == "" {
			errs = append(errs, fmt.Errorf("mail.host is required when mail is enabled"))
		}
		if c.Mail.From == "" {
			errs = append(errs, fmt.Errorf("mail.from or mail.username is required when mail is enabled"))
		}
		if len(c.Mail.To) == 0 {
			errs = append(errs, fmt.Errorf("mail.to is required when mail is enabled"))
		}
		if c.Mail.Domain == "" {
			errs = append(errs, fmt.Errorf("mail.domain is required when mail is enabled"))
		}
	}

	if c.Observability.Metrics.Enabled {
		p := c.Observability.Metrics.Path
		if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "/api/") {
			errs = append(errs, fmt.Errorf("observability.metrics.path must start with / and lie outside /api/, got %q", p))
		}
	}

	return errors.Join(errs...)
}
