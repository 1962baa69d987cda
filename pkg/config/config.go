// Package config provides unified configuration for the catalog server.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (BGM_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the catalog server.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Auth          AuthConfig          `yaml:"auth"`
	Storage       StorageConfig       `yaml:"storage"`
	Mail          MailConfig          `yaml:"mail"`
	Observability ObservabilityConfig `yaml:"observability"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port" env:"BGM_PORT"`                         // default: 8080
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"BGM_READ_TIMEOUT"`         // default: 30s
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"BGM_WRITE_TIMEOUT"`       // default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"BGM_SHUTDOWN_TIMEOUT"` // default: 15s
	MaxBodySize     int64         `yaml:"max_body_size" env:"BGM_MAX_BODY_SIZE"`       // default: 1 MiB
}

// AuthConfig holds token and admin settings.
type AuthConfig struct {
	JWTSecret          string        `yaml:"jwt_secret" env:"BGM_JWT_SECRET_KEY"`          // required
	JWTSecretFile      string        `yaml:"jwt_secret_file" env:"BGM_JWT_SECRET_FILE"`    // _file variant for jwt_secret
	TokenTTL           time.Duration `yaml:"token_ttl" env:"BGM_TOKEN_TTL"`                // default: 168h
	Issuer             string        `yaml:"issuer" env:"BGM_TOKEN_ISSUER"`                // optional
	LoginRatePerMinute int           `yaml:"login_rate_per_minute" env:"BGM_LOGIN_RATE"`   // default: 10, 0 disables
	BootstrapUsername  string        `yaml:"bootstrap_username" env:"BGM_ADMIN_USERNAME"` // optional
	BootstrapPassword  string        `yaml:"bootstrap_password" env:"BGM_ADMIN_PASSWORD"` // optional
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	Type     string         `yaml:"type" env:"BGM_STORAGE"` // "memory", "postgres" or "sqlite", default: "memory"
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn" env:"BGM_POSTGRES_DSN"`
	DSNFile        string `yaml:"dsn_file" env:"BGM_POSTGRES_DSN_FILE"` // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`                            // default: 10
	MigrateOnStart bool   `yaml:"migrate_on_start" env:"BGM_POSTGRES_MIGRATE"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `yaml:"path" env:"BGM_SQLITE_PATH"` // default: "catalog.db"
}

// MailConfig holds enquiry mail settings.
type MailConfig struct {
	Enabled      bool     `yaml:"enabled" env:"BGM_MAIL_ENABLED"`
	Host         string   `yaml:"host" env:"BGM_SMTP_HOST"` // default: smtp.gmail.com
	Port         int      `yaml:"port" env:"BGM_SMTP_PORT"` // default: 587
	Username     string   `yaml:"username" env:"BGM_SMTP_USERNAME"`
	Password     string   `yaml:"password" env:"BGM_SMTP_PASSWORD"`
	PasswordFile string   `yaml:"password_file" env:"BGM_SMTP_PASSWORD_FILE"` // _file variant for password
	From         string   `yaml:"from" env:"BGM_MAIL_FROM"`                   // default: username
	To           []string `yaml:"to" env:"BGM_EMAIL_ID" envSeparator:","`
	Domain       string   `yaml:"domain" env:"BGM_DOMAIN"` // storefront host for product links
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"BGM_METRICS_ENABLED"` // default: true
	Path    string `yaml:"path"`                              // default: "/metrics"
}

// LoggingConfig holds log level and debug category settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // default: INFO; BGM_LOG_LEVEL overrides
	Debug string `yaml:"debug"` // comma-separated categories; BGM_DEBUG overrides
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxBodySize:     1 << 20,
		},
		Auth: AuthConfig{
			TokenTTL:           7 * 24 * time.Hour,
			LoginRatePerMinute: 10,
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: PostgresConfig{
				MaxConns: 10,
			},
			SQLite: SQLiteConfig{
				Path: "catalog.db",
			},
		},
		Mail: MailConfig{
			Host: "smtp.gmail.com",
			Port: 587,
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
	}
}
