// Command server runs the BGM Sons catalog API.
//
// Configuration is read from a YAML file (-config, BGM_CONFIG, ./config.yaml
// or /etc/bgm/config.yaml) with BGM_* environment overrides. The only
// required setting is the token signing secret:
//
//	BGM_JWT_SECRET_KEY - HMAC secret for admin bearer tokens (required)
//	BGM_PORT           - Listen port (default: 8080)
//	BGM_STORAGE        - "memory", "postgres" or "sqlite" (default: "memory")
//	BGM_EMAIL_ID       - Comma-separated enquiry recipients
//	BGM_DOMAIN         - Storefront host used in product links
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/bgmsons/catalog/pkg/auth"
	"github.com/bgmsons/catalog/pkg/auth/token"
	"github.com/bgmsons/catalog/pkg/config"
	"github.com/bgmsons/catalog/pkg/debug"
	"github.com/bgmsons/catalog/pkg/identity"
	"github.com/bgmsons/catalog/pkg/mail"
	"github.com/bgmsons/catalog/pkg/storage/memory"
	"github.com/bgmsons/catalog/pkg/storage/postgres"
	"github.com/bgmsons/catalog/pkg/storage/sqlite"
	"github.com/bgmsons/catalog/pkg/transport"
	transporthttp "github.com/bgmsons/catalog/pkg/transport/http"
)

// catalogStore is satisfied by every storage backend.
type catalogStore interface {
	transport.ProductStore
	identity.Store
}

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	debug.Init(cfg.Logging.Debug, cfg.Logging.Level)

	ctx := context.Background()

	codec, err := token.New(token.Config{
		Secret: cfg.Auth.JWTSecret,
		TTL:    cfg.Auth.TokenTTL,
		Issuer: cfg.Auth.Issuer,
	})
	if err != nil {
		return fmt.Errorf("creating token codec: %w", err)
	}

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	admins := identity.NewService(store)
	created, err := admins.Bootstrap(ctx, cfg.Auth.BootstrapUsername, cfg.Auth.BootstrapPassword)
	if err != nil {
		return fmt.Errorf("bootstrapping admin: %w", err)
	}
	if created {
		slog.Info("bootstrap admin created", "username", cfg.Auth.BootstrapUsername)
	}

	deps := transporthttp.Dependencies{
		Products:     store,
		Admins:       admins,
		Tokens:       codec,
		LoginLimiter: auth.NewInProcessLimiter(cfg.Auth.LoginRatePerMinute),
		Policy:       auth.DefaultPolicy(),
		Logger:       slog.Default(),
	}
	if cfg.Mail.Enabled {
		deps.Mail = newRelay(cfg.Mail)
		slog.Info("mail relay enabled", "host", cfg.Mail.Host, "recipients", len(cfg.Mail.To))
	} else {
		slog.Info("mail relay disabled")
	}

	adapterCfg := transporthttp.DefaultConfig()
	adapterCfg.MaxBodySize = cfg.Server.MaxBodySize
	adapterCfg.MetricsPath = ""
	if cfg.Observability.Metrics.Enabled {
		adapterCfg.MetricsPath = cfg.Observability.Metrics.Path
	}
	adapter := transporthttp.NewAdapter(deps, adapterCfg)

	srv := transporthttp.NewServer(adapter.Handler(),
		transporthttp.WithAddr(":"+strconv.Itoa(cfg.Server.Port)),
		transporthttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithLogger(slog.Default()),
	)

	slog.Info("catalog server configured",
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Type,
		"token_ttl", cfg.Auth.TokenTTL,
		"metrics", adapterCfg.MetricsPath,
	)
	return srv.ListenAndServe()
}

// openStore creates the configured storage backend.
func openStore(ctx context.Context, cfg config.StorageConfig) (catalogStore, error) {
	switch cfg.Type {
	case "memory":
		slog.Info("storage enabled", "type", "memory")
		return memory.New(), nil

	case "postgres":
		store, err := postgres.New(ctx, postgres.Config{
			DSN:            cfg.Postgres.DSN,
			MaxConns:       cfg.Postgres.MaxConns,
			MigrateOnStart: cfg.Postgres.MigrateOnStart,
		})
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		slog.Info("storage enabled", "type", "postgres", "migrate", cfg.Postgres.MigrateOnStart)
		return store, nil

	case "sqlite":
		store, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		slog.Info("storage enabled", "type", "sqlite", "path", cfg.SQLite.Path)
		return store, nil

	default:
		return nil, errors.New("unknown storage type " + strconv.Quote(cfg.Type))
	}
}

// newRelay wires the SMTP sender behind the enquiry relay.
func newRelay(cfg config.MailConfig) *mail.Relay {
	sender := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	return mail.NewRelay(sender, mail.Config{
		From:   cfg.From,
		To:     cfg.To,
		Domain: cfg.Domain,
	})
}
