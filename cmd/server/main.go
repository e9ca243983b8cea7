package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/ncmlookup/internal/auth"
	"github.com/JonMunkholm/ncmlookup/internal/config"
	"github.com/JonMunkholm/ncmlookup/internal/core"
	"github.com/JonMunkholm/ncmlookup/internal/database"
	"github.com/JonMunkholm/ncmlookup/internal/logging"
	"github.com/JonMunkholm/ncmlookup/internal/mail"
	"github.com/JonMunkholm/ncmlookup/internal/ncm"
	"github.com/JonMunkholm/ncmlookup/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"mail_enabled", cfg.Mail.Enabled(),
		"items_watch", cfg.Items.Watch,
	)

	// Parse and configure connection pool
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}

	// Apply pool configuration from config
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	// Connect to database
	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		dbName := strings.TrimPrefix(u.Path, "/")
		slog.Info("connected to database", "name", dbName)
	} else {
		slog.Info("connected to database")
	}

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	// Mail falls back to logging the message when SMTP is not configured.
	var mailer mail.Sender = mail.NopSender{Logger: logger}
	if cfg.Mail.Enabled() {
		smtp, err := mail.NewSMTPSender(mail.SMTPConfig{
			Host:      cfg.Mail.Host,
			Port:      cfg.Mail.Port,
			Username:  cfg.Mail.User,
			Password:  cfg.Mail.Password,
			FromName:  cfg.Mail.FromName,
			FromEmail: cfg.Mail.FromEmail,
		})
		if err != nil {
			slog.Error("failed to configure mail", "error", err)
			os.Exit(1)
		}
		mailer = smtp
	}

	service := core.NewService(
		core.NewPgStore(pool),
		auth.Hasher{Cost: cfg.Auth.BcryptCost},
		auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL(), cfg.Auth.Issuer),
		core.WithMailer(mailer),
		core.WithResetLink(cfg.Mail.ResetURL, cfg.Mail.ResetTTL),
	)

	items := ncm.NewCache(ncm.Source{
		Path:         cfg.Items.Path,
		ResourceDir:  cfg.Items.ResourceDir,
		ResourceName: cfg.Items.ResourceName,
	}, ncm.WithLogger(logger))

	if cfg.Items.Preload {
		// A missing workbook is reported per request; the rest of the API
		// still works.
		if snap, err := items.Snapshot(ctx); err != nil {
			slog.Warn("spreadsheet preload failed", "error", err)
		} else {
			slog.Info("spreadsheet loaded", "path", snap.Path, "rows", snap.Table.Len())
		}
	}

	server := web.NewServer(service, items, cfg)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())

	go service.StartResetPurge(jobCtx, core.DefaultPurgeInterval)

	if cfg.Items.Watch {
		go func() {
			if err := items.Watch(jobCtx, cfg.Items.WatchDebounce); err != nil {
				slog.Warn("spreadsheet watch stopped", "error", err)
			}
		}()
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if st := service.HashLimiter().Status(); st.Active > 0 {
			slog.Info("waiting for password operations", "active", st.Active)
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
