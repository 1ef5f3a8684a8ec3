package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/go-storefront-api/internal/application/notification"
	"github.com/go-storefront-api/internal/config"
	"github.com/go-storefront-api/internal/infrastructure/database"
	jwtinfra "github.com/go-storefront-api/internal/infrastructure/jwt"
	"github.com/go-storefront-api/internal/infrastructure/kvstore"
	"github.com/go-storefront-api/internal/infrastructure/smtp"
	"github.com/go-storefront-api/internal/infrastructure/sns"
	"github.com/go-storefront-api/internal/infrastructure/twilio"
	"github.com/go-storefront-api/internal/pkg/logger"
	transporthttp "github.com/go-storefront-api/internal/transport/http"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.AppEnv)
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)
	if envErr != nil {
		log.Info("no .env file found, reading from environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg, log)
	if err != nil {
		log.Fatal("database unavailable", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("schema migration failed", zap.Error(err))
	}
	if cfg.DBSeedProducts {
		if err := database.SeedProducts(ctx, db); err != nil {
			log.Warn("product seed failed", zap.Error(err))
		}
	}

	kv, kvBackend := kvstore.Select(ctx, cfg, log)
	if c, ok := kv.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}

	// JWT provider (optional: account routes answer 401 without it).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Warn("JWT provider not available", zap.Error(err))
	}

	var mailer notification.Mailer
	if cfg.EmailEnabled {
		mailer = smtp.NewMailer(cfg)
		if !cfg.SMTPConfigured() {
			log.Warn("EMAIL_ENABLED without SMTP credentials; sending unauthenticated", zap.String("host", cfg.SMTPHost))
		}
	}
	smsSender := newSMSSender(ctx, cfg, log)

	dispatcher := notification.NewDispatcher(
		notification.NewEmailChannel(mailer, cfg.EmailEnabled, cfg.NotifyTimeout, log.Named("email")),
		notification.NewSMSChannel(smsSender, cfg.SMSEnabled, cfg.SMSCountryCode, cfg.NotifyTimeout, log.Named("sms")),
	)

	router := transporthttp.NewRouter(ctx, cfg, &transporthttp.Deps{
		DB:              db,
		KV:              kv,
		KVBackend:       kvBackend,
		Dispatcher:      dispatcher,
		JWTProvider:     jwtProvider,
		EmailConfigured: cfg.EmailEnabled && cfg.SMTPConfigured(),
		SMSConfigured:   smsSender != nil && cfg.SMSEnabled,
		Logger:          log,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.AppEnv),
			zap.String("kv_backend", kvBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
		return
	}
	log.Info("server stopped")
}

// newSMSSender returns the configured SMS provider, or nil when SMS is off
// or the provider cannot be built.
func newSMSSender(ctx context.Context, cfg *config.Config, log *zap.Logger) notification.SMSSender {
	if !cfg.SMSEnabled {
		return nil
	}
	switch cfg.SMSProvider {
	case "twilio":
		s, err := twilio.NewSender(cfg)
		if err != nil {
			log.Warn("twilio sender not available", zap.Error(err))
			return nil
		}
		return s
	default:
		s, err := sns.NewSender(ctx, cfg)
		if err != nil {
			log.Warn("SNS sender not available", zap.Error(err))
			return nil
		}
		return s
	}
}
