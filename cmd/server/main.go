// @title Explore With Me API
// @version 1.0
// @description Event publication and participation requests.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"explorewithme/config"
	_ "explorewithme/docs"
	"explorewithme/internal/adapters/auth"
	"explorewithme/internal/adapters/email"
	"explorewithme/internal/adapters/stats"
	httpdelivery "explorewithme/internal/delivery/http"
	"explorewithme/internal/delivery/http/controllers"
	"explorewithme/internal/domain"
	"explorewithme/internal/platform/otel"
	"explorewithme/internal/repository/postgres"
	"explorewithme/internal/repository/sqlite"
	"explorewithme/internal/services"
)

const serviceName = "explorewithme"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// storage is the backend-independent view of the chosen store.
type storage struct {
	db         *sql.DB
	tx         domain.Transactor
	events     domain.EventRepository
	requests   domain.ParticipationRequestRepository
	users      domain.UserDirectory
	categories domain.CategoryDirectory
	close      func() error
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath, cfg.LockTimeout)
		if err != nil {
			return nil, err
		}
		return &storage{
			db:         store.DB(),
			tx:         store.Transactor(),
			events:     store.Events(),
			requests:   store.Requests(),
			users:      store.Users(),
			categories: store.Categories(),
			close:      store.Close,
		}, nil
	default:
		db, err := postgres.Open(ctx, cfg.DBUrl)
		if err != nil {
			return nil, err
		}
		return &storage{
			db:         db,
			tx:         postgres.NewTransactor(db, cfg.LockTimeout),
			events:     postgres.NewEventRepository(db),
			requests:   postgres.NewParticipationRequestRepository(db),
			users:      postgres.NewUserRepository(db),
			categories: postgres.NewCategoryRepository(db),
			close:      db.Close,
		}, nil
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	shutdownTracing, err := otel.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("flush traces", "err", err)
		}
	}()

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	defer func() {
		if err := store.close(); err != nil {
			logger.Warn("close store", "err", err)
		}
	}()
	logger.Info("store ready", "driver", cfg.StoreDriver)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("create mailer: %w", err)
	}

	var statsClient domain.StatsClient
	if cfg.StatsURL != "" {
		statsClient = stats.NewHTTPClient(cfg.StatsURL, &http.Client{Timeout: cfg.StatsTimeout})
	} else {
		logger.Warn("STATS_URL not set, views will not be recorded")
	}

	background := services.NewBackground(logger, cfg.ContextTimeout)
	notifications := services.NewNotificationService(mailer, email.NewTemplateRenderer(), logger)
	accountant := services.NewCapacityAccountant(store.tx, cfg.LockRetryAttempts)

	eventService := services.NewEventService(
		store.tx, store.events, store.users, store.categories,
		statsClient, background, logger, cfg.StatsApp, cfg.ContextTimeout,
	)
	participationService := services.NewParticipationService(
		accountant, store.events, store.requests, store.users,
		notifications, background, logger, cfg.ContextTimeout,
	)

	router := httpdelivery.NewRouter(httpdelivery.RouterDeps{
		Logger:         logger,
		Verifier:       auth.NewJWTVerifier(cfg.JWTSecret),
		Events:         controllers.NewEventController(logger, eventService),
		Admin:          controllers.NewAdminController(logger, eventService),
		Requests:       controllers.NewRequestController(logger, participationService),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Health: func(r *http.Request) error {
			return store.db.PingContext(r.Context())
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "port", cfg.Port, "env", cfg.Environment)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "err", err)
	}
	if err := background.Wait(shutdownCtx); err != nil {
		logger.Warn("background tasks still running at shutdown", "err", err)
	}
	return nil
}
