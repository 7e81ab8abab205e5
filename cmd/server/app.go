package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/phrazzld/palette-api/internal/api/middleware"
	"github.com/phrazzld/palette-api/internal/config"
	"github.com/phrazzld/palette-api/internal/metrics"
	"github.com/phrazzld/palette-api/internal/platform/kafka"
	"github.com/phrazzld/palette-api/internal/platform/postgres"
	"github.com/phrazzld/palette-api/internal/service"
	"github.com/phrazzld/palette-api/internal/service/auth"
	"github.com/phrazzld/palette-api/internal/store"
	"github.com/phrazzld/palette-api/internal/task"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// application holds the shared dependencies of the server and releases
// them on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	registry *prometheus.Registry
	metrics  *metrics.Collector

	tokens  auth.TokenService
	users   service.UserService
	diaries service.DiaryService

	loginLimiter *middleware.RateLimiter

	// closers run in order on shutdown, after the HTTP server has drained
	closers []io.Closer
}

// newApplication wires stores, services and infrastructure around db.
func newApplication(cfg *config.Config, log *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:   cfg,
		logger:   log,
		db:       db,
		registry: prometheus.NewRegistry(),
	}

	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.NewCollector(app.registry)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	tx := store.NewSQLTransactor(db)
	users := postgres.NewPostgresUserStore(db, log)
	groups := postgres.NewPostgresDiaryGroupStore(db, log)
	refreshTokens := postgres.NewPostgresRefreshTokenStore(db, log)

	app.tokens, err = auth.NewTokenService(jwtService, refreshTokens, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}
	log.Info("token service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes,
		"refresh_token_lifetime_minutes", cfg.Auth.RefreshTokenLifetimeMinutes)

	notifier, err := app.setupNotifier()
	if err != nil {
		return nil, err
	}

	app.users, err = service.NewUserService(tx, users, groups, refreshTokens, app.tokens, app.metrics, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.diaries, err = service.NewDiaryService(tx, service.DiaryStores{
		Users:     users,
		Colors:    postgres.NewPostgresColorStore(db, log),
		Diaries:   postgres.NewPostgresDiaryStore(db, log),
		Groups:    groups,
		Histories: postgres.NewPostgresHistoryStore(db, log),
	}, notifier, app.metrics, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create diary service: %w", err)
	}

	app.loginLimiter = middleware.NewLoginRateLimiter(cfg.RateLimit)

	log.Info("application initialized successfully")
	return app, nil
}

// setupNotifier publishes invitation events to Kafka when brokers are
// configured and only logs them otherwise. Kafka delivery runs on a
// background worker pool so invites never wait on the broker.
func (app *application) setupNotifier() (service.Notifier, error) {
	kafkaCfg := app.config.Kafka
	if len(kafkaCfg.Brokers) == 0 {
		app.logger.Info("kafka brokers not configured, notifications are logged only")
		return service.NewLogNotifier(app.logger), nil
	}

	writer, err := kafka.NewWriter(kafkaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka writer: %w", err)
	}
	publisher, err := kafka.NewNotifier(writer, app.logger)
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("failed to create kafka notifier: %w", err)
	}

	notifyCfg := app.config.Notify
	notifier, err := task.NewAsyncNotifier(publisher, notifyCfg.QueueSize, task.WorkerPoolConfig{
		WorkerCount: notifyCfg.Workers,
		TaskTimeout: notifyCfg.DeliveryTimeout,
	}, app.logger)
	if err != nil {
		_ = publisher.Close()
		return nil, fmt.Errorf("failed to create async notifier: %w", err)
	}
	// Closing drains the queue and then closes the kafka writer.
	app.closers = append(app.closers, notifier)

	app.logger.Info("kafka notifier initialized",
		"brokers", len(kafkaCfg.Brokers),
		"topic", kafkaCfg.Topic,
		"sasl", kafkaCfg.Username != "",
		"workers", notifyCfg.Workers,
		"queue_size", notifyCfg.QueueSize)
	return notifier, nil
}

// Run serves HTTP until ctx is cancelled, then releases resources.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	start := time.Now()

	if app.loginLimiter != nil {
		app.loginLimiter.Stop()
	}

	for _, c := range app.closers {
		if err := c.Close(); err != nil {
			app.logger.Error("error closing resource", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed", "duration", time.Since(start))
}
