package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rentacar/internal/api"
	"rentacar/internal/config"
	"rentacar/internal/database"
	"rentacar/internal/domain"
	"rentacar/internal/events"
	"rentacar/internal/gateway"
	"rentacar/internal/metrics"
	"rentacar/internal/repository"
	"rentacar/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API for the front end",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, logger, closer, err := loadConfigAndLogger("api-main")
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	if !cfg.Server.Enabled {
		logger.Warn().Msg("server is disabled in config, but starting API application. Check your config.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer func() { _ = repository.Close(redisClient) }()
	}

	// Browser requests carry their own token; the operator token stored for the CLI is never forwarded.
	client := gateway.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, nil, logger)
	if redisClient != nil && cfg.Upstream.CacheTTL > 0 {
		client.UseRedisCache(redisClient, cfg.Upstream.CacheTTL)
	}

	bus := newEventBus(db, logger)

	reservations := service.NewReservationService(client, client, bus, cfg.Availability.FailClosed, logger)
	sessions := service.NewSessionService(initSessions(ctx, cfg, redisClient, logger), logger)

	policy, err := service.ParsePolicy(cfg.Availability.DefaultPolicy)
	if err != nil {
		return err
	}

	httpServer := api.NewHTTPServer(cfg.Server, api.Deps{
		Reservations:  reservations,
		Auth:          service.NewAuthService(client, logger),
		Sessions:      sessions,
		Health:        db,
		Audit:         db,
		DefaultPolicy: policy,
	}, logger)

	backup := database.NewBackupService(db, cfg.Database.Backup, logger)
	go backup.Start(ctx)

	startMetrics(ctx, cfg, logger)

	return startServer(ctx, httpServer, cfg, logger)
}

// newEventBus wires the audit trail: every event is logged and persisted.
func newEventBus(db *database.DB, logger *zerolog.Logger) *events.EventBus {
	bus := events.NewEventBus(logger)
	audit := events.AuditLogger(logger)
	for _, eventType := range events.EventTypes {
		bus.Subscribe(eventType, audit)
		bus.Subscribe(eventType, db.AuditHandler())
	}
	return bus
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = client.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return client
}

// initSessions picks the booking session store: Redis with an in-memory fallback when
// Redis is configured, memory alone otherwise.
func initSessions(ctx context.Context, cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.SessionRepository {
	memory := repository.NewMemorySessionRepository(cfg.Session.TTL)
	go sweepSessions(ctx, memory, cfg.Session.TTL, logger)

	if redisClient == nil {
		return memory
	}
	primary := repository.NewRedisSessionRepository(redisClient, cfg.Session.TTL)
	return repository.NewFailoverSessionRepository(primary, memory, logger)
}

func sweepSessions(ctx context.Context, repo *repository.MemorySessionRepository, ttl time.Duration, logger *zerolog.Logger) {
	interval := ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := repo.Sweep(); n > 0 {
				logger.Debug().Int("expired", n).Msg("swept booking sessions")
			}
		}
	}
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	metrics.Register()
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	logger.Info().Int("http_port", cfg.Server.Port).Str("upstream", cfg.Upstream.BaseURL).Msg("API server started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown")
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
