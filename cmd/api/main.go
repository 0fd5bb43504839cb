package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saturnino-fabrica-de-software/presenca/internal/admin"
	"github.com/saturnino-fabrica-de-software/presenca/internal/alert"
	"github.com/saturnino-fabrica-de-software/presenca/internal/api"
	"github.com/saturnino-fabrica-de-software/presenca/internal/audit"
	"github.com/saturnino-fabrica-de-software/presenca/internal/cache"
	"github.com/saturnino-fabrica-de-software/presenca/internal/config"
	"github.com/saturnino-fabrica-de-software/presenca/internal/face"
	"github.com/saturnino-fabrica-de-software/presenca/internal/fraud"
	"github.com/saturnino-fabrica-de-software/presenca/internal/identity"
	"github.com/saturnino-fabrica-de-software/presenca/internal/liveness"
	"github.com/saturnino-fabrica-de-software/presenca/internal/location"
	"github.com/saturnino-fabrica-de-software/presenca/internal/metrics"
	"github.com/saturnino-fabrica-de-software/presenca/internal/ratelimit"
	"github.com/saturnino-fabrica-de-software/presenca/internal/repository"
	"github.com/saturnino-fabrica-de-software/presenca/internal/service"
	"github.com/saturnino-fabrica-de-software/presenca/internal/webhook"
	"github.com/saturnino-fabrica-de-software/presenca/internal/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Presenca API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database pool
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to create database pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	auditLogger := audit.NewSlogLogger(logger)

	// Face providers
	providers, err := face.NewProviders(ctx, cfg, auditLogger)
	if err != nil {
		return fmt.Errorf("failed to create face providers: %w", err)
	}
	logger.Info("face providers ready", slog.String("provider", cfg.FaceProvider))

	// Repositories
	templates := repository.NewEnrollmentRepository(pool)
	attempts := repository.NewAttemptRepository(pool)
	blocklist := repository.NewBlocklistRepository(pool)
	records := repository.NewFraudRecordRepository(pool)
	fixes := repository.NewFixRepository(pool)
	geofences := repository.NewGeofenceRepository(pool)

	// Analyzers and the fraud engine. Network fixes are cached in Postgres so
	// repeated attempts from the same IP skip the HTTP resolvers.
	fixCache := cache.NewPGCache(pool)
	resolver := location.NewCachedResolver(newResolverChain(cfg, logger), fixCache, logger)

	matcher := identity.NewMatcher()
	livenessAnalyzer := liveness.NewAnalyzer()
	locationAnalyzer := location.NewAnalyzer(resolver, fixes, logger)
	fraudEngine := fraud.NewEngine(attempts, blocklist, records, logger)

	// Fraud event webhook with background retry delivery
	var fraudNotifier *webhook.Notifier
	if cfg.WebhookURL != "" {
		fraudNotifier = webhook.NewNotifier(pool, cfg.WebhookURL, cfg.WebhookSecret, logger)
		fraudEngine.WithNotifier(fraudNotifier)

		webhookWorker := webhook.NewWorker(pool, fraudNotifier, logger)
		go webhookWorker.Run(ctx)
	}

	// Metric rollups and threshold alerts
	metricsRepo := metrics.NewRepository(pool)
	aggregator := metrics.NewAggregator(metricsRepo, logger, time.Minute)
	go aggregator.Start(ctx)

	var alertSender alert.EventSender
	if fraudNotifier != nil {
		alertSender = fraudNotifier
	}
	alertWorker := alert.NewWorker(
		alert.NewRepository(pool),
		alert.NewEngine(metricsRepo),
		alert.NewNotifier(alertSender, logger),
		logger,
		30*time.Second,
	)
	go alertWorker.Start(ctx)

	// Live decision feed for admin dashboards
	hub := ws.NewHub()
	go hub.Run()

	// Short-lived session tokens for the admin dashboard
	sessions := admin.NewTokenService(cfg.AdminAPIKey, "presenca", time.Hour)

	actorLimiter := ratelimit.NewActorLimiter(pool, time.Minute)

	// Services
	attendance := service.NewAttendanceService(
		providers.Detector,
		providers.Embedder,
		matcher,
		templates,
		geofences,
		livenessAnalyzer,
		locationAnalyzer,
		fraudEngine,
		auditLogger,
		logger,
	)
	enrollment := service.NewEnrollmentService(
		providers.Detector,
		providers.Embedder,
		matcher,
		templates,
		auditLogger,
	)

	// Setup router
	router := api.NewRouter(logger, &api.Dependencies{
		Attendance:   attendance,
		Enrollment:   enrollment,
		FraudRecords: records,
		Blocklist:    blocklist,
		Geofences:    geofences,
		AuditLogger:  auditLogger,
		AdminAPIKey:  cfg.AdminAPIKey,
		Stats:        metricsRepo,
		Hub:          hub,
		Sessions:     sessions,
		ActorLimiter: actorLimiter,
		AttemptLimit: cfg.AttemptRateLimit,
	})
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	<-shutdownCtx.Done()
	logger.Info("server stopped")

	return nil
}

// newResolverChain builds the network location resolver fallback chain. The
// MaxMind database goes first when configured since it needs no network call.
func newResolverChain(cfg *config.Config, logger *slog.Logger) *location.Chain {
	var resolvers []location.Resolver

	if cfg.MaxMindDBPath != "" {
		mm, err := location.NewMaxMindResolver(cfg.MaxMindDBPath)
		if err != nil {
			logger.Warn("maxmind database unavailable, falling back to HTTP resolvers",
				slog.String("path", cfg.MaxMindDBPath),
				slog.Any("error", err),
			)
		} else {
			resolvers = append(resolvers, mm)
		}
	}

	ipapiCfg := location.DefaultIPAPIConfig()
	ipapiCfg.BaseURL = cfg.IPAPIBaseURL
	resolvers = append(resolvers, location.NewIPAPIResolver(ipapiCfg))

	ipwhoisCfg := location.DefaultIPWhoisConfig()
	ipwhoisCfg.BaseURL = cfg.IPWhoisBaseURL
	resolvers = append(resolvers, location.NewIPWhoisResolver(ipwhoisCfg))

	return location.NewChain(logger, resolvers...)
}
