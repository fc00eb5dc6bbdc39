package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"skupilot/internal/adapter/connector"
	httpadapter "skupilot/internal/adapter/http"
	"skupilot/internal/adapter/postgres"
	"skupilot/internal/adapter/usecase"
	"skupilot/internal/config"
	"skupilot/internal/core/port"
	"skupilot/internal/db"
)

// main is the entry point of the skupilot service. It loads
// configuration, optionally runs database migrations and seeding,
// builds the connector registry from configured credentials, then
// starts the decision scheduler and the HTTP server. On receiving a
// termination signal both are gracefully shut down.
func main() {
	exitCode := 1
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		} else {
			os.Exit(exitCode)
		}
	}()

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	var logger *slog.Logger
	{
		// Initialise structured logger based on configuration.
		var handler slog.Handler
		level := cfg.Log.SlogLevel()
		switch cfg.Log.SlogFormat() {
		case "json":
			handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		default:
			handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		}
		logger = slog.New(handler)
	}

	if cfg.Psql.RunMigrations {
		if err = db.Migrate(cfg.Psql.Addr.String()); err != nil {
			logger.Error("migration error", slog.Any("error", err))
		} else {
			logger.Info("migrations applied successfully")
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.Psql)
	if err != nil {
		logger.Error("database connection error", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Psql.RunSeed {
		if err = db.Seed(ctx, pool); err != nil {
			logger.Error("seed error", slog.Any("error", err))
		} else {
			logger.Info("demo data seeded")
		}
	}

	skuRepo := postgres.NewSKURepository(pool)
	campaignRepo := postgres.NewCampaignRepository(pool)
	metricsRepo := postgres.NewMetricsRepository(pool)
	decisionLog := postgres.NewDecisionLog(pool)

	// The health tracker is optional; without redis the middleware runs
	// with cooldown tracking disabled.
	var health *usecase.HealthTracker
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err = rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, connector health tracking disabled", slog.Any("error", err))
		} else {
			health = usecase.NewHealthTracker(rdb)
			defer rdb.Close()
		}
	}

	registry := buildRegistry(cfg, logger)

	middleware := usecase.NewMiddleware(registry, usecase.NewMetricsService(metricsRepo), health, cfg.Connectors, logger)
	engine := usecase.NewIntelligence(cfg.Intelligence, skuRepo, campaignRepo, metricsRepo, decisionLog, middleware, logger)
	scheduler := usecase.NewScheduler(engine, skuRepo, cfg.Intelligence, logger)
	go scheduler.Start(ctx)

	handler := httpadapter.NewHandler(engine, middleware, campaignRepo, logger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err = srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	value := <-quit
	exitCode = 128 + int(value.(syscall.Signal))

	scheduler.Stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	} else {
		logger.Info("server gracefully stopped")
	}
}

// buildRegistry registers every platform connector and integrator whose
// credentials pass the shallow validation check. A platform with no
// credentials is simply absent: the middleware reports it as
// unavailable rather than failing at startup.
func buildRegistry(cfg config.Config, logger *slog.Logger) *port.Registry {
	registry := port.NewRegistry()
	c := cfg.Connectors

	platforms := map[string]port.PlatformConnector{
		"google_ads":   connector.NewGoogleAds(connector.Credentials{"api_key": c.GoogleAPIKey, "client_id": c.GoogleClientID}),
		"meta_ads":     connector.NewMetaAds(connector.Credentials{"access_token": c.MetaAccessToken}),
		"tiktok_ads":   connector.NewTikTokAds(connector.Credentials{"access_token": c.TikTokAccessToken, "advertiser_id": c.TikTokAdvertiserID}),
		"linkedin_ads": connector.NewLinkedInAds(connector.Credentials{"access_token": c.LinkedInToken}),
	}
	for name, conn := range platforms {
		if !conn.ValidateCredentials() {
			logger.Warn("platform connector skipped, missing credentials", slog.String("platform", name))
			continue
		}
		registry.RegisterPlatform(name, conn)
		logger.Info("platform connector registered", slog.String("platform", name))
	}

	// integrators are tried in registration order
	if rb := connector.NewRevealBot(connector.Credentials{"api_key": c.RevealBotAPIKey}); rb.ValidateCredentials() {
		registry.RegisterIntegrator("revealbot", rb)
		logger.Info("integrator registered", slog.String("integrator", "revealbot"))
	}
	if ar := connector.NewAdRoll(connector.Credentials{"access_token": c.AdRollAccessToken}); ar.ValidateCredentials() {
		registry.RegisterIntegrator("adroll", ar)
		logger.Info("integrator registered", slog.String("integrator", "adroll"))
	}
	return registry
}
