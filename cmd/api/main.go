package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"jobgate/api/internal/authorizer"
	"jobgate/api/internal/cache"
	"jobgate/api/internal/config"
	"jobgate/api/internal/database"
	"jobgate/api/internal/expiry"
	"jobgate/api/internal/handlers"
	"jobgate/api/internal/jobs"
	"jobgate/api/internal/log"
	"jobgate/api/internal/metrics"
	"jobgate/api/internal/models"
	"jobgate/api/internal/repository"
	"jobgate/api/internal/server"
	"jobgate/api/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	var redisClient *redis.Client
	if cfg.Session.Backend == "redis" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
	}

	store, err := newSessionStore(cfg, redisClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init session store")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	authMetrics := metrics.New(registry)

	policies, fallback, err := buildPolicyTable(cfg.Session)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid expiry policy configuration")
	}

	resolver := repository.NewSessionTokenRepository(dbPool)
	auth := authorizer.New(resolver, store, policies, fallback, logger, authMetrics)

	handlerSet := handlers.NewHandlerSet(logger, dbPool, redisClient, store, auth, cfg)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet, registry)

	lenient := expiry.Extended{
		Fixed: expiry.FixedLifespan{Lifespan: cfg.Session.FixedLifespan},
		Idle:  expiry.IdleTimeout{Timeout: cfg.Session.IdleTimeout},
	}
	scheduler := jobs.NewScheduler(store, lenient, cfg.Session.SweepSchedule, authMetrics, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func newSessionStore(cfg *config.AppConfig, redisClient *redis.Client) (session.Store, error) {
	switch cfg.Session.Backend {
	case "memory":
		return session.NewMemoryStore(), nil
	case "redis":
		return session.NewRedisStore(redisClient), nil
	}
	return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
}

func buildPolicyTable(cfg config.SessionConfig) (map[models.Role]expiry.Policy, expiry.Policy, error) {
	fallback, err := expiry.FromName(cfg.DefaultPolicy, cfg.FixedLifespan, cfg.IdleTimeout)
	if err != nil {
		return nil, nil, err
	}

	policies := make(map[models.Role]expiry.Policy, len(cfg.Policies))
	for roleName, policyName := range cfg.Policies {
		role, err := models.ParseRole(roleName)
		if err != nil {
			return nil, nil, err
		}
		policy, err := expiry.FromName(policyName, cfg.FixedLifespan, cfg.IdleTimeout)
		if err != nil {
			return nil, nil, err
		}
		policies[role] = policy
	}
	return policies, fallback, nil
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	scheduler.Stop()

	db.Close()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
	os.Exit(0)
}
