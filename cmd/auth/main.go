package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"linker_auth/internal/auth"
	"linker_auth/internal/config"
	"linker_auth/internal/http_server/router"
	"linker_auth/internal/ledger"
	"linker_auth/internal/lib/jwt"
	sl "linker_auth/internal/lib/logger"
	"linker_auth/internal/lib/password"
	"linker_auth/internal/rabbitmq"
	"linker_auth/internal/recovery"
	"linker_auth/internal/storage/postgres"
	"linker_auth/internal/storage/redis"
	"linker_auth/internal/throttle"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// @title        Linker auth API
// @version      1.0
// @description  Registration, login, token refresh and password recovery.
// @host         localhost:8080
// @BasePath     /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("starting auth service", slog.String("env", cfg.Env))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tokens, err := jwt.New(cfg.Tokens.Secret)
	if err != nil {
		log.Error("invalid token configuration", sl.Err(err))
		os.Exit(1)
	}

	if err := postgres.Migrate(ctx, cfg.Postgres); err != nil {
		log.Error("failed to apply migrations", sl.Err(err))
		os.Exit(1)
	}

	storage, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		log.Error("failed to connect postgres", sl.Err(err))
		os.Exit(1)
	}
	defer storage.Close()

	msgBroker, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
	if err != nil {
		log.Error("failed to connect rabbitmq", sl.Err(err))
		os.Exit(1)
	}
	defer msgBroker.Close()

	var recoveryOpts []recovery.Option

	if cfg.ResetLock.Enabled {
		locks, err := redis.New(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Error("failed to connect redis", sl.Err(err))
			os.Exit(1)
		}
		defer locks.Close()

		recoveryOpts = append(recoveryOpts, recovery.WithLocker(locks))
		log.Info("reset lock enabled", slog.Duration("ttl", cfg.ResetLock.TTL))
	}

	hasher := password.NewBcrypt(cfg.Recovery.BcryptCost)
	resetLedger := ledger.New(storage)

	authService := auth.New(log, storage, storage, hasher, tokens, cfg.Tokens.AccessTokenTTL, cfg.Tokens.RefreshTokenTTL)

	recoveryService := recovery.New(
		log,
		storage,
		resetLedger,
		throttle.New(resetLedger, cfg.Recovery.ThrottleWindow),
		hasher,
		msgBroker,
		recovery.Config{
			HashTTL:     cfg.Recovery.HashTTL,
			LinkBaseURL: strings.TrimRight(cfg.HTTPServer.PublicURL, "/") + "/api/v1/auth",
			LockTTL:     cfg.ResetLock.TTL,
		},
		recoveryOpts...,
	)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router.New(log, authService, recoveryService),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server is running", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", sl.Err(err))
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down HTTP server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", sl.Err(err))
	} else {
		log.Info("Server stopped gracefully")
	}

	log.Info("Main service stopped")
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
