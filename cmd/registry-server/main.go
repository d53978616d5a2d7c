package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campusreg/student-registry/internal/api"
	"github.com/campusreg/student-registry/internal/infrastructure/config"
	mongodb "github.com/campusreg/student-registry/internal/infrastructure/db/mongo"
	redisdb "github.com/campusreg/student-registry/internal/infrastructure/db/redis"
	"github.com/campusreg/student-registry/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("starting student-registry")

	ctx := context.Background()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = mongoClient.Disconnect(ctx) }()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	if err := mongodb.NewUserRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	tokenTTL, err := time.ParseDuration(cfg.TokenTTL)
	if err != nil {
		log.Warn().Str("token_ttl", cfg.TokenTTL).Msg("invalid TOKEN_TTL, defaulting to 24h")
		tokenTTL = 24 * time.Hour
	}

	e := api.NewRouter(db, rdb, cfg.JWTSecret, tokenTTL, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Info().Err(err).Msg("http server stopped")
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info().Msg("shutdown signal received, stopping server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shut down gracefully")
		os.Exit(1)
	}

	log.Info().Msg("server stopped gracefully")
}
