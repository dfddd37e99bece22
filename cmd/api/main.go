// @title        Auth API
// @version      1.0
// @description  User registration, login and profile lookups.
// @BasePath     /api/v1
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/myapi/auth-api/internal/api"
	"github.com/myapi/auth-api/internal/api/handler"
	"github.com/myapi/auth-api/internal/core/service"
	mongodb "github.com/myapi/auth-api/internal/infrastructure/db/mongo"
	redisdb "github.com/myapi/auth-api/internal/infrastructure/db/redis"
	"github.com/myapi/auth-api/internal/infrastructure/queue"
	"github.com/myapi/auth-api/internal/pkg/config"
	"github.com/myapi/auth-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "auth-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "auth-api",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}

	db := store.DB
	users := mongodb.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure user indexes")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	cached := service.NewCachedUserRepository(users, redisdb.NewUserCache(rdb, cfg.Redis.CacheTTL), log)

	audit := queue.NewDispatcher(
		cfg.Audit.Workers,
		service.NewAuditService(mongodb.NewAuditRepository(db), log),
		log,
	)
	audit.Start(context.Background())

	tokens := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(cached, service.NewBcryptHasher(cfg.Auth.BcryptCost), tokens, audit, log)
	userService := service.NewUserService(cached, log)

	e := api.NewRouter(api.Services{
		Auth:      authService,
		Users:     userService,
		Tokens:    tokens,
		Readiness: []handler.DependencyCheck{handler.MongoCheck(db), handler.RedisCheck(rdb)},
	}, api.Options{
		CookieSecure: cfg.Auth.CookieSecure,
		StaticDir:    cfg.StaticDir,
	}, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("auth-api started")

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	audit.Close()
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("mongo disconnect")
	}

	log.Info().Msg("auth-api stopped cleanly")
}
