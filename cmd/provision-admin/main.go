// Command provision-admin grants or revokes the admin flag on an existing
// account. The change applies to tokens issued after it runs.
//
//	provision-admin -email ops@example.com
//	provision-admin -email ops@example.com -revoke
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"

	"github.com/myapi/auth-api/internal/core/domain"
	"github.com/myapi/auth-api/internal/core/ports"
	mongodb "github.com/myapi/auth-api/internal/infrastructure/db/mongo"
	redisdb "github.com/myapi/auth-api/internal/infrastructure/db/redis"
	"github.com/myapi/auth-api/internal/pkg/config"
	"github.com/myapi/auth-api/pkg/logger"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run returns the process exit code so deferred cleanup always happens.
func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("provision-admin", flag.ContinueOnError)
	fs.SetOutput(stderr)
	email := fs.String("email", "", "email of the account to update")
	revoke := fs.Bool("revoke", false, "clear the admin flag instead of setting it")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if strings.TrimSpace(*email) == "" {
		fmt.Fprintln(stderr, "usage: provision-admin -email <address> [-revoke]")
		return 2
	}

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(stderr, "provision-admin: %v\n", err)
		return 1
	}
	cfg, err := config.LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		fmt.Fprintf(stderr, "provision-admin: %v\n", err)
		return 1
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  true,
		Service: "provision-admin",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "provision-admin",
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to connect to mongodb")
		return 1
	}
	defer func() { _ = store.Close(context.Background()) }()

	var cache ports.UserCache
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, cached profile will expire on its own")
	} else {
		defer func() { _ = rdb.Close() }()
		cache = redisdb.NewUserCache(rdb, cfg.Redis.CacheTTL)
	}

	user, err := provision(ctx, mongodb.NewUserRepository(store.DB), cache, *email, !*revoke, log)
	if err != nil {
		log.Error().Err(err).Str("email", *email).Msg("failed to update admin flag")
		return 1
	}

	log.Info().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Bool("admin", user.Admin).
		Msg("admin flag updated")
	return 0
}

// provision sets the flag and drops any cached copy of the account so
// profile reads stop serving the old value. cache may be nil.
func provision(
	ctx context.Context,
	store ports.AdminProvisioner,
	cache ports.UserCache,
	email string,
	admin bool,
	log zerolog.Logger,
) (*domain.User, error) {
	user, err := store.SetAdmin(ctx, strings.ToLower(strings.TrimSpace(email)), admin)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		if err := cache.Delete(ctx, user.ID); err != nil {
			log.Warn().Err(err).Str("user_id", user.ID).Msg("cache invalidation failed")
		}
	}
	return user, nil
}
