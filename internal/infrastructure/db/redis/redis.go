package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultDialTimeout = 5 * time.Second

// Config holds the settings for the profile cache connection.
type Config struct {
	Addr     string
	Password string
	DB       int
	// DialTimeout bounds both dialing and the startup ping.
	DialTimeout time.Duration
}

// Connect opens a pooled client and pings it once. A client that cannot
// reach the server is closed before the error is returned.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	dial := cfg.DialTimeout
	if dial <= 0 {
		dial = defaultDialTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dial,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dial)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}
