package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// defaultTimeout bounds connecting and every single repository operation.
const defaultTimeout = 10 * time.Second

type Config struct {
	URI      string
	Database string
	AppName  string
	// ConnectTimeout defaults to defaultTimeout.
	ConnectTimeout time.Duration
}

// Store is the process-wide pooled client and the database it serves.
type Store struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Connect dials the deployment and waits for a primary before returning.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(timeout)
	if cfg.AppName != "" {
		opts.SetAppName(cfg.AppName)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping primary: %w", err)
	}

	return &Store{Client: client, DB: client.Database(cfg.Database)}, nil
}

// Close drains the connection pool.
func (s *Store) Close(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}
