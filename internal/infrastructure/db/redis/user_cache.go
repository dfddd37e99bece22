package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/myapi/auth-api/internal/core/domain"
)

const defaultCacheTTL = 5 * time.Minute

// UserCache caches user records in Redis.
// Key format: user:<id>
type UserCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewUserCache creates a UserCache wrapping the given Redis client. A
// non-positive ttl uses defaultCacheTTL.
func NewUserCache(client *redis.Client, ttl time.Duration) *UserCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &UserCache{client: client, ttl: ttl}
}

// cachedUser omits the password digest; cached records only serve profile reads.
type cachedUser struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Created int64  `json:"created"`
	Admin   bool   `json:"admin,omitempty"`
}

// Get returns domain.ErrUserNotFound on a cache miss.
func (c *UserCache) Get(ctx context.Context, id string) (*domain.User, error) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("user cache get: %w", err)
	}

	var cu cachedUser
	if err := json.Unmarshal(raw, &cu); err != nil {
		return nil, fmt.Errorf("user cache decode: %w", err)
	}
	return &domain.User{
		ID:      cu.ID,
		Name:    cu.Name,
		Email:   cu.Email,
		Created: cu.Created,
		Admin:   cu.Admin,
	}, nil
}

func (c *UserCache) Set(ctx context.Context, user *domain.User) error {
	raw, err := json.Marshal(cachedUser{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Created: user.Created,
		Admin:   user.Admin,
	})
	if err != nil {
		return fmt.Errorf("user cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(user.ID), raw, c.ttl).Err()
}

// Delete evicts the entry for id. Evicting a missing key is not an error.
func (c *UserCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}

func (c *UserCache) key(id string) string {
	return "user:" + id
}
