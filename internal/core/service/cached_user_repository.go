package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/myapi/auth-api/internal/core/domain"
	"github.com/myapi/auth-api/internal/core/ports"
)

// CachedUserRepository puts a read-through cache in front of FindByID.
// Cache errors are logged and the lookup falls through to the store.
type CachedUserRepository struct {
	ports.UserRepository
	cache ports.UserCache
	log   zerolog.Logger
}

func NewCachedUserRepository(repo ports.UserRepository, cache ports.UserCache, log zerolog.Logger) *CachedUserRepository {
	return &CachedUserRepository{UserRepository: repo, cache: cache, log: log}
}

func (r *CachedUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	cached, err := r.cache.Get(ctx, id)
	switch {
	case err == nil:
		return cached, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		r.log.Warn().Err(err).Str("user_id", id).Msg("user cache read failed")
	}

	user, err := r.UserRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, user); err != nil {
		r.log.Warn().Err(err).Str("user_id", id).Msg("user cache write failed")
	}
	return user, nil
}
