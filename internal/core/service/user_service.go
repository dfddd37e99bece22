package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/myapi/auth-api/internal/core/domain"
	"github.com/myapi/auth-api/internal/core/ports"
)

type userService struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

// NewUserService returns a UserService backed by repo.
func NewUserService(repo ports.UserRepository, log zerolog.Logger) ports.UserService {
	return &userService{repo: repo, log: log}
}

// Profile looks up a user by identifier. Store failures are logged and
// reported as domain.ErrUserNotFound.
func (s *userService) Profile(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.log.Error().Err(err).Str("user_id", id).Msg("profile lookup failed")
		}
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}
