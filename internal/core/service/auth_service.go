package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/myapi/auth-api/internal/core/domain"
	"github.com/myapi/auth-api/internal/core/ports"
)

// AuthService implements registration and login.
type AuthService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	audit  ports.AuditSink
	log    zerolog.Logger

	now   func() time.Time
	newID func() string

	decoyOnce   sync.Once
	decoyDigest string
}

func NewAuthService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	audit ports.AuditSink,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		audit:  audit,
		log:    log,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Register creates a new account and opens a session for it.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.Session, error) {
	email := normalizeEmail(in.Email)

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("register: check email: %w", err)
	}
	if exists {
		return nil, domain.ErrUserExists
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	user := &domain.User{
		ID:           s.newID(),
		Name:         in.Name,
		Email:        email,
		PasswordHash: hash,
		Created:      s.now().Unix(),
	}

	// The unique index still catches a concurrent registration that slipped
	// past ExistsByEmail.
	if err := s.repo.Insert(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("register: insert: %w", err)
	}

	session, err := s.openSession(user)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.record(domain.EventRegistered, user.ID, email, in.RemoteIP)
	s.log.Info().Str("user_id", user.ID).Msg("user registered")

	return session, nil
}

// Login verifies credentials. Unknown accounts, wrong passwords and store
// failures all collapse into domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.Session, error) {
	email := normalizeEmail(in.Email)

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.log.Error().Err(err).Msg("login lookup failed")
		}
		// Burn a comparable amount of time so response latency does not
		// reveal whether the account exists.
		s.hasher.Verify(in.Password, s.decoy())
		s.record(domain.EventLoginFailed, "", email, in.RemoteIP)
		return nil, domain.ErrInvalidCredentials
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		s.record(domain.EventLoginFailed, user.ID, email, in.RemoteIP)
		return nil, domain.ErrInvalidCredentials
	}

	session, err := s.openSession(user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.record(domain.EventLoginSucceeded, user.ID, email, in.RemoteIP)
	return session, nil
}

func (s *AuthService) openSession(user *domain.User) (*ports.Session, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &ports.Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) decoy() string {
	s.decoyOnce.Do(func() {
		digest, err := s.hasher.Hash(uuid.NewString()[:24])
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to prepare decoy digest")
			return
		}
		s.decoyDigest = digest
	})
	return s.decoyDigest
}

func (s *AuthService) record(kind domain.AuthEventKind, userID, email, remoteIP string) {
	if s.audit == nil {
		return
	}
	s.audit.Enqueue(domain.AuthEvent{
		Kind:      kind,
		UserID:    userID,
		Email:     email,
		RemoteIP:  remoteIP,
		Timestamp: s.now().UTC(),
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
