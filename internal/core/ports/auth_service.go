package ports

import (
	"context"
	"time"

	"github.com/myapi/auth-api/internal/core/domain"
)

// RegisterInput carries an already validated registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	RemoteIP string
}

// LoginInput carries an already validated login request.
type LoginInput struct {
	Email    string
	Password string
	RemoteIP string
}

// Session is a freshly issued token together with its owner.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*Session, error)
	Login(ctx context.Context, in LoginInput) (*Session, error)
}

// UserService serves profile lookups. Access control has already been
// applied by the time these are called.
type UserService interface {
	Profile(ctx context.Context, id string) (*domain.User, error)
}

// PasswordHasher is a one-way salted hash with constant-time verification.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

type TokenIssuer interface {
	Issue(user *domain.User) (token string, expiresAt time.Time, err error)
}

type TokenVerifier interface {
	Verify(token string) (*domain.Identity, error)
}
