package ports

import (
	"context"

	"github.com/myapi/auth-api/internal/core/domain"
)

// UserRepository defines the credential store. Lookups return
// domain.ErrUserNotFound when nothing matches and Insert returns
// domain.ErrUserExists when the email or id is already taken.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Insert(ctx context.Context, user *domain.User) error
}

// AdminProvisioner flips the admin flag outside the request path.
type AdminProvisioner interface {
	SetAdmin(ctx context.Context, email string, admin bool) (*domain.User, error)
}

// UserCache stores user records keyed by identifier.
type UserCache interface {
	Get(ctx context.Context, id string) (*domain.User, error)
	Set(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
}
