package domain

import (
	"context"
	"time"
)

// Identity is the claim set recovered from a verified session token.
// It lives only in the context of the request that presented the token.
type Identity struct {
	UserID    string
	Admin     bool
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity attached to ctx, if any.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil
}
