package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/myapi/auth-api/internal/core/domain"
)

// DefaultTokenTTL is the lifetime of a session token.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Claims is the signed payload of a session token.
type Claims struct {
	UserID string `json:"user_id"`
	Admin  bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies stateless HS256 session tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source used for issuance and expiry checks.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// Issue signs a token for user that expires ttl after now.
func (s *TokenService) Issue(user *domain.User) (string, time.Time, error) {
	issued := s.now().UTC().Truncate(time.Second)
	expires := issued.Add(s.ttl)

	claims := Claims{
		UserID: user.ID,
		Admin:  user.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Verify checks signature and expiry and returns the embedded identity.
// Every failure wraps domain.ErrInvalidToken.
func (s *TokenService) Verify(raw string) (*domain.Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, domain.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, domain.ErrTokenSignature
	default:
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	}

	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing user_id", domain.ErrTokenMalformed)
	}

	id := &domain.Identity{
		UserID: claims.UserID,
		Admin:  claims.Admin,
	}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}
