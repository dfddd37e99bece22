package service

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myapi/auth-api/internal/core/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenService_RoundTrip(t *testing.T) {
	for _, id := range []string{"a", "0b6d1c0e-6b1f-4a53-9c55-6b3f2b7d0e11", "PPBqWA9"} {
		svc := NewTokenService("secret", 0)

		token, exp, err := svc.Issue(&domain.User{ID: id})
		require.NoError(t, err)

		got, err := svc.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, id, got.UserID)
		assert.False(t, got.Admin)
		assert.Equal(t, exp.Unix(), got.ExpiresAt.Unix())
	}
}

func TestTokenService_SevenDayExpiry(t *testing.T) {
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewTokenService("secret", 0).WithClock(fixedClock(issued))

	token, exp, err := svc.Issue(&domain.User{ID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, issued.Add(7*24*time.Hour), exp)

	svc.WithClock(fixedClock(exp.Add(-time.Second)))
	_, err = svc.Verify(token)
	require.NoError(t, err)

	svc.WithClock(fixedClock(exp.Add(time.Second)))
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenService_AdminClaim(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	token, _, err := svc.Issue(&domain.User{ID: "root", Admin: true})
	require.NoError(t, err)

	got, err := svc.Verify(token)
	require.NoError(t, err)
	assert.True(t, got.Admin)
}

func TestTokenService_WrongSecret(t *testing.T) {
	token, _, err := NewTokenService("secret-a", time.Hour).Issue(&domain.User{ID: "u1"})
	require.NoError(t, err)

	_, err = NewTokenService("secret-b", time.Hour).Verify(token)
	assert.ErrorIs(t, err, domain.ErrTokenSignature)
	assert.NotErrorIs(t, err, domain.ErrTokenExpired)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenService_TamperedPayload(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	victim, _, err := svc.Issue(&domain.User{ID: "victim"})
	require.NoError(t, err)
	attacker, _, err := svc.Issue(&domain.User{ID: "attacker", Admin: true})
	require.NoError(t, err)

	v := strings.Split(victim, ".")
	a := strings.Split(attacker, ".")
	forged := strings.Join([]string{v[0], a[1], v[2]}, ".")

	_, err = svc.Verify(forged)
	assert.ErrorIs(t, err, domain.ErrTokenSignature)
}

func TestTokenService_Malformed(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	for _, raw := range []string{"garbage", "a.b.c", ""} {
		_, err := svc.Verify(raw)
		assert.ErrorIs(t, err, domain.ErrTokenMalformed, raw)
	}
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenService("secret", time.Hour).Verify(none)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenService_MissingUserID(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	token, _, err := svc.Issue(&domain.User{})
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, domain.ErrTokenMalformed)
}

func TestTokenService_MissingExpiry(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u1"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenService("secret", time.Hour).Verify(raw)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
