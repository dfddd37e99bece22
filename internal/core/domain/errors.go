package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidParameters  = errors.New("invalid parameters")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("access forbidden")
)

// ErrInvalidToken is the parent of every token verification failure.
var ErrInvalidToken = errors.New("invalid token")

var (
	ErrTokenExpired   = fmt.Errorf("%w: expired", ErrInvalidToken)
	ErrTokenSignature = fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	ErrTokenMalformed = fmt.Errorf("%w: malformed", ErrInvalidToken)
)
