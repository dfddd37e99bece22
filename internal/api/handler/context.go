package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/myapi/auth-api/internal/core/domain"
)

// ctxIdentity returns the identity injected by the Auth middleware. Its
// absence means the route was registered without an access policy, so it
// fails closed with domain.ErrUnauthenticated.
func ctxIdentity(c echo.Context) (*domain.Identity, error) {
	id, ok := domain.IdentityFrom(c.Request().Context())
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return id, nil
}
