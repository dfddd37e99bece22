package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/myapi/auth-api/internal/core/domain"
	"github.com/myapi/auth-api/internal/pkg/metrics"
)

// Require enforces an endpoint access policy against the identity resolved
// by Auth. It must be installed after Auth.
func Require(policy domain.Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, _ := domain.IdentityFrom(c.Request().Context())
			if err := domain.Authorize(id, policy); err != nil {
				reason := "forbidden"
				if errors.Is(err, domain.ErrUnauthenticated) {
					reason = "unauthenticated"
				}
				metrics.AccessDeniedTotal.WithLabelValues(policy.String(), reason).Inc()
				return err
			}
			return next(c)
		}
	}
}
