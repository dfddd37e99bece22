package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/myapi/auth-api/internal/api/handler"
	"github.com/myapi/auth-api/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors to a status and a stable code.
//   - Logs unexpected errors without leaking details to the client.
//   - Renders the envelope {"code": "...", "message": "..."}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorBody) {
	switch {
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, handler.ErrorBody{Code: "INVALID_TOKEN", Message: "Invalid token"}
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, handler.ErrorBody{Code: "UNAUTHENTICATED", Message: "You need to be logged in."}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, handler.ErrorBody{Code: "FORBIDDEN", Message: "You do not have access to this resource."}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, handler.ErrorBody{Code: "NOT_FOUND", Message: "User not found"}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, handler.ErrorBody{Code: "ALREADY_EXISTS", Message: "An account with this email is already registered"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest, handler.ErrorBody{Code: "INVALID_PARAMETERS", Message: "Your credentials are not valid"}
	case errors.Is(err, domain.ErrInvalidParameters):
		return http.StatusBadRequest, handler.ErrorBody{Code: "INVALID_PARAMETERS", Message: "At least one field is invalid. Try again."}
	}

	// Echo's own errors: router misses, body limit, unsupported media type.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
			return he.Code, handler.ErrorBody{Code: "INVALID_PARAMETERS", Message: "At least one field is invalid. Try again."}
		case http.StatusNotFound:
			return he.Code, handler.ErrorBody{Code: "NOT_FOUND", Message: "Not found"}
		case http.StatusMethodNotAllowed:
			return he.Code, handler.ErrorBody{Code: "METHOD_NOT_ALLOWED", Message: "Method not allowed"}
		}
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, handler.ErrorBody{Code: "INTERNAL_ERROR", Message: "Something went wrong. Try again later."}
}
