package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/myapi/auth-api/internal/core/domain"
	"github.com/myapi/auth-api/internal/core/ports"
	"github.com/myapi/auth-api/internal/pkg/metrics"
)

// TokenParam is the name of the query parameter, body field and cookie that
// may carry a session token.
const TokenParam = "token"

const (
	SourceQuery  = "query"
	SourceBody   = "body"
	SourceCookie = "cookie"
)

// Resolve returns the first token candidate on the request, checking the
// query string, then the body, then the cookie. It returns an empty token
// when none is present.
func Resolve(c echo.Context) (token, source string) {
	if t := c.QueryParam(TokenParam); t != "" {
		return t, SourceQuery
	}
	if t := bodyToken(c); t != "" {
		return t, SourceBody
	}
	if ck, err := c.Cookie(TokenParam); err == nil && ck.Value != "" {
		return ck.Value, SourceCookie
	}
	return "", ""
}

// bodyToken reads the token field from a JSON or form body. A JSON body is
// restored afterwards so handlers can still bind it.
func bodyToken(c echo.Context) string {
	req := c.Request()
	if req.Body == nil || req.ContentLength == 0 {
		return ""
	}

	ctype := req.Header.Get(echo.HeaderContentType)
	switch {
	case strings.HasPrefix(ctype, echo.MIMEApplicationJSON):
		raw, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(raw))
		if err != nil {
			return ""
		}
		var payload struct {
			Token string `json:"token"`
		}
		if json.Unmarshal(raw, &payload) != nil {
			return ""
		}
		return payload.Token
	case strings.HasPrefix(ctype, echo.MIMEApplicationForm), strings.HasPrefix(ctype, echo.MIMEMultipartForm):
		if err := req.ParseMultipartForm(32 << 10); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return ""
		}
		return req.PostForm.Get(TokenParam)
	}
	return ""
}

// Auth resolves the caller's identity. Requests without a token pass through
// anonymously; requests with a token that fails verification are rejected
// with domain.ErrInvalidToken and never reach next.
func Auth(verifier ports.TokenVerifier, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, source := Resolve(c)
			if raw == "" {
				return next(c)
			}

			id, err := verifier.Verify(raw)
			if err != nil {
				metrics.TokenVerificationsTotal.WithLabelValues(source, verificationResult(err)).Inc()
				log.Debug().Err(err).Str("source", source).Msg("token rejected")
				if !errors.Is(err, domain.ErrInvalidToken) {
					err = domain.ErrInvalidToken
				}
				return err
			}
			metrics.TokenVerificationsTotal.WithLabelValues(source, "valid").Inc()

			req := c.Request()
			c.SetRequest(req.WithContext(domain.WithIdentity(req.Context(), id)))
			return next(c)
		}
	}
}

func verificationResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenSignature):
		return "signature"
	default:
		return "malformed"
	}
}
