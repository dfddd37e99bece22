package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// SessionCookieName matches the token parameter the Auth middleware reads.
const SessionCookieName = "token"

// CookieOptions defines how session cookies are issued.
type CookieOptions struct {
	Secure   bool
	SameSite http.SameSite
}

func setSessionCookie(c echo.Context, token string, expiresAt time.Time, opts CookieOptions) {
	sameSite := opts.SameSite
	if sameSite == 0 {
		sameSite = http.SameSiteLaxMode
	}

	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: sameSite,
	})
}
