package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/myapi/auth-api/internal/core/domain"
	"github.com/myapi/auth-api/internal/core/ports"
	"github.com/myapi/auth-api/internal/pkg/metrics"
)

type AuthHandler struct {
	authService ports.AuthService
	cookie      CookieOptions
}

func NewAuthHandler(authService ports.AuthService, cookie CookieOptions) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie}
}

type registerRequest struct {
	Name     string `json:"name" form:"name" validate:"required,min=3,max=24"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=8,max=24"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=8,max=24"`
}

// normalize trims surrounding whitespace so length rules apply to the
// value that gets stored.
func (r *registerRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
}

func (r *loginRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

type sessionResponse struct {
	domain.Profile
	Token string `json:"token"`
}

// Register creates a new user account and opens a session for it.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  ErrorBody
// @Failure      409   {object}  ErrorBody
// @Router       /users [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	session, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		RemoteIP: c.RealIP(),
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registrationResult(err)).Inc()
		return err
	}
	metrics.RegistrationsTotal.WithLabelValues("created").Inc()

	setSessionCookie(c, session.Token, session.ExpiresAt, h.cookie)
	return c.JSON(http.StatusCreated, sessionResponse{Profile: session.User.Profile(), Token: session.Token})
}

// Login authenticates a user and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  ErrorBody
// @Router       /auth [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	session, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		RemoteIP: c.RealIP(),
	})
	if err != nil {
		result := "error"
		if errors.Is(err, domain.ErrInvalidCredentials) {
			result = "invalid"
		}
		metrics.LoginsTotal.WithLabelValues(result).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	setSessionCookie(c, session.Token, session.ExpiresAt, h.cookie)
	return c.JSON(http.StatusOK, sessionResponse{Profile: session.User.Profile(), Token: session.Token})
}

type normalizer interface {
	normalize()
}

// bindAndValidate decodes the request, normalizes it and applies its
// validate tags. Any failure is reported as domain.ErrInvalidParameters.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidParameters, err)
	}
	if n, ok := req.(normalizer); ok {
		n.normalize()
	}
	return c.Validate(req)
}

func registrationResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrUserExists):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidParameters):
		return "invalid"
	default:
		return "error"
	}
}
