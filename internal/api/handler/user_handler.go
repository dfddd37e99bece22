package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/myapi/auth-api/internal/core/ports"
)

// UserHandler serves profile lookups. Routes are expected to sit behind
// middleware.Auth and the matching middleware.Require policy.
type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Me returns the caller's own profile.
//
// @Summary      Get own profile
// @Tags         users
// @Produce      json
// @Param        token  query     string  false  "Session token"
// @Success      200    {object}  domain.Profile
// @Failure      401    {object}  ErrorBody
// @Failure      404    {object}  ErrorBody
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.users.Profile(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user.Profile())
}

// Get returns any user's profile. Admin only.
//
// @Summary      Get a profile by id
// @Tags         users
// @Produce      json
// @Param        id     path      string  true   "User identifier"
// @Param        token  query     string  false  "Session token"
// @Success      200    {object}  domain.Profile
// @Failure      401    {object}  ErrorBody
// @Failure      403    {object}  ErrorBody
// @Failure      404    {object}  ErrorBody
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	if _, err := ctxIdentity(c); err != nil {
		return err
	}

	user, err := h.users.Profile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user.Profile())
}
