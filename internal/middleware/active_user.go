package middleware

import (
	"errors"

	"github.com/anonto42/campus-social/backend/internal/apperr"
	"github.com/anonto42/campus-social/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// RequireActiveUser loads the principal's user and rejects banned accounts.
// It must run after Authenticate or OptionalAuthenticate; anonymous requests
// pass through untouched.
func RequireActiveUser(users repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := PrincipalFrom(c)
			if !ok {
				return next(c)
			}
			user, err := users.GetUserByID(c.Request().Context(), principal.UserID)
			if errors.Is(err, repositories.ErrNotFound) {
				return apperr.ErrUnauthorized.WithMessage("account no longer exists")
			}
			if err != nil {
				return apperr.Internal(err)
			}
			if user.IsBanned {
				return apperr.ErrForbidden.WithMessage("account is banned")
			}
			c.Set(userKey, user)
			return next(c)
		}
	}
}

// RequireAdmin allows only admin users through.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return apperr.ErrUnauthorized
			}
			if !user.IsAdmin {
				return apperr.ErrForbidden.WithMessage("admin access required")
			}
			return next(c)
		}
	}
}
