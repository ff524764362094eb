package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ecocoleta/ecocoleta-backend/internal/repository"
	"github.com/ecocoleta/ecocoleta-backend/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token, loads the user behind its subject and gates on the per-user
// active flag.  A valid signature alone is not enough: a user who
// logged out (active=false) is rejected even though the token has not
// expired yet.  On success the user's id and role are stored in the
// request context under "user_id" and "role".
//
// All rejection paths answer 401 with the same low-information message
// so callers cannot tell a tampered token from an inactive account.
func JWTAuth(secret string, users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			userID, err := utils.VerifyAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			u, err := users.GetByID(ctx, userID)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
			}
			if !u.IsActive {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			c.Set("user_id", u.ID)
			c.Set("role", u.Role)
			return next(c)
		}
	}
}

// UserID extracts the authenticated user's id stored by JWTAuth.  The
// boolean is false when the middleware did not run on this route.
func UserID(c echo.Context) (string, bool) {
	id, ok := c.Get("user_id").(string)
	return id, ok && id != ""
}
