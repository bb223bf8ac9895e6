package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
	"github.com/iliyamo/hotel-booking/internal/utils"
)

// SessionFinder looks up the session issued for a token.
type SessionFinder interface {
	FindByToken(ctx context.Context, token string) (model.Session, error)
}

// JWTAuth validates a Bearer access token and requires that a session row
// still exists for it.  On success the token's subject is stored under
// ContextUserID.  Every failure answers 401 with a JSON error.
func JWTAuth(secret string, sessions SessionFinder, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			uid, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			sess, err := sessions.FindByToken(c.Request().Context(), raw)
			if errors.Is(err, repository.ErrSessionNotFound) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session not found"})
			}
			if err != nil {
				log.Error("session lookup failed", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			// a token re-signed for another subject must not reuse a session
			if sess.UserID != uid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(ContextUserID, uid)
			return next(c)
		}
	}
}
