package middleware

import (
	"context"
	"net/http"

	"xclub/api/response"
	"xclub/internal/entity"

	"github.com/labstack/echo/v4"
)

// SessionHeader carries the opaque session token on authenticated requests.
const SessionHeader = "X-Session-Id"

// SessionResolver resolves a token to its session, reporting absent (nil, nil)
// for unknown or expired tokens.
type SessionResolver interface {
	Get(ctx context.Context, token string) (*entity.Session, error)
}

type AuthMiddleware struct {
	Sessions SessionResolver
}

// RequireAuth rejects requests without a resolvable session.
func (m AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := c.Request().Header.Get(SessionHeader)
		if token == "" {
			return response.Fail(c, http.StatusUnauthorized, response.CodeUnauthorized, "not logged in")
		}
		session, err := m.Sessions.Get(c.Request().Context(), token)
		if err != nil {
			return response.Fail(c, http.StatusInternalServerError, response.CodeInternalError, "internal error")
		}
		if session == nil {
			return response.Fail(c, http.StatusUnauthorized, response.CodeSessionInvalid, "session invalid or expired")
		}
		SetSession(c, session)
		return next(c)
	}
}

// OptionalAuth attaches the session when the token resolves and continues
// either way.
func (m AuthMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := c.Request().Header.Get(SessionHeader)
		if token != "" {
			session, err := m.Sessions.Get(c.Request().Context(), token)
			if err != nil {
				return response.Fail(c, http.StatusInternalServerError, response.CodeInternalError, "internal error")
			}
			if session != nil {
				SetSession(c, session)
			}
		}
		return next(c)
	}
}
