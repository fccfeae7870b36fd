package middleware

import (
	"context"
	"net/http"

	"xclub/api/response"

	"github.com/labstack/echo/v4"
)

type AdminChecker interface {
	IsAdmin(ctx context.Context, openID string) (bool, error)
}

// AdminMiddleware gates privileged routes. Authorization is a policy decision
// made here, one layer above the managers; the managers themselves do not
// self-enforce it.
type AdminMiddleware struct {
	Users AdminChecker
}

// RequireAdmin assumes RequireAuth already ran.
func (m AdminMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, ok := SessionFromContext(c)
		if !ok {
			return response.Fail(c, http.StatusUnauthorized, response.CodeUnauthorized, "not logged in")
		}
		isAdmin, err := m.Users.IsAdmin(c.Request().Context(), session.OpenID)
		if err != nil {
			return response.Fail(c, http.StatusInternalServerError, response.CodeInternalError, "internal error")
		}
		if !isAdmin {
			return response.Fail(c, http.StatusForbidden, response.CodeForbidden, "admin required")
		}
		return next(c)
	}
}
