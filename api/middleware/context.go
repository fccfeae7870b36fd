package middleware

import (
	"xclub/internal/entity"

	"github.com/labstack/echo/v4"
)

const contextSessionKey = "auth_session"

func SetSession(c echo.Context, session *entity.Session) {
	c.Set(contextSessionKey, session)
}

func SessionFromContext(c echo.Context) (*entity.Session, bool) {
	value := c.Get(contextSessionKey)
	session, ok := value.(*entity.Session)
	return session, ok && session != nil
}
