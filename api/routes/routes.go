package routes

import (
	"net/http"

	"xclub/api/handler"
	"xclub/api/middleware"

	"github.com/labstack/echo/v4"
)

type Router struct {
	Echo    *echo.Echo
	Auth    *handler.AuthHandler
	Users   *handler.UserHandler
	Records *handler.RecordHandler
	Codes   *handler.CodeHandler

	AuthMiddleware  middleware.AuthMiddleware
	AdminMiddleware middleware.AdminMiddleware
	LoginRate       *middleware.RateLimiter
}

func NewRouter(
	e *echo.Echo,
	auth *handler.AuthHandler,
	users *handler.UserHandler,
	records *handler.RecordHandler,
	codes *handler.CodeHandler,
	authMiddleware middleware.AuthMiddleware,
	adminMiddleware middleware.AdminMiddleware,
	loginRate *middleware.RateLimiter,
) *Router {
	return &Router{
		Echo:            e,
		Auth:            auth,
		Users:           users,
		Records:         records,
		Codes:           codes,
		AuthMiddleware:  authMiddleware,
		AdminMiddleware: adminMiddleware,
		LoginRate:       loginRate,
	}
}

func (r *Router) RegisterRoutes() {
	r.Echo.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"service": "xclub", "status": "running"})
	})
	r.Echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	v1 := r.Echo.Group("/xclub/v1")

	auth := v1.Group("/auth")
	if r.LoginRate != nil {
		auth.POST("/login", r.Auth.Login, r.LoginRate.Middleware())
		auth.POST("/register", r.Auth.Register, r.LoginRate.Middleware())
	} else {
		auth.POST("/login", r.Auth.Login)
		auth.POST("/register", r.Auth.Register)
	}
	auth.GET("/check", r.Auth.Check, r.AuthMiddleware.OptionalAuth)
	auth.POST("/logout", r.Auth.Logout, r.AuthMiddleware.RequireAuth)

	user := v1.Group("/user", r.AuthMiddleware.RequireAuth)
	user.GET("/info", r.Users.Me)
	user.PUT("/info", r.Users.UpdateMe)
	user.GET("/:id", r.Users.GetByID)
	user.PUT("/:id/role", r.Users.UpdateRole, r.AdminMiddleware.RequireAdmin)

	record := v1.Group("/record", r.AuthMiddleware.RequireAuth)
	record.POST("/create", r.Records.Create)

	admin := v1.Group("/admin", r.AuthMiddleware.RequireAuth, r.AdminMiddleware.RequireAdmin)
	admin.POST("/code", r.Codes.Create)
	admin.POST("/code/batch", r.Codes.BatchCreate)
	admin.POST("/code/:code/invalidate", r.Codes.Invalidate)
	admin.GET("/code/:code", r.Codes.Get)
}
