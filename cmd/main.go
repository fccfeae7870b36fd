package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"xclub/api/handler"
	apiMiddleware "xclub/api/middleware"
	"xclub/api/routes"
	"xclub/config"
	"xclub/internal/entity"
	"xclub/internal/repository"
	"xclub/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	db, err := config.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("database connection failed")
	}
	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Session{},
		&entity.ActivationCode{},
		&entity.AuditLog{},
	); err != nil {
		logger.WithError(err).Fatal("database migration failed")
	}

	validate := validator.New()

	sessionRepo := repository.NewSessionRepository(db)
	userRepo := repository.NewUserRepository(db)
	codeRepo := repository.NewActivationCodeRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	transactor := repository.NewTransactor(db)

	clock := service.RealClock{}
	sessionService := service.NewSessionService(sessionRepo, auditRepo, clock, cfg.SessionTTL, logger)
	codeService := service.NewActivationCodeService(codeRepo, auditRepo, clock, logger)
	userService := service.NewUserService(userRepo, codeService, transactor, auditRepo, clock, logger)

	wechatClient := service.NewWechatClient(cfg.WechatAppID, cfg.WechatSecret)
	feishuClient := service.NewFeishuClient(cfg.FeishuAppID, cfg.FeishuAppSecret, cfg.FeishuAppToken, cfg.FeishuTableID)

	authHandler := handler.NewAuthHandler(wechatClient, sessionService, userService, validate, logger)
	userHandler := handler.NewUserHandler(userService, validate, logger)
	recordHandler := handler.NewRecordHandler(feishuClient, validate, logger)
	codeHandler := handler.NewCodeHandler(codeService, validate, logger)

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.CORS())
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status": v.Status,
				"method": v.Method,
				"uri":    v.URI,
				"ip":     v.RemoteIP,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	authMiddleware := apiMiddleware.AuthMiddleware{Sessions: sessionService}
	adminMiddleware := apiMiddleware.AdminMiddleware{Users: userService}
	loginRate := apiMiddleware.NewRateLimiter(rate.Limit(cfg.LoginRatePerSecond), cfg.LoginRateBurst, time.Hour)

	router := routes.NewRouter(app, authHandler, userHandler, recordHandler, codeHandler, authMiddleware, adminMiddleware, loginRate)
	router.RegisterRoutes()

	go sweepSessions(context.Background(), sessionService, cfg.SweepInterval, logger)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.WithField("addr", cfg.HTTPAddr).Info("server started")
	if err := app.StartServer(server); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

// sweepSessions periodically clears expired session rows. Expiry is already
// enforced on read; this only keeps the table small.
func sweepSessions(ctx context.Context, sessions *service.SessionService, interval time.Duration, logger logrus.FieldLogger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := sessions.SweepExpired(ctx); err != nil {
				logger.WithError(err).Warn("session sweep failed")
			}
		}
	}
}
