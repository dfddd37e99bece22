package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/myapi/auth-api/docs"
	"github.com/myapi/auth-api/internal/api/handler"
	"github.com/myapi/auth-api/internal/api/middleware"
	"github.com/myapi/auth-api/internal/core/domain"
	"github.com/myapi/auth-api/internal/core/ports"
)

const maxBodySize = "64K"

// Services are the collaborators the HTTP layer depends on.
type Services struct {
	Auth      ports.AuthService
	Users     ports.UserService
	Tokens    ports.TokenVerifier
	Readiness []handler.DependencyCheck
}

// Options tune the router. Registerer and Gatherer default to the global
// prometheus registry when nil.
type Options struct {
	CookieSecure bool
	StaticDir    string
	Registerer   prometheus.Registerer
	Gatherer     prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echomiddleware.BodyLimit(maxBodySize))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: opts.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Operational endpoints (no auth) ---
	health := handler.NewHealthHandler()
	ready := handler.NewHealthDependenciesHandler(svc.Readiness...)

	e.GET("/health", health.Liveness)
	e.GET("/health/ready", ready.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: opts.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- API ---
	authHandler := handler.NewAuthHandler(svc.Auth, handler.CookieOptions{Secure: opts.CookieSecure})
	userHandler := handler.NewUserHandler(svc.Users)

	v1 := e.Group("/api/v1", middleware.Auth(svc.Tokens, log))
	v1.POST("/auth", authHandler.Login)
	v1.POST("/users", authHandler.Register)
	v1.GET("/users/me", userHandler.Me, middleware.Require(domain.PolicyAuthenticated))
	v1.GET("/users/:id", userHandler.Get, middleware.Require(domain.PolicyAdmin))

	if opts.StaticDir != "" {
		e.Static("/", opts.StaticDir)
	}

	return e
}

// requestLogger logs one line per request. Only the path is logged so
// tokens passed in the query string never reach the logs.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
