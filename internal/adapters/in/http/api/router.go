// Package api is the JSON HTTP interface of the studio, built on echo.
package api

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/ekingoksan/docker-cmd-studio/internal/adapters/dto"
	"github.com/ekingoksan/docker-cmd-studio/internal/boundaries/in"
)

// MaxBodySize bounds request bodies.
const MaxBodySize = "1M"

// Metrics observes requests and exposes the collected series.
type Metrics interface {
	RequestObserver
	Handler() http.Handler
}

// Options configures NewRouter. Metrics and Health are optional.
type Options struct {
	Configs       in.ConfigService
	Auth          in.AuthService
	Sessions      sessions.Store
	SecureCookies bool
	Metrics       Metrics
	Health        func(ctx context.Context) error
	Log           zerolog.Logger
}

// NewRouter builds the echo instance serving every route.
func NewRouter(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.IPExtractor = echo.ExtractIPDirect()
	e.HTTPErrorHandler = errorHandler

	e.Use(withLogger(opts.Log))
	e.Use(middleware.Recover())
	e.Use(accessLog(opts.Log))
	if opts.Metrics != nil {
		e.Use(observeRequests(opts.Metrics))
	}
	e.Use(secureHeaders())
	e.Use(middleware.BodyLimit(MaxBodySize))
	e.Use(session.Middleware(opts.Sessions))

	e.GET("/healthz", healthz(opts.Health))
	if opts.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(opts.Metrics.Handler()))
	}

	authHandler := NewAuthHandler(opts.Auth, opts.SecureCookies)
	authHandler.registerAuth(e.Group("/api/auth"))

	api := e.Group("/api", requireSession)
	authHandler.registerProfile(api.Group("/profile"))
	NewConfigHandler(opts.Configs).register(api.Group("/configs"))

	return e
}

func healthz(check func(ctx context.Context) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		if check != nil {
			if err := check(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "unavailable"})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}
