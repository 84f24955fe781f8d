package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/ekingoksan/docker-cmd-studio/internal/adapters/dto"
	"github.com/ekingoksan/docker-cmd-studio/internal/domain"
	"github.com/ekingoksan/docker-cmd-studio/internal/logging"
)

const (
	sessionName   = "session"
	sessionUserID = "user_id"
	sessionEmail  = "email"
	ctxSessionKey = "studio_session"
)

// withLogger attaches a request-scoped logger to the request context.
func withLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := logging.WithCtx(req.Context(), log)
			ctx = logging.CtxWithFields(ctx, map[string]any{
				logging.FieldLayer:  "http",
				logging.FieldMethod: req.Method,
				logging.FieldPath:   req.URL.Path,
			})
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

// accessLog writes one line per request.
func accessLog(log zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogMethod:   true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/healthz" || c.Path() == "/metrics"
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str(logging.FieldMethod, v.Method).
				Str(logging.FieldPath, v.URI).
				Int(logging.FieldStatus, v.Status).
				Dur(logging.FieldDuration, v.Latency).
				Str(logging.FieldClientIP, v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

// RequestObserver records served requests.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, seconds float64)
}

func observeRequests(obs RequestObserver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else if !c.Response().Committed {
					status = http.StatusInternalServerError
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			obs.ObserveRequest(c.Request().Method, route, status, time.Since(start).Seconds())
			return err
		}
	}
}

func secureHeaders() echo.MiddlewareFunc {
	return middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            3600,
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		ReferrerPolicy:        "no-referrer",
	})
}

// requireSession rejects requests without a signed-in user and exposes the
// session to handlers through currentSession.
func requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s, ok := readSession(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: domain.ErrUnauthorized.Error()})
		}

		c.Set(ctxSessionKey, s)
		ctx := logging.CtxWithFields(c.Request().Context(), map[string]any{
			logging.FieldUserID: s.UserID,
		})
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func readSession(c echo.Context) (domain.Session, bool) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return domain.Session{}, false
	}
	userID, _ := sess.Values[sessionUserID].(string)
	if userID == "" {
		return domain.Session{}, false
	}
	email, _ := sess.Values[sessionEmail].(string)
	return domain.Session{UserID: userID, Email: email}, true
}

func currentSession(c echo.Context) domain.Session {
	s, _ := c.Get(ctxSessionKey).(domain.Session)
	return s
}
