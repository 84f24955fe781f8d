// Package app wires configuration, storage, use cases and transport.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"

	"github.com/ekingoksan/docker-cmd-studio/internal/adapters/in/http/api"
	"github.com/ekingoksan/docker-cmd-studio/internal/adapters/out/ratelimit"
	"github.com/ekingoksan/docker-cmd-studio/internal/adapters/out/sqlite"
	"github.com/ekingoksan/docker-cmd-studio/internal/adapters/out/telemetry"
	"github.com/ekingoksan/docker-cmd-studio/internal/boundaries/out"
	"github.com/ekingoksan/docker-cmd-studio/internal/config"
	"github.com/ekingoksan/docker-cmd-studio/internal/logging"
	"github.com/ekingoksan/docker-cmd-studio/internal/usecase/auth"
	"github.com/ekingoksan/docker-cmd-studio/internal/usecase/configs"
)

// App holds the long-lived components. Close releases them.
type App struct {
	Config  *config.Config
	DB      *sql.DB
	Configs *configs.Service
	Auth    *auth.Service
	Limiter *ratelimit.MemoryStore

	// Metrics is nil when metrics are disabled.
	Metrics *telemetry.Metrics

	log zerolog.Logger
}

// New opens the database and builds the services.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	ctx = logging.WithCtx(ctx, log)

	db, err := sqlite.Open(ctx, cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:  cfg,
		DB:      db,
		Limiter: ratelimit.NewMemoryStore(cfg.Auth.LoginRPS, cfg.Auth.LoginBurst, log),
		log:     log,
	}

	var metrics out.Metrics
	if cfg.Metrics.Enabled {
		a.Metrics = telemetry.NewMetrics()
		metrics = a.Metrics
	}

	a.Configs = configs.NewService(configs.Config{
		DefaultPageSize: cfg.List.DefaultPageSize,
		MaxPageSize:     cfg.List.MaxPageSize,
	}, sqlite.NewConfigStore(db), metrics)
	a.Auth = auth.NewService(auth.Config{}, sqlite.NewUserStore(db), a.Limiter, metrics)

	return a, nil
}

// Handler returns the HTTP interface. It needs a session secret.
func (a *App) Handler() http.Handler {
	opts := api.Options{
		Configs:       a.Configs,
		Auth:          a.Auth,
		Sessions:      sessions.NewCookieStore([]byte(a.Config.Server.SessionSecret)),
		SecureCookies: a.Config.Server.SecureCookies,
		Health:        a.DB.PingContext,
		Log:           a.log,
	}
	if a.Metrics != nil {
		opts.Metrics = a.Metrics
	}
	return api.NewRouter(opts)
}

// Close releases the database.
func (a *App) Close() error {
	if err := a.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
