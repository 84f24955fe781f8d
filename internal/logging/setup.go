// Package logging configures zerolog for the application and carries
// request-scoped loggers through context.Context.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ekingoksan/docker-cmd-studio/internal/config"
)

// Setup builds the application logger from cfg and installs it as the
// zerolog global. Console output goes to console; when cfg.File is set the
// same events are also written, as JSON, to a rotating file.
func Setup(cfg config.LoggingConfig, console io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = zerolog.ConsoleWriter{Out: console, TimeFormat: "15:04:05"}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0700); err != nil {
			return zerolog.Nop(), fmt.Errorf("failed to create log directory: %w", err)
		}
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		out = io.MultiWriter(out, fileWriter)
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = logger
	zerolog.DefaultContextLogger = &logger

	if err != nil {
		logger.Warn().Str("invalid_level", cfg.Level).Msg("invalid log level, using info")
	}
	logger.Debug().
		Str("level", level.String()).
		Str("file", cfg.File).
		Msg("logging initialized")

	return logger, nil
}
