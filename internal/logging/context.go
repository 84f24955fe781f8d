package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// Shared field keys. Use cases and adapters tag their log lines with these
// so output can be filtered by layer.
const (
	FieldLayer    = "layer"
	FieldUseCase  = "usecase"
	FieldAdapter  = "adapter"
	FieldHandler  = "handler"
	FieldMethod   = "method"
	FieldPath     = "path"
	FieldStatus   = "status"
	FieldDuration = "duration"
	FieldClientIP = "client_ip"
	FieldConfigID = "config_id"
	FieldUserID   = "user_id"
	FieldCount    = "count"
)

// WithCtx attaches log to ctx.
func WithCtx(ctx context.Context, log zerolog.Logger) context.Context {
	return log.WithContext(ctx)
}

// FromCtx returns the logger attached to ctx. When none is attached it
// falls back to zerolog's default context logger, which is disabled unless
// the global logger was set up.
func FromCtx(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// CtxWithFields returns a context whose logger carries fields in addition to
// whatever the parent logger already had.
func CtxWithFields(ctx context.Context, fields map[string]any) context.Context {
	log := FromCtx(ctx).With().Fields(fields).Logger()
	return log.WithContext(ctx)
}
