// Package logger provides a structured, levelled logger built on log/slog.
//
// Handlers and services should log through WithCtx so every line carries the
// request_id injected by middleware.Logger:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order placed", "order_number", order.OrderNumber)
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/krishi360/krishi/config"
)

var L *slog.Logger

func init() {
	L = New(os.Stdout, config.AppEnv(), config.Get("LOG_LEVEL", ""))
	slog.SetDefault(L)
}

// New builds a logger for env: JSON in production, text elsewhere. level
// ("debug", "info", "warn", "error") overrides the env default of INFO in
// production, WARN under test and DEBUG otherwise.
func New(w io.Writer, env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: defaultLevel(env)}
	if level != "" {
		var lv slog.Level
		if err := lv.UnmarshalText([]byte(level)); err == nil {
			opts.Level = lv
		}
	}

	if production(env) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func production(env string) bool { return env == "production" || env == "prod" }

func defaultLevel(env string) slog.Level {
	switch {
	case production(env):
		return slog.LevelInfo
	case env == "test":
		return slog.LevelWarn
	default:
		return slog.LevelDebug
	}
}

type ctxKey struct{}

// WithCtx returns the request-scoped logger stored in ctx, or the base logger.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores log into ctx. Called by the Logger middleware.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
