package logging

import (
	"context"
	"log/slog"
	"os"
)

type loggerContextKey struct{}

// FromContext returns the logger stored in ctx
//
// Stdout belongs to the views, so the fallback logs to stderr, and only warnings and up.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})).
		With(slog.String("logger", "fallback"))
}

func AddToContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

// AddMetaToContext returns a ctx whose logger adds attrs to every line
func AddMetaToContext(ctx context.Context, attrs ...slog.Attr) context.Context {
	if len(attrs) == 0 {
		return ctx
	}
	logger := FromContext(ctx)
	return AddToContext(ctx, slog.New(logger.Handler().WithAttrs(attrs)))
}

// AddSessionToContext tags every line with the id of this run of the binary.
// A shell session keeps one id across all of its commands
func AddSessionToContext(ctx context.Context, sessionID string) context.Context {
	return AddMetaToContext(ctx, slog.String("sessionID", sessionID))
}

// AddCommandToContext tags every line with the command and the id of this invocation of it
func AddCommandToContext(ctx context.Context, command string, runID string) context.Context {
	return AddMetaToContext(ctx, slog.String("command", command), slog.String("runID", runID))
}
