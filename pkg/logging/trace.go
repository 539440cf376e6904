package logging

import (
	"context"
	"log/slog"
)

// LevelTrace sits below DEBUG, for per-item detail such as sampling draws.
// Enable it with level "TRACE".
const LevelTrace = slog.LevelDebug - 4

// Trace logs at LevelTrace on logger, or the default logger when nil.
func Trace(logger *slog.Logger, msg string, args ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Log(context.Background(), LevelTrace, msg, args...)
}
