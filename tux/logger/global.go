package logger

import (
	"log/slog"
	"time"
)

// LogSweep logs one sweep tick summary
func LogSweep(name string, processed, failed int, took time.Duration) {
	slog.Info("Sweep tick finished",
		slog.String("type", "sweep"),
		slog.String("name", name),
		slog.Int("processed", processed),
		slog.Int("failed", failed),
		slog.Duration("took", took),
	)
}

// LogSystem logs system events
func LogSystem(msg string, attrs ...any) {
	baseAttrs := []any{slog.String("type", "sys")}
	slog.Info(msg, append(baseAttrs, attrs...)...)
}
