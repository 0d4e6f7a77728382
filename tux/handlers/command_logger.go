package handlers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/handler"
)

const (
	slowThreshold  = 2 * time.Second
	handlerTimeout = 10 * time.Second
)

// WrapWithLogging wraps a command handler with start/finish logging, slow
// command warnings, and a hard timeout.
func WrapWithLogging(name string, h handler.CommandHandler) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		logStart("cmd", name, e.User().ID.String(), e.User().Username)
		return runWithTimeout("cmd", name, e.User().ID.String(), e.User().Username, func() error {
			return h(e)
		})
	}
}

// WrapComponentWithLogging is WrapWithLogging for component interactions.
func WrapComponentWithLogging(name string, h handler.ComponentHandler) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		logStart("component", name, e.User().ID.String(), e.User().Username)
		return runWithTimeout("component", name, e.User().ID.String(), e.User().Username, func() error {
			return h(e)
		})
	}
}

// WrapAutocompleteWithLogging logs autocomplete handlers without the slow
// warning; they are latency sensitive and fail quietly.
func WrapAutocompleteWithLogging(name string, h handler.AutocompleteHandler) handler.AutocompleteHandler {
	return func(e *handler.AutocompleteEvent) error {
		if err := h(e); err != nil {
			slog.Error("Autocomplete failed",
				slog.String("type", "cmd"),
				slog.String("name", name),
				slog.Any("error", err))
			return err
		}
		return nil
	}
}

func logStart(kind, name, userID, username string) {
	slog.Info("Command started",
		slog.String("type", kind),
		slog.String("name", name),
		slog.String("user_id", userID),
		slog.String("user_name", username))
}

func runWithTimeout(kind, name, userID, username string, fn func() error) error {
	start := time.Now()

	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		took := time.Since(start)
		attrs := []any{
			slog.String("type", kind),
			slog.String("name", name),
			slog.String("user_id", userID),
			slog.String("user_name", username),
			slog.Duration("took", took),
		}
		switch {
		case err != nil:
			slog.Error("Command failed", append(attrs,
				slog.Any("error", err),
				slog.String("status", "failed"))...)
		case took > slowThreshold:
			slog.Warn("Command executed slowly", append(attrs,
				slog.String("status", "slow"))...)
		default:
			slog.Info("Command completed", append(attrs,
				slog.String("status", "success"))...)
		}
		return err

	case <-time.After(handlerTimeout):
		slog.Error("Command timed out",
			slog.String("type", kind),
			slog.String("name", name),
			slog.String("user_id", userID),
			slog.String("user_name", username),
			slog.String("status", "timeout"),
			slog.Duration("timeout", handlerTimeout))
		return fmt.Errorf("command timed out after %s", handlerTimeout)
	}
}
