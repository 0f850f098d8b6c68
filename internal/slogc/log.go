package slogc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// LevelFine is below debug, for per-item detail such as every opened input.
const LevelFine = slog.LevelDebug - 4

// New returns a logger writing to w. level is one of fine, debug, info, warn
// or error; format is text or json. Empty values select info and text.
func New(level string, format string, w io.Writer) (*slog.Logger, error) {
	var logLevel slog.Level
	switch level {
	case "fine":
		logLevel = LevelFine
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	case "info", "":
		logLevel = slog.LevelInfo
	default:
		return nil, fmt.Errorf("invalid level '%s' (fine|debug|info|warn|error)", level)
	}

	opts := &slog.HandlerOptions{
		Level:       logLevel,
		ReplaceAttr: levelReplacer,
	}
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid format '%s' (json|text)", format)
	}
}

func levelReplacer(_ []string, attr slog.Attr) slog.Attr {
	if attr.Key == slog.LevelKey && attr.Value.Any() == LevelFine {
		return slog.String(attr.Key, "FINE")
	}
	return attr
}

// Fine logs msg at LevelFine.
func Fine(logger *slog.Logger, msg string, args ...any) {
	logger.Log(context.Background(), LevelFine, msg, args...)
}
