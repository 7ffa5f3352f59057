package app

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/heartmarshall/streamlog-backend/internal/config"
)

// redacted replaces the value of attributes that may carry credentials:
// identity tokens, application keys and authorization headers.
const redacted = "[REDACTED]"

var secretKeys = map[string]struct{}{
	"token":         {},
	"key":           {},
	"raw_key":       {},
	"authorization": {},
	"cookie":        {},
	"jwt_secret":    {},
}

// NewLogger creates the process logger from cfg, writes it to stderr and
// installs it as the slog default.
//
// Format "json" is for production; "text" is for development and adds
// source locations. Level is debug, info, warn or error (default info).
func NewLogger(cfg config.LogConfig) *slog.Logger {
	logger := slog.New(newHandler(os.Stderr, cfg))
	slog.SetDefault(logger)
	return logger
}

func newHandler(w io.Writer, cfg config.LogConfig) slog.Handler {
	text := strings.EqualFold(cfg.Format, "text")
	opts := &slog.HandlerOptions{
		Level:       parseLevel(cfg.Level),
		AddSource:   text,
		ReplaceAttr: redactSecrets,
	}
	if text {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

func redactSecrets(_ []string, a slog.Attr) slog.Attr {
	if _, ok := secretKeys[strings.ToLower(a.Key)]; ok && a.Value.Kind() == slog.KindString && a.Value.String() != "" {
		return slog.String(a.Key, redacted)
	}
	return a
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
