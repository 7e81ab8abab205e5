package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/palette-api/internal/config"
	"github.com/phrazzld/palette-api/internal/redact"
)

// ParseLevel converts a configured level name into a slog.Level.
// Matching is case-insensitive; "fatal" maps to error. The second return
// value is false for unknown names, in which case info is returned.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error", "fatal":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Setup initializes the application's JSON logger on stdout with the level
// from cfg and installs it as the slog default. Every attribute passes
// through redact.ReplaceAttr.
func Setup(cfg config.ServerConfig) (*slog.Logger, error) {
	return SetupWithWriter(cfg, os.Stdout)
}

// SetupWithWriter is Setup writing to w.
func SetupWithWriter(cfg config.ServerConfig, w io.Writer) (*slog.Logger, error) {
	level, ok := ParseLevel(cfg.LogLevel)
	if !ok {
		tmpLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmpLogger.Warn("invalid log level configured, using default level",
			"configured_level", cfg.LogLevel,
			"default_level", "info")
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redact.ReplaceAttr,
	})
	logger := slog.New(handler).With(slog.String("service", "palette-api"))

	slog.SetDefault(logger)

	return logger, nil
}
