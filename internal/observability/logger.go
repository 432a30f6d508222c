package observability

import (
	"log/slog"
	"os"
	"strings"
)

// Logger is the narrow adapter the services log through. The underlying
// slog handler is installed as the process default so middleware logging
// shares the same output.
type Logger struct {
	base *slog.Logger
}

func NewLogger() *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: levelFromEnv()})
	base := slog.New(handler)
	slog.SetDefault(base)
	return &Logger{base: base}
}

func (l *Logger) Info(msg string) {
	l.base.Info(msg)
}

func (l *Logger) Error(msg string) {
	l.base.Error(msg)
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
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
