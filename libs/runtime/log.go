package runtime

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/md-rashed-zaman/apptslots/libs/config"
)

// NewLogger writes JSON to stdout at LOG_LEVEL, tagging every record with service.
func NewLogger(service string) *slog.Logger {
	return NewLoggerWithWriter(os.Stdout, service, config.String("LOG_LEVEL", "info"))
}

func NewLoggerWithWriter(w io.Writer, service, level string) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return slog.New(h).With("service", service)
}

// ParseLevel maps LOG_LEVEL values onto slog levels; unknown values mean info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
