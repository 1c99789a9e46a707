// Package obs contains observability utilities such as logging.
package obs

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the global structured logger used by the service. It is usable
// before InitLogger is called.
var Logger = slog.Default()

// InitLogger initializes the global Logger with JSON handler at info level.
func InitLogger() {
	InitLoggerLevel("info")
}

// InitLoggerLevel initializes the global Logger with a JSON handler writing
// to stdout at the named level. Unknown names fall back to info.
func InitLoggerLevel(level string) {
	InitLoggerTo(os.Stdout, level)
}

// InitLoggerTo is InitLoggerLevel with an explicit destination.
func InitLoggerTo(w io.Writer, level string) {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	Logger = slog.New(h)
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
