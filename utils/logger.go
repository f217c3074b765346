package utils

import (
	"os"

	"github.com/rs/zerolog"
)

// NewLogger builds the console logger shared across the application.
// Components derive sub-loggers from it via log.With().Str("component", ...).
func NewLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	out := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
