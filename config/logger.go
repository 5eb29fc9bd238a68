package config

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a zerolog.Logger configured from GO_ENV and LOG_LEVEL.
// Production writes JSON; otherwise a console writer.
// LOG_LEVEL may be: debug, info, warn, error (default: info).
func NewLogger() zerolog.Logger {
	return newLogger(os.Stdout, os.Getenv("GO_ENV"), os.Getenv("LOG_LEVEL"))
}

func newLogger(out io.Writer, env, levelName string) zerolog.Logger {
	level := zerolog.InfoLevel
	switch levelName {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	if env != "production" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
