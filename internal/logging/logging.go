package logging

import (
	"io"
	"os"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/rs/zerolog"

	"evdash/internal/config"
)

// New returns the process logger. Unknown levels fall back to info.
func New(w io.Writer, cfg config.LogConfig) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
}

func ParseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(s)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// EchoLevel maps a zerolog level onto echo's logger levels.
func EchoLevel(level zerolog.Level) log.Lvl {
	switch {
	case level <= zerolog.DebugLevel:
		return log.DEBUG
	case level == zerolog.InfoLevel:
		return log.INFO
	case level == zerolog.WarnLevel:
		return log.WARN
	case level == zerolog.Disabled:
		return log.OFF
	default:
		return log.ERROR
	}
}
