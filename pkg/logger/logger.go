package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config selects output format and level.
type Config struct {
	Env   string // development -> console writer; anything else -> JSON
	Level string // trace, debug, info, warn, error
}

// New builds the process logger and installs it as zerolog's global logger.
func New(cfg Config) zerolog.Logger {
	var w io.Writer = os.Stdout
	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}

	zl := zerolog.New(w).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
	log.Logger = zl
	return zl
}

// Nop returns a disabled logger, handy for tests.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
