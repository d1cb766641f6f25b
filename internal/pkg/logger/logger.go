package logger

import (
	"io"
	"os"
	"time"

	"energy-marketplace/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger: console output outside production, JSON otherwise.
func Setup(cfg *config.Config) zerolog.Logger {
	return setup(cfg, os.Stdout)
}

func setup(cfg *config.Config, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	w := out
	if !cfg.IsProduction() {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}
	l := zerolog.New(w).With().Timestamp().Str("service", "energy-marketplace").Logger()
	log.Logger = l
	return l
}
