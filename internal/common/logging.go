package common

import (
	"fmt"
	"io"
	"os"
	"time"

	"armatracker/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogging configures the global zerolog logger
func SetupLogging(cfg config.LoggingConfig) error {
	return setupLogging(cfg, os.Stderr)
}

func setupLogging(cfg config.LoggingConfig, out io.Writer) error {

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var writer io.Writer
	switch cfg.Format {
	case "json":
		writer = out
	case "console":
		writer = zerolog.ConsoleWriter{Out: out, TimeFormat: time.DateTime}
	default:
		return fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
	return nil
}
