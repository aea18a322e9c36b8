// Package logging configures the zerolog logger shared by all commands.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger settings.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string
	// Pretty enables the human-readable console writer.
	Pretty bool
	// Output defaults to os.Stderr so log lines never mix with streamed
	// assistant output on stdout.
	Output io.Writer
}

// New creates a logger from cfg. Unknown levels fall back to info.
func New(cfg Config) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: "15:04:05",
		}
	}

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// NewComponent derives a logger tagged with a component field.
func NewComponent(log zerolog.Logger, component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
