// Package logging wraps zerolog with the level/format configuration this
// binary's CLI and CRUNCH_LOG environment variable select.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Level is a logging verbosity, mirroring the RUST_LOG-style env var the
// specification describes (spec §6), realized here as CRUNCH_LOG.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format selects the console writer's rendering.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config selects the level and format for New.
type Config struct {
	Level  Level
	Format Format
}

// FromEnv builds a Config from --log-level/--log-format CLI values, falling
// back to the CRUNCH_LOG environment variable (default "info") when level
// is empty.
func FromEnv(level, format string) Config {
	if level == "" {
		level = os.Getenv("CRUNCH_LOG")
	}
	if level == "" {
		level = string(LevelInfo)
	}
	if format == "" {
		format = string(FormatText)
	}
	return Config{Level: Level(strings.ToLower(level)), Format: Format(strings.ToLower(format))}
}

// New constructs a zerolog.Logger writing to stderr per cfg.
func New(cfg Config) zerolog.Logger {
	var w io.Writer = os.Stderr
	if cfg.Format == FormatText {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}

	logger := zerolog.New(w).With().Timestamp().Logger()

	switch cfg.Level {
	case LevelDebug:
		logger = logger.Level(zerolog.DebugLevel)
	case LevelWarn:
		logger = logger.Level(zerolog.WarnLevel)
	case LevelError:
		logger = logger.Level(zerolog.ErrorLevel)
	default:
		logger = logger.Level(zerolog.InfoLevel)
	}
	return logger
}
