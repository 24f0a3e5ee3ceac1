// Package logger builds the zerolog logger of the command line.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the logger.
type Options struct {
	Level      string // zerolog level name, info when empty
	File       string // rotated log file, a console on stderr when empty
	MaxSizeMB  int
	MaxBackups int
}

// New returns a logger writing to a human friendly console on stderr, or to a rotated
// JSON file. An unknown level falls back to info.
func New(opts Options) zerolog.Logger {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	if opts.File != "" {
		w = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
