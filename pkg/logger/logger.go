// Package logger builds the structured zerolog logger shared by the API and
// the seed command.
//
//	TRACE (-1) → DEBUG (0) → INFO (1) → WARN (2) → ERROR (3)
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger behaviour.
type Options struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Defaults to "info" when empty or unrecognised.
	Level string
	// Pretty enables human-friendly console output instead of JSON.
	Pretty bool
	// File, when set, also writes JSON logs to a size-rotated file.
	File string
	// Output is the console writer. Defaults to os.Stdout.
	Output io.Writer
}

// New returns a logger and a func that releases the log file, if any.
func New(opts Options) (zerolog.Logger, func() error) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var out io.Writer = os.Stdout
	if opts.Output != nil {
		out = opts.Output
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	closer := func() error { return nil }
	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    100, // MB
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
		out = zerolog.MultiLevelWriter(out, rotator)
		closer = rotator.Close
	}

	lvl := parseLevel(opts.Level)
	log := zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Caller().
		Logger()

	return log, closer
}

// parseLevel converts a string to a zerolog.Level.
func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
