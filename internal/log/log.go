// Package log provides structured logging for sportkal, backed by zerolog.
package log

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	base     zerolog.Logger
	baseOnce sync.Once
)

// initBase initializes the process-wide base logger. Output goes to stderr
// so that one-shot CLI runs can still pipe the generated calendar to stdout.
func initBase() {
	baseOnce.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		base = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.InfoLevel)
	})
}

// Base returns the process-wide base logger.
func Base() zerolog.Logger {
	initBase()
	return base
}

// SetLevel adjusts the minimum level of the base logger.
func SetLevel(level zerolog.Level) {
	initBase()
	base = base.Level(level)
}

// UseConsoleWriter switches the base logger to a human-friendly console
// writer. Intended for interactive CLI runs; serve mode keeps JSON lines.
func UseConsoleWriter() {
	initBase()
	base = base.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}

// WithComponent returns a logger annotated with the given component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str("component", component).Logger()
}
