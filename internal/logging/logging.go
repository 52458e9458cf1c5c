// Package logging provides interfaces.Logger implementations: a
// zerolog-backed logger for CLI use and a no-op logger used as the library
// default.
package logging

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/manishiitg/llm-recorder-go/interfaces"
)

// ZerologLogger adapts a zerolog.Logger to interfaces.Logger.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger wraps an existing zerolog.Logger.
func NewZerologLogger(log zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{log: log}
}

// NewConsoleLogger builds a human-readable stderr logger for CLI use.
func NewConsoleLogger(debug bool) *ZerologLogger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
	return &ZerologLogger{log: log}
}

func (z *ZerologLogger) Infof(format string, v ...any) {
	z.log.Info().Msgf(format, v...)
}

func (z *ZerologLogger) Errorf(format string, v ...any) {
	z.log.Error().Msgf(format, v...)
}

func (z *ZerologLogger) Debugf(format string, args ...interface{}) {
	z.log.Debug().Msgf(format, args...)
}

// Nop returns a logger that discards everything.
func Nop() interfaces.Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
func (nopLogger) Debugf(string, ...interface{}) {}
