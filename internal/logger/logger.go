package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide structured logger. It writes to stderr so that
// command output on stdout stays machine readable.
var Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
	Level(zerolog.InfoLevel).
	With().Timestamp().Logger()

// Init configures Logger for the CLI run.
func Init(verbose, asJSON bool) {
	Logger = New(os.Stderr, verbose, asJSON)
}

// New builds a logger writing to w.
func New(w io.Writer, verbose, asJSON bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	if !asJSON {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
