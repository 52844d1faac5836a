package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the application logger. Components receive child loggers from
// it explicitly; nothing in the library reads a process-wide logger.
func New(verbose bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// NewWriterLogger builds a logger over arbitrary writers, fanning out when
// more than one is given. Used by tests and by report persistence debugging.
func NewWriterLogger(writers ...io.Writer) zerolog.Logger {
	var w io.Writer
	switch len(writers) {
	case 0:
		w = os.Stderr
	case 1:
		w = writers[0]
	default:
		w = zerolog.MultiLevelWriter(writers...)
	}
	return zerolog.New(w).With().Timestamp().Logger()
}
