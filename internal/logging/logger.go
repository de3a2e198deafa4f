// Package logging configures the diagnostic logger. Diagnostics go to stderr
// and never share a stream with repository reports.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LevelEnv overrides the level chosen from flags when set.
const LevelEnv = "GITSYNC_LOG_LEVEL"

// New returns a logger writing to out. quiet wins over verbosity; otherwise
// 0 is info, 1 debug and 2 or more trace.
func New(out io.Writer, verbosity int, quiet bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&TextFormatter{DisableTimestamp: true})
	logger.SetLevel(Level(verbosity, quiet))

	if raw := strings.TrimSpace(os.Getenv(LevelEnv)); raw != "" {
		if level, err := logrus.ParseLevel(raw); err == nil {
			logger.SetLevel(level)
		}
	}
	return logger
}

// Level maps CLI verbosity flags to a logrus level.
func Level(verbosity int, quiet bool) logrus.Level {
	switch {
	case quiet:
		return logrus.WarnLevel
	case verbosity >= 2:
		return logrus.TraceLevel
	case verbosity == 1:
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

// Discard returns a logger that drops everything. Used as a default when
// callers pass no logger.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// Component returns an entry tagged with a component field.
func Component(logger logrus.FieldLogger, name string) *logrus.Entry {
	if logger == nil {
		logger = Discard()
	}
	return logger.WithField("component", name)
}
