// Package logger configures the process-wide zerolog logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init sets the global log level and output. Console mode renders human
// readable lines, otherwise JSON lines are written to w (stderr when nil).
func Init(level string, console bool, w io.Writer) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	if w == nil {
		w = os.Stderr
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "02-01-2006 15:04:05 -0700"}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Str("app", "smalltalk").Logger()
	return nil
}

// ParseLevel maps a textual level onto zerolog.Level. Empty means info.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zerolog.DebugLevel, nil
	case "", "INFO":
		return zerolog.InfoLevel, nil
	case "WARN":
		return zerolog.WarnLevel, nil
	case "ERROR":
		return zerolog.ErrorLevel, nil
	case "DISABLED":
		return zerolog.Disabled, nil
	}
	return zerolog.NoLevel, fmt.Errorf("incorrect log level %s", level)
}

// Execution returns a child logger annotated with execution identifiers.
func Execution(executionID, workflow string) zerolog.Logger {
	return log.With().Str("execution", executionID).Str("workflow", workflow).Logger()
}
